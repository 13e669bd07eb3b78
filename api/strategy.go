package api

// SamplingStrategy selects how an accumulator receives power samples
type SamplingStrategy int

//go:generate enumer -type SamplingStrategy -trimprefix Strategy -transform=lower -text
const (
	StrategyEvent SamplingStrategy = iota // one accumulator per source, driven by state changes
	StrategyPoll                          // one accumulator per device, driven by an interval
)
