package core

import (
	"slices"

	"github.com/hoermto/unifi-energy/util"
	"github.com/samber/lo"
)

// decodeEvent converts a bus payload into T. Map payloads are decoded by field tags.
func decodeEvent[T any](ev any) (T, error) {
	switch v := ev.(type) {
	case T:
		return v, nil
	case *T:
		if v != nil {
			return *v, nil
		}
	}

	var res T
	err := util.DecodeLenient(ev, &res)
	return res, err
}

func sortedKeys[V any](m map[int]V) []int {
	keys := lo.Keys(m)
	slices.Sort(keys)
	return keys
}
