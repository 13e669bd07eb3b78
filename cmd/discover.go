package cmd

import (
	"io"
	"os"

	"github.com/hoermto/unifi-energy/api"
	"github.com/hoermto/unifi-energy/core"
	"github.com/hoermto/unifi-energy/registry"
	"github.com/hoermto/unifi-energy/server/db"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// discoverCmd lists the power sources and the accumulators they would be bound to
var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "List qualifying power sources of the registry snapshot",
	Run:   runDiscover,
}

func init() {
	rootCmd.AddCommand(discoverCmd)
}

func runDiscover(cmd *cobra.Command, args []string) {
	conf, err := loadConfig(viper.GetViper())
	if err != nil {
		log.FATAL.Fatal(err)
	}

	snap, err := registry.LoadFile(conf.Registry)
	if err != nil {
		log.FATAL.Fatal(err)
	}

	totals := make(map[string]string)
	if gdb, err := db.New(conf.Database); err == nil {
		if store, err := db.NewStore(gdb); err == nil {
			res, _ := store.Totals()
			totals = lo.SliceToMap(res, func(t db.Total) (string, string) {
				return t.UniqueID, t.Value
			})
		}
	}

	printSources(os.Stdout, snap, conf.Discovery, totals)
}

// printSources writes one line per qualifying source
func printSources(w io.Writer, snap registry.Snapshot, conf core.DiscoveryConfig, totals map[string]string) {
	platform := conf.Platform
	if platform == "" {
		platform = api.Upstream
	}

	devices := lo.SliceToMap(snap.Devices, func(d api.Device) (string, api.Device) {
		return d.ID, d
	})

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Source", "Device", "Accumulator", "Unique ID", "Total"})
	table.SetAutoWrapText(false)
	table.SetBorder(false)

	sources := core.Sources(snap.Entities, platform)

	if conf.Strategy == api.StrategyPoll {
		for _, id := range lo.Uniq(lo.Map(sources, func(e api.Entry, _ int) string { return e.DeviceID })) {
			name := core.AggregateName(core.DeviceName(devices[id], id))
			uid := core.AggregateUniqueID(id)

			for _, e := range lo.Filter(sources, func(e api.Entry, _ int) bool { return e.DeviceID == id }) {
				table.Append([]string{e.EntityID, core.DeviceName(devices[id], id), name, uid, total(totals, uid)})
			}
		}
	} else {
		for _, e := range sources {
			name := core.EnergyName(core.SourceName(e))
			uid := core.SingleUniqueID(e)
			table.Append([]string{e.EntityID, core.DeviceName(devices[e.DeviceID], e.DeviceID), name, uid, total(totals, uid)})
		}
	}

	table.Render()
}

func total(totals map[string]string, uniqueID string) string {
	if v, ok := totals[uniqueID]; ok {
		return v + " " + api.UnitKiloWattHour
	}
	return "-"
}
