// Package export renders fleet snapshots as CSV reports. The report carries
// the rows in the snapshot's current sort order with the costs that were in
// effect when the snapshot was taken.
package export

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/fleetrics-io/fleetrics/internal/fleet/core/service"
)

// Filename is the canonical download name of a fleet report.
const Filename = "fleet_tco_report.csv"

var header = strings.Join([]string{
	"Vehicle", "Year/Make/Model", "Class", "Miles", "Idle Hours", "Fuel (gal)",
	"Fixed $", "Fuel $", "Maint $", "Idle Waste $", "Total TCO $",
}, ",")

// CSV renders the snapshot as a report. Only the free-text columns are
// quoted, and only when they contain a comma; numeric columns are plain so
// spreadsheet imports see them as numbers.
func CSV(snap *service.Snapshot) []byte {
	var b strings.Builder
	b.WriteString(header)

	for i := range snap.Vehicles {
		v := &snap.Vehicles[i]
		b.WriteByte('\n')
		b.WriteString(strings.Join([]string{
			quoteIfComma(v.Name),
			quoteIfComma(v.DescriptiveInfo),
			v.Tier.DisplayName(),
			strconv.FormatFloat(math.Round(v.DistanceMiles), 'f', -1, 64),
			fmt.Sprintf("%.1f", v.IdleHours),
			fmt.Sprintf("%.1f", v.FuelGallons),
			fmt.Sprintf("%.2f", v.Cost.Fixed),
			fmt.Sprintf("%.2f", v.Cost.Fuel),
			fmt.Sprintf("%.2f", v.Cost.Maintenance),
			fmt.Sprintf("%.2f", v.Cost.Waste),
			fmt.Sprintf("%.2f", v.Cost.Total),
		}, ","))
	}
	return []byte(b.String())
}

func quoteIfComma(s string) string {
	if strings.Contains(s, ",") {
		return `"` + s + `"`
	}
	return s
}
