package testsession

import (
	"fmt"
	"log"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// displayReport renders the scored assessment as console tables.
func displayReport(result Result) {
	log.Printf("🖐️  Assessment report for session %s", result.SessionID)

	summary := table.NewWriter()
	summary.SetStyle(table.StyleRounded)
	summary.AppendHeader(table.Row{"Measure", "Average", "Penalty"})
	summary.AppendRows([]table.Row{
		{"Tremor", fmt.Sprintf("%.5f", result.Breakdown.AvgTremor), fmt.Sprintf("%.3f", result.Breakdown.PenaltyTremor)},
		{"Drift", fmt.Sprintf("%.5f", result.Breakdown.AvgDrift), fmt.Sprintf("%.3f", result.Breakdown.PenaltyDrift)},
		{"Fatigue", fmt.Sprintf("%.5f", result.Breakdown.AvgFatigue), fmt.Sprintf("%.3f", result.Breakdown.PenaltyFatigue)},
	})
	summary.AppendFooter(table.Row{"Stability score", "", fmt.Sprintf("%.1f", result.Score)})
	summary.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
		{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 3, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	fmt.Println(summary.Render())

	fingers := sortedFingers(result)
	perFinger := table.NewWriter()
	perFinger.SetStyle(table.StyleRounded)
	perFinger.AppendHeader(table.Row{"Finger", "Samples", "Tremor", "Drift", "Fatigue"})
	for _, finger := range fingers {
		perFinger.AppendRow(table.Row{
			finger,
			result.SampleCounts[finger],
			fmt.Sprintf("%.5f", result.Tremor[finger]),
			fmt.Sprintf("%.5f", result.Drift[finger]),
			fmt.Sprintf("%.3f", result.Fatigue[finger]),
		})
	}
	fmt.Println(perFinger.Render())
}

// sortedFingers returns the finger names of a result in stable order.
func sortedFingers(result Result) []string {
	fingers := make([]string, 0, len(result.Tremor))
	for finger := range result.Tremor {
		fingers = append(fingers, finger)
	}
	sort.Strings(fingers)
	return fingers
}
