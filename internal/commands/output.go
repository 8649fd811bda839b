package commands

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/dwsmith1983/tagwatch/pkg/types"
)

func orNone(m types.VersionMarker) string {
	if m.IsZero() {
		return types.NoMarker
	}
	return m.String()
}

func printCheck(w io.Writer, res *types.CheckResult, err error) {
	switch res.Status {
	case types.CheckTriggered:
		if err != nil {
			_, _ = fmt.Fprintf(w, "%s %s -> %s (state not fully saved: %v)\n",
				color.YellowString("TRIGGERED"), orNone(res.OldMarker), res.NewMarker, err)
			return
		}
		_, _ = fmt.Fprintf(w, "%s %s -> %s\n", color.GreenString("TRIGGERED"), orNone(res.OldMarker), res.NewMarker)
	case types.CheckNoUpdate:
		_, _ = fmt.Fprintf(w, "%s current tag %s\n", color.CyanString("UP TO DATE"), res.NewMarker)
	case types.CheckSkipped:
		_, _ = fmt.Fprintf(w, "%s another check holds the lease\n", color.YellowString("SKIPPED"))
	default:
		_, _ = fmt.Fprintf(w, "%s %s: %v\n", color.RedString("FAILED"), res.Status, err)
	}
}

func printManual(w io.Writer, res *types.ManualResult, err error) {
	if err != nil {
		_, _ = fmt.Fprintf(w, "%s tag %s: %v\n", color.RedString("FAILED"), orNone(res.Marker), err)
		return
	}
	_, _ = fmt.Fprintf(w, "%s tag %s\n", color.GreenString("TRIGGERED"), res.Marker)
}

func printEvents(w io.Writer, events []types.TriggerEvent) {
	if len(events) == 0 {
		_, _ = fmt.Fprintln(w, "  (no deployments recorded)")
		return
	}
	for _, ev := range events {
		outcome := color.GreenString("%-7s", ev.Outcome)
		if ev.Outcome == types.OutcomeFailure {
			outcome = color.RedString("%-7s", ev.Outcome)
		}
		_, _ = fmt.Fprintf(w, "  %s  %s  %-9s %-20s %s\n",
			ev.Timestamp.UTC().Format(types.TimeFormat), outcome, ev.Trigger, ev.Tag, ev.Error)
	}
}

func printStatus(w io.Writer, snap *types.StatusSnapshot) {
	bold := color.New(color.Bold)
	_, _ = bold.Fprintf(w, "Repository: %s\n", snap.Repository)
	_, _ = fmt.Fprintf(w, "  Current tag: %s\n", snap.CurrentTag)
	_, _ = fmt.Fprintf(w, "  Last check:  %s\n", snap.LastCheck)
	_, _ = fmt.Fprintln(w)
	_, _ = bold.Fprintln(w, "Recent deployments:")
	printEvents(w, snap.RecentDeployments)
}
