package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"thali/internal/core"
)

func newRootCmd(open openFunc) *cobra.Command {
	root := &cobra.Command{
		Use:   "thali",
		Short: "Track which meals were taken each day",
		Long: `thali keeps one write-once record per day saying whether the morning
and evening meals were taken, and reports totals over any date range.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newServeCmd(open),
		newShowCmd(open),
		newMarkCmd(open),
		newHistoryCmd(open),
		newStatsCmd(open),
		newDeleteCmd(open),
		newUnlockCmd(open),
		newClearCmd(open),
	)
	return root
}

// withRuntime opens the runtime for the duration of fn.
func withRuntime(cmd *cobra.Command, open openFunc, fn func(rt *runtime) error) error {
	rt, err := open(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.Close()
	return fn(rt)
}

// dateArg resolves an optional date argument. Missing or "today" means the
// tracker's current calendar date.
func dateArg(args []string, today core.Date) (core.Date, error) {
	if len(args) == 0 || strings.EqualFold(strings.TrimSpace(args[0]), "today") {
		return today, nil
	}
	return core.ParseDate(args[0])
}

// rangeFlags parses --from and --to into a range.
func rangeFlags(from, to string) (core.Range, error) {
	rng := core.Range{
		Start: core.Date(strings.TrimSpace(from)),
		End:   core.Date(strings.TrimSpace(to)),
	}
	if err := rng.Validate(); err != nil {
		return core.Range{}, err
	}
	return rng, nil
}

// confirm asks question on out and reads a y/N answer from in.
func confirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N]: ", question)
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
