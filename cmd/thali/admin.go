package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"thali/internal/core"
)

func newDeleteCmd(open openFunc) *cobra.Command {
	return newRemoveCmd(open, "delete", "Delete the record of a day",
		"Delete the record for %s?", "Deleted %s.",
		func(rt *runtime) func(context.Context, core.Date) error { return rt.tracker.DeleteRecord })
}

func newUnlockCmd(open openFunc) *cobra.Command {
	return newRemoveCmd(open, "unlock", "Reopen a recorded day for editing",
		"Unlock %s? Its stored selections will be discarded.", "Unlocked %s.",
		func(rt *runtime) func(context.Context, core.Date) error { return rt.tracker.UnlockRecord })
}

func newRemoveCmd(open openFunc, use, short, question, doneMsg string,
	op func(rt *runtime) func(context.Context, core.Date) error) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   use + " <date>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, open, func(rt *runtime) error {
				date, err := dateArg(args, rt.tracker.Today())
				if err != nil {
					return err
				}
				if !yes && !confirm(cmd.InOrStdin(), cmd.OutOrStdout(), fmt.Sprintf(question, date)) {
					fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
					return nil
				}
				if err := op(rt)(cmd.Context(), date); err != nil {
					if errors.Is(err, core.ErrNotFound) {
						return fmt.Errorf("nothing recorded for %s: %w", date, err)
					}
					return err
				}
				newPrinter(cmd.OutOrStdout()).done(doneMsg, date)
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func newClearCmd(open openFunc) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, open, func(rt *runtime) error {
				if !yes && !confirm(cmd.InOrStdin(), cmd.OutOrStdout(), "Delete ALL records? This cannot be undone.") {
					fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
					return nil
				}
				removed, err := rt.tracker.ClearAll(cmd.Context())
				if err != nil {
					return fmt.Errorf("clear stopped after %d records: %w", removed, err)
				}
				newPrinter(cmd.OutOrStdout()).done("Removed %d records.", removed)
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}
