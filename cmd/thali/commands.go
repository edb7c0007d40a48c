package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"thali/internal/core"
)

func newShowCmd(open openFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "show [date]",
		Short: "Show the state and selections of a day (default today)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, open, func(rt *runtime) error {
				date, err := dateArg(args, rt.tracker.Today())
				if err != nil {
					return err
				}
				ctx := cmd.Context()
				state, _, err := rt.tracker.StateOf(ctx, date)
				if err != nil {
					return err
				}
				sel, err := rt.tracker.Selections(ctx, date)
				if err != nil {
					return err
				}
				newPrinter(cmd.OutOrStdout()).day(date, state, sel)
				return nil
			})
		},
	}
}

func newMarkCmd(open openFunc) *cobra.Command {
	var morning, evening bool

	cmd := &cobra.Command{
		Use:   "mark [date]",
		Short: "Record the meals taken on a day (default today)",
		Long: `Record the meals taken on a day. The record is final: a day that is
already recorded must be unlocked before it can be marked again.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, open, func(rt *runtime) error {
				date, err := dateArg(args, rt.tracker.Today())
				if err != nil {
					return err
				}
				ctx := cmd.Context()

				var meals []core.Meal
				if morning {
					meals = append(meals, core.Morning)
				}
				if evening {
					meals = append(meals, core.Evening)
				}
				for _, meal := range meals {
					if _, err := rt.tracker.Toggle(ctx, date, meal); err != nil {
						if errors.Is(err, core.ErrDateLocked) {
							return fmt.Errorf("%s is already recorded, unlock it first: %w", date, err)
						}
						return err
					}
				}

				res, err := rt.tracker.Commit(ctx, date)
				if err != nil {
					return err
				}
				p := newPrinter(cmd.OutOrStdout())
				if res.Adopted {
					p.done("%s was already recorded, keeping the stored selections.", date)
				} else {
					p.done("Recorded %s.", date)
				}
				p.day(date, core.Locked, res.Record.Selections())
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&morning, "morning", false, "the morning meal was taken")
	cmd.Flags().BoolVar(&evening, "evening", false, "the evening meal was taken")
	return cmd
}

func newHistoryCmd(open openFunc) *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded days, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rng, err := rangeFlags(from, to)
			if err != nil {
				return err
			}
			return withRuntime(cmd, open, func(rt *runtime) error {
				ctx := cmd.Context()
				records, err := rt.tracker.Records(ctx, rng)
				if err != nil {
					return err
				}
				p := newPrinter(cmd.OutOrStdout())
				p.records(records)
				fmt.Fprintln(p.out)
				p.aggregates(rng, core.Summarize(records, rng))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "first date to include (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "last date to include (YYYY-MM-DD)")
	return cmd
}

func newStatsCmd(open openFunc) *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show meal totals over a date range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rng, err := rangeFlags(from, to)
			if err != nil {
				return err
			}
			return withRuntime(cmd, open, func(rt *runtime) error {
				agg, err := rt.tracker.Aggregates(cmd.Context(), rng)
				if err != nil {
					return err
				}
				newPrinter(cmd.OutOrStdout()).aggregates(rng, agg)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "first date to include (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "last date to include (YYYY-MM-DD)")
	return cmd
}
