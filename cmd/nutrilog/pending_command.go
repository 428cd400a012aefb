package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"nutrilog/internal/app"
)

// newPendingCommand lists entries still flagged as analyzing on any day,
// including ones left behind by an interrupted run.
func newPendingCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "pending",
		Short: "List entries that are still analyzing",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, func(_ context.Context, a *app.App) error {
				meals := a.Book.Meals.Pending()
				exercises := a.Book.Exercises.Pending()
				out := cmd.OutOrStdout()
				if len(meals) == 0 && len(exercises) == 0 {
					fmt.Fprintln(out, "Nothing is analyzing")
					return nil
				}
				if len(meals) > 0 {
					fmt.Fprintln(out, renderTable(mealHeaders, mealRows(meals, nil), mealAligns, nil))
				}
				if len(exercises) > 0 {
					fmt.Fprintln(out, renderTable(exerciseHeaders, exerciseRows(exercises, nil), exerciseAligns, nil))
				}
				fmt.Fprintln(out, "Use 'nutrilog cancel <id>' to discard a stale entry.")
				return nil
			})
		},
	}
}
