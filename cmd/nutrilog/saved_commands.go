package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"nutrilog/internal/app"
)

func newSavedCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "saved",
		Short: "Manage reusable meal and exercise templates",
	}
	cmd.AddCommand(newSavedListCommand(ctx))
	cmd.AddCommand(newSavedAddCommand(ctx))
	cmd.AddCommand(newSavedUseCommand(ctx))
	return cmd
}

func newSavedListCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, func(_ context.Context, a *app.App) error {
				meals := a.Book.SavedMeals.All()
				exercises := a.Book.SavedExercises.All()
				if asJSON {
					return writeJSON(cmd, map[string]any{"meals": meals, "exercises": exercises})
				}
				if len(meals) == 0 && len(exercises) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No saved templates")
					return nil
				}
				rows := make([][]string, 0, len(meals)+len(exercises))
				for _, m := range meals {
					rows = append(rows, []string{"meal", m.Emoji + " " + m.Name, strconv.Itoa(m.Calories), m.ID})
				}
				for _, e := range exercises {
					rows = append(rows, []string{"exercise", e.Emoji + " " + e.Name, strconv.Itoa(e.CaloriesBurned), e.ID})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Kind", "Name", "kcal", "ID"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
					nil,
				))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	return cmd
}

func newSavedAddCommand(ctx *commandContext) *cobra.Command {
	var exercise bool
	cmd := &cobra.Command{
		Use:   "add <entry-id>",
		Short: "Save a logged entry as a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, func(c context.Context, a *app.App) error {
				var name, id string
				if exercise {
					saved, err := a.Pipeline.SaveExerciseTemplate(c, args[0])
					if err != nil {
						return err
					}
					name, id = saved.Name, saved.ID
				} else {
					saved, err := a.Pipeline.SaveMealTemplate(c, args[0])
					if err != nil {
						return err
					}
					name, id = saved.Name, saved.ID
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved %s as %s\n", name, id)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&exercise, "exercise", false, "Save from the exercise log")
	return cmd
}

func newSavedUseCommand(ctx *commandContext) *cobra.Command {
	var exercise bool
	var date string
	cmd := &cobra.Command{
		Use:   "use <saved-id>",
		Short: "Log a new entry from a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := parseDay(date)
			if err != nil {
				return err
			}
			return ctx.withApp(cmd, func(c context.Context, a *app.App) error {
				if exercise {
					ex, err := a.Pipeline.RecordFromSavedExercise(c, args[0], day)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s %s logged (%d kcal burned) %s\n", ex.Emoji, ex.Name, ex.CaloriesBurned, ex.ID)
					return nil
				}
				meal, err := a.Pipeline.RecordFromSavedMeal(c, args[0], day)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s logged (%d kcal) %s\n", meal.Emoji, meal.Name, meal.Displayed().Calories, meal.ID)
				return nil
			})
		},
	}
	addDateFlag(cmd, &date)
	cmd.Flags().BoolVar(&exercise, "exercise", false, "Use an exercise template")
	return cmd
}
