package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"nutrilog/internal/app"
	"nutrilog/internal/logbook"
)

func newRecordCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "record",
		Short: "Log an entry with known values",
	}
	cmd.AddCommand(newRecordMealCommand(ctx))
	cmd.AddCommand(newRecordExerciseCommand(ctx))
	return cmd
}

func newRecordMealCommand(ctx *commandContext) *cobra.Command {
	var (
		date     string
		emoji    string
		quantity int
		n        logbook.Nutrients
	)
	cmd := &cobra.Command{
		Use:   "meal <name>",
		Short: "Log a meal",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := parseDay(date)
			if err != nil {
				return err
			}
			return ctx.withApp(cmd, func(c context.Context, a *app.App) error {
				meal, err := a.Pipeline.RecordMeal(c, logbook.Meal{
					Name:      strings.Join(args, " "),
					Nutrients: n,
					Emoji:     emoji,
					Date:      day,
					Quantity:  quantity,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s logged (%d kcal) %s\n", meal.Emoji, meal.Name, meal.Displayed().Calories, meal.ID)
				return nil
			})
		},
	}
	addDateFlag(cmd, &date)
	flags := cmd.Flags()
	flags.IntVar(&n.Calories, "calories", 0, "Calories per serving")
	flags.Float64Var(&n.Protein, "protein", 0, "Protein in grams")
	flags.Float64Var(&n.Fat, "fat", 0, "Fat in grams")
	flags.Float64Var(&n.Carbs, "carbs", 0, "Carbohydrates in grams")
	flags.Float64Var(&n.Sugar, "sugar", 0, "Sugar in grams")
	flags.Float64Var(&n.Fiber, "fiber", 0, "Fiber in grams")
	flags.Float64Var(&n.Sodium, "sodium", 0, "Sodium in milligrams")
	flags.IntVarP(&quantity, "quantity", "q", 1, "Number of servings")
	flags.StringVar(&emoji, "emoji", "", "Emoji (chosen from the name when empty)")
	return cmd
}

func newRecordExerciseCommand(ctx *commandContext) *cobra.Command {
	var (
		date     string
		calories int
		minutes  int
		kind     string
	)
	cmd := &cobra.Command{
		Use:   "exercise <name>",
		Short: "Log an exercise",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := parseDay(date)
			if err != nil {
				return err
			}
			return ctx.withApp(cmd, func(c context.Context, a *app.App) error {
				ex, err := a.Pipeline.RecordExercise(c, logbook.Exercise{
					Name:            strings.Join(args, " "),
					Type:            logbook.ExerciseType(strings.TrimSpace(kind)),
					DurationMinutes: minutes,
					CaloriesBurned:  calories,
					Date:            day,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s logged (%d kcal burned) %s\n", ex.Emoji, ex.Name, ex.CaloriesBurned, ex.ID)
				return nil
			})
		},
	}
	addDateFlag(cmd, &date)
	cmd.Flags().IntVar(&calories, "calories", 0, "Calories burned")
	cmd.Flags().IntVarP(&minutes, "minutes", "m", 0, "Duration in minutes")
	cmd.Flags().StringVar(&kind, "type", "", "Exercise type (running, strength, manual_entry)")
	return cmd
}
