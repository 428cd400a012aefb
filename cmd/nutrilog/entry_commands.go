package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"nutrilog/internal/app"
	"nutrilog/internal/logbook"
)

func newQuantityCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "quantity <meal-id> <servings>",
		Short: "Set how many servings a meal represents",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			servings, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid servings %q", args[1])
			}
			return ctx.withApp(cmd, func(c context.Context, a *app.App) error {
				meal, err := a.Pipeline.SetMealQuantity(c, args[0], servings)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s ×%d = %d kcal\n", meal.Name, meal.Multiplier(), meal.Displayed().Calories)
				return nil
			})
		},
	}
}

func newEditCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Change a resolved entry",
	}
	cmd.AddCommand(newEditMealCommand(ctx))
	cmd.AddCommand(newEditExerciseCommand(ctx))
	return cmd
}

func newEditMealCommand(ctx *commandContext) *cobra.Command {
	var edit logbook.Meal
	cmd := &cobra.Command{
		Use:   "meal <id>",
		Short: "Edit a meal; omitted flags keep their values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, func(c context.Context, a *app.App) error {
				stored, ok := a.Book.Meals.Get(args[0])
				if !ok {
					return fmt.Errorf("meal %s: %w", args[0], logbook.ErrNotFound)
				}
				next := stored.Nutrients
				flags := cmd.Flags()
				overlay(flags.Changed("calories"), &next.Calories, edit.Calories)
				overlay(flags.Changed("protein"), &next.Protein, edit.Protein)
				overlay(flags.Changed("fat"), &next.Fat, edit.Fat)
				overlay(flags.Changed("carbs"), &next.Carbs, edit.Carbs)
				overlay(flags.Changed("sugar"), &next.Sugar, edit.Sugar)
				overlay(flags.Changed("fiber"), &next.Fiber, edit.Fiber)
				overlay(flags.Changed("sodium"), &next.Sodium, edit.Sodium)

				meal, err := a.Pipeline.UpdateMeal(c, logbook.Meal{
					ID:        stored.ID,
					Name:      edit.Name,
					Emoji:     edit.Emoji,
					Nutrients: next,
					Comment:   stored.Comment,
				})
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), renderTable(mealHeaders, mealRows([]logbook.Meal{meal}, nil), mealAligns, nil)+"\n")
				return nil
			})
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&edit.Name, "name", "", "Meal name")
	flags.StringVar(&edit.Emoji, "emoji", "", "Emoji")
	flags.IntVar(&edit.Calories, "calories", 0, "Calories per serving")
	flags.Float64Var(&edit.Protein, "protein", 0, "Protein in grams")
	flags.Float64Var(&edit.Fat, "fat", 0, "Fat in grams")
	flags.Float64Var(&edit.Carbs, "carbs", 0, "Carbohydrates in grams")
	flags.Float64Var(&edit.Sugar, "sugar", 0, "Sugar in grams")
	flags.Float64Var(&edit.Fiber, "fiber", 0, "Fiber in grams")
	flags.Float64Var(&edit.Sodium, "sodium", 0, "Sodium in milligrams")
	return cmd
}

func newEditExerciseCommand(ctx *commandContext) *cobra.Command {
	var edit logbook.Exercise
	cmd := &cobra.Command{
		Use:   "exercise <id>",
		Short: "Edit an exercise; omitted flags keep their values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, func(c context.Context, a *app.App) error {
				stored, ok := a.Book.Exercises.Get(args[0])
				if !ok {
					return fmt.Errorf("exercise %s: %w", args[0], logbook.ErrNotFound)
				}
				next := logbook.Exercise{
					ID:              stored.ID,
					Name:            edit.Name,
					Intensity:       stored.Intensity,
					DurationMinutes: stored.DurationMinutes,
					CaloriesBurned:  stored.CaloriesBurned,
					Comment:         stored.Comment,
				}
				overlay(cmd.Flags().Changed("calories"), &next.CaloriesBurned, edit.CaloriesBurned)
				overlay(cmd.Flags().Changed("minutes"), &next.DurationMinutes, edit.DurationMinutes)

				ex, err := a.Pipeline.UpdateExercise(c, next)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), renderTable(exerciseHeaders, exerciseRows([]logbook.Exercise{ex}, nil), exerciseAligns, nil)+"\n")
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&edit.Name, "name", "", "Exercise name")
	cmd.Flags().IntVar(&edit.CaloriesBurned, "calories", 0, "Calories burned")
	cmd.Flags().IntVarP(&edit.DurationMinutes, "minutes", "m", 0, "Duration in minutes")
	return cmd
}

func overlay[T any](changed bool, dst *T, v T) {
	if changed {
		*dst = v
	}
}

func newDeleteCommand(ctx *commandContext) *cobra.Command {
	var exercise bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a meal (or exercise with --exercise)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, func(c context.Context, a *app.App) error {
				var err error
				if exercise {
					err = a.Pipeline.DeleteExercise(c, args[0])
				} else {
					err = a.Pipeline.DeleteMeal(c, args[0])
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&exercise, "exercise", false, "Delete from the exercise log")
	return cmd
}

func newCancelCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <id>",
		Short: "Discard an entry that is still analyzing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, func(c context.Context, a *app.App) error {
				ok, err := a.Pipeline.Cancel(c, args[0])
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintf(cmd.OutOrStdout(), "%s is not analyzing\n", args[0])
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cancelled %s\n", args[0])
				return nil
			})
		},
	}
}
