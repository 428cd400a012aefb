package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"nutrilog/internal/app"
	"nutrilog/internal/logbook"
)

func newWaterCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "water",
		Short: "Track daily water intake",
	}
	cmd.AddCommand(newWaterChangeCommand(ctx, "add", "Add water (default one glass)", (*logbook.WaterLog).Add))
	cmd.AddCommand(newWaterChangeCommand(ctx, "remove", "Remove water (default one glass)", (*logbook.WaterLog).Subtract))
	cmd.AddCommand(newWaterSetCommand(ctx))
	cmd.AddCommand(newWaterShowCommand(ctx))
	return cmd
}

type waterChange func(*logbook.WaterLog, context.Context, time.Time, int) (logbook.Water, error)

func newWaterChangeCommand(ctx *commandContext, use, short string, change waterChange) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   use + " [ml]",
		Short: short,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := parseDay(date)
			if err != nil {
				return err
			}
			return ctx.withApp(cmd, func(c context.Context, a *app.App) error {
				ml := a.Config.Water.GlassML
				if len(args) == 1 {
					if ml, err = strconv.Atoi(args[0]); err != nil {
						return fmt.Errorf("invalid amount %q", args[0])
					}
				}
				if _, err := change(a.Book.Water, c, day, ml); err != nil {
					return err
				}
				printWater(cmd, a, day)
				return nil
			})
		},
	}
	addDateFlag(cmd, &date)
	return cmd
}

func newWaterSetCommand(ctx *commandContext) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "set <ml>",
		Short: "Overwrite the day's water total",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := parseDay(date)
			if err != nil {
				return err
			}
			ml, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid amount %q", args[0])
			}
			return ctx.withApp(cmd, func(c context.Context, a *app.App) error {
				if _, err := a.Book.Water.Set(c, day, ml); err != nil {
					return err
				}
				printWater(cmd, a, day)
				return nil
			})
		},
	}
	addDateFlag(cmd, &date)
	return cmd
}

func newWaterShowCommand(ctx *commandContext) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the day's water intake",
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := parseDay(date)
			if err != nil {
				return err
			}
			return ctx.withApp(cmd, func(_ context.Context, a *app.App) error {
				printWater(cmd, a, day)
				return nil
			})
		},
	}
	addDateFlag(cmd, &date)
	return cmd
}

func printWater(cmd *cobra.Command, a *app.App, day time.Time) {
	s := a.Daily.Summary(day)
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d ml, %d glasses (%.0f%% of %d ml)\n",
		s.Day, s.WaterML, s.WaterGlasses, s.WaterProgress*100, a.Config.Water.GoalML)
}
