package main

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"nutrilog/internal/app"
	"nutrilog/internal/daily"
	"nutrilog/internal/logbook"
)

func newDayCommand(ctx *commandContext) *cobra.Command {
	var date string
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "day",
		Short: "Show the meals, exercises and totals of a day",
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := parseDay(date)
			if err != nil {
				return err
			}
			return ctx.withApp(cmd, func(_ context.Context, a *app.App) error {
				meals := a.Book.Meals.List(day)
				exercises := a.Book.Exercises.List(day)
				summary := a.Daily.Summary(day)
				if asJSON {
					return writeJSON(cmd, dayView{
						Meals:     meals,
						Exercises: exercises,
						Summary:   newSummaryView(summary),
					})
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%s\n\n", summary.Day)
				if len(meals) == 0 {
					fmt.Fprintln(out, "No meals logged")
				} else {
					total := summary.Nutrients
					footer := []string{"", "Total", strconv.Itoa(total.Calories), formatFloat(total.Protein),
						formatFloat(total.Fat), formatFloat(total.Carbs), "", ""}
					fmt.Fprintln(out, renderTable(mealHeaders, mealRows(meals, a.Book.SavedMeals.IsSaved), mealAligns, footer))
				}
				fmt.Fprintln(out)
				if len(exercises) == 0 {
					fmt.Fprintln(out, "No exercises logged")
				} else {
					footer := []string{"", "Total", "", strconv.Itoa(summary.Burned), "", ""}
					fmt.Fprintln(out, renderTable(exerciseHeaders, exerciseRows(exercises, a.Book.SavedExercises.IsSaved), exerciseAligns, footer))
				}
				fmt.Fprintln(out)
				fmt.Fprint(out, renderSummary(summary))
				return nil
			})
		},
	}
	addDateFlag(cmd, &date)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	return cmd
}

func newTotalsCommand(ctx *commandContext) *cobra.Command {
	var date string
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "totals",
		Short: "Show nutrient, burned and net calorie totals for a day",
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := parseDay(date)
			if err != nil {
				return err
			}
			return ctx.withApp(cmd, func(_ context.Context, a *app.App) error {
				summary := a.Daily.Summary(day)
				if asJSON {
					return writeJSON(cmd, newSummaryView(summary))
				}
				fmt.Fprint(cmd.OutOrStdout(), renderSummary(summary))
				return nil
			})
		},
	}
	addDateFlag(cmd, &date)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	return cmd
}

type dayView struct {
	Meals     []logbook.Meal     `json:"meals"`
	Exercises []logbook.Exercise `json:"exercises"`
	Summary   summaryView        `json:"summary"`
}

type summaryView struct {
	Day            string            `json:"day"`
	Nutrients      logbook.Nutrients `json:"nutrients"`
	Burned         int               `json:"burned"`
	Net            int               `json:"net"`
	BurnedByType   map[string]int    `json:"burnedByType,omitempty"`
	WaterML        int               `json:"waterMl"`
	WaterGlasses   int               `json:"waterGlasses"`
	WaterProgress  float64           `json:"waterProgress"`
	MealCount      int               `json:"mealCount"`
	ExerciseCount  int               `json:"exerciseCount"`
	PendingEntries int               `json:"pendingEntries"`
}

func newSummaryView(s daily.Summary) summaryView {
	view := summaryView{
		Day:            s.Day,
		Nutrients:      s.Nutrients,
		Burned:         s.Burned,
		Net:            s.Net,
		WaterML:        s.WaterML,
		WaterGlasses:   s.WaterGlasses,
		WaterProgress:  s.WaterProgress,
		MealCount:      s.MealCount,
		ExerciseCount:  s.ExerciseCount,
		PendingEntries: s.PendingEntries,
	}
	if len(s.BurnedByType) > 0 {
		view.BurnedByType = make(map[string]int, len(s.BurnedByType))
		for k, v := range s.BurnedByType {
			view.BurnedByType[string(k)] = v
		}
	}
	return view
}

func renderSummary(s daily.Summary) string {
	n := s.Nutrients
	rows := [][]string{
		{"Calories", strconv.Itoa(n.Calories) + " kcal"},
		{"Protein", formatFloat(n.Protein) + " g"},
		{"Fat", formatFloat(n.Fat) + " g"},
		{"Carbs", formatFloat(n.Carbs) + " g"},
		{"Sugar", formatFloat(n.Sugar) + " g"},
		{"Fiber", formatFloat(n.Fiber) + " g"},
		{"Sodium", formatFloat(n.Sodium) + " mg"},
		{"Burned", strconv.Itoa(s.Burned) + " kcal" + burnedBreakdown(s.BurnedByType)},
		{"Net", strconv.Itoa(s.Net) + " kcal"},
		{"Water", fmt.Sprintf("%d ml (%d glasses, %.0f%%)", s.WaterML, s.WaterGlasses, s.WaterProgress*100)},
	}
	if s.PendingEntries > 0 {
		rows = append(rows, []string{"Pending", strconv.Itoa(s.PendingEntries) + " not yet counted"})
	}
	return renderTable([]string{"Total", "Value"}, rows, []columnAlignment{alignLeft, alignRight}, nil) + "\n"
}

func burnedBreakdown(byType map[logbook.ExerciseType]int) string {
	if len(byType) < 2 {
		return ""
	}
	kinds := make([]string, 0, len(byType))
	for k := range byType {
		kinds = append(kinds, string(k))
	}
	slices.Sort(kinds)
	parts := make([]string, 0, len(kinds))
	for _, k := range kinds {
		parts = append(parts, fmt.Sprintf("%s %d", k, byType[logbook.ExerciseType(k)]))
	}
	return " (" + strings.Join(parts, ", ") + ")"
}
