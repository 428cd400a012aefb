package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"nutrilog/internal/app"
	"nutrilog/internal/config"
	"nutrilog/internal/events"
	"nutrilog/internal/logbook"
)

// settleGrace is how long the CLI waits past the analysis timeout for a
// submission to settle.
const settleGrace = 10 * time.Second

const toastGrace = time.Second

// analysisWait bounds a foreground analysis by the configured deadline.
func analysisWait(cfg *config.Config) time.Duration {
	return cfg.AnalysisTimeout() + settleGrace
}

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Log an entry and estimate it in the background",
	}
	cmd.AddCommand(newAnalyzeTextCommand(ctx))
	cmd.AddCommand(newAnalyzeImageCommand(ctx))
	cmd.AddCommand(newAnalyzeExerciseCommand(ctx))
	return cmd
}

func newAnalyzeTextCommand(ctx *commandContext) *cobra.Command {
	var date string
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "text <description>",
		Short: "Estimate a meal from a description",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := parseDay(date)
			if err != nil {
				return err
			}
			description := strings.Join(args, " ")
			return ctx.withApp(cmd, func(c context.Context, a *app.App) error {
				return runAnalysis(c, cmd, a, logbook.DomainMeal, asJSON, func() (string, error) {
					return a.Pipeline.SubmitTextAnalysis(c, description, day)
				})
			})
		},
	}
	addDateFlag(cmd, &date)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the resolved entry as JSON")
	return cmd
}

func newAnalyzeImageCommand(ctx *commandContext) *cobra.Command {
	var date string
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "image <path>",
		Short: "Estimate a meal from a photo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := parseDay(date)
			if err != nil {
				return err
			}
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read photo: %w", err)
			}
			return ctx.withApp(cmd, func(c context.Context, a *app.App) error {
				return runAnalysis(c, cmd, a, logbook.DomainMeal, asJSON, func() (string, error) {
					return a.Pipeline.SubmitImageAnalysis(c, raw, day)
				})
			})
		},
	}
	addDateFlag(cmd, &date)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the resolved entry as JSON")
	return cmd
}

func newAnalyzeExerciseCommand(ctx *commandContext) *cobra.Command {
	var date string
	var minutes int
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "exercise <description>",
		Short: "Estimate calories burned by an activity",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := parseDay(date)
			if err != nil {
				return err
			}
			description := strings.Join(args, " ")
			return ctx.withApp(cmd, func(c context.Context, a *app.App) error {
				return runAnalysis(c, cmd, a, logbook.DomainExercise, asJSON, func() (string, error) {
					return a.Pipeline.SubmitExerciseAnalysis(c, description, minutes, day)
				})
			})
		},
	}
	addDateFlag(cmd, &date)
	cmd.Flags().IntVarP(&minutes, "minutes", "m", 30, "Duration in minutes")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the resolved entry as JSON")
	return cmd
}

// runAnalysis submits through submit and blocks until the entry is resolved
// or removed. Interrupting the command cancels the submission.
func runAnalysis(ctx context.Context, cmd *cobra.Command, a *app.App, domain logbook.Domain, asJSON bool, submit func() (string, error)) error {
	feed := make(chan events.Event, 64)
	sub := a.Bus.SubscribeFunc(func(ev events.Event) {
		select {
		case feed <- ev:
		default:
		}
	}, events.KindEntryUpdated, events.KindEntryRemoved, events.KindAnalysisProgress, events.KindToastRequested)
	defer sub.Cancel()

	id, err := submit()
	if err != nil {
		return err
	}

	stderr := cmd.ErrOrStderr()
	live := shouldColorize(stderr)
	colorize := shouldColorize(cmd.OutOrStdout())
	locale := a.Pipeline.Locale()
	var toast *events.ToastRequested

	wait := analysisWait(a.Config)
	timeout := time.NewTimer(wait)
	defer timeout.Stop()

	for {
		select {
		case <-ctx.Done():
			if _, cerr := a.Pipeline.Cancel(context.WithoutCancel(ctx), id); cerr != nil {
				return errors.Join(ctx.Err(), cerr)
			}
			return ctx.Err()
		case <-timeout.C:
			return fmt.Errorf("entry %s did not settle within %s", id, wait)
		case ev := <-feed:
			switch e := ev.(type) {
			case events.AnalysisProgress:
				if live && e.ID == id {
					fmt.Fprintf(stderr, "\r%s", renderProgress(e.Percent, locale.PhaseLabel(e.Phase)))
				}
			case events.ToastRequested:
				toast = &e
			case events.EntryRemoved:
				if e.ID == id {
					clearProgress(stderr, live)
					return fmt.Errorf("entry %s was removed before analysis finished", id)
				}
			case events.EntryUpdated:
				if e.ID != id {
					continue
				}
				clearProgress(stderr, live)
				if toast == nil {
					toast = awaitToast(feed, toastGrace)
				}
				if toast != nil && !asJSON {
					fmt.Fprintln(cmd.OutOrStdout(), renderToast(*toast, colorize))
				}
				return printEntry(cmd, a, domain, id, asJSON)
			}
		}
	}
}

// awaitToast picks up the toast published in the same batch as the update.
func awaitToast(feed <-chan events.Event, grace time.Duration) *events.ToastRequested {
	timer := time.NewTimer(grace)
	defer timer.Stop()
	for {
		select {
		case ev := <-feed:
			if t, ok := ev.(events.ToastRequested); ok {
				return &t
			}
		case <-timer.C:
			return nil
		}
	}
}

func clearProgress(w io.Writer, live bool) {
	if live {
		fmt.Fprint(w, "\r\x1b[2K")
	}
}

func printEntry(cmd *cobra.Command, a *app.App, domain logbook.Domain, id string, asJSON bool) error {
	out := cmd.OutOrStdout()
	switch domain {
	case logbook.DomainExercise:
		ex, ok := a.Book.Exercises.Get(id)
		if !ok {
			return fmt.Errorf("exercise %s: %w", id, logbook.ErrNotFound)
		}
		if asJSON {
			return writeJSON(cmd, ex)
		}
		fmt.Fprint(out, renderTable(exerciseHeaders, exerciseRows([]logbook.Exercise{ex}, nil), exerciseAligns, nil))
	default:
		meal, ok := a.Book.Meals.Get(id)
		if !ok {
			return fmt.Errorf("meal %s: %w", id, logbook.ErrNotFound)
		}
		if asJSON {
			return writeJSON(cmd, meal)
		}
		fmt.Fprint(out, renderTable(mealHeaders, mealRows([]logbook.Meal{meal}, nil), mealAligns, nil))
		if meal.Comment != "" {
			fmt.Fprintf(out, "\n%s\n", meal.Comment)
		}
	}
	fmt.Fprintln(out)
	return nil
}
