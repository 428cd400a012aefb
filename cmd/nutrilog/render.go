package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"nutrilog/internal/events"
	"nutrilog/internal/logbook"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const progressBarWidth = 24

var timeNow = time.Now

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func severityColor(s events.Severity) string {
	switch s.Color() {
	case "green":
		return ansiGreen
	case "orange":
		return ansiYellow
	case "red":
		return ansiRed
	default:
		return ansiBlue
	}
}

func renderToast(t events.ToastRequested, colorize bool) string {
	line := fmt.Sprintf("[%s] %s", strings.ToUpper(string(t.Severity)), t.Message)
	if colorize {
		return severityColor(t.Severity) + line + ansiReset
	}
	return line
}

// renderProgress draws a single-line bar, e.g. "[#####.....]  50% label".
func renderProgress(percent int, label string) string {
	percent = max(0, min(100, percent))
	filled := percent * progressBarWidth / 100
	bar := strings.Repeat("#", filled) + strings.Repeat(".", progressBarWidth-filled)
	return fmt.Sprintf("[%s] %3d%% %s", bar, percent, label)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func mealStatus(m logbook.Meal) string {
	switch {
	case m.IsAnalyzing && m.HasTimedOut(timeNow()):
		return "timed out"
	case m.IsAnalyzing:
		return "analyzing"
	case m.IsAnalyzingError:
		return "estimated"
	default:
		return ""
	}
}

func exerciseStatus(e logbook.Exercise) string {
	switch {
	case e.IsAnalyzing && e.HasTimedOut(timeNow()):
		return "timed out"
	case e.IsAnalyzing:
		return "analyzing"
	case e.IsAnalyzingError:
		return "estimated"
	default:
		return ""
	}
}

// mealRows renders meals for the meal table. saved, when non-nil, marks
// meals that have a template with a star.
func mealRows(meals []logbook.Meal, saved func(name string) bool) [][]string {
	rows := make([][]string, 0, len(meals))
	for _, m := range meals {
		shown := m.Displayed()
		name := m.Emoji + " " + m.Name
		if saved != nil && !m.IsAnalyzing && saved(m.Name) {
			name += " ★"
		}
		if m.Multiplier() > 1 {
			name = fmt.Sprintf("%s ×%d", name, m.Multiplier())
		}
		rows = append(rows, []string{
			m.Time.Local().Format("15:04"),
			name,
			strconv.Itoa(shown.Calories),
			formatFloat(shown.Protein),
			formatFloat(shown.Fat),
			formatFloat(shown.Carbs),
			mealStatus(m),
			m.ID,
		})
	}
	return rows
}

func exerciseRows(items []logbook.Exercise, saved func(name string) bool) [][]string {
	rows := make([][]string, 0, len(items))
	for _, e := range items {
		name := e.Emoji + " " + e.Name
		if saved != nil && !e.IsAnalyzing && saved(e.Name) {
			name += " ★"
		}
		rows = append(rows, []string{
			e.Time.Local().Format("15:04"),
			name,
			strconv.Itoa(e.DurationMinutes),
			strconv.Itoa(e.CaloriesBurned),
			exerciseStatus(e),
			e.ID,
		})
	}
	return rows
}

var (
	mealHeaders     = []string{"Time", "Meal", "kcal", "Protein", "Fat", "Carbs", "Status", "ID"}
	mealAligns      = []columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignLeft, alignLeft}
	exerciseHeaders = []string{"Time", "Exercise", "Minutes", "kcal", "Status", "ID"}
	exerciseAligns  = []columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft, alignLeft}
)
