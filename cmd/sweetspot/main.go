// Command sweetspot prints a one-shot sleep prediction without a server.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/keyurgolani/BabyNest-sub006/internal/sweetspot"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, time.Now()); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer, now time.Time) error {
	fs := flag.NewFlagSet("sweetspot", flag.ContinueOnError)
	fs.SetOutput(out)
	dob := fs.String("dob", "", "Date of birth (YYYY-MM-DD)")
	lastWake := fs.String("last-wake", "", "When the last sleep ended: RFC3339 time, HH:MM today, or a duration ago such as 90m")
	personalized := fs.Int("personalized", 0, "Personalized wake window in minutes")
	points := fs.Int("points", 0, "Number of historical wake windows behind -personalized")
	tableFile := fs.String("table-file", "", "YAML wake window table to use instead of the built-in one")
	showTable := fs.Bool("table", false, "Print the wake window table and exit")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := sweetspot.DefaultEngineConfig()
	cfg.Location = now.Location()
	if *tableFile != "" {
		table, err := sweetspot.LoadTableYAML(*tableFile)
		if err != nil {
			return err
		}
		cfg.Table = table
	}
	engine := sweetspot.NewEngine(cfg)

	if *showTable {
		printTable(out, engine.Table())
		return nil
	}

	in := sweetspot.Input{AgeMonths: sweetspot.UnknownAge}
	if *dob != "" {
		born, err := time.ParseInLocation(time.DateOnly, *dob, now.Location())
		if err != nil {
			return fmt.Errorf("invalid -dob: %w", err)
		}
		if in.AgeMonths, err = sweetspot.AgeInMonths(born, now); err != nil {
			return fmt.Errorf("invalid -dob: %w", err)
		}
	}
	if *lastWake != "" {
		t, err := parseLastWake(*lastWake, now)
		if err != nil {
			return fmt.Errorf("invalid -last-wake: %w", err)
		}
		in.LastSleepEnd = t
	}
	if *personalized > 0 {
		in.Personalized = &sweetspot.PersonalizedWindow{WakeWindow: *personalized, DataPoints: *points}
	}

	printPrediction(out, engine.Predict(in, now), engine.Table().Guidance(in.AgeMonths))
	return nil
}

func parseLastWake(v string, now time.Time) (time.Time, error) {
	if d, err := time.ParseDuration(v); err == nil {
		return now.Add(-d), nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	clock, err := time.ParseInLocation("15:04", v, now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognized time %q", v)
	}
	t := time.Date(now.Year(), now.Month(), now.Day(), clock.Hour(), clock.Minute(), 0, 0, now.Location())
	if t.After(now) {
		t = t.AddDate(0, 0, -1)
	}
	return t, nil
}

func statusColor(s sweetspot.Status) *color.Color {
	switch s {
	case sweetspot.StatusWellRested:
		return color.New(color.FgGreen, color.Bold)
	case sweetspot.StatusApproachingTired:
		return color.New(color.FgYellow, color.Bold)
	case sweetspot.StatusOvertired:
		return color.New(color.FgRed, color.Bold)
	default:
		return color.New(color.FgHiBlack)
	}
}

func printPrediction(out io.Writer, p sweetspot.Prediction, guidance string) {
	label := strings.ReplaceAll(string(p.Status), "_", " ")
	statusColor(p.Status).Fprintf(out, "%s\n", strings.ToUpper(label))
	fmt.Fprintln(out, sweetspot.StatusMessage(p))
	if p.Ready() {
		fmt.Fprintf(out, "Awake:      %s\n", sweetspot.FormatDuration(p.CurrentAwakeMinutes))
		fmt.Fprintf(out, "Next %-6s %s (%s)\n", string(p.SleepType)+":", p.PredictedSleepTime.Format("15:04"), sweetspot.FormatTimeUntilSleep(p.MinutesUntilSleep))
		fmt.Fprintf(out, "Window:     %s to %s\n", sweetspot.FormatDuration(p.RecommendedRange.Min), sweetspot.FormatDuration(p.RecommendedRange.Max))
		fmt.Fprintf(out, "Confidence: %s\n", p.Confidence)
	}
	color.New(color.FgHiBlack).Fprintln(out, guidance)
}

func printTable(out io.Writer, t sweetspot.Table) {
	color.New(color.Bold).Fprintf(out, "%-10s %s\n", "AGE", "WAKE WINDOW")
	for i, bp := range t {
		age := fmt.Sprintf("%dm+", bp.FromMonths)
		if i+1 < len(t) {
			age = fmt.Sprintf("%d-%dm", bp.FromMonths, t[i+1].FromMonths-1)
		}
		fmt.Fprintf(out, "%-10s %s to %s\n", age, sweetspot.FormatDuration(bp.Range.Min), sweetspot.FormatDuration(bp.Range.Max))
	}
}
