package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"study-tracker/internal/models"
	"study-tracker/internal/seed"
	"study-tracker/internal/storage"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("seedplan", flag.ContinueOnError)
	fs.SetOutput(stderr)

	weeks := fs.Int("weeks", 24, "Number of weeks to generate")
	goal := fs.Int("goal", -1, "Weekly goal in minutes (-1 keeps the stored goal)")
	dbPath := fs.String("db", "study.db", "Path to the local cache file")
	outPath := fs.String("out", "", "Write the plan to a JSON file instead of the local cache")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *weeks < 1 {
		return fmt.Errorf("weeks must be at least 1")
	}

	plan := seed.Generate(*weeks, time.Now())

	if *outPath != "" {
		g := *goal
		if g < 0 {
			g = 0
		}
		data, err := models.EncodePlan(&models.Plan{Sessions: plan, WeeklyGoal: g})
		if err != nil {
			return fmt.Errorf("failed to encode plan: %w", err)
		}
		if err := os.WriteFile(*outPath, data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", *outPath, err)
		}
		fmt.Fprintf(stdout, "Wrote %d sessions to %s\n", len(plan), *outPath)
		return nil
	}

	// Allow overriding db path via env var if not explicitly set via flag (flag default is used)
	if path := os.Getenv("DB_PATH"); path != "" && *dbPath == "study.db" {
		*dbPath = path
	}

	cache, err := storage.NewCache(*dbPath)
	if err != nil {
		return fmt.Errorf("failed to open local cache: %w", err)
	}
	defer cache.Close()

	if err := cache.ReplaceSessions(plan); err != nil {
		return fmt.Errorf("failed to write plan: %w", err)
	}
	if *goal >= 0 {
		if err := cache.SetWeeklyGoal(*goal); err != nil {
			return fmt.Errorf("failed to store weekly goal: %w", err)
		}
	}

	fmt.Fprintf(stdout, "Seeded %d sessions (%d weeks) into %s\n", len(plan), *weeks, *dbPath)
	return nil
}
