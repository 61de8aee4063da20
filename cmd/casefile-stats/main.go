package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/fatih/color"

	"github.com/casefile-io/casefile/pkg/casefile/config"
	"github.com/casefile-io/casefile/pkg/casefile/store/sqlite"
)

func main() {
	dbPath := flag.String("db", "", "Database path (overrides CASEFILE_DB)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}

	ctx := context.Background()
	st, err := sqlite.Open(ctx, cfg.DBPath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer st.Close()

	counts, err := st.Counts(ctx)
	if err != nil {
		log.Fatalf("read counts: %v", err)
	}

	heading := color.New(color.FgCyan, color.Bold)
	label := color.New(color.FgWhite)

	heading.Println("Archive enrichment status")
	fmt.Println()
	label.Printf("  entities:              %d\n", counts.Entities)
	label.Printf("  people:                %d\n", counts.People)
	label.Printf("  organizations:         %d\n", counts.Organizations)
	label.Printf("  documents enriched:    %d\n", counts.EnrichedDocuments)
	label.Printf("  documents classified:  %d\n", counts.ClassifiedDocuments)
	label.Printf("  timeline events:       %d\n", counts.TimelineEvents)

	run, ok, err := st.LatestRun(ctx)
	if err != nil {
		log.Fatalf("read latest run: %v", err)
	}
	if !ok {
		fmt.Println()
		color.Yellow("no pipeline runs recorded")
		return
	}

	fmt.Println()
	heading.Println("Latest run")
	fmt.Println()
	label.Printf("  run id:   %s\n", run.ID)
	label.Printf("  status:   %s\n", statusColored(run.Status))
	label.Printf("  started:  %s\n", run.StartedAt.Format(time.RFC3339))
	if !run.FinishedAt.IsZero() {
		label.Printf("  finished: %s\n", run.FinishedAt.Format(time.RFC3339))
	}
	for _, mark := range run.Stages {
		label.Printf("    %-20s %s\n", mark.Stage, mark.CompletedAt.Format(time.RFC3339))
	}
}

func statusColored(status string) string {
	switch status {
	case "succeeded":
		return color.GreenString(status)
	case "failed":
		return color.RedString(status)
	default:
		return color.YellowString(status)
	}
}
