// Command deadline-reminders notifies reviewers whose review deadline falls
// inside the reminder window.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"conference-review-api/config"
	"conference-review-api/services"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config.InitDB()

	var (
		windowHours int
		limit       int
		dryRun      bool
		trigger     string
		lockName    string
	)

	flag.IntVar(&windowHours, "window-hours", 48, "remind reviewers whose deadline is within this many hours")
	flag.IntVar(&limit, "limit", 0, "maximum number of assignments to process (optional)")
	flag.BoolVar(&dryRun, "dry-run", false, "scan assignments without sending anything")
	flag.StringVar(&trigger, "trigger", "cli", "trigger source label stored in reminder_runs")
	flag.StringVar(&lockName, "lock-name", "reminder_job", "MySQL advisory lock name (empty to disable)")
	flag.Parse()

	if windowHours <= 0 {
		log.Fatal("window-hours must be greater than 0")
	}
	if limit < 0 {
		log.Fatal("limit must be greater than or equal to 0")
	}

	job := services.NewReminderJobService(nil, nil, services.MailNotifier{})
	summary, err := job.Run(context.Background(), &services.ReminderJobInput{
		Window:        time.Duration(windowHours) * time.Hour,
		Limit:         limit,
		TriggerSource: trigger,
		LockName:      lockName,
		DryRun:        dryRun,
		RecordRun:     !dryRun,
	})
	if err != nil {
		if errors.Is(err, services.ErrReminderJobAlreadyRunning) {
			log.Fatal("reminder job already running (advisory lock held)")
		}
		log.Fatalf("reminder job failed: %v", err)
	}

	fmt.Printf("Assignments scanned: %d\n", summary.AssignmentsScanned)
	fmt.Printf("Reminders sent: %d, failed: %d\n", summary.RemindersSent, summary.RemindersFailed)

	if dryRun {
		fmt.Println("Dry run complete. No reminders were sent.")
	}

	if summary.RemindersFailed > 0 {
		os.Exit(2)
	}
}
