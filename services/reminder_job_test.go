package services

import (
	"context"
	"database/sql/driver"
	"regexp"
	"testing"
	"time"
)

var dueAssignmentsPattern = regexp.MustCompile("(?i)SELECT .* FROM .review_assignments. JOIN users")

func dueRow(assignmentID, submissionID, reviewerID int64, deadline time.Time) []driver.Value {
	return []driver.Value{assignmentID, submissionID, reviewerID, deadline, "reviewer@example.org", "Ada", "Adaptive Mesh Refinement"}
}

func dueColumns() []string {
	return []string{"assignment_id", "submission_id", "reviewer_id", "deadline", "reviewer_email", "reviewer_fname", "title"}
}

func TestReminderJobDryRunScansWithoutSending(t *testing.T) {
	now := time.Date(2026, 6, 20, 9, 0, 0, 0, time.UTC)
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: dueAssignmentsPattern,
			columns: dueColumns(),
			rows:    [][]driver.Value{dueRow(11, 1, 5, now.Add(24*time.Hour))},
		},
	}
	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	notifier := &recordingNotifier{}
	job := NewReminderJobService(db, FixedClock{Instant: now}, notifier)

	summary, err := job.Run(context.Background(), &ReminderJobInput{
		Window: 48 * time.Hour,
		DryRun: true,
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if summary.AssignmentsScanned != 1 || summary.RemindersSent != 0 {
		t.Fatalf("dry run must scan without sending, got %+v", summary)
	}
	if len(notifier.kinds()) != 0 {
		t.Fatalf("dry run must not notify, got %v", notifier.kinds())
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestReminderJobNotifiesEachDueReviewer(t *testing.T) {
	now := time.Date(2026, 6, 20, 9, 0, 0, 0, time.UTC)
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: dueAssignmentsPattern,
			columns: dueColumns(),
			rows: [][]driver.Value{
				dueRow(11, 1, 5, now.Add(12*time.Hour)),
				dueRow(12, 2, 6, now.Add(36*time.Hour)),
			},
		},
		{kind: kindExec, pattern: regexp.MustCompile("(?i)INSERT INTO .notifications.")},
		{kind: kindExec, pattern: regexp.MustCompile("(?i)INSERT INTO .notifications.")},
	}
	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	notifier := &recordingNotifier{}
	job := NewReminderJobService(db, FixedClock{Instant: now}, notifier)

	summary, err := job.Run(context.Background(), &ReminderJobInput{Window: 48 * time.Hour})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if summary.RemindersSent != 2 || summary.RemindersFailed != 0 {
		t.Fatalf("expected 2 reminders sent, got %+v", summary)
	}
	for _, kind := range notifier.kinds() {
		if kind != NotifyDeadlineReminder {
			t.Fatalf("unexpected notification kind %s", kind)
		}
	}
	if len(notifier.kinds()) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(notifier.kinds()))
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestReminderJobRejectsNonPositiveWindow(t *testing.T) {
	db, _, cleanup := newScriptedGormDB(t, nil)
	defer cleanup()

	job := NewReminderJobService(db, FixedClock{Instant: time.Now()}, nil)
	if _, err := job.Run(context.Background(), &ReminderJobInput{}); err == nil {
		t.Fatal("expected error for zero window")
	}
}
