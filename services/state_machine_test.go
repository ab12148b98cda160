package services

import (
	"regexp"
	"testing"
	"time"

	"conference-review-api/models"
)

var allStatuses = []models.SubmissionStatus{
	models.StatusDraft,
	models.StatusPendingAbstractReview,
	models.StatusAbstractRejected,
	models.StatusAbstractApproved,
	models.StatusFullPaperSubmitted,
	models.StatusUnderReview,
	models.StatusRevisionRequired,
	models.StatusAccepted,
	models.StatusRejected,
	models.StatusWithdrawn,
}

func TestCanTransitionMatchesTable(t *testing.T) {
	legal := map[models.SubmissionStatus][]models.SubmissionStatus{
		models.StatusDraft:                 {models.StatusPendingAbstractReview, models.StatusWithdrawn},
		models.StatusPendingAbstractReview: {models.StatusAbstractApproved, models.StatusAbstractRejected, models.StatusWithdrawn},
		models.StatusAbstractApproved:      {models.StatusFullPaperSubmitted, models.StatusUnderReview, models.StatusWithdrawn},
		models.StatusFullPaperSubmitted:    {models.StatusUnderReview, models.StatusWithdrawn},
		models.StatusUnderReview:           {models.StatusAccepted, models.StatusRevisionRequired, models.StatusRejected, models.StatusWithdrawn},
		models.StatusRevisionRequired:      {models.StatusFullPaperSubmitted, models.StatusWithdrawn},
	}

	for _, from := range allStatuses {
		allowed := make(map[models.SubmissionStatus]bool)
		for _, to := range legal[from] {
			allowed[to] = true
		}
		for _, to := range allStatuses {
			got := CanTransition(from, to)
			if got != allowed[to] {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", from, to, got, allowed[to])
			}
		}
	}
}

func TestTerminalStatusesAllowNothing(t *testing.T) {
	for _, from := range allStatuses {
		if !from.IsTerminal() {
			continue
		}
		for _, to := range allStatuses {
			if CanTransition(from, to) {
				t.Errorf("terminal status %s allows transition to %s", from, to)
			}
		}
	}
}

func TestTransitionRejectsIllegalPairAndWritesNothing(t *testing.T) {
	db, state, cleanup := newScriptedGormDB(t, nil)
	defer cleanup()

	sub := &models.Submission{SubmissionID: 9, Status: models.StatusDraft}
	err := Transition(db, sub, models.StatusAccepted, 1, "", FixedClock{Instant: time.Now()})
	if KindOf(err) != KindInvalidTransition {
		t.Fatalf("expected KindInvalidTransition, got %v", err)
	}
	if sub.Status != models.StatusDraft {
		t.Fatalf("status mutated on illegal transition: %s", sub.Status)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestTransitionStampsAbstractRejection(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindExec,
			pattern: regexp.MustCompile("(?i)UPDATE .submissions. SET"),
		},
		{
			kind:    kindExec,
			pattern: regexp.MustCompile("(?i)INSERT INTO .submission_status_history."),
			result:  scriptedResult{lastInsertID: 1, rowsAffected: 1},
		},
	}
	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	sub := &models.Submission{SubmissionID: 3, Status: models.StatusPendingAbstractReview}
	if err := Transition(db, sub, models.StatusAbstractRejected, 2, "out of scope", FixedClock{Instant: now}); err != nil {
		t.Fatalf("Transition returned error: %v", err)
	}

	if sub.Status != models.StatusAbstractRejected {
		t.Fatalf("expected abstract_rejected, got %s", sub.Status)
	}
	if sub.AbstractReviewedAt == nil || !sub.AbstractReviewedAt.Equal(now) {
		t.Fatalf("abstract_reviewed_at not stamped: %v", sub.AbstractReviewedAt)
	}
	if sub.AbstractRejectionReason == nil || *sub.AbstractRejectionReason != "out of scope" {
		t.Fatalf("rejection reason not recorded: %v", sub.AbstractRejectionReason)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestTransitionStampsSubmittedAt(t *testing.T) {
	steps := []*queryStep{
		{kind: kindExec, pattern: regexp.MustCompile("(?i)UPDATE .submissions. SET")},
		{kind: kindExec, pattern: regexp.MustCompile("(?i)INSERT INTO .submission_status_history.")},
	}
	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	now := time.Date(2026, 2, 10, 9, 30, 0, 0, time.UTC)
	sub := &models.Submission{SubmissionID: 4, Status: models.StatusDraft}
	if err := Transition(db, sub, models.StatusPendingAbstractReview, 7, "", FixedClock{Instant: now}); err != nil {
		t.Fatalf("Transition returned error: %v", err)
	}
	if sub.AbstractSubmittedAt == nil || !sub.AbstractSubmittedAt.Equal(now) {
		t.Fatalf("abstract_submitted_at not stamped: %v", sub.AbstractSubmittedAt)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}
