package services

import (
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	"conference-review-api/models"
)

var (
	assignmentQueryPattern = regexp.MustCompile("(?i)SELECT .* FROM .review_assignments. WHERE assignment_id = \\?")
	criteriaQueryPattern   = regexp.MustCompile("(?i)SELECT .* FROM .review_criteria.")
	reviewLookupPattern    = regexp.MustCompile("(?i)SELECT .* FROM .reviews. WHERE assignment_id = \\?")
	completedJoinPattern   = regexp.MustCompile("(?i)SELECT .* FROM .reviews. JOIN review_assignments")
	decisionLookupPattern  = regexp.MustCompile("(?i)SELECT .* FROM .final_decisions. WHERE submission_id = \\?")
	adminsQueryPattern     = regexp.MustCompile("(?i)SELECT .* FROM .users. WHERE role_id = \\?")
	emailLookupPattern     = regexp.MustCompile("(?i)SELECT .email. FROM .users.")
)

func acceptedAssignmentRow(assignmentID, submissionID, reviewerID int64) *queryStep {
	return &queryStep{
		kind:    kindQuery,
		pattern: assignmentQueryPattern,
		columns: []string{"assignment_id", "submission_id", "reviewer_id", "status"},
		rows:    [][]driver.Value{{assignmentID, submissionID, reviewerID, string(models.AssignmentAccepted)}},
	}
}

func underReviewSubmissionRow(submissionID int64) *queryStep {
	return &queryStep{
		kind:    kindQuery,
		pattern: submissionQueryPattern,
		columns: []string{"submission_id", "author_id", "conference_id", "title", "status"},
		rows:    [][]driver.Value{{submissionID, int64(10), int64(2), "Adaptive Mesh Refinement", string(models.StatusUnderReview)}},
	}
}

func twoCriteriaRows() *queryStep {
	return &queryStep{
		kind:    kindQuery,
		pattern: criteriaQueryPattern,
		columns: []string{"criterion_id", "conference_id", "name", "max_score", "is_active"},
		rows: [][]driver.Value{
			{int64(1), int64(2), "Novelty", int64(5), int64(1)},
			{int64(2), int64(2), "Clarity", int64(5), int64(1)},
		},
	}
}

func TestSubmitReviewCompletesAssignmentWithSimpleMean(t *testing.T) {
	steps := []*queryStep{
		acceptedAssignmentRow(11, 1, 5),
		underReviewSubmissionRow(1),
		twoCriteriaRows(),
		{
			kind:    kindQuery,
			pattern: reviewLookupPattern,
			columns: []string{"review_id"},
			rows:    [][]driver.Value{},
		},
		{
			kind:    kindExec,
			pattern: regexp.MustCompile("(?i)INSERT INTO .reviews."),
			result:  scriptedResult{lastInsertID: 301, rowsAffected: 1},
		},
		{kind: kindExec, pattern: regexp.MustCompile("(?i)INSERT INTO .review_scores.")},
		{kind: kindExec, pattern: regexp.MustCompile("(?i)INSERT INTO .review_scores.")},
		{kind: kindExec, pattern: regexp.MustCompile("(?i)UPDATE .review_assignments. SET")},
		{
			kind:    kindQuery,
			pattern: adminsQueryPattern,
			columns: []string{"user_id", "email"},
			rows:    [][]driver.Value{{int64(99), "chair@example.org"}},
		},
		{kind: kindExec, pattern: regexp.MustCompile("(?i)INSERT INTO .notifications.")},
		{kind: kindExec, pattern: regexp.MustCompile("(?i)INSERT INTO .notifications.")},
		{
			kind:    kindQuery,
			pattern: emailLookupPattern,
			columns: []string{"email"},
			rows:    [][]driver.Value{{"author@example.org"}},
		},
	}
	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	now := time.Date(2026, 6, 20, 9, 0, 0, 0, time.UTC)
	notifier := &recordingNotifier{}
	svc := NewReviewService(db, FixedClock{Instant: now}, notifier)

	review, err := svc.SubmitReview(11, 5, map[string]int{"Novelty": 4, "Clarity": 4}, models.RecommendAccept, "solid work", "no concerns")
	if err != nil {
		t.Fatalf("SubmitReview returned error: %v", err)
	}

	if review.ReviewID != 301 {
		t.Fatalf("expected review id 301, got %d", review.ReviewID)
	}
	if review.AverageScore == nil || *review.AverageScore != 4.0 {
		t.Fatalf("expected average 4.0, got %v", review.AverageScore)
	}
	if kinds := notifier.kinds(); len(kinds) != 2 {
		t.Fatalf("expected author and admin notifications, got %v", kinds)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestSubmitReviewNamesFirstMissingCriterion(t *testing.T) {
	steps := []*queryStep{
		acceptedAssignmentRow(11, 1, 5),
		underReviewSubmissionRow(1),
		twoCriteriaRows(),
	}
	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	svc := NewReviewService(db, FixedClock{Instant: time.Now()}, nil)

	_, err := svc.SubmitReview(11, 5, map[string]int{"Novelty": 4}, models.RecommendAccept, "", "")
	if KindOf(err) != KindIncompleteOrOutOfRange {
		t.Fatalf("expected KindIncompleteOrOutOfRange, got %v", err)
	}
	if want := "Clarity"; err == nil || !regexp.MustCompile(want).MatchString(err.Error()) {
		t.Fatalf("error must name the offending criterion, got %v", err)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestSubmitReviewRejectsOutOfRangeScore(t *testing.T) {
	steps := []*queryStep{
		acceptedAssignmentRow(11, 1, 5),
		underReviewSubmissionRow(1),
		twoCriteriaRows(),
	}
	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	svc := NewReviewService(db, FixedClock{Instant: time.Now()}, nil)

	_, err := svc.SubmitReview(11, 5, map[string]int{"Novelty": 6, "Clarity": 4}, models.RecommendAccept, "", "")
	if KindOf(err) != KindIncompleteOrOutOfRange {
		t.Fatalf("expected KindIncompleteOrOutOfRange, got %v", err)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestSubmitReviewRequiresAcceptedAssignment(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: assignmentQueryPattern,
			columns: []string{"assignment_id", "submission_id", "reviewer_id", "status"},
			rows:    [][]driver.Value{{int64(11), int64(1), int64(5), string(models.AssignmentPending)}},
		},
	}
	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	svc := NewReviewService(db, FixedClock{Instant: time.Now()}, nil)

	_, err := svc.SubmitReview(11, 5, map[string]int{"Novelty": 4, "Clarity": 4}, models.RecommendAccept, "", "")
	if KindOf(err) != KindNotEligible {
		t.Fatalf("expected KindNotEligible, got %v", err)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestSubmitReviewRejectsForeignAssignment(t *testing.T) {
	steps := []*queryStep{
		acceptedAssignmentRow(11, 1, 5),
	}
	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	svc := NewReviewService(db, FixedClock{Instant: time.Now()}, nil)

	_, err := svc.SubmitReview(11, 6, map[string]int{"Novelty": 4, "Clarity": 4}, models.RecommendAccept, "", "")
	if KindOf(err) != KindNotEligible {
		t.Fatalf("expected KindNotEligible, got %v", err)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func completedReviewRow(reviewID int64, score float64, rec models.Recommendation) []driver.Value {
	return []driver.Value{reviewID, score, string(rec)}
}

func TestMakeFinalDecisionRequiresCompletedReviews(t *testing.T) {
	steps := []*queryStep{
		underReviewSubmissionRow(1),
		{
			kind:    kindQuery,
			pattern: completedJoinPattern,
			columns: []string{"review_id", "average_score", "recommendation"},
			rows:    [][]driver.Value{},
		},
	}
	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	svc := NewReviewService(db, FixedClock{Instant: time.Now()}, nil)

	_, err := svc.MakeFinalDecision(1, models.RecommendAccept, "good paper", 99)
	if KindOf(err) != KindNoReviews {
		t.Fatalf("expected KindNoReviews, got %v", err)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestMakeFinalDecisionCreatesDecisionAndAcceptsSubmission(t *testing.T) {
	steps := []*queryStep{
		underReviewSubmissionRow(1),
		{
			kind:    kindQuery,
			pattern: completedJoinPattern,
			columns: []string{"review_id", "average_score", "recommendation"},
			rows:    [][]driver.Value{completedReviewRow(301, 4.0, models.RecommendAccept)},
		},
		{
			kind:    kindQuery,
			pattern: decisionLookupPattern,
			columns: []string{"decision_id"},
			rows:    [][]driver.Value{},
		},
		{
			kind:    kindExec,
			pattern: regexp.MustCompile("(?i)INSERT INTO .final_decisions."),
			result:  scriptedResult{lastInsertID: 501, rowsAffected: 1},
		},
		{kind: kindExec, pattern: regexp.MustCompile("(?i)UPDATE .submissions. SET")},
		{kind: kindExec, pattern: regexp.MustCompile("(?i)INSERT INTO .submission_status_history.")},
		{kind: kindExec, pattern: regexp.MustCompile("(?i)INSERT INTO .notifications.")},
		{
			kind:    kindQuery,
			pattern: emailLookupPattern,
			columns: []string{"email"},
			rows:    [][]driver.Value{{"author@example.org"}},
		},
	}
	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	now := time.Date(2026, 7, 1, 15, 0, 0, 0, time.UTC)
	notifier := &recordingNotifier{}
	svc := NewReviewService(db, FixedClock{Instant: now}, notifier)

	decision, err := svc.MakeFinalDecision(1, models.RecommendAccept, "good paper", 99)
	if err != nil {
		t.Fatalf("MakeFinalDecision returned error: %v", err)
	}

	if decision.DecisionID != 501 {
		t.Fatalf("expected decision id 501, got %d", decision.DecisionID)
	}
	if decision.AverageScore != 4.0 {
		t.Fatalf("expected snapshot average 4.0, got %f", decision.AverageScore)
	}
	if kinds := notifier.kinds(); len(kinds) != 1 || kinds[0] != NotifyFinalDecision {
		t.Fatalf("expected final decision notification, got %v", kinds)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestMakeFinalDecisionOverwritesInsteadOfDuplicating(t *testing.T) {
	steps := []*queryStep{
		// Submission already accepted by the first ruling.
		{
			kind:    kindQuery,
			pattern: submissionQueryPattern,
			columns: []string{"submission_id", "author_id", "conference_id", "title", "status"},
			rows:    [][]driver.Value{{int64(1), int64(10), int64(2), "Adaptive Mesh Refinement", string(models.StatusAccepted)}},
		},
		{
			kind:    kindQuery,
			pattern: completedJoinPattern,
			columns: []string{"review_id", "average_score", "recommendation"},
			rows:    [][]driver.Value{completedReviewRow(301, 4.0, models.RecommendAccept)},
		},
		{
			kind:    kindQuery,
			pattern: decisionLookupPattern,
			columns: []string{"decision_id", "submission_id", "decision"},
			rows:    [][]driver.Value{{int64(501), int64(1), string(models.RecommendAccept)}},
		},
		{kind: kindExec, pattern: regexp.MustCompile("(?i)UPDATE .final_decisions. SET")},
		// Same decision, same status: no submission update follows.
		{kind: kindExec, pattern: regexp.MustCompile("(?i)INSERT INTO .notifications.")},
		{
			kind:    kindQuery,
			pattern: emailLookupPattern,
			columns: []string{"email"},
			rows:    [][]driver.Value{{"author@example.org"}},
		},
	}
	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	now := time.Date(2026, 7, 2, 15, 0, 0, 0, time.UTC)
	svc := NewReviewService(db, FixedClock{Instant: now}, &recordingNotifier{})

	decision, err := svc.MakeFinalDecision(1, models.RecommendAccept, "good paper", 99)
	if err != nil {
		t.Fatalf("repeat MakeFinalDecision returned error: %v", err)
	}
	if decision.DecisionID != 501 {
		t.Fatalf("repeat decision must reuse row 501, got %d", decision.DecisionID)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestAggregateForDecisionGatesOnStatusAndReviews(t *testing.T) {
	steps := []*queryStep{
		underReviewSubmissionRow(1),
		{
			kind:    kindQuery,
			pattern: completedJoinPattern,
			columns: []string{"review_id", "average_score", "recommendation"},
			rows: [][]driver.Value{
				completedReviewRow(301, 4.2, models.RecommendAccept),
				completedReviewRow(302, 4.0, models.RecommendAccept),
			},
		},
	}
	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	svc := NewReviewService(db, FixedClock{Instant: time.Now()}, nil)

	suggestion, err := svc.AggregateForDecision(1)
	if err != nil {
		t.Fatalf("AggregateForDecision returned error: %v", err)
	}
	if suggestion.Suggested != models.RecommendAccept {
		t.Fatalf("expected accept suggestion, got %s", suggestion.Suggested)
	}
	if !suggestion.CanMakeDecision {
		t.Fatalf("decision must be possible with completed reviews under review")
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}
