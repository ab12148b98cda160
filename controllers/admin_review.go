package controllers

import (
	"net/http"
	"time"

	"conference-review-api/config"
	"conference-review-api/models"
	"conference-review-api/utils"

	"github.com/gin-gonic/gin"
)

type rejectAbstractRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type assignReviewerRequest struct {
	ReviewerID int       `json:"reviewer_id" binding:"required"`
	Deadline   time.Time `json:"deadline" binding:"required"`
	// utc|local|unspecified; an absent hint is treated as local.
	DeadlineKind string `json:"deadline_kind"`
}

type finalDecisionRequest struct {
	Decision models.Recommendation `json:"decision" binding:"required"`
	Reason   string                `json:"reason"`
}

// GetSubmissionsByStatus lists submissions in one lifecycle status for the
// admin queues.
func GetSubmissionsByStatus(c *gin.Context) {
	status := models.SubmissionStatus(c.Query("status"))
	if status == "" {
		status = models.StatusPendingAbstractReview
	}

	var submissions []models.Submission
	if err := config.DB.Preload("Author").Preload("Keywords").Preload("Conference").
		Where("status = ?", status).
		Order("abstract_submitted_at DESC, create_at DESC").
		Find(&submissions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch submissions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"submissions": submissions,
		"total":       len(submissions),
	})
}

// ApproveAbstract rules the abstract fit for full-paper submission.
func ApproveAbstract(c *gin.Context) {
	adminID, ok := currentUserID(c)
	if !ok {
		return
	}
	submissionID, ok := submissionIDParam(c)
	if !ok {
		return
	}

	sub, err := submissionService().ApproveAbstract(submissionID, adminID)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"submission": sub,
	})
}

// RejectAbstract turns the abstract down with a reason.
func RejectAbstract(c *gin.Context) {
	adminID, ok := currentUserID(c)
	if !ok {
		return
	}
	submissionID, ok := submissionIDParam(c)
	if !ok {
		return
	}

	var req rejectAbstractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A rejection reason is required"})
		return
	}

	sub, err := submissionService().RejectAbstract(submissionID, adminID, req.Reason)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"submission": sub,
	})
}

// GetAvailableReviewers returns every active reviewer ranked by keyword
// match against the submission, lighter workload first on ties.
func GetAvailableReviewers(c *gin.Context) {
	submissionID, ok := submissionIDParam(c)
	if !ok {
		return
	}

	ranked, err := assignmentService().GetAvailableReviewers(submissionID)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"reviewers": ranked,
		"total":     len(ranked),
	})
}

// AssignReviewer invites a reviewer to a submission with a deadline.
func AssignReviewer(c *gin.Context) {
	adminID, ok := currentUserID(c)
	if !ok {
		return
	}
	submissionID, ok := submissionIDParam(c)
	if !ok {
		return
	}

	var req assignReviewerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	hint := utils.TimeSourceHint(req.DeadlineKind)
	switch hint {
	case utils.TimeHintUTC, utils.TimeHintLocal, utils.TimeHintUnspecified:
	case "":
		hint = utils.TimeHintUnspecified
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "deadline_kind must be utc, local or unspecified"})
		return
	}

	assignment, err := assignmentService().AssignReviewer(submissionID, req.ReviewerID, req.Deadline, hint, adminID)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":    true,
		"assignment": assignment,
	})
}

// GetDecisionSuggestion aggregates completed reviews into the advisory
// recommendation.
func GetDecisionSuggestion(c *gin.Context) {
	submissionID, ok := submissionIDParam(c)
	if !ok {
		return
	}

	suggestion, err := reviewService().AggregateForDecision(submissionID)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"suggestion": suggestion,
	})
}

// MakeFinalDecision records the admin's binding ruling. The suggestion is
// advisory; whatever the admin chose is what persists.
func MakeFinalDecision(c *gin.Context) {
	adminID, ok := currentUserID(c)
	if !ok {
		return
	}
	submissionID, ok := submissionIDParam(c)
	if !ok {
		return
	}

	var req finalDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if !req.Decision.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Decision must be accept, minor_revision, major_revision or reject"})
		return
	}

	decision, err := reviewService().MakeFinalDecision(submissionID, req.Decision, req.Reason, adminID)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"decision": decision,
	})
}

// GetSubmissionReviews lists the completed reviews of a submission for the
// admin, including the per-criterion scores and admin-only comments.
func GetSubmissionReviews(c *gin.Context) {
	submissionID, ok := submissionIDParam(c)
	if !ok {
		return
	}

	var reviews []models.Review
	if err := config.DB.Preload("Reviewer").Preload("Scores").
		Joins("JOIN review_assignments ON review_assignments.assignment_id = reviews.assignment_id").
		Where("review_assignments.submission_id = ? AND review_assignments.status = ?", submissionID, models.AssignmentCompleted).
		Find(&reviews).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch reviews"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"reviews": reviews,
		"total":   len(reviews),
	})
}
