package controllers

import (
	"net/http"
	"strconv"

	"conference-review-api/config"
	"conference-review-api/models"

	"github.com/gin-gonic/gin"
)

type draftRequest struct {
	ConferenceID int    `json:"conference_id" binding:"required"`
	Title        string `json:"title" binding:"required"`
	AbstractText string `json:"abstract_text" binding:"required"`
	KeywordIDs   []int  `json:"keyword_ids"`
}

type draftUpdateRequest struct {
	Title        string `json:"title" binding:"required"`
	AbstractText string `json:"abstract_text" binding:"required"`
	KeywordIDs   []int  `json:"keyword_ids"`
}

type withdrawRequest struct {
	Reason string `json:"reason"`
}

// CreateSubmission opens a new draft for the authenticated author.
func CreateSubmission(c *gin.Context) {
	authorID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req draftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	sub, err := submissionService().CreateDraft(authorID, req.ConferenceID, req.Title, req.AbstractText, req.KeywordIDs)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":    true,
		"submission": sub,
	})
}

// UpdateSubmission edits a draft's title, abstract and keywords.
func UpdateSubmission(c *gin.Context) {
	authorID, ok := currentUserID(c)
	if !ok {
		return
	}
	submissionID, ok := submissionIDParam(c)
	if !ok {
		return
	}

	var req draftUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	sub, err := submissionService().UpdateDraft(submissionID, authorID, req.Title, req.AbstractText, req.KeywordIDs)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"submission": sub,
	})
}

// SubmitAbstract sends the draft into the abstract-review queue.
func SubmitAbstract(c *gin.Context) {
	authorLifecycleAction(c, func(submissionID, authorID int) (*models.Submission, error) {
		return submissionService().SubmitAbstract(submissionID, authorID)
	})
}

// SubmitFullPaper records the full-paper upload.
func SubmitFullPaper(c *gin.Context) {
	authorLifecycleAction(c, func(submissionID, authorID int) (*models.Submission, error) {
		return submissionService().SubmitFullPaper(submissionID, authorID)
	})
}

// SubmitFinalVersion records the camera-ready upload on an accepted paper.
func SubmitFinalVersion(c *gin.Context) {
	authorLifecycleAction(c, func(submissionID, authorID int) (*models.Submission, error) {
		return submissionService().SubmitFinalVersion(submissionID, authorID)
	})
}

// WithdrawSubmission retires the submission at the author's request.
func WithdrawSubmission(c *gin.Context) {
	authorID, ok := currentUserID(c)
	if !ok {
		return
	}
	submissionID, ok := submissionIDParam(c)
	if !ok {
		return
	}

	var req withdrawRequest
	_ = c.ShouldBindJSON(&req)

	sub, err := submissionService().Withdraw(submissionID, authorID, req.Reason)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"submission": sub,
	})
}

// GetMySubmissions lists the authenticated author's submissions.
func GetMySubmissions(c *gin.Context) {
	authorID, ok := currentUserID(c)
	if !ok {
		return
	}

	var submissions []models.Submission
	if err := config.DB.Preload("Keywords").Preload("Conference").
		Where("author_id = ?", authorID).
		Order("create_at DESC").
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

// GetSubmission returns one submission the author owns, with its final
// decision and reviewer comments once decided.
func GetSubmission(c *gin.Context) {
	authorID, ok := currentUserID(c)
	if !ok {
		return
	}
	submissionID, ok := submissionIDParam(c)
	if !ok {
		return
	}

	var sub models.Submission
	if err := config.DB.Preload("Keywords").Preload("Conference").
		Preload("FinalDecision").
		Where("submission_id = ? AND author_id = ?", submissionID, authorID).
		First(&sub).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Submission not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"submission": sub,
	})
}

func authorLifecycleAction(c *gin.Context, action func(submissionID, authorID int) (*models.Submission, error)) {
	authorID, ok := currentUserID(c)
	if !ok {
		return
	}
	submissionID, ok := submissionIDParam(c)
	if !ok {
		return
	}

	sub, err := action(submissionID, authorID)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"submission": sub,
	})
}

func submissionIDParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid submission ID"})
		return 0, false
	}
	return id, true
}
