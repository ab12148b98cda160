package controllers

import (
	"net/http"
	"strconv"

	"conference-review-api/config"
	"conference-review-api/models"

	"github.com/gin-gonic/gin"
)

type rejectAssignmentRequest struct {
	Reason string `json:"reason"`
}

type submitReviewRequest struct {
	Scores            map[string]int        `json:"scores" binding:"required"`
	Recommendation    models.Recommendation `json:"recommendation" binding:"required"`
	CommentsForAuthor string                `json:"comments_for_author"`
	CommentsForAdmin  string                `json:"comments_for_admin"`
}

type reviewerKeywordsRequest struct {
	KeywordIDs []int `json:"keyword_ids" binding:"required"`
}

// GetMyAssignments lists the authenticated reviewer's invitations.
func GetMyAssignments(c *gin.Context) {
	reviewerID, ok := currentUserID(c)
	if !ok {
		return
	}

	var assignments []models.ReviewAssignment
	if err := config.DB.Preload("Submission").Preload("Review").
		Where("reviewer_id = ?", reviewerID).
		Order("invited_at DESC").
		Find(&assignments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch assignments"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"assignments": assignments,
		"total":       len(assignments),
	})
}

// AcceptAssignment accepts a pending review invitation.
func AcceptAssignment(c *gin.Context) {
	reviewerID, ok := currentUserID(c)
	if !ok {
		return
	}
	assignmentID, ok := assignmentIDParam(c)
	if !ok {
		return
	}

	assignment, err := assignmentService().AcceptAssignment(assignmentID, reviewerID)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"assignment": assignment,
	})
}

// RejectAssignment declines a pending review invitation.
func RejectAssignment(c *gin.Context) {
	reviewerID, ok := currentUserID(c)
	if !ok {
		return
	}
	assignmentID, ok := assignmentIDParam(c)
	if !ok {
		return
	}

	var req rejectAssignmentRequest
	_ = c.ShouldBindJSON(&req)

	assignment, err := assignmentService().RejectAssignment(assignmentID, reviewerID, req.Reason)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"assignment": assignment,
	})
}

// SubmitReview persists the reviewer's completed scorecard and marks the
// assignment completed.
func SubmitReview(c *gin.Context) {
	reviewerID, ok := currentUserID(c)
	if !ok {
		return
	}
	assignmentID, ok := assignmentIDParam(c)
	if !ok {
		return
	}

	var req submitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if !req.Recommendation.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Recommendation must be accept, minor_revision, major_revision or reject"})
		return
	}

	review, err := reviewService().SubmitReview(assignmentID, reviewerID, req.Scores, req.Recommendation, req.CommentsForAuthor, req.CommentsForAdmin)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"review":  review,
	})
}

// SetMyKeywords replaces the reviewer's declared expertise keywords. Only
// approved keywords count toward matching; pending ones are simply ignored
// by the ranking until moderated.
func SetMyKeywords(c *gin.Context) {
	reviewerID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req reviewerKeywordsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	tx := config.DB.Begin()
	if tx.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update keywords"})
		return
	}

	if err := tx.Where("reviewer_id = ?", reviewerID).
		Delete(&models.ReviewerKeyword{}).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update keywords"})
		return
	}
	for _, keywordID := range req.KeywordIDs {
		link := models.ReviewerKeyword{ReviewerID: reviewerID, KeywordID: keywordID}
		if err := tx.Create(&link).Error; err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update keywords"})
			return
		}
	}

	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update keywords"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func assignmentIDParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid assignment ID"})
		return 0, false
	}
	return id, true
}
