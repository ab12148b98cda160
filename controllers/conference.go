package controllers

import (
	"net/http"
	"strconv"
	"time"

	"conference-review-api/config"
	"conference-review-api/models"
	"conference-review-api/utils"

	"github.com/gin-gonic/gin"
)

type planDatesRequest struct {
	AbstractDeadline  *time.Time `json:"abstract_deadline"`
	FullPaperDeadline *time.Time `json:"full_paper_deadline"`
	ReviewDeadline    *time.Time `json:"review_deadline"`
	NotificationDate  *time.Time `json:"notification_date"`
	// utc|local|unspecified, applied to every date in the payload.
	DateKind string `json:"date_kind"`
}

// GetConferences lists conferences with their review criteria.
func GetConferences(c *gin.Context) {
	var conferences []models.Conference
	if err := config.DB.Preload("Criteria").
		Where("delete_at IS NULL").
		Order("conference_id ASC").
		Find(&conferences).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch conferences"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"conferences": conferences,
		"total":       len(conferences),
	})
}

// GetConferenceCriteria lists the active scoring criteria of one conference.
func GetConferenceCriteria(c *gin.Context) {
	conferenceID, err := strconv.Atoi(c.Param("id"))
	if err != nil || conferenceID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid conference ID"})
		return
	}

	var criteria []models.ReviewCriterion
	if err := config.DB.Where("conference_id = ? AND is_active = ?", conferenceID, true).
		Order("criterion_id ASC").
		Find(&criteria).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch criteria"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"criteria": criteria,
		"total":    len(criteria),
	})
}

// UpdateConferencePlanDates sets the conference plan dates. Every date runs
// through the same wall-clock normalization as assignment deadlines so
// stored instants never skew by timezone.
func UpdateConferencePlanDates(c *gin.Context) {
	conferenceID, err := strconv.Atoi(c.Param("id"))
	if err != nil || conferenceID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid conference ID"})
		return
	}

	var req planDatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	hint := utils.TimeSourceHint(req.DateKind)
	switch hint {
	case utils.TimeHintUTC, utils.TimeHintLocal, utils.TimeHintUnspecified:
	case "":
		hint = utils.TimeHintUnspecified
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "date_kind must be utc, local or unspecified"})
		return
	}

	updates := map[string]interface{}{"update_at": time.Now()}
	if req.AbstractDeadline != nil {
		updates["abstract_deadline"] = utils.ToUTC(*req.AbstractDeadline, hint)
	}
	if req.FullPaperDeadline != nil {
		updates["full_paper_deadline"] = utils.ToUTC(*req.FullPaperDeadline, hint)
	}
	if req.ReviewDeadline != nil {
		updates["review_deadline"] = utils.ToUTC(*req.ReviewDeadline, hint)
	}
	if req.NotificationDate != nil {
		updates["notification_date"] = utils.ToUTC(*req.NotificationDate, hint)
	}

	result := config.DB.Model(&models.Conference{}).
		Where("conference_id = ? AND delete_at IS NULL", conferenceID).
		Updates(updates)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update conference"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Conference not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
