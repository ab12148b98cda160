package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"conference-review-api/config"
	"conference-review-api/models"
	"conference-review-api/utils"

	"github.com/gin-gonic/gin"
)

type proposeKeywordRequest struct {
	Name string `json:"name" binding:"required"`
}

// GetKeywords lists approved keywords for pickers. Admins may pass
// ?status=pending|rejected to see the moderation queues.
func GetKeywords(c *gin.Context) {
	status := models.KeywordStatus(c.DefaultQuery("status", string(models.KeywordApproved)))

	if status != models.KeywordApproved {
		roleID, _ := c.Get("roleID")
		if roleID != models.RoleAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
			return
		}
	}

	var keywords []models.Keyword
	if err := config.DB.Where("status = ?", status).
		Order("name ASC").
		Find(&keywords).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch keywords"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"keywords": keywords,
		"total":    len(keywords),
	})
}

// ProposeKeyword files a new keyword for admin moderation.
func ProposeKeyword(c *gin.Context) {
	var req proposeKeywordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Keyword name is required"})
		return
	}

	name := utils.SanitizeInput(strings.ToLower(req.Name))
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Keyword name is required"})
		return
	}

	keyword := models.Keyword{
		Name:     name,
		Status:   models.KeywordPending,
		CreateAt: time.Now(),
	}
	if err := config.DB.Create(&keyword).Error; err != nil {
		if strings.Contains(err.Error(), "Duplicate entry") {
			c.JSON(http.StatusConflict, gin.H{"error": "Keyword already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create keyword"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"keyword": keyword,
	})
}

// ModerateKeyword approves or rejects a pending keyword.
func ModerateKeyword(c *gin.Context) {
	keywordID, err := strconv.Atoi(c.Param("id"))
	if err != nil || keywordID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid keyword ID"})
		return
	}

	var req struct {
		Status models.KeywordStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if req.Status != models.KeywordApproved && req.Status != models.KeywordRejected {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Status must be approved or rejected"})
		return
	}

	now := time.Now()
	result := config.DB.Model(&models.Keyword{}).
		Where("keyword_id = ?", keywordID).
		Updates(map[string]interface{}{
			"status":    req.Status,
			"update_at": now,
		})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update keyword"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Keyword not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
