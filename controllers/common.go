package controllers

import (
	"net/http"

	"conference-review-api/config"
	"conference-review-api/services"

	"github.com/gin-gonic/gin"
)

func submissionService() *services.SubmissionService {
	return services.NewSubmissionService(config.DB, services.SystemClock(), services.MailNotifier{})
}

func assignmentService() *services.AssignmentService {
	return services.NewAssignmentService(config.DB, services.SystemClock(), services.MailNotifier{})
}

func reviewService() *services.ReviewService {
	return services.NewReviewService(config.DB, services.SystemClock(), services.MailNotifier{})
}

// currentUserID resolves the acting user from the JWT context set by the
// auth middleware. Core operations always receive the actor explicitly.
func currentUserID(c *gin.Context) (int, bool) {
	value, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "User context missing"})
		return 0, false
	}
	userID, ok := value.(int)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid user context"})
		return 0, false
	}
	return userID, true
}

// domainStatus maps a core error kind to the HTTP status it should surface
// as. Every kind keeps its own message; nothing collapses into a generic
// "cannot do that".
func domainStatus(kind services.ErrorKind) int {
	switch kind {
	case services.KindSubmissionNotFound, services.KindAssignmentNotFound:
		return http.StatusNotFound
	case services.KindInvalidTransition, services.KindInvalidSubmissionStatus,
		services.KindAlreadyAssigned, services.KindNotEligible,
		services.KindReviewerNotEligible, services.KindNoReviews:
		return http.StatusConflict
	case services.KindDeadlineNotFuture, services.KindIncompleteOrOutOfRange:
		return http.StatusBadRequest
	case services.KindPersistence:
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}

// respondDomainError writes a structured error response for a failed core
// operation.
func respondDomainError(c *gin.Context, err error) {
	kind := services.KindOf(err)
	if kind == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(domainStatus(kind), gin.H{
		"error": err.Error(),
		"kind":  string(kind),
	})
}
