package services

import (
	"conference-review-api/models"

	"gorm.io/gorm"
)

// legalTransitions is the authoritative table of submission status
// transitions. Anything not listed here is rejected.
//
// PendingAbstractReview deliberately never moves to UnderReview when a
// reviewer is assigned: the submission must stay visible in the admin's
// abstract-review queue until the abstract itself is ruled on.
var legalTransitions = map[models.SubmissionStatus][]models.SubmissionStatus{
	models.StatusDraft: {
		models.StatusPendingAbstractReview,
		models.StatusWithdrawn,
	},
	models.StatusPendingAbstractReview: {
		models.StatusAbstractApproved,
		models.StatusAbstractRejected,
		models.StatusWithdrawn,
	},
	models.StatusAbstractApproved: {
		models.StatusFullPaperSubmitted,
		models.StatusUnderReview,
		models.StatusWithdrawn,
	},
	models.StatusFullPaperSubmitted: {
		models.StatusUnderReview,
		models.StatusWithdrawn,
	},
	models.StatusUnderReview: {
		models.StatusAccepted,
		models.StatusRevisionRequired,
		models.StatusRejected,
		models.StatusWithdrawn,
	},
	models.StatusRevisionRequired: {
		models.StatusFullPaperSubmitted,
		models.StatusWithdrawn,
	},
}

// CanTransition reports whether from → to is a legal submission transition.
func CanTransition(from, to models.SubmissionStatus) bool {
	for _, allowed := range legalTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Transition validates and applies a status change on the submission row
// inside the caller's transaction, stamping the lifecycle timestamps the
// target status owns and appending a status-history row. The submission
// struct reflects the new state on success. An illegal pair fails with
// KindInvalidTransition and writes nothing.
func Transition(tx *gorm.DB, sub *models.Submission, to models.SubmissionStatus, actorID int, reason string, clock Clock) error {
	from := sub.Status
	if !CanTransition(from, to) {
		return domainErr(KindInvalidTransition, "cannot move submission %d from %s to %s", sub.SubmissionID, from, to)
	}

	now := clock.Now()
	updates := map[string]interface{}{
		"status":    to,
		"update_at": now,
	}

	switch to {
	case models.StatusPendingAbstractReview:
		updates["abstract_submitted_at"] = now
	case models.StatusAbstractApproved:
		updates["abstract_reviewed_at"] = now
	case models.StatusAbstractRejected:
		updates["abstract_reviewed_at"] = now
		updates["abstract_rejection_reason"] = reason
	case models.StatusFullPaperSubmitted:
		updates["full_paper_submitted_at"] = now
	}

	if err := tx.Model(&models.Submission{}).
		Where("submission_id = ?", sub.SubmissionID).
		Updates(updates).Error; err != nil {
		return persistenceErr(err)
	}

	history := models.SubmissionStatusHistory{
		SubmissionID: sub.SubmissionID,
		OldStatus:    from,
		NewStatus:    to,
		ChangedBy:    actorID,
		CreatedAt:    now,
	}
	if reason != "" {
		history.Reason = &reason
	}
	if err := tx.Create(&history).Error; err != nil {
		return persistenceErr(err)
	}

	sub.Status = to
	sub.UpdateAt = &now
	switch to {
	case models.StatusPendingAbstractReview:
		sub.AbstractSubmittedAt = &now
	case models.StatusAbstractApproved:
		sub.AbstractReviewedAt = &now
	case models.StatusAbstractRejected:
		sub.AbstractReviewedAt = &now
		sub.AbstractRejectionReason = &reason
	case models.StatusFullPaperSubmitted:
		sub.FullPaperSubmittedAt = &now
	}
	return nil
}
