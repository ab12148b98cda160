package services

import (
	"fmt"
	"html/template"
	"log"
	"strings"

	"conference-review-api/config"
)

// NotificationKind tags the event behind an outbound notification.
type NotificationKind string

const (
	NotifyReviewInvitation NotificationKind = "review_invitation"
	NotifyAbstractApproved NotificationKind = "abstract_approved"
	NotifyAbstractRejected NotificationKind = "abstract_rejected"
	NotifyReviewCompleted  NotificationKind = "review_completed"
	NotifyFinalDecision    NotificationKind = "final_decision"
	NotifyDeadlineReminder NotificationKind = "deadline_reminder"
)

// Notifier is the delivery boundary. Implementations are fire-and-forget:
// the core may log a delivery failure but never changes domain state on it.
type Notifier interface {
	Notify(kind NotificationKind, toEmail string, submissionID int, reviewerID *int, payload map[string]string) error
}

// MailNotifier delivers notification events as formal HTML emails over the
// configured SMTP transport.
type MailNotifier struct{}

var notificationSubjects = map[NotificationKind]string{
	NotifyReviewInvitation: "Invitation to review a submission",
	NotifyAbstractApproved: "Your abstract has been approved",
	NotifyAbstractRejected: "Your abstract has been rejected",
	NotifyReviewCompleted:  "A review has been completed",
	NotifyFinalDecision:    "Decision on your submission",
	NotifyDeadlineReminder: "Your review deadline is approaching",
}

func (MailNotifier) Notify(kind NotificationKind, toEmail string, submissionID int, reviewerID *int, payload map[string]string) error {
	subject, ok := notificationSubjects[kind]
	if !ok {
		subject = string(kind)
	}
	if title := payload["title"]; title != "" {
		subject = fmt.Sprintf("%s: %s", subject, title)
	}

	html := buildFormalEmailHTML(subject, payload["recipient_name"], payload["message"])
	if err := config.SendMail([]string{toEmail}, subject, html); err != nil {
		log.Printf("notification email send failed (kind=%s submission=%d to=%s): %v", kind, submissionID, toEmail, err)
		return err
	}
	return nil
}

func buildFormalEmailHTML(subject, recipientName, message string) string {
	name := strings.TrimSpace(recipientName)
	if name == "" {
		name = "Colleague"
	}

	escapedSubject := template.HTMLEscapeString(subject)
	escapedGreeting := template.HTMLEscapeString(fmt.Sprintf("Dear %s,", name))
	escapedMessage := template.HTMLEscapeString(strings.TrimSpace(message))
	escapedMessage = strings.ReplaceAll(strings.ReplaceAll(escapedMessage, "\r\n", "\n"), "\r", "\n")
	escapedMessage = strings.ReplaceAll(escapedMessage, "\n", "<br />")

	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>%s</title>
</head>
<body style="margin:0;padding:0;background-color:#f9fafb;font-family:'Segoe UI',Tahoma,Arial,sans-serif;">
<div style="max-width:640px;margin:0 auto;padding:24px 20px;">
  <div style="background-color:#ffffff;border:1px solid #e5e7eb;border-radius:12px;padding:24px 24px 28px 24px;">
    <p style="margin:0 0 16px 0;font-size:16px;line-height:1.7;color:#111827;">%s</p>
    <p style="margin:0 0 0 0;font-size:16px;line-height:1.7;color:#111827;word-break:break-word;">%s</p>
  </div>
</div>
</body>
</html>`, escapedSubject, escapedGreeting, escapedMessage)
}

// notifySafe sends after the unit of work has committed; failures are logged
// and dropped.
func notifySafe(n Notifier, kind NotificationKind, toEmail string, submissionID int, reviewerID *int, payload map[string]string) {
	if n == nil || toEmail == "" {
		return
	}
	if err := n.Notify(kind, toEmail, submissionID, reviewerID, payload); err != nil {
		log.Printf("notifier error (kind=%s submission=%d): %v", kind, submissionID, err)
	}
}
