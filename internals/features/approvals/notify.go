package approvals

import (
	"fmt"

	"github.com/google/uuid"

	notifService "colegio_backend/internals/features/communication/notifications/service"
)

// Notifier is the async inbox + e-mail fan-out used after a review.
type Notifier interface {
	NotifyUsersAsync(tenantID uuid.UUID, userIDs []uuid.UUID, notice notifService.Notice)
}

// ReviewNotice tells the owner how their item was reviewed.
func ReviewNotice(kind, title string, a Approval, path string) notifService.Notice {
	verb := "aprobada"
	if a.Status == StatusRejected {
		verb = "rechazada"
	}
	body := fmt.Sprintf("Tu %s \"%s\" fue %s.", kind, title, verb)
	if a.ReviewComment != nil {
		body += " Comentario: " + *a.ReviewComment
	}
	return notifService.Notice{
		Type:  "approval",
		Title: fmt.Sprintf("%s %s", kind, verb),
		Body:  body,
		Path:  path,
		Meta:  map[string]any{"status": a.Status},
	}
}
