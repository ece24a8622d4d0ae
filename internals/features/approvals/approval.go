// Package approvals is the review workflow shared by evaluations, plannings,
// rubrics and questions: draft → submitted → approved | rejected, rejected → submitted.
package approvals

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"colegio_backend/internals/constants"
)

const (
	StatusDraft     = "draft"
	StatusSubmitted = "submitted"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
)

var (
	ErrNotOwner          = errors.New("sólo el docente autor puede enviar a revisión")
	ErrNotReviewer       = errors.New("tu rol no puede aprobar ni rechazar")
	ErrInvalidTransition = errors.New("transición de estado no permitida")
	ErrFrozen            = errors.New("el registro aprobado no puede ser editado por el docente")
	ErrInvalidDecision   = errors.New("decision debe ser approved o rejected")
)

// Approval is embedded (gorm embeddedPrefix) into every reviewable model.
type Approval struct {
	Status        string     `gorm:"column:status;type:varchar(12);not null;default:'draft';index" json:"status"`
	SubmittedAt   *time.Time `gorm:"column:submitted_at" json:"submittedAt,omitempty"`
	ReviewedBy    *uuid.UUID `gorm:"column:reviewed_by_user_id;type:uuid" json:"reviewedBy,omitempty"`
	ReviewedAt    *time.Time `gorm:"column:reviewed_at" json:"reviewedAt,omitempty"`
	ReviewComment *string    `gorm:"column:review_comment" json:"reviewComment,omitempty"`
}

// Actor is whoever attempts the transition.
type Actor struct {
	UserID uuid.UUID
	Role   constants.Role
}

// InitialStatus: admin-tier creators of evaluations skip the draft stage.
func InitialStatus(creator constants.Role, autoApprove bool) string {
	if autoApprove && constants.Can(creator, constants.CapApprovalReview) {
		return StatusApproved
	}
	return StatusDraft
}

// Submit moves draft|rejected → submitted. Only the owning teacher may submit.
func (a *Approval) Submit(owner uuid.UUID, actor Actor, now time.Time) error {
	if actor.UserID != owner || !constants.Can(actor.Role, constants.CapApprovalSubmit) {
		return ErrNotOwner
	}
	if a.Status != StatusDraft && a.Status != StatusRejected {
		return ErrInvalidTransition
	}
	a.Status = StatusSubmitted
	a.SubmittedAt = &now
	a.ReviewedBy, a.ReviewedAt, a.ReviewComment = nil, nil, nil
	return nil
}

// Review moves submitted → approved|rejected. Reviewers: admin, director, utp.
func (a *Approval) Review(decision, comment string, actor Actor, now time.Time) error {
	if !constants.Can(actor.Role, constants.CapApprovalReview) {
		return ErrNotReviewer
	}
	decision = strings.ToLower(strings.TrimSpace(decision))
	if decision != StatusApproved && decision != StatusRejected {
		return ErrInvalidDecision
	}
	if a.Status != StatusSubmitted {
		return ErrInvalidTransition
	}
	a.Status = decision
	uid := actor.UserID
	a.ReviewedBy = &uid
	a.ReviewedAt = &now
	if c := strings.TrimSpace(comment); c != "" {
		a.ReviewComment = &c
	} else {
		a.ReviewComment = nil
	}
	return nil
}

// CanEdit: owner while draft/rejected; reviewers always.
func (a *Approval) CanEdit(owner uuid.UUID, actor Actor) error {
	if constants.Can(actor.Role, constants.CapApprovalReview) {
		return nil
	}
	if actor.UserID != owner {
		return ErrNotOwner
	}
	switch a.Status {
	case StatusDraft, StatusRejected:
		return nil
	case StatusApproved:
		return ErrFrozen
	}
	return ErrInvalidTransition
}
