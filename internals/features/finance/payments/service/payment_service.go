package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	auditModel "colegio_backend/internals/features/audit/model"
	auditService "colegio_backend/internals/features/audit/service"
	"colegio_backend/internals/features/finance/payments/model"
)

var (
	ErrPaymentNotFound = errors.New("pago no encontrado")
	ErrPaymentClosed   = errors.New("el pago ya fue cerrado (pagado o rechazado)")
	ErrAmountMismatch  = errors.New("monto notificado no coincide con el pago")
)

// PaymentService owns every Payment write. Each write resyncs the guardians it touches
// inside the same transaction.
type PaymentService struct {
	DB      *gorm.DB
	Gateway *Gateway
}

func NewPaymentService(db *gorm.DB, gw *Gateway) *PaymentService {
	return &PaymentService{DB: db, Gateway: gw}
}

func (s *PaymentService) audit(tx *gorm.DB, p model.Payment, actor *uuid.UUID, action string, meta map[string]any) error {
	return auditService.Record(tx, auditService.Entry{
		TenantID: p.PaymentTenantID,
		ActorID:  actor,
		Action:   action,
		Entity:   "payment",
		EntityID: auditService.Ptr(p.PaymentID),
		Meta:     meta,
	})
}

// CreateTx inserts payments on an open transaction and resyncs the guardians once per student.
// Enrollment creation and tariff bulk-assign reuse it.
func CreateTx(ctx context.Context, tx *gorm.DB, rows []model.Payment, actor *uuid.UUID, now time.Time) error {
	if len(rows) == 0 {
		return nil
	}
	if err := tx.Create(&rows).Error; err != nil {
		return err
	}
	st := NewGormFinancialStore(tx)
	synced := map[string]struct{}{}
	for _, p := range rows {
		key := p.PaymentEstudianteID.String()
		if p.PaymentApoderadoID != nil {
			key += "/" + p.PaymentApoderadoID.String()
		}
		if _, ok := synced[key]; !ok {
			synced[key] = struct{}{}
			if err := SyncPaymentGuardians(ctx, st, p, now); err != nil {
				return errors.Wrap(err, "sync estado financiero")
			}
		}
		if err := auditService.Record(tx, auditService.Entry{
			TenantID: p.PaymentTenantID,
			ActorID:  actor,
			Action:   auditModel.ActionCreate,
			Entity:   "payment",
			EntityID: auditService.Ptr(p.PaymentID),
			Meta:     map[string]any{"amount": p.PaymentAmount.String(), "concept": p.PaymentConcept},
		}); err != nil {
			return err
		}
	}
	return nil
}

func (s *PaymentService) Create(ctx context.Context, p *model.Payment, actor *uuid.UUID, now time.Time) error {
	if !p.PaymentAmount.IsPositive() {
		return errors.New("monto debe ser mayor a 0")
	}
	if p.PaymentStatus == model.PaymentStatusPaid && p.PaymentPaidAt == nil {
		p.PaymentPaidAt = &now
	}
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rows := []model.Payment{*p}
		if err := CreateTx(ctx, tx, rows, actor, now); err != nil {
			return err
		}
		*p = rows[0]
		return nil
	})
}

// StatusChange is a manual status update by staff.
type StatusChange struct {
	Status string
	Method *string
	Note   *string
}

// UpdateStatus moves a payment to a new status. tenantID nil = any tenant (admin).
func (s *PaymentService) UpdateStatus(ctx context.Context, tenantID *uuid.UUID, id uuid.UUID, ch StatusChange, actor uuid.UUID, now time.Time) (model.Payment, error) {
	var p model.Payment
	if !model.IsValidStatus(ch.Status) {
		return p, errors.Errorf("estado inválido: %s", ch.Status)
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("payment_id = ?", id)
		if tenantID != nil {
			q = q.Where("payment_tenant_id = ?", *tenantID)
		}
		if err := q.First(&p).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPaymentNotFound
			}
			return err
		}
		prev := p.PaymentStatus
		p.PaymentStatus = ch.Status
		if ch.Method != nil {
			p.PaymentMethod = *ch.Method
		}
		switch {
		case ch.Status == model.PaymentStatusPaid && p.PaymentPaidAt == nil:
			p.PaymentPaidAt = &now
		case ch.Status != model.PaymentStatusPaid:
			p.PaymentPaidAt = nil
		}
		if ch.Note != nil && strings.TrimSpace(*ch.Note) != "" {
			if p.PaymentMeta == nil {
				p.PaymentMeta = datatypes.JSONMap{}
			}
			p.PaymentMeta["note"] = strings.TrimSpace(*ch.Note)
		}
		if err := tx.Save(&p).Error; err != nil {
			return err
		}
		if err := SyncPaymentGuardians(ctx, NewGormFinancialStore(tx), p, now); err != nil {
			return errors.Wrap(err, "sync estado financiero")
		}
		return s.audit(tx, p, &actor, auditModel.ActionStatus, map[string]any{"from": prev, "to": p.PaymentStatus})
	})
	return p, err
}

// OrderID builds a Midtrans order id. A fresh one per checkout attempt, Midtrans rejects reuse.
func OrderID(paymentID uuid.UUID, now time.Time) string {
	return fmt.Sprintf("COL-%s-%d", strings.ReplaceAll(paymentID.String(), "-", "")[:12], now.Unix())
}

// Checkout opens a Snap transaction for an open payment and stores the token.
func (s *PaymentService) Checkout(ctx context.Context, p model.Payment, cust CustomerInput, now time.Time) (model.Payment, error) {
	if !s.Gateway.Enabled() {
		return p, ErrGatewayDisabled
	}
	if p.PaymentStatus == model.PaymentStatusPaid || p.PaymentStatus == model.PaymentStatusRejected {
		return p, ErrPaymentClosed
	}
	orderID := OrderID(p.PaymentID, now)
	p.PaymentExternalID = &orderID

	token, redirect, err := s.Gateway.CreateCheckout(p, cust)
	if err != nil {
		return p, errors.Wrap(err, "midtrans")
	}
	p.PaymentSnapToken = &token
	p.PaymentRedirectURL = &redirect
	p.PaymentMethod = model.PaymentMethodGateway

	err = s.DB.WithContext(ctx).Model(&model.Payment{}).
		Where("payment_id = ?", p.PaymentID).
		Updates(map[string]any{
			"payment_external_id":  orderID,
			"payment_snap_token":   token,
			"payment_redirect_url": redirect,
			"payment_method":       model.PaymentMethodGateway,
		}).Error
	return p, err
}

// WebhookResult is echoed back to Midtrans (any 2xx stops its retries).
type WebhookResult struct {
	Status    string     `json:"status"`
	PaymentID *uuid.UUID `json:"paymentId,omitempty"`
	Payment   string     `json:"paymentStatus,omitempty"`
	Reason    string     `json:"reason,omitempty"`
}

// ApplyWebhook logs the notification and applies its status to the payment it names.
// The signature must already be verified by the caller.
func (s *PaymentService) ApplyWebhook(ctx context.Context, n Notification, raw []byte, now time.Time) (WebhookResult, error) {
	ev := model.PaymentGatewayEvent{
		GatewayEventType:       strPtr(n.TransactionStatus),
		GatewayEventExternalID: strPtr(n.OrderID),
		GatewayEventPayload:    datatypes.JSON(raw),
		GatewayEventSignature:  strPtr(n.SignatureKey),
		GatewayEventStatus:     model.GatewayEventReceived,
	}
	if n.TransactionID != "" {
		ev.GatewayEventExternalRef = strPtr(n.TransactionID)
	}

	res := WebhookResult{Status: "ok"}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p model.Payment
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("payment_external_id = ?", n.OrderID).
			First(&p).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ev.GatewayEventStatus = model.GatewayEventIgnored
			ev.GatewayEventError = strPtr("payment not found for order_id=" + n.OrderID)
			res = WebhookResult{Status: "ignored", Reason: "payment not found"}
			return tx.Create(&ev).Error
		}
		if err != nil {
			return err
		}
		ev.GatewayEventTenantID = &p.PaymentTenantID
		ev.GatewayEventPaymentID = &p.PaymentID
		res.PaymentID = &p.PaymentID

		if gross, perr := decimal.NewFromString(n.GrossAmount); perr == nil && !gross.Round(0).Equal(p.PaymentAmount.Round(0)) {
			ev.GatewayEventStatus = model.GatewayEventFailed
			ev.GatewayEventError = strPtr(ErrAmountMismatch.Error())
			res.Status, res.Reason, res.Payment = "ignored", ErrAmountMismatch.Error(), p.PaymentStatus
			return tx.Create(&ev).Error
		}

		next, ok := MapStatus(n.TransactionStatus, n.FraudStatus)
		if !ok || next == p.PaymentStatus {
			ev.GatewayEventStatus = model.GatewayEventIgnored
			ev.GatewayEventProcessedAt = &now
			res.Status, res.Payment = "ignored", p.PaymentStatus
			return tx.Create(&ev).Error
		}
		// a settled payment is never reopened by a late notification
		if p.PaymentStatus == model.PaymentStatusPaid {
			ev.GatewayEventStatus = model.GatewayEventIgnored
			ev.GatewayEventError = strPtr(ErrPaymentClosed.Error())
			ev.GatewayEventProcessedAt = &now
			res.Status, res.Reason, res.Payment = "ignored", "already paid", p.PaymentStatus
			return tx.Create(&ev).Error
		}

		prev := p.PaymentStatus
		p.PaymentStatus = next
		if next == model.PaymentStatusPaid {
			p.PaymentPaidAt = &now
		}
		if n.TransactionID != "" {
			p.PaymentGatewayReference = strPtr(n.TransactionID)
		}
		if err := tx.Save(&p).Error; err != nil {
			return err
		}
		if err := SyncPaymentGuardians(ctx, NewGormFinancialStore(tx), p, now); err != nil {
			return errors.Wrap(err, "sync estado financiero")
		}
		if err := s.audit(tx, p, nil, auditModel.ActionStatus, map[string]any{
			"from": prev, "to": next, "source": "midtrans", "transactionStatus": n.TransactionStatus,
		}); err != nil {
			return err
		}

		ev.GatewayEventStatus = model.GatewayEventProcessed
		ev.GatewayEventProcessedAt = &now
		res.Payment = p.PaymentStatus
		return tx.Create(&ev).Error
	})
	if err != nil {
		// keep a trace of the failed callback outside the rolled back transaction
		ev.GatewayEventStatus = model.GatewayEventFailed
		ev.GatewayEventError = strPtr(err.Error())
		_ = s.DB.WithContext(ctx).Create(&ev).Error
		return res, err
	}
	return res, nil
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
