package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"colegio_backend/internals/features/communication/notifications/model"
	apoderadoModel "colegio_backend/internals/features/students/apoderados/model"
	tenantModel "colegio_backend/internals/features/tenants/model"
	userModel "colegio_backend/internals/features/users/user/model"
	"colegio_backend/internals/helpers/mailer"
)

const asyncTimeout = 30 * time.Second

// Notifier writes in-app notifications and mirrors them by e-mail.
type Notifier struct {
	DB          *gorm.DB
	Mail        mailer.Sender
	FrontendURL string
}

func New(db *gorm.DB, m mailer.Sender, frontendURL string) *Notifier {
	return &Notifier{DB: db, Mail: m, FrontendURL: strings.TrimRight(frontendURL, "/")}
}

// Notice is what every recipient gets.
type Notice struct {
	Type  string
	Title string
	Body  string
	// path under the frontend, e.g. "/evaluaciones/<id>"
	Path string
	Meta map[string]any
}

func (n *Notifier) link(path string) string {
	if path == "" || n.FrontendURL == "" {
		return ""
	}
	return n.FrontendURL + path
}

func (n *Notifier) branding(ctx context.Context, tenantID uuid.UUID) (mailer.Branding, string) {
	var t tenantModel.Tenant
	if err := n.DB.WithContext(ctx).First(&t, "tenant_id = ?", tenantID).Error; err != nil {
		return mailer.Branding{SchoolName: "Colegio"}, "Colegio"
	}
	b := mailer.Branding{SchoolName: t.TenantName}
	if t.TenantLogoURL != nil {
		b.LogoURL = *t.TenantLogoURL
	}
	return b, t.SenderName()
}

// NotifyUsers inserts one notification per user and e-mails those with an address.
func (n *Notifier) NotifyUsers(ctx context.Context, tenantID uuid.UUID, userIDs []uuid.UUID, notice Notice) (int, error) {
	userIDs = lo.Uniq(userIDs)
	if len(userIDs) == 0 {
		return 0, nil
	}
	var users []userModel.User
	if err := n.DB.WithContext(ctx).
		Where("user_id IN ? AND user_is_active = TRUE", userIDs).
		Where("user_tenant_id = ?", tenantID).
		Find(&users).Error; err != nil {
		return 0, err
	}
	if len(users) == 0 {
		return 0, nil
	}

	link := n.link(notice.Path)
	rows := make([]model.Notification, 0, len(users))
	for _, u := range users {
		row := model.Notification{
			NotificationTenantID: tenantID,
			NotificationUserID:   u.UserID,
			NotificationTitle:    notice.Title,
			NotificationBody:     notice.Body,
			NotificationType:     notice.Type,
		}
		if link != "" {
			row.NotificationLink = &link
		}
		if len(notice.Meta) > 0 {
			row.NotificationMeta = datatypes.JSONMap(notice.Meta)
		}
		rows = append(rows, row)
	}
	if err := n.DB.WithContext(ctx).CreateInBatches(&rows, 200).Error; err != nil {
		return 0, err
	}

	brand, from := n.branding(ctx, tenantID)
	html, err := mailer.Render(brand, notice.Title, []string{notice.Body}, link)
	if err != nil {
		return len(rows), err
	}
	msgs := make([]mailer.Message, 0, len(users))
	for _, u := range users {
		msgs = append(msgs, mailer.Message{
			To:       mailer.Addresses([2]string{u.UserFullName, u.UserEmail}),
			Subject:  notice.Title,
			HTML:     html,
			Text:     notice.Body,
			FromName: from,
		})
	}
	mailer.Dispatch(n.Mail, msgs...)
	return len(rows), nil
}

// NotifyUsersAsync runs NotifyUsers detached from the request; errors are logged.
func (n *Notifier) NotifyUsersAsync(tenantID uuid.UUID, userIDs []uuid.UUID, notice Notice) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), asyncTimeout)
		defer cancel()
		if _, err := n.NotifyUsers(ctx, tenantID, userIDs, notice); err != nil {
			log.Printf("[WARN] notificación %q no enviada: %v", notice.Title, err)
		}
	}()
}

// EmailList sends one message to raw addresses without inbox rows.
func (n *Notifier) EmailList(ctx context.Context, tenantID uuid.UUID, to []mailer.Message, title, body string) int {
	brand, from := n.branding(ctx, tenantID)
	html, err := mailer.Render(brand, title, strings.Split(body, "\n\n"), "")
	if err != nil {
		log.Printf("[WARN] render institucional: %v", err)
		return 0
	}
	for i := range to {
		to[i].Subject = title
		to[i].HTML = html
		to[i].Text = body
		to[i].FromName = from
	}
	mailer.Dispatch(n.Mail, to...)
	return len(to)
}

// DebtInfo mirrors the DEBT_BLOCK payload.
type DebtInfo struct {
	OverdueCount int
	TotalDebt    decimal.Decimal
	HasOldDebt   bool
	Currency     string
}

// SendDebtorNoticeAsync e-mails the student's guardians about overdue payments.
// Fire-and-forget: failures only reach the log.
func (n *Notifier) SendDebtorNoticeAsync(tenantID, estudianteID uuid.UUID, studentName string, info DebtInfo) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), asyncTimeout)
		defer cancel()

		var guardians []apoderadoModel.Apoderado
		if err := n.DB.WithContext(ctx).
			Where("apoderado_tenant_id = ? AND apoderado_estudiante_id = ?", tenantID, estudianteID).
			Find(&guardians).Error; err != nil {
			log.Printf("[WARN] aviso de deuda: apoderados de %s: %v", estudianteID, err)
			return
		}
		brand, from := n.branding(ctx, tenantID)
		title := "Aviso de deuda pendiente"
		paragraphs := []string{
			fmt.Sprintf("Registramos %d pago(s) vencido(s) asociados a %s por un total de %s %s.",
				info.OverdueCount, studentName, info.TotalDebt.StringFixed(0), lo.Ternary(info.Currency == "", "CLP", info.Currency)),
			"Existen cuotas con más de tres meses de atraso. Para regularizar la matrícula, comuníquese con la administración.",
		}
		html, err := mailer.Render(brand, title, paragraphs, "")
		if err != nil {
			log.Printf("[WARN] aviso de deuda: render: %v", err)
			return
		}
		msgs := make([]mailer.Message, 0, len(guardians))
		for _, g := range guardians {
			if g.ApoderadoEmail == nil {
				continue
			}
			msgs = append(msgs, mailer.Message{
				To:       mailer.Addresses([2]string{g.FullName(), *g.ApoderadoEmail}),
				Subject:  title,
				HTML:     html,
				Text:     strings.Join(paragraphs, "\n\n"),
				FromName: from,
			})
		}
		if len(msgs) == 0 {
			log.Printf("[INFO] aviso de deuda: estudiante %s sin apoderado con e-mail", estudianteID)
			return
		}
		mailer.Dispatch(n.Mail, msgs...)
	}()
}
