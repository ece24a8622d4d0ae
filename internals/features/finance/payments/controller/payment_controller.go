// file: internals/features/finance/payments/controller/payment_controller.go
package controller

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"colegio_backend/internals/constants"
	dto "colegio_backend/internals/features/finance/payments/dto"
	model "colegio_backend/internals/features/finance/payments/model"
	svc "colegio_backend/internals/features/finance/payments/service"
	apoderadoModel "colegio_backend/internals/features/students/apoderados/model"
	estudianteModel "colegio_backend/internals/features/students/estudiantes/model"
	helper "colegio_backend/internals/helpers"
	helperAuth "colegio_backend/internals/helpers/auth"
	"colegio_backend/internals/helpers/dbtime"
	"colegio_backend/internals/helpers/storage"
)

/* =======================================================================
   Controller
======================================================================= */

type PaymentController struct {
	DB        *gorm.DB
	Validator *validator.Validate
	Links     helperAuth.LinkResolver
	Service   *svc.PaymentService
	Storage   *storage.Service
}

func NewPaymentController(db *gorm.DB, gw *svc.Gateway, store *storage.Service) *PaymentController {
	return &PaymentController{
		DB:        db,
		Validator: helper.Validator(),
		Links:     helperAuth.NewDBLinks(db),
		Service:   svc.NewPaymentService(db, gw),
		Storage:   store,
	}
}

var paymentCols = helperAuth.Columns{Tenant: "payment_tenant_id", Student: "payment_estudiante_id"}

var paymentSort = map[string]string{
	"due_date":   "payment_due_date",
	"created_at": "payment_created_at",
	"amount":     "payment_amount",
	"status":     "payment_status",
}

// load one payment inside the caller's scope; 404 for anything outside it
func (h *PaymentController) load(c *fiber.Ctx, scope helperAuth.Scope, id uuid.UUID) (model.Payment, error) {
	var p model.Payment
	q := scope.Apply(h.DB.WithContext(c.UserContext()).Model(&model.Payment{}), paymentCols)
	if err := q.Where("payment_id = ?", id).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return p, fiber.NewError(fiber.StatusNotFound, "pago no encontrado")
		}
		return p, err
	}
	return p, nil
}

/* =======================================================================
   Handlers
======================================================================= */

// GET /api/payments
func (h *PaymentController) List(c *fiber.Ctx) error {
	_, scope, err := helperAuth.ScopeFromCtx(c, h.Links)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var q dto.ListQuery
	if err := c.QueryParser(&q); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "query inválido")
	}

	tx := scope.Apply(h.DB.WithContext(c.UserContext()).Model(&model.Payment{}), paymentCols)
	if id, err := uuid.Parse(strings.TrimSpace(q.EstudianteID)); err == nil {
		tx = tx.Where("payment_estudiante_id = ?", id)
	}
	if id, err := uuid.Parse(strings.TrimSpace(q.ApoderadoID)); err == nil {
		tx = tx.Where("payment_apoderado_id = ?", id)
	}
	if s := strings.ToLower(strings.TrimSpace(q.Status)); s != "" {
		if !model.IsValidStatus(s) {
			return helper.JsonError(c, fiber.StatusBadRequest, "status inválido")
		}
		tx = tx.Where("payment_status = ?", s)
	}
	if p := strings.TrimSpace(q.Period); p != "" {
		tx = tx.Where("payment_period = ?", p)
	}
	if d, err := time.Parse("2006-01-02", strings.TrimSpace(q.DueFrom)); err == nil {
		tx = tx.Where("payment_due_date >= ?", d)
	}
	if d, err := time.Parse("2006-01-02", strings.TrimSpace(q.DueTo)); err == nil {
		tx = tx.Where("payment_due_date <= ?", d)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return helper.DBError(c, err)
	}
	pg := helper.ResolvePaging(c, 20, 200)
	var rows []model.Payment
	if err := tx.Order(helper.ResolveSort(c, paymentSort, "due_date", "desc")).
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&rows).Error; err != nil {
		return helper.DBError(c, err)
	}
	return helper.JsonList(c, "ok", rows, helper.BuildPagination(total, pg))
}

// GET /api/payments/:id
func (h *PaymentController) GetByID(c *fiber.Ctx) error {
	_, scope, err := helperAuth.ScopeFromCtx(c, h.Links)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	id, err := helperAuth.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	p, err := h.load(c, scope, id)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "ok", p)
}

// POST /api/payments
func (h *PaymentController) Create(c *fiber.Ctx) error {
	cl, err := helperAuth.GetClaims(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	tenantID, err := helperAuth.WriteTenantID(c, cl)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	var req dto.CreatePaymentRequest
	if ok, err := helper.BindAndValidate(c, &req); !ok {
		return err
	}
	req.Normalize()
	if !req.Amount.IsPositive() {
		return helper.JsonValidationError(c, map[string][]string{"amount": {"amount debe ser mayor a 0"}})
	}

	m := req.ToModel(tenantID)

	// 🔎 student (and guardian, if given) must live in this tenant
	var est estudianteModel.Estudiante
	if err := h.DB.WithContext(c.UserContext()).
		First(&est, "estudiante_id = ? AND estudiante_tenant_id = ?", m.PaymentEstudianteID, tenantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "estudiante no encontrado")
		}
		return helper.DBError(c, err)
	}
	if m.PaymentApoderadoID != nil {
		var n int64
		h.DB.WithContext(c.UserContext()).Model(&apoderadoModel.Apoderado{}).
			Where("apoderado_id = ? AND apoderado_tenant_id = ?", *m.PaymentApoderadoID, tenantID).
			Count(&n)
		if n == 0 {
			return helper.JsonError(c, fiber.StatusNotFound, "apoderado no encontrado")
		}
	}

	if err := h.Service.Create(c.UserContext(), &m, &cl.UserID, dbtime.Now(c)); err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonCreated(c, "pago creado", m)
}

// PATCH /api/payments/:id/status
func (h *PaymentController) UpdateStatus(c *fiber.Ctx) error {
	cl, scope, err := helperAuth.ScopeFromCtx(c, h.Links)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	id, err := helperAuth.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.UpdateStatusRequest
	if ok, err := helper.BindAndValidate(c, &req); !ok {
		return err
	}

	p, err := h.Service.UpdateStatus(c.UserContext(), scope.TenantID, id, svc.StatusChange{
		Status: strings.ToLower(strings.TrimSpace(req.Status)),
		Method: req.Method,
		Note:   req.Note,
	}, cl.UserID, dbtime.Now(c))
	if errors.Is(err, svc.ErrPaymentNotFound) {
		return helper.JsonError(c, fiber.StatusNotFound, err.Error())
	}
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonUpdated(c, "estado actualizado", p)
}

// POST /api/payments/:id/checkout
// Guardians pay their own students' charges; staff with payment.write can open one on their behalf.
func (h *PaymentController) Checkout(c *fiber.Ctx) error {
	cl, scope, err := helperAuth.ScopeFromCtx(c, h.Links)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	if !constants.Can(cl.Role, constants.CapPaymentCheckout) && !constants.Can(cl.Role, constants.CapPaymentWrite) {
		return helper.JsonError(c, fiber.StatusForbidden, constants.RoleError(cl.Role, "pagar en línea"))
	}
	id, err := helperAuth.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	p, err := h.load(c, scope, id)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	p, err = h.Service.Checkout(c.UserContext(), p, h.customerOf(c, p), dbtime.Now(c))
	switch {
	case errors.Is(err, svc.ErrGatewayDisabled):
		return helper.JsonError(c, fiber.StatusServiceUnavailable, err.Error())
	case errors.Is(err, svc.ErrPaymentClosed):
		return helper.JsonError(c, fiber.StatusConflict, err.Error())
	case err != nil:
		log.Printf("[ERROR] checkout %s: %v", p.PaymentID, err)
		return helper.JsonError(c, fiber.StatusBadGateway, err.Error())
	}

	return helper.JsonOK(c, "checkout creado", dto.CheckoutResponse{
		PaymentID:   p.PaymentID,
		OrderID:     deref(p.PaymentExternalID),
		SnapToken:   deref(p.PaymentSnapToken),
		RedirectURL: deref(p.PaymentRedirectURL),
	})
}

// customer details for Snap: the payment's guardian, else the student
func (h *PaymentController) customerOf(c *fiber.Ctx, p model.Payment) svc.CustomerInput {
	db := h.DB.WithContext(c.UserContext())
	if p.PaymentApoderadoID != nil {
		var a apoderadoModel.Apoderado
		if err := db.First(&a, "apoderado_id = ?", *p.PaymentApoderadoID).Error; err == nil {
			return svc.CustomerInput{
				FirstName: a.ApoderadoFirstName,
				LastName:  a.ApoderadoLastName,
				Email:     deref(a.ApoderadoEmail),
				Phone:     deref(a.ApoderadoPhone),
			}
		}
	}
	var e estudianteModel.Estudiante
	if err := db.First(&e, "estudiante_id = ?", p.PaymentEstudianteID).Error; err == nil {
		return svc.CustomerInput{FirstName: e.EstudianteFirstName, LastName: e.EstudianteLastName, Email: deref(e.EstudianteEmail)}
	}
	return svc.CustomerInput{}
}

// POST /api/payments/:id/receipt (multipart "file")
func (h *PaymentController) UploadReceipt(c *fiber.Ctx) error {
	cl, scope, err := helperAuth.ScopeFromCtx(c, h.Links)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	id, err := helperAuth.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	p, err := h.load(c, scope, id)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	if h.Storage == nil {
		return helper.JsonError(c, fiber.StatusServiceUnavailable, "almacenamiento no configurado")
	}
	fh, err := c.FormFile("file")
	if err != nil || fh == nil || fh.Size == 0 {
		return helper.JsonError(c, fiber.StatusBadRequest, "archivo requerido (file)")
	}

	url, err := h.Storage.UploadFile(c.UserContext(), "payments/"+p.PaymentTenantID.String()+"/receipts", fh)
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadGateway, "error subiendo comprobante: "+err.Error())
	}
	old := p.PaymentReceiptURL

	// a receipt from a guardian moves a pending charge into review
	updates := map[string]any{"payment_receipt_url": url}
	if next := p.ReceiptStatus(); cl.Role == constants.RoleApoderado && next != p.PaymentStatus {
		if _, err := h.Service.UpdateStatus(c.UserContext(), &p.PaymentTenantID, p.PaymentID,
			svc.StatusChange{Status: next}, cl.UserID, dbtime.Now(c)); err != nil {
			return helper.FromFiberError(c, err)
		}
	}
	if err := h.DB.WithContext(c.UserContext()).Model(&model.Payment{}).
		Where("payment_id = ?", p.PaymentID).Updates(updates).Error; err != nil {
		return helper.DBError(c, err)
	}
	if old != nil && *old != "" {
		if err := h.Storage.DeleteByURL(c.UserContext(), *old); err != nil {
			log.Printf("[WARN] borrar comprobante anterior %s: %v", *old, err)
		}
	}

	p, _ = h.load(c, scope, id)
	return helper.JsonUpdated(c, "comprobante cargado", p)
}

/* =======================================================================
   Webhook Midtrans
======================================================================= */

// POST /api/payments/midtrans/webhook (public)
func (h *PaymentController) MidtransWebhook(c *fiber.Ctx) error {
	// 1) Parse payload
	var n svc.Notification
	if err := c.BodyParser(&n); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "payload inválido: "+err.Error())
	}

	// 2) Verify signature
	if !h.Service.Gateway.VerifySignature(n) {
		log.Printf("[WARN] midtrans webhook firma inválida order_id=%s", n.OrderID)
		return helper.JsonError(c, fiber.StatusUnauthorized, "firma inválida")
	}

	// 3) Apply (event log + status + guardian resync, one transaction)
	raw := append([]byte(nil), c.Body()...)
	res, err := h.Service.ApplyWebhook(c.UserContext(), n, raw, time.Now())
	if err != nil {
		log.Printf("[ERROR] midtrans webhook order_id=%s: %v", n.OrderID, err)
		return helper.FromFiberError(c, err)
	}
	// 200 even when ignored, so Midtrans stops retrying
	return c.JSON(res)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
