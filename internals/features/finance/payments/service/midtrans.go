package service

import (
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strings"

	midtrans "github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"

	"colegio_backend/internals/features/finance/payments/model"
)

/* =========================================================
   Midtrans Client
========================================================= */

// Gateway creates Snap checkouts. One per process, built at startup.
type Gateway struct {
	client    snap.Client
	serverKey string
	enabled   bool
}

func NewGateway(serverKey string, useProduction bool) *Gateway {
	g := &Gateway{serverKey: serverKey, enabled: strings.TrimSpace(serverKey) != ""}
	env := midtrans.Sandbox
	if useProduction {
		env = midtrans.Production
	}
	g.client.New(serverKey, env)
	return g
}

func (g *Gateway) Enabled() bool { return g != nil && g.enabled }

type CustomerInput struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
}

var ErrGatewayDisabled = errors.New("pasarela de pago no configurada")

// CreateCheckout returns (snap token, redirect url) for the payment's external id.
func (g *Gateway) CreateCheckout(p model.Payment, cust CustomerInput) (string, string, error) {
	if !g.Enabled() {
		return "", "", ErrGatewayDisabled
	}
	amount := p.PaymentAmount.Round(0).IntPart()
	if amount <= 0 {
		return "", "", errors.New("monto inválido para checkout")
	}
	if p.PaymentExternalID == nil || *p.PaymentExternalID == "" {
		return "", "", errors.New("payment external id requerido (order id)")
	}

	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  *p.PaymentExternalID,
			GrossAmt: amount,
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: cust.FirstName,
			LName: cust.LastName,
			Email: cust.Email,
			Phone: cust.Phone,
		},
		Items: &[]midtrans.ItemDetails{{
			ID:    truncate(*p.PaymentExternalID, 50),
			Price: amount,
			Qty:   1,
			Name:  truncate(defaultString(p.PaymentConcept, "Pago colegio"), 50),
		}},
		CustomField1: p.PaymentID.String(),
	}

	resp, err := g.client.CreateTransaction(req)
	if err != nil {
		return "", "", err
	}
	return resp.Token, resp.RedirectURL, nil
}

/* =========================================================
   Webhook
========================================================= */

// Notification is the subset of the Midtrans callback body we use.
type Notification struct {
	TransactionTime   string `json:"transaction_time"`
	TransactionStatus string `json:"transaction_status"`
	StatusCode        string `json:"status_code"`
	SignatureKey      string `json:"signature_key"`
	OrderID           string `json:"order_id"`
	GrossAmount       string `json:"gross_amount"`
	PaymentType       string `json:"payment_type"`
	FraudStatus       string `json:"fraud_status"`
	TransactionID     string `json:"transaction_id"`
}

// Signature: SHA512(order_id + status_code + gross_amount + server_key), hex.
func Signature(orderID, statusCode, grossAmount, serverKey string) string {
	h := sha512.Sum512([]byte(orderID + statusCode + grossAmount + serverKey))
	return hex.EncodeToString(h[:])
}

func (g *Gateway) VerifySignature(n Notification) bool {
	if g == nil || g.serverKey == "" || n.SignatureKey == "" {
		return false
	}
	want := Signature(n.OrderID, n.StatusCode, n.GrossAmount, g.serverKey)
	return subtle.ConstantTimeCompare([]byte(want), []byte(strings.ToLower(n.SignatureKey))) == 1
}

// MapStatus translates a Midtrans transaction status into ours.
// ok=false means keep the current status.
func MapStatus(transactionStatus, fraudStatus string) (status string, ok bool) {
	switch strings.ToLower(transactionStatus) {
	case "capture":
		switch strings.ToLower(fraudStatus) {
		case "accept", "":
			return model.PaymentStatusPaid, true
		case "challenge":
			return model.PaymentStatusInReview, true
		}
		return model.PaymentStatusRejected, true
	case "settlement":
		return model.PaymentStatusPaid, true
	case "deny", "cancel", "expire", "failure", "refund", "partial_refund":
		return model.PaymentStatusRejected, true
	}
	return "", false
}

/* =========================================================
   Utils
========================================================= */

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[:n]
}

func defaultString(s string, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
