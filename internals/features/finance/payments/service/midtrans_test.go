package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"colegio_backend/internals/features/finance/payments/model"
)

func TestVerifySignature(t *testing.T) {
	g := NewGateway("SB-Mid-server-test", false)
	n := Notification{OrderID: "COL-123", StatusCode: "200", GrossAmount: "50000.00"}
	n.SignatureKey = Signature(n.OrderID, n.StatusCode, n.GrossAmount, "SB-Mid-server-test")

	assert.True(t, g.VerifySignature(n))

	tampered := n
	tampered.GrossAmount = "1.00"
	assert.False(t, g.VerifySignature(tampered))

	unsigned := n
	unsigned.SignatureKey = ""
	assert.False(t, g.VerifySignature(unsigned))

	assert.False(t, NewGateway("", false).VerifySignature(n), "no server key, nothing verifies")
}

func TestMapStatus(t *testing.T) {
	cases := []struct {
		tx, fraud, want string
		ok              bool
	}{
		{"settlement", "", model.PaymentStatusPaid, true},
		{"capture", "accept", model.PaymentStatusPaid, true},
		{"capture", "challenge", model.PaymentStatusInReview, true},
		{"capture", "deny", model.PaymentStatusRejected, true},
		{"expire", "", model.PaymentStatusRejected, true},
		{"pending", "", "", false},
		{"weird", "", "", false},
	}
	for _, c := range cases {
		got, ok := MapStatus(c.tx, c.fraud)
		assert.Equal(t, c.ok, ok, c.tx)
		assert.Equal(t, c.want, got, c.tx)
	}
}

func TestCheckoutDisabledWithoutKey(t *testing.T) {
	_, _, err := NewGateway("", false).CreateCheckout(model.Payment{}, CustomerInput{})
	assert.ErrorIs(t, err, ErrGatewayDisabled)
}
