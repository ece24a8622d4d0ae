package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReceiptStatus(t *testing.T) {
	cases := map[string]string{
		PaymentStatusPending:  PaymentStatusInReview,
		PaymentStatusOverdue:  PaymentStatusOverdue,
		PaymentStatusInReview: PaymentStatusInReview,
		PaymentStatusPaid:     PaymentStatusPaid,
		PaymentStatusRejected: PaymentStatusRejected,
	}
	for from, want := range cases {
		p := Payment{PaymentStatus: from}
		assert.Equal(t, want, p.ReceiptStatus(), from)
	}
}
