package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"colegio_backend/internals/features/finance/payments/model"
	apoderadoModel "colegio_backend/internals/features/students/apoderados/model"
)

// memStore evaluates HasOutstanding with the same rule the SQL encodes.
type memStore struct {
	guardians map[uuid.UUID]*apoderadoModel.Apoderado
	payments  []*model.Payment
	writes    int
}

func (m *memStore) GetGuardian(_ context.Context, id uuid.UUID) (apoderadoModel.Apoderado, error) {
	g, ok := m.guardians[id]
	if !ok {
		return apoderadoModel.Apoderado{}, ErrGuardianNotFound
	}
	return *g, nil
}

func (m *memStore) HasOutstanding(_ context.Context, g apoderadoModel.Apoderado, now time.Time) (bool, error) {
	for _, p := range m.payments {
		if p.PaymentTenantID != g.ApoderadoTenantID {
			continue
		}
		byGuardian := p.PaymentApoderadoID != nil && *p.PaymentApoderadoID == g.ApoderadoID
		byStudent := p.PaymentApoderadoID == nil && g.ApoderadoEstudianteID != nil && p.PaymentEstudianteID == *g.ApoderadoEstudianteID
		if (byGuardian || byStudent) && p.IsOutstanding(now) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) SetFinancialStatus(_ context.Context, id uuid.UUID, status string, at time.Time) error {
	m.writes++
	m.guardians[id].ApoderadoFinancialStatus = status
	m.guardians[id].ApoderadoFinancialStatusAt = &at
	return nil
}

func (m *memStore) GuardianIDsOfStudent(_ context.Context, tenantID, estudianteID uuid.UUID) ([]uuid.UUID, error) {
	var out []uuid.UUID
	for id, g := range m.guardians {
		if g.ApoderadoTenantID == tenantID && g.ApoderadoEstudianteID != nil && *g.ApoderadoEstudianteID == estudianteID {
			out = append(out, id)
		}
	}
	return out, nil
}

type FinancialStatusSuite struct {
	suite.Suite
	ctx      context.Context
	now      time.Time
	tenant   uuid.UUID
	student  uuid.UUID
	guardian uuid.UUID
	store    *memStore
}

func (s *FinancialStatusSuite) SetupTest() {
	s.ctx = context.Background()
	s.now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	s.tenant, s.student, s.guardian = uuid.New(), uuid.New(), uuid.New()
	st := s.student
	s.store = &memStore{guardians: map[uuid.UUID]*apoderadoModel.Apoderado{
		s.guardian: {
			ApoderadoID:              s.guardian,
			ApoderadoTenantID:        s.tenant,
			ApoderadoEstudianteID:    &st,
			ApoderadoFinancialStatus: apoderadoModel.FinancialSolvente,
		},
	}}
}

func (s *FinancialStatusSuite) payment(status string, due time.Time) *model.Payment {
	g := s.guardian
	p := &model.Payment{
		PaymentID:           uuid.New(),
		PaymentTenantID:     s.tenant,
		PaymentEstudianteID: s.student,
		PaymentApoderadoID:  &g,
		PaymentAmount:       decimal.NewFromInt(50000),
		PaymentStatus:       status,
		PaymentDueDate:      &due,
	}
	s.store.payments = append(s.store.payments, p)
	return p
}

func (s *FinancialStatusSuite) TestPendingYesterdayThenPaid() {
	pending := s.payment(model.PaymentStatusPending, s.now.AddDate(0, 0, -1))
	s.payment(model.PaymentStatusPaid, s.now.AddDate(0, -1, 0))

	got, err := SyncFinancialStatus(s.ctx, s.store, s.guardian, s.now)
	s.Require().NoError(err)
	s.Equal(apoderadoModel.FinancialMoroso, got)

	pending.PaymentStatus = model.PaymentStatusPaid
	got, err = SyncFinancialStatus(s.ctx, s.store, s.guardian, s.now)
	s.Require().NoError(err)
	s.Equal(apoderadoModel.FinancialSolvente, got)
}

func (s *FinancialStatusSuite) TestIdempotent() {
	s.payment(model.PaymentStatusOverdue, s.now.AddDate(0, -2, 0))

	first, err := SyncFinancialStatus(s.ctx, s.store, s.guardian, s.now)
	s.Require().NoError(err)
	writes := s.store.writes
	second, err := SyncFinancialStatus(s.ctx, s.store, s.guardian, s.now)
	s.Require().NoError(err)

	s.Equal(first, second)
	s.Equal(writes, s.store.writes, "unchanged status is not rewritten")
}

func (s *FinancialStatusSuite) TestDueTodayIsNotPast() {
	s.payment(model.PaymentStatusPending, s.now.Add(time.Hour))
	s.payment(model.PaymentStatusInReview, s.now)

	got, err := SyncFinancialStatus(s.ctx, s.store, s.guardian, s.now)
	s.Require().NoError(err)
	s.Equal(apoderadoModel.FinancialSolvente, got)
}

func (s *FinancialStatusSuite) TestRejectedDoesNotCount() {
	s.payment(model.PaymentStatusRejected, s.now.AddDate(0, -1, 0))

	got, err := SyncFinancialStatus(s.ctx, s.store, s.guardian, s.now)
	s.Require().NoError(err)
	s.Equal(apoderadoModel.FinancialSolvente, got)
}

func (s *FinancialStatusSuite) TestExentoUntouched() {
	s.store.guardians[s.guardian].ApoderadoFinancialStatus = apoderadoModel.FinancialExento
	s.payment(model.PaymentStatusOverdue, s.now.AddDate(0, -5, 0))

	got, err := SyncFinancialStatus(s.ctx, s.store, s.guardian, s.now)
	s.Require().NoError(err)
	s.Equal(apoderadoModel.FinancialExento, got)
	s.Zero(s.store.writes)
}

func (s *FinancialStatusSuite) TestStudentLevelPaymentReachesGuardian() {
	p := s.payment(model.PaymentStatusOverdue, s.now.AddDate(0, -1, 0))
	p.PaymentApoderadoID = nil

	s.Require().NoError(SyncPaymentGuardians(s.ctx, s.store, *p, s.now))
	s.Equal(apoderadoModel.FinancialMoroso, s.store.guardians[s.guardian].ApoderadoFinancialStatus)
}

func (s *FinancialStatusSuite) TestOtherTenantIgnored() {
	p := s.payment(model.PaymentStatusOverdue, s.now.AddDate(0, -1, 0))
	p.PaymentTenantID = uuid.New()

	got, err := SyncFinancialStatus(s.ctx, s.store, s.guardian, s.now)
	s.Require().NoError(err)
	s.Equal(apoderadoModel.FinancialSolvente, got)
}

func (s *FinancialStatusSuite) TestUnknownGuardian() {
	_, err := SyncFinancialStatus(s.ctx, s.store, uuid.New(), s.now)
	s.ErrorIs(err, ErrGuardianNotFound)
}

func TestFinancialStatusSuite(t *testing.T) {
	suite.Run(t, new(FinancialStatusSuite))
}

func TestShouldMarkOverdue(t *testing.T) {
	today := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	yesterday := today.AddDate(0, 0, -1)

	assert.True(t, ShouldMarkOverdue(model.Payment{PaymentStatus: model.PaymentStatusPending, PaymentDueDate: &yesterday}, today))
	assert.False(t, ShouldMarkOverdue(model.Payment{PaymentStatus: model.PaymentStatusPending, PaymentDueDate: &today}, today))
	assert.False(t, ShouldMarkOverdue(model.Payment{PaymentStatus: model.PaymentStatusInReview, PaymentDueDate: &yesterday}, today))
	assert.False(t, ShouldMarkOverdue(model.Payment{PaymentStatus: model.PaymentStatusPending}, today))
}

func TestDecideFinancialStatus(t *testing.T) {
	require.Equal(t, apoderadoModel.FinancialMoroso, DecideFinancialStatus(apoderadoModel.FinancialSolvente, true))
	require.Equal(t, apoderadoModel.FinancialSolvente, DecideFinancialStatus(apoderadoModel.FinancialMoroso, false))
	require.Equal(t, apoderadoModel.FinancialExento, DecideFinancialStatus(apoderadoModel.FinancialExento, true))
}
