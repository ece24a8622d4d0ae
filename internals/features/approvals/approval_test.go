package approvals

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"colegio_backend/internals/constants"
)

func TestHappyPath(t *testing.T) {
	owner := uuid.New()
	a := Approval{Status: StatusDraft}
	now := time.Now()

	require.NoError(t, a.Submit(owner, Actor{UserID: owner, Role: constants.RoleTeacher}, now))
	assert.Equal(t, StatusSubmitted, a.Status)

	require.NoError(t, a.Review("rejected", "falta rúbrica", Actor{UserID: uuid.New(), Role: constants.RoleUTP}, now))
	assert.Equal(t, StatusRejected, a.Status)
	require.NotNil(t, a.ReviewComment)

	// resubmission after rejection
	require.NoError(t, a.Submit(owner, Actor{UserID: owner, Role: constants.RoleTeacher}, now))
	assert.Nil(t, a.ReviewComment)

	require.NoError(t, a.Review("APPROVED", "", Actor{UserID: uuid.New(), Role: constants.RoleDirector}, now))
	assert.Equal(t, StatusApproved, a.Status)
}

func TestInvalidTransitions(t *testing.T) {
	owner := uuid.New()
	teacher := Actor{UserID: owner, Role: constants.RoleTeacher}
	reviewer := Actor{UserID: uuid.New(), Role: constants.RoleAdmin}

	approved := Approval{Status: StatusApproved}
	assert.ErrorIs(t, approved.Submit(owner, teacher, time.Now()), ErrInvalidTransition)

	draft := Approval{Status: StatusDraft}
	assert.ErrorIs(t, draft.Review("approved", "", reviewer, time.Now()), ErrInvalidTransition)

	// reviewer cannot submit someone else's work
	assert.ErrorIs(t, draft.Submit(owner, reviewer, time.Now()), ErrNotOwner)
	// another teacher cannot submit either
	assert.ErrorIs(t, draft.Submit(owner, Actor{UserID: uuid.New(), Role: constants.RoleTeacher}, time.Now()), ErrNotOwner)

	submitted := Approval{Status: StatusSubmitted}
	for _, r := range []constants.Role{constants.RoleTeacher, constants.RoleSostenedor, constants.RoleStudent} {
		assert.ErrorIs(t, submitted.Review("approved", "", Actor{UserID: uuid.New(), Role: r}, time.Now()), ErrNotReviewer, r)
	}
	assert.ErrorIs(t, submitted.Review("maybe", "", reviewer, time.Now()), ErrInvalidDecision)
}

func TestEditRules(t *testing.T) {
	owner := uuid.New()
	teacher := Actor{UserID: owner, Role: constants.RoleTeacher}

	assert.NoError(t, (&Approval{Status: StatusDraft}).CanEdit(owner, teacher))
	assert.NoError(t, (&Approval{Status: StatusRejected}).CanEdit(owner, teacher))
	assert.ErrorIs(t, (&Approval{Status: StatusApproved}).CanEdit(owner, teacher), ErrFrozen)
	assert.ErrorIs(t, (&Approval{Status: StatusSubmitted}).CanEdit(owner, teacher), ErrInvalidTransition)
	assert.ErrorIs(t, (&Approval{Status: StatusDraft}).CanEdit(owner, Actor{UserID: uuid.New(), Role: constants.RoleTeacher}), ErrNotOwner)
	assert.NoError(t, (&Approval{Status: StatusApproved}).CanEdit(owner, Actor{UserID: uuid.New(), Role: constants.RoleUTP}))
}

func TestInitialStatus(t *testing.T) {
	assert.Equal(t, StatusApproved, InitialStatus(constants.RoleDirector, true))
	assert.Equal(t, StatusDraft, InitialStatus(constants.RoleTeacher, true))
	assert.Equal(t, StatusDraft, InitialStatus(constants.RoleDirector, false))
	assert.Equal(t, StatusDraft, InitialStatus(constants.RoleSostenedor, true))
}

func TestReviewNotice(t *testing.T) {
	c := "revisar objetivos"
	n := ReviewNotice("planificación", "Unidad 1", Approval{Status: StatusRejected, ReviewComment: &c}, "/planificaciones/1")
	assert.Equal(t, "planificación rechazada", n.Title)
	assert.Contains(t, n.Body, "Comentario: revisar objetivos")
	assert.Equal(t, "/planificaciones/1", n.Path)

	n = ReviewNotice("rúbrica", "Disertación", Approval{Status: StatusApproved}, "")
	assert.Equal(t, "Tu rúbrica \"Disertación\" fue aprobada.", n.Body)
}
