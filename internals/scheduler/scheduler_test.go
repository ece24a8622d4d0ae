package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noop(context.Context) error { return nil }

func TestAddRejectsMalformedSchedule(t *testing.T) {
	s := New(time.UTC)
	err := s.Add(Job{Name: "x", Schedule: "cada noche", Run: noop})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cron x")
}

func TestAddAcceptsDefaults(t *testing.T) {
	s := New(nil)
	assert.Equal(t, time.UTC, s.loc)
	require.NoError(t, s.Add(Job{Name: "overdue", Schedule: "0 3 * * *", Run: noop}))
	require.NoError(t, s.Add(Job{Name: "purge", Schedule: BlacklistPurgeSchedule, Run: noop}))
	assert.Len(t, s.cron.Entries(), 2)
}

func TestRunJobSwallowsErrors(t *testing.T) {
	called := false
	assert.NotPanics(t, func() {
		runJob(Job{Name: "boom", Run: func(ctx context.Context) error {
			called = true
			_, hasDeadline := ctx.Deadline()
			assert.True(t, hasDeadline)
			return errors.New("fallo")
		}})
	})
	assert.True(t, called)
}

func TestStopWithoutStart(t *testing.T) {
	s := New(time.UTC)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NotPanics(t, func() { s.Stop(ctx) })
}
