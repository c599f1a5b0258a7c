package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/gsa-backend/internal/infrastructure/redis"
)

type fakeSender struct {
	calls int
	day   time.Time
	n     int
	err   error
}

func (f *fakeSender) SendReminders(_ context.Context, today time.Time) (int, error) {
	f.calls++
	f.day = today
	return f.n, f.err
}

func TestRunReminders_EjecutaConLock(t *testing.T) {
	sender := &fakeSender{n: 3}
	s := New(sender, redis.NewLocalLock(), zerolog.Nop())
	fixed := time.Date(2026, 5, 4, 8, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	assert.Equal(t, 3, s.RunReminders(context.Background()))
	assert.Equal(t, 1, sender.calls)
	assert.Equal(t, fixed, sender.day)
}

func TestRunReminders_OmiteSiOtraInstanciaTieneElLock(t *testing.T) {
	sender := &fakeSender{}
	lock := redis.NewLocalLock()
	release, ok, err := lock.TryLock(context.Background(), reminderLockKey, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	defer release()

	s := New(sender, lock, zerolog.Nop())
	assert.Equal(t, -1, s.RunReminders(context.Background()))
	assert.Zero(t, sender.calls)
}

func TestRunReminders_LiberaElLockTrasError(t *testing.T) {
	sender := &fakeSender{n: 1, err: errors.New("fallo")}
	lock := redis.NewLocalLock()
	s := New(sender, lock, zerolog.Nop())

	assert.Equal(t, 1, s.RunReminders(context.Background()))
	assert.Equal(t, 1, s.RunReminders(context.Background()))
	assert.Equal(t, 2, sender.calls)
}

func TestScheduleReminders_ExpresionInvalida(t *testing.T) {
	s := New(&fakeSender{}, redis.NewLocalLock(), zerolog.Nop())
	assert.Error(t, s.ScheduleReminders("no es cron"))
	assert.NoError(t, s.ScheduleReminders("0 8 * * *"))
}
