package redis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bsm/redislock"
	goredis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/gsa-backend/internal/application/ports"
)

const lockPrefix = "gsa:lock:"

// Lock implementa ports.JobLock con redislock.
type Lock struct {
	locker *redislock.Client
}

// NewLock construye el lock sobre un cliente ya conectado.
func NewLock(rdb *goredis.Client) *Lock {
	return &Lock{locker: redislock.New(rdb)}
}

var _ ports.JobLock = (*Lock)(nil)

// TryLock intenta obtener el lock una sola vez, sin reintentos.
func (l *Lock) TryLock(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	lock, err := l.locker.Obtain(ctx, lockPrefix+key, ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis: obtener lock %s: %w", key, err)
	}
	release := func() {
		_ = lock.Release(context.Background())
	}
	return release, true, nil
}

// LocalLock exclusión dentro del proceso, usada cuando no hay Redis (una sola réplica).
type LocalLock struct {
	mu   sync.Mutex
	held map[string]bool
}

// NewLocalLock construye el lock en memoria.
func NewLocalLock() *LocalLock {
	return &LocalLock{held: map[string]bool{}}
}

var _ ports.JobLock = (*LocalLock)(nil)

// TryLock ignora el TTL: el lock se mantiene hasta llamar release.
func (l *LocalLock) TryLock(_ context.Context, key string, _ time.Duration) (func(), bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] {
		return nil, false, nil
	}
	l.held[key] = true
	return func() {
		l.mu.Lock()
		delete(l.held, key)
		l.mu.Unlock()
	}, true, nil
}
