// Package locks provides Redis-backed distributed locks so that only one
// instance runs the refresh sweep at a time. Held locks are renewed in the
// background; a failed renewal releases the lock locally so the holder never
// believes it owns a lock Redis already gave away.
package locks

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// sweepLockTTL is the expiration for the refresh sweep lock. Long enough to
// cover a sweep cycle, short enough that a crashed holder frees it quickly.
const sweepLockTTL = 5 * time.Minute

// RedisLockClient is the slice of the Redis client the manager needs.
type RedisLockClient interface {
	AcquireLock(ctx context.Context, key string, expiration time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key string) error
	ExtendLock(ctx context.Context, key string, expiration time.Duration) error
}

// Lock is a distributed lock held by this instance.
type Lock interface {
	// Key returns the lock's identifier.
	Key() string

	// Release releases the lock and stops its background renewal. Safe to
	// call more than once.
	Release(ctx context.Context) error

	// IsHeld reports whether this instance still holds the lock. It checks
	// local state only.
	IsHeld() bool
}

// Manager acquires and renews distributed locks. Safe for concurrent use.
type Manager struct {
	redis RedisLockClient

	mu   sync.Mutex
	held map[string]*localLock
}

type localLock struct {
	key        string
	expiration time.Duration
	ctx        context.Context
	cancel     context.CancelFunc
}

func NewManager(redisClient RedisLockClient) *Manager {
	return &Manager{
		redis: redisClient,
		held:  make(map[string]*localLock),
	}
}

// Acquire attempts to take the lock. A lock held elsewhere returns
// (nil, false, nil): contention is a normal outcome, not an error.
func (m *Manager) Acquire(ctx context.Context, key string, expiration time.Duration) (Lock, bool, error) {
	acquired, err := m.redis.AcquireLock(ctx, key, expiration)
	if err != nil {
		return nil, false, fmt.Errorf("failed to acquire distributed lock: %w", err)
	}
	if !acquired {
		return nil, false, nil
	}

	lockCtx, cancel := context.WithCancel(context.Background())
	lock := &localLock{
		key:        key,
		expiration: expiration,
		ctx:        lockCtx,
		cancel:     cancel,
	}

	m.mu.Lock()
	m.held[key] = lock
	m.mu.Unlock()

	go m.renew(lock)

	return lock, true, nil
}

// AcquireSweepLock takes the singleton lock guarding the refresh sweep.
func (m *Manager) AcquireSweepLock(ctx context.Context) (Lock, bool, error) {
	return m.Acquire(ctx, "token-vault:refresh-sweep", sweepLockTTL)
}

// renew extends the lock at a third of its expiration until the lock is
// released or an extension fails.
func (m *Manager) renew(lock *localLock) {
	interval := lock.expiration / 3
	if interval < time.Second {
		interval = time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-lock.ctx.Done():
			m.drop(lock)
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			err := m.redis.ExtendLock(ctx, lock.key, lock.expiration)
			cancel()

			if err != nil {
				// Lock lost; stop claiming it locally.
				lock.cancel()
				m.drop(lock)
				return
			}
		}
	}
}

func (m *Manager) drop(lock *localLock) {
	m.mu.Lock()
	delete(m.held, lock.key)
	m.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	m.redis.ReleaseLock(ctx, lock.key)
}

// Close cancels renewal for every held lock. The keys expire naturally in
// Redis if the release does not reach it.
func (m *Manager) Close() error {
	m.mu.Lock()
	locks := make([]*localLock, 0, len(m.held))
	for _, lock := range m.held {
		locks = append(locks, lock)
	}
	m.mu.Unlock()

	for _, lock := range locks {
		lock.cancel()
	}
	return nil
}

func (l *localLock) Key() string {
	return l.key
}

func (l *localLock) Release(ctx context.Context) error {
	l.cancel()
	return nil
}

func (l *localLock) IsHeld() bool {
	select {
	case <-l.ctx.Done():
		return false
	default:
		return true
	}
}
