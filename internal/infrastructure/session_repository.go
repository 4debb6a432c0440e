package infrastructure

import (
	"context"
	"sync"
	"time"

	"jobclicks/internal/domain"
	"jobclicks/pkg/logger"
)

type sessionEntry[T any] struct {
	value      T
	lastAccess time.Time
}

// SessionRepository is an in-memory store of dashboard sessions keyed by id.
// Every Store or Get marks the session as accessed; EvictIdle drops sessions
// nobody has touched for a while.
type SessionRepository[T any] struct {
	data   map[string]*sessionEntry[T]
	mutex  sync.RWMutex
	logger *logger.Logger
	now    func() time.Time
}

// creates a new session repository
func NewSessionRepository[T any](logger *logger.Logger) *SessionRepository[T] {
	return &SessionRepository[T]{
		data:   make(map[string]*sessionEntry[T]),
		logger: logger,
		now:    time.Now,
	}
}

func (r *SessionRepository[T]) Store(ctx context.Context, id string, session T) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.data[id] = &sessionEntry[T]{value: session, lastAccess: r.now()}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"session_id": id,
		"sessions":   len(r.data),
	}).Debug("Stored dashboard session")
	return nil
}

func (r *SessionRepository[T]) Get(ctx context.Context, id string) (T, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	entry, exists := r.data[id]
	if !exists {
		var zero T
		return zero, domain.ErrSessionNotFound
	}
	entry.lastAccess = r.now()
	return entry.value, nil
}

func (r *SessionRepository[T]) Delete(ctx context.Context, id string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.data[id]; !exists {
		return domain.ErrSessionNotFound
	}
	delete(r.data, id)

	r.logger.WithContext(ctx).WithField("session_id", id).Debug("Deleted dashboard session")
	return nil
}

// EvictIdle removes sessions whose last access is older than maxIdle and
// returns how many were removed.
func (r *SessionRepository[T]) EvictIdle(ctx context.Context, maxIdle time.Duration) int {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	cutoff := r.now().Add(-maxIdle)
	evicted := 0
	for id, entry := range r.data {
		if entry.lastAccess.Before(cutoff) {
			delete(r.data, id)
			evicted++
		}
	}

	if evicted > 0 {
		r.logger.WithContext(ctx).WithFields(map[string]any{
			"evicted":  evicted,
			"sessions": len(r.data),
		}).Debug("Evicted idle dashboard sessions")
	}
	return evicted
}

func (r *SessionRepository[T]) Count() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return len(r.data)
}
