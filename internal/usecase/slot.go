package usecase

import (
	"time"

	"jobclicks/internal/domain"
)

// slot holds one dataset and its load status. Tokens are issued in increasing
// order; a completion is applied only if no newer result has been applied, so
// a slow stale response can never overwrite a fresher one.
// Callers synchronize access through the owning Session.
type slot[T any] struct {
	name    string
	value   domain.Option[T]
	status  domain.SlotStatus
	issued  uint64
	applied uint64
}

func newSlot[T any](name string) slot[T] {
	return slot[T]{name: name, status: domain.SlotStatus{State: domain.SlotIdle}}
}

func (s *slot[T]) begin() uint64 {
	s.issued++
	s.status.State = domain.SlotLoading
	s.status.Error = ""
	return s.issued
}

func (s *slot[T]) latest(token uint64) bool {
	return token == s.issued
}

// complete records the outcome of the request identified by token and reports
// whether it was applied. Failures never touch the held value.
func (s *slot[T]) complete(token uint64, value *T, err error, now time.Time) bool {
	if token <= s.applied {
		return false
	}

	if err != nil || value == nil {
		if !s.latest(token) {
			return false
		}
		s.status = domain.SlotStatus{State: domain.SlotFailed, Error: errorText(err), UpdatedAt: &now}
		return true
	}

	s.value = domain.OptionFromPtr(value)
	s.applied = token
	if s.latest(token) {
		s.status = domain.SlotStatus{State: domain.SlotReady, UpdatedAt: &now}
	}
	return true
}

// reset drops the held value and invalidates every in-flight request.
func (s *slot[T]) reset() {
	s.issued++
	s.applied = s.issued
	s.value = domain.None[T]()
	s.status = domain.SlotStatus{State: domain.SlotIdle}
}

func errorText(err error) string {
	if err == nil {
		return "empty response"
	}
	return err.Error()
}
