package usecase

import (
	"errors"
	"testing"
	"time"

	"jobclicks/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var slotNow = time.Date(2025, 12, 8, 9, 0, 0, 0, time.UTC)

func TestSlot_AppliesLatestResult(t *testing.T) {
	s := newSlot[int](slotWeekly)
	assert.Equal(t, domain.SlotIdle, s.status.State)

	token := s.begin()
	assert.Equal(t, domain.SlotLoading, s.status.State)

	value := 7
	require.True(t, s.complete(token, &value, nil, slotNow))

	got, ok := s.value.Get()
	require.True(t, ok)
	assert.Equal(t, 7, got)
	assert.Equal(t, domain.SlotReady, s.status.State)
	require.NotNil(t, s.status.UpdatedAt)
	assert.Equal(t, slotNow, *s.status.UpdatedAt)
}

func TestSlot_StaleResultAfterNewerIsDropped(t *testing.T) {
	s := newSlot[int](slotCustom)

	older := s.begin()
	newer := s.begin()

	fresh := 2
	require.True(t, s.complete(newer, &fresh, nil, slotNow))

	stale := 1
	assert.False(t, s.complete(older, &stale, nil, slotNow))

	got, _ := s.value.Get()
	assert.Equal(t, 2, got)
	assert.Equal(t, domain.SlotReady, s.status.State)
}

func TestSlot_OlderSuccessAppliedWhileNewerPending(t *testing.T) {
	s := newSlot[int](slotCustom)

	older := s.begin()
	newer := s.begin()

	first := 1
	require.True(t, s.complete(older, &first, nil, slotNow))
	// still waiting on the newer request
	assert.Equal(t, domain.SlotLoading, s.status.State)

	second := 2
	require.True(t, s.complete(newer, &second, nil, slotNow))

	got, _ := s.value.Get()
	assert.Equal(t, 2, got)
	assert.Equal(t, domain.SlotReady, s.status.State)
}

func TestSlot_FailureKeepsPreviousValue(t *testing.T) {
	s := newSlot[int](slotSummary)

	value := 5
	require.True(t, s.complete(s.begin(), &value, nil, slotNow))

	require.True(t, s.complete(s.begin(), nil, errors.New("boom"), slotNow))

	got, ok := s.value.Get()
	require.True(t, ok)
	assert.Equal(t, 5, got)
	assert.Equal(t, domain.SlotFailed, s.status.State)
	assert.Equal(t, "boom", s.status.Error)
}

func TestSlot_SupersededFailureIsDropped(t *testing.T) {
	s := newSlot[int](slotMonthly)

	older := s.begin()
	s.begin()

	assert.False(t, s.complete(older, nil, errors.New("late"), slotNow))
	assert.Equal(t, domain.SlotLoading, s.status.State)
	assert.Empty(t, s.status.Error)
}

func TestSlot_NilValueCountsAsFailure(t *testing.T) {
	s := newSlot[int](slotWeekly)

	require.True(t, s.complete(s.begin(), nil, nil, slotNow))

	assert.False(t, s.value.IsPresent())
	assert.Equal(t, domain.SlotFailed, s.status.State)
	assert.Equal(t, "empty response", s.status.Error)
}

func TestSlot_ResetInvalidatesInFlight(t *testing.T) {
	s := newSlot[int](slotCustom)

	value := 3
	require.True(t, s.complete(s.begin(), &value, nil, slotNow))

	inFlight := s.begin()
	s.reset()

	late := 4
	assert.False(t, s.complete(inFlight, &late, nil, slotNow))
	assert.False(t, s.value.IsPresent())
	assert.Equal(t, domain.SlotIdle, s.status.State)

	// requests issued after the reset apply normally
	next := 5
	assert.True(t, s.complete(s.begin(), &next, nil, slotNow))
}
