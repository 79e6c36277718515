package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"clinicore/pkg/config"
	"clinicore/pkg/logger"
	"clinicore/pkg/model"
)

func newSweeperFixture(interval time.Duration) (*Sweeper, *fakeLockLedger, *fakeAdmissionGate) {
	log := logger.New(logger.Config{
		Level:     "error",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	})

	cfg := &config.Config{
		Log:           log,
		SweepInterval: interval,
		WriteTimeout:  5 * time.Second,
	}

	locks := newFakeLockLedger()
	admission := newFakeAdmissionGate()
	return NewSweeper(locks, admission, cfg), locks, admission
}

func expiredLock(slotID string) *model.SlotLock {
	return &model.SlotLock{
		ID:               uuid.NewString(),
		SlotID:           slotID,
		HospitalID:       testHospitalID,
		BookingAttemptID: uuid.NewString(),
		ExpiresAt:        time.Now().UTC().Add(-time.Minute),
		CreatedAt:        time.Now().UTC().Add(-11 * time.Minute),
	}
}

func TestSweep_RemovesOnlyExpired(t *testing.T) {
	sweeper, locks, admission := newSweeperFixture(time.Hour)

	locks.put(expiredLock(testSlotID))
	locks.put(expiredLock(testSlotID))

	live := expiredLock(testSlotID)
	live.ExpiresAt = time.Now().UTC().Add(10 * time.Minute)
	locks.put(live)

	require.NoError(t, admission.Acquire(context.Background(), testSlotID, -time.Second))

	sweeper.sweep()

	require.Equal(t, 1, locks.size())
	remaining, err := locks.FindByID(context.Background(), live.ID)
	require.NoError(t, err)
	require.Equal(t, live.ID, remaining.ID)

	swept, err := admission.DeleteExpired(context.Background(), time.Now().UTC())
	require.NoError(t, err)
	require.Zero(t, swept, "expired admission lock should already be gone")
}

func TestSweeper_StartStop(t *testing.T) {
	sweeper, locks, _ := newSweeperFixture(5 * time.Millisecond)

	locks.put(expiredLock(testSlotID))

	sweeper.Start()

	deadline := time.After(time.Second)
	for locks.size() > 0 {
		select {
		case <-deadline:
			t.Fatal("sweeper did not remove expired locks in time")
		case <-time.After(5 * time.Millisecond):
		}
	}

	sweeper.Stop()
	// Stop is idempotent and must not block on the second call.
	sweeper.Stop()
}
