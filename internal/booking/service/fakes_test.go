package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	bookingerrors "clinicore/internal/booking/errors"
	dbmongo "clinicore/pkg/db/mongo"
	"clinicore/pkg/kafka"
	"clinicore/pkg/model"
)

// Stateful in-memory fakes. Unlike func-field mocks these keep real state
// behind a mutex, so the concurrency tests exercise the same interleavings
// the engine sees against the store.

type fakeSlotStore struct {
	mu    sync.Mutex
	slots map[string]*model.Slot
	locks *fakeLockLedger
}

func newFakeSlotStore(locks *fakeLockLedger, slots ...*model.Slot) *fakeSlotStore {
	s := &fakeSlotStore{
		slots: make(map[string]*model.Slot),
		locks: locks,
	}
	for _, slot := range slots {
		s.slots[slot.ID] = slot
	}
	return s
}

func (s *fakeSlotStore) FindByID(ctx context.Context, id string) (*model.Slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot, ok := s.slots[id]
	if !ok {
		return nil, bookingerrors.ErrSlotNotFound
	}
	copied := *slot
	return &copied, nil
}

func (s *fakeSlotStore) IncrementBooked(ctx context.Context, id string, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot, ok := s.slots[id]
	if !ok {
		return bookingerrors.ErrSlotNotFound
	}
	slot.BookedCount += delta
	return nil
}

func (s *fakeSlotStore) ListAvailability(ctx context.Context, hospitalID, date string, now time.Time) ([]*model.SlotAvailability, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*model.SlotAvailability
	for _, slot := range s.slots {
		if slot.HospitalID != hospitalID {
			continue
		}
		if date != "" && slot.Date != date {
			continue
		}
		live, _ := s.locks.CountLiveBySlot(ctx, slot.ID, now)
		available := slot.MaxCapacity - slot.BookedCount - int(live)
		if available < 0 {
			available = 0
		}
		out = append(out, &model.SlotAvailability{
			SlotID:         slot.ID,
			HospitalID:     slot.HospitalID,
			Date:           slot.Date,
			SlotNumber:     slot.SlotNumber,
			StartTime:      slot.StartTime,
			EndTime:        slot.EndTime,
			MaxCapacity:    slot.MaxCapacity,
			BookedCount:    slot.BookedCount,
			ActiveLocks:    int(live),
			AvailableCount: available,
			IsFull:         slot.BookedCount+int(live) >= slot.MaxCapacity,
		})
	}
	return out, nil
}

func (s *fakeSlotStore) bookedCount(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.slots[id].BookedCount
}

type fakeLockLedger struct {
	mu    sync.Mutex
	locks map[string]*model.SlotLock
}

func newFakeLockLedger() *fakeLockLedger {
	return &fakeLockLedger{locks: make(map[string]*model.SlotLock)}
}

func (l *fakeLockLedger) Insert(ctx context.Context, lock *model.SlotLock) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, existing := range l.locks {
		if existing.BookingAttemptID == lock.BookingAttemptID {
			return fmt.Errorf("%w: %s", bookingerrors.ErrAttemptExists, lock.BookingAttemptID)
		}
	}
	copied := *lock
	l.locks[lock.ID] = &copied
	return nil
}

func (l *fakeLockLedger) FindByID(ctx context.Context, lockID string) (*model.SlotLock, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	lock, ok := l.locks[lockID]
	if !ok {
		return nil, bookingerrors.ErrLockNotFound
	}
	copied := *lock
	return &copied, nil
}

func (l *fakeLockLedger) FindByAttemptID(ctx context.Context, attemptID string) (*model.SlotLock, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, lock := range l.locks {
		if lock.BookingAttemptID == attemptID {
			copied := *lock
			return &copied, nil
		}
	}
	return nil, bookingerrors.ErrLockNotFound
}

func (l *fakeLockLedger) CountLiveBySlot(ctx context.Context, slotID string, now time.Time) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var count int64
	for _, lock := range l.locks {
		if lock.SlotID == slotID && lock.ExpiresAt.After(now) {
			count++
		}
	}
	return count, nil
}

func (l *fakeLockLedger) Delete(ctx context.Context, lockID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.locks[lockID]; !ok {
		return false, nil
	}
	delete(l.locks, lockID)
	return true, nil
}

func (l *fakeLockLedger) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var swept int64
	for id, lock := range l.locks {
		if !lock.ExpiresAt.After(now) {
			delete(l.locks, id)
			swept++
		}
	}
	return swept, nil
}

func (l *fakeLockLedger) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}

func (l *fakeLockLedger) put(lock *model.SlotLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	copied := *lock
	l.locks[lock.ID] = &copied
}

type fakeAdmissionGate struct {
	mu   sync.Mutex
	held map[string]time.Time
}

func newFakeAdmissionGate() *fakeAdmissionGate {
	return &fakeAdmissionGate{held: make(map[string]time.Time)}
}

func (g *fakeAdmissionGate) Acquire(ctx context.Context, slotID string, ttl time.Duration) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := time.Now().UTC()
	if expiry, ok := g.held[slotID]; ok && expiry.After(now) {
		return bookingerrors.ErrAdmissionHeld
	}
	g.held[slotID] = now.Add(ttl)
	return nil
}

func (g *fakeAdmissionGate) Release(ctx context.Context, slotID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.held, slotID)
	return nil
}

func (g *fakeAdmissionGate) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	var swept int64
	for id, expiry := range g.held {
		if !expiry.After(now) {
			delete(g.held, id)
			swept++
		}
	}
	return swept, nil
}

type fakeAppointmentWriter struct {
	mu           sync.Mutex
	appointments []*model.Appointment
}

func (w *fakeAppointmentWriter) Insert(ctx context.Context, appointment *model.Appointment) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	copied := *appointment
	w.appointments = append(w.appointments, &copied)
	return fmt.Sprintf("oid-%d", len(w.appointments)), nil
}

func (w *fakeAppointmentWriter) size() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.appointments)
}

// fakeTxManager runs the body without a real session. The fakes are atomic
// per call, which is enough for the engine's ordering logic.
type fakeTxManager struct{}

func (fakeTxManager) ExecuteTransaction(ctx context.Context, fn dbmongo.TransactionFunc) error {
	return fn(mongo.NewSessionContext(ctx, nil))
}

type capturingPublisher struct {
	mu       sync.Mutex
	messages []kafka.Message
}

func (p *capturingPublisher) Publish(ctx context.Context, msg kafka.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, msg)
	return nil
}

func (p *capturingPublisher) size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.messages)
}
