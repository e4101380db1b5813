package batch

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
)

// -- Mock Repository --

type mockRepo struct {
	batches map[uuid.UUID]*Batch
}

func newMockRepo() *mockRepo {
	return &mockRepo{batches: make(map[uuid.UUID]*Batch)}
}

func (m *mockRepo) Create(_ context.Context, b *Batch) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	b.CreatedAt = time.Now()
	b.UpdatedAt = time.Now()
	m.batches[b.ID] = b
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Batch, error) {
	b, ok := m.batches[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return b, nil
}

func (m *mockRepo) UpdateStatus(_ context.Context, id uuid.UUID, status Status) error {
	b, ok := m.batches[id]
	if !ok {
		return fmt.Errorf("not found")
	}
	b.Status = status
	return nil
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*Batch, int, error) {
	var result []*Batch
	for _, b := range m.batches {
		result = append(result, b)
	}
	return result, len(result), nil
}

func (m *mockRepo) ListByFacility(_ context.Context, facilityID uuid.UUID, limit, offset int) ([]*Batch, int, error) {
	var result []*Batch
	for _, b := range m.batches {
		if b.FacilityID == facilityID {
			result = append(result, b)
		}
	}
	return result, len(result), nil
}

// -- Tests --

func TestCreateBatch(t *testing.T) {
	svc := NewService(newMockRepo())
	ctx := context.Background()

	facility := uuid.New()
	user := uuid.New()
	date := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	b, err := svc.CreateBatch(ctx, facility, date, user)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.ID == uuid.Nil {
		t.Error("expected batch id to be assigned")
	}
	if b.Status != StatusPending {
		t.Errorf("expected status pending, got %s", b.Status)
	}

	if _, err := svc.CreateBatch(ctx, uuid.Nil, date, user); err == nil {
		t.Error("expected error for missing facility")
	}
	if _, err := svc.CreateBatch(ctx, facility, time.Time{}, user); err == nil {
		t.Error("expected error for missing service date")
	}
}

func TestBatchLifecycle(t *testing.T) {
	svc := NewService(newMockRepo())
	ctx := context.Background()

	b, err := svc.CreateBatch(ctx, uuid.New(), time.Now(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.MarkImported(ctx, b); err != nil {
		t.Fatalf("mark imported: %v", err)
	}
	if b.Status != StatusImported {
		t.Errorf("expected imported, got %s", b.Status)
	}

	if err := svc.MarkResolved(ctx, b); err != nil {
		t.Fatalf("mark resolved: %v", err)
	}
	if b.Status != StatusResolved {
		t.Errorf("expected resolved, got %s", b.Status)
	}
}

func TestTransitionRejectsSkips(t *testing.T) {
	svc := NewService(newMockRepo())
	ctx := context.Background()

	b, err := svc.CreateBatch(ctx, uuid.New(), time.Now(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Pending -> Resolved skips Imported.
	err = svc.MarkResolved(ctx, b)
	if !errors.Is(err, ErrBadTransition) {
		t.Errorf("expected ErrBadTransition, got %v", err)
	}
	if b.Status != StatusPending {
		t.Errorf("status should be unchanged, got %s", b.Status)
	}

	if err := svc.MarkImported(ctx, b); err != nil {
		t.Fatalf("mark imported: %v", err)
	}
	// Backward transition.
	err = svc.Transition(ctx, b, StatusPending)
	if !errors.Is(err, ErrBadTransition) {
		t.Errorf("expected ErrBadTransition, got %v", err)
	}
}
