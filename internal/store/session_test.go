package store

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestSessionRepository_StartEnd(t *testing.T) {
	s := newTestStore(t)
	repo := s.Sessions()

	sess, err := repo.Start(1)
	if err != nil {
		t.Fatalf("failed to start session: %v", err)
	}
	if _, err := uuid.Parse(sess.ID); err != nil {
		t.Errorf("session ID %q should be a UUID: %v", sess.ID, err)
	}

	got, err := repo.GetByID(sess.ID)
	if err != nil {
		t.Fatalf("failed to get session: %v", err)
	}
	if got.CameraDevice != 1 {
		t.Errorf("CameraDevice = %d, want 1", got.CameraDevice)
	}
	if got.EndedAt != nil {
		t.Error("EndedAt should be nil for an open session")
	}

	if err := repo.End(sess.ID); err != nil {
		t.Fatalf("failed to end session: %v", err)
	}

	got, err = repo.GetByID(sess.ID)
	if err != nil {
		t.Fatalf("failed to get session: %v", err)
	}
	if got.EndedAt == nil {
		t.Fatal("EndedAt should be set after End")
	}
	if got.EndedAt.Before(got.StartedAt) {
		t.Errorf("EndedAt %v before StartedAt %v", got.EndedAt, got.StartedAt)
	}
}

func TestSessionRepository_NotFound(t *testing.T) {
	repo := newTestStore(t).Sessions()

	if _, err := repo.GetByID("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID error = %v, want ErrNotFound", err)
	}
	if err := repo.End("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("End error = %v, want ErrNotFound", err)
	}
}

func TestSessionRepository_List(t *testing.T) {
	repo := newTestStore(t).Sessions()

	for i := 0; i < 3; i++ {
		if _, err := repo.Start(i); err != nil {
			t.Fatalf("failed to start session: %v", err)
		}
	}

	sessions, err := repo.List()
	if err != nil {
		t.Fatalf("failed to list sessions: %v", err)
	}
	if len(sessions) != 3 {
		t.Errorf("len(sessions) = %d, want 3", len(sessions))
	}
}
