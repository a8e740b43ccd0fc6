package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/bpo-portal/internal/persistence"
)

func TestLeaveRepository_ListPaging(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	user := createUser(t, store, "agent", nil)
	other := createUser(t, store, "other", nil)

	base := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 15; i++ {
		_, err := store.Leaves.CreateLeave(ctx, persistence.LeaveRequest{
			UserID:    user.ID,
			LeaveType: "VL",
			StartDate: day(2024, 2, 1),
			EndDate:   day(2024, 2, 2),
			Reason:    "trip",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("CreateLeave %d: %v", i, err)
		}
	}
	if _, err := store.Leaves.CreateLeave(ctx, persistence.LeaveRequest{UserID: other.ID, LeaveType: "SL", StartDate: day(2024, 2, 1), EndDate: day(2024, 2, 1), Reason: "flu", CreatedAt: base}); err != nil {
		t.Fatalf("CreateLeave other: %v", err)
	}

	filter := persistence.LeaveFilter{UserID: &user.ID, NewestFirst: true, Page: persistence.Page{Limit: 10}}
	first, total, err := store.Leaves.ListLeaves(ctx, filter)
	if err != nil {
		t.Fatalf("ListLeaves: %v", err)
	}
	if total != 15 || len(first) != 10 {
		t.Fatalf("expected 10 of 15, got %d of %d", len(first), total)
	}
	if !first[0].CreatedAt.Equal(base.Add(14 * time.Minute)) {
		t.Fatalf("expected newest first, got %v", first[0].CreatedAt)
	}
	if first[0].Status != "PENDING" {
		t.Fatalf("expected default status PENDING, got %s", first[0].Status)
	}

	filter.Page.Offset = 10
	second, _, err := store.Leaves.ListLeaves(ctx, filter)
	if err != nil {
		t.Fatalf("ListLeaves page 2: %v", err)
	}
	if len(second) != 5 {
		t.Fatalf("expected 5 on page 2, got %d", len(second))
	}

	pending := "PENDING"
	queue, total, err := store.Leaves.ListLeaves(ctx, persistence.LeaveFilter{Status: &pending})
	if err != nil {
		t.Fatalf("ListLeaves pending: %v", err)
	}
	if total != 16 || len(queue) != 16 {
		t.Fatalf("expected all 16 pending, got %d", len(queue))
	}
	if queue[0].UserID != user.ID && queue[0].UserID != other.ID {
		t.Fatalf("unexpected owner %d", queue[0].UserID)
	}
	if queue[len(queue)-1].CreatedAt.Before(queue[0].CreatedAt) {
		t.Fatalf("expected oldest first ordering")
	}
}

func TestLeaveRepository_Transition(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	user := createUser(t, store, "agent", nil)
	staff := createUser(t, store, "lead", nil)

	leave, err := store.Leaves.CreateLeave(ctx, persistence.LeaveRequest{
		UserID: user.ID, LeaveType: "EL", StartDate: day(2024, 3, 4), EndDate: day(2024, 3, 4), Reason: "family",
	})
	if err != nil {
		t.Fatalf("CreateLeave: %v", err)
	}

	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	approved, err := store.Leaves.TransitionLeave(ctx, leave.ID, "PENDING", "APPROVED", staff.ID, at)
	if err != nil {
		t.Fatalf("TransitionLeave: %v", err)
	}
	if approved.Status != "APPROVED" || approved.DecidedBy == nil || *approved.DecidedBy != staff.ID {
		t.Fatalf("unexpected decided leave %+v", approved)
	}
	if approved.DecidedAt == nil || !approved.DecidedAt.Equal(at) {
		t.Fatalf("expected decided_at %v, got %v", at, approved.DecidedAt)
	}

	_, err = store.Leaves.TransitionLeave(ctx, leave.ID, "PENDING", "REJECTED", staff.ID, at)
	if !errors.Is(err, persistence.ErrConflict) {
		t.Fatalf("expected ErrConflict on re-decision, got %v", err)
	}
	current, _ := store.Leaves.GetLeave(ctx, leave.ID)
	if current.Status != "APPROVED" {
		t.Fatalf("expected status unchanged, got %s", current.Status)
	}

	_, err = store.Leaves.TransitionLeave(ctx, 9999, "PENDING", "APPROVED", staff.ID, at)
	if !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLeaveRepository_RejectsUnknownType(t *testing.T) {
	store := setupStore(t)
	user := createUser(t, store, "agent", nil)

	_, err := store.Leaves.CreateLeave(context.Background(), persistence.LeaveRequest{
		UserID: user.ID, LeaveType: "XX", StartDate: day(2024, 3, 4), EndDate: day(2024, 3, 4), Reason: "?",
	})
	if !errors.Is(err, persistence.ErrConstraintViolation) {
		t.Fatalf("expected ErrConstraintViolation, got %v", err)
	}
}
