package application

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func validLeaveInput() LeaveInput {
	return LeaveInput{LeaveType: "VL", StartDate: "2024-06-03", EndDate: "2024-06-05", Reason: "family trip"}
}

func TestParseLeaveType(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"VL":            LeaveVacation,
		"sl":            LeaveSick,
		"Emergency":     LeaveEmergency,
		"holiday leave": LeaveHoliday,
		" vacation ":    LeaveVacation,
		"SICK LEAVE":    LeaveSick,
	}
	for raw, want := range cases {
		got, ok := ParseLeaveType(raw)
		if !ok || got != want {
			t.Fatalf("ParseLeaveType(%q) = %q, %v; want %q", raw, got, ok, want)
		}
	}
	for _, raw := range []string{"", "ML", "maternity"} {
		if _, ok := ParseLeaveType(raw); ok {
			t.Fatalf("expected %q to be rejected", raw)
		}
	}
}

func TestLeaveService_Submit(t *testing.T) {
	t.Parallel()

	agent := Principal{UserID: 5}

	t.Run("creates pending requests", func(t *testing.T) {
		t.Parallel()

		now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
		repo := &leaveRepositoryStub{}
		svc := NewLeaveService(repo, fixedClock(now), nil)

		input := validLeaveInput()
		input.LeaveType = "sick"
		input.Reason = "  flu  "
		leave, err := svc.Submit(context.Background(), agent, input)
		if err != nil {
			t.Fatalf("Submit failed: %v", err)
		}
		if leave.Status != LeaveStatusPending || leave.LeaveType != LeaveSick || leave.UserID != 5 {
			t.Fatalf("unexpected leave %#v", leave)
		}
		if leave.Reason != "flu" || !leave.CreatedAt.Equal(now) {
			t.Fatalf("unexpected leave %#v", leave)
		}
		if leave.StartDate.Format(time.DateOnly) != "2024-06-03" {
			t.Fatalf("unexpected start date %v", leave.StartDate)
		}
	})

	t.Run("accepts end before start", func(t *testing.T) {
		t.Parallel()

		input := validLeaveInput()
		input.StartDate, input.EndDate = input.EndDate, input.StartDate
		if _, err := NewLeaveService(&leaveRepositoryStub{}, nil, nil).Submit(context.Background(), agent, input); err != nil {
			t.Fatalf("expected reversed range to be accepted, got %v", err)
		}
	})

	cases := []struct {
		name   string
		mutate func(*LeaveInput)
		field  string
	}{
		{name: "unknown type", mutate: func(in *LeaveInput) { in.LeaveType = "XX" }, field: "leave_type"},
		{name: "missing type", mutate: func(in *LeaveInput) { in.LeaveType = "" }, field: "leave_type"},
		{name: "bad start", mutate: func(in *LeaveInput) { in.StartDate = "06/03/2024" }, field: "start_date"},
		{name: "missing end", mutate: func(in *LeaveInput) { in.EndDate = "" }, field: "end_date"},
		{name: "impossible date", mutate: func(in *LeaveInput) { in.EndDate = "2024-02-30" }, field: "end_date"},
		{name: "blank reason", mutate: func(in *LeaveInput) { in.Reason = "   " }, field: "reason"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			repo := &leaveRepositoryStub{}
			input := validLeaveInput()
			tc.mutate(&input)

			_, err := NewLeaveService(repo, nil, nil).Submit(context.Background(), agent, input)
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if _, ok := vErr.FieldErrors[tc.field]; !ok {
				t.Fatalf("expected error on %s, got %v", tc.field, vErr.FieldErrors)
			}
			if len(repo.leaves) != 0 {
				t.Fatalf("expected nothing stored")
			}
		})
	}
}

func TestLeaveService_ListMine(t *testing.T) {
	t.Parallel()

	repo := &leaveRepositoryStub{}
	svc := NewLeaveService(repo, nil, nil)
	agent := Principal{UserID: 5}

	for i := 0; i < 15; i++ {
		input := validLeaveInput()
		input.Reason = fmt.Sprintf("reason %d", i)
		if _, err := svc.Submit(context.Background(), agent, input); err != nil {
			t.Fatalf("Submit failed: %v", err)
		}
	}
	if _, err := svc.Submit(context.Background(), Principal{UserID: 6}, validLeaveInput()); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	first, err := svc.ListMine(context.Background(), agent, 1)
	if err != nil {
		t.Fatalf("ListMine failed: %v", err)
	}
	if len(first.Items) != 10 || first.Total != 15 || first.NumPages != 2 {
		t.Fatalf("unexpected first page %+v", first)
	}
	if first.Items[0].Reason != "reason 14" {
		t.Fatalf("expected newest first, got %q", first.Items[0].Reason)
	}

	second, err := svc.ListMine(context.Background(), agent, 2)
	if err != nil {
		t.Fatalf("ListMine failed: %v", err)
	}
	if len(second.Items) != 5 || second.HasNext {
		t.Fatalf("unexpected second page %+v", second)
	}
}

func TestLeaveService_Decide(t *testing.T) {
	t.Parallel()

	staff := Principal{UserID: 1, IsStaff: true}
	agent := Principal{UserID: 5}

	seed := func(t *testing.T) (*leaveRepositoryStub, *LeaveService, LeaveRequest) {
		t.Helper()
		repo := &leaveRepositoryStub{}
		svc := NewLeaveService(repo, fixedClock(time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)), nil)
		leave, err := svc.Submit(context.Background(), agent, validLeaveInput())
		if err != nil {
			t.Fatalf("Submit failed: %v", err)
		}
		return repo, svc, leave
	}

	t.Run("staff approve pending requests", func(t *testing.T) {
		t.Parallel()

		_, svc, leave := seed(t)
		decided, err := svc.Decide(context.Background(), staff, leave.ID, LeaveApprove)
		if err != nil {
			t.Fatalf("Decide failed: %v", err)
		}
		if decided.Status != LeaveStatusApproved || decided.DecidedBy == nil || *decided.DecidedBy != 1 {
			t.Fatalf("unexpected decision %#v", decided)
		}

		pending, err := svc.ListPending(context.Background(), staff)
		if err != nil || len(pending) != 0 {
			t.Fatalf("expected empty queue, got %v (%v)", pending, err)
		}
	})

	t.Run("re-deciding is rejected", func(t *testing.T) {
		t.Parallel()

		_, svc, leave := seed(t)
		if _, err := svc.Decide(context.Background(), staff, leave.ID, LeaveReject); err != nil {
			t.Fatalf("Decide failed: %v", err)
		}
		if _, err := svc.Decide(context.Background(), staff, leave.ID, LeaveApprove); !errors.Is(err, ErrAlreadyDecided) {
			t.Fatalf("expected ErrAlreadyDecided, got %v", err)
		}
	})

	t.Run("non-staff are refused before lookup", func(t *testing.T) {
		t.Parallel()

		repo, svc, leave := seed(t)
		if _, err := svc.Decide(context.Background(), agent, leave.ID, LeaveApprove); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
		if _, err := svc.Decide(context.Background(), agent, 999, LeaveApprove); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized for missing id, got %v", err)
		}
		if repo.transitions != 0 || repo.leaves[0].Status != LeaveStatusPending {
			t.Fatalf("expected record unchanged")
		}
		if _, err := svc.ListPending(context.Background(), agent); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized for queue, got %v", err)
		}
	})

	t.Run("missing ids are not found", func(t *testing.T) {
		t.Parallel()

		_, svc, _ := seed(t)
		if _, err := svc.Decide(context.Background(), staff, 999, LeaveReject); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("pending queue is oldest first", func(t *testing.T) {
		t.Parallel()

		_, svc, first := seed(t)
		second, err := svc.Submit(context.Background(), Principal{UserID: 6}, validLeaveInput())
		if err != nil {
			t.Fatalf("Submit failed: %v", err)
		}
		pending, err := svc.ListPending(context.Background(), staff)
		if err != nil {
			t.Fatalf("ListPending failed: %v", err)
		}
		if len(pending) != 2 || pending[0].ID != first.ID || pending[1].ID != second.ID {
			t.Fatalf("unexpected queue order %#v", pending)
		}
	})
}
