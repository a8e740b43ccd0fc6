package application

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestAnnouncementService_VisibleTo(t *testing.T) {
	t.Parallel()

	repo := &announcementRepositoryStub{}
	svc := NewAnnouncementService(repo, fixedClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)), nil)
	staff := Principal{UserID: 1, IsStaff: true}

	for _, input := range []AnnouncementInput{
		{Title: "Everyone", Content: "all hands"},
		{Title: "IT only", Content: "patching", TargetTeam: "it"},
		{Title: "HR only", Content: "forms", TargetTeam: "HR"},
	} {
		if _, err := svc.Publish(context.Background(), staff, input); err != nil {
			t.Fatalf("Publish failed: %v", err)
		}
	}

	it, err := svc.VisibleTo(context.Background(), Principal{UserID: 2, Team: strPtr("IT")}, 0)
	if err != nil {
		t.Fatalf("VisibleTo failed: %v", err)
	}
	if len(it) != 2 || it[0].Title != "IT only" || it[1].Title != "Everyone" {
		t.Fatalf("unexpected IT feed %#v", it)
	}

	noTeam, err := svc.VisibleTo(context.Background(), Principal{UserID: 3}, 0)
	if err != nil {
		t.Fatalf("VisibleTo failed: %v", err)
	}
	if len(noTeam) != 1 || noTeam[0].TargetTeam != nil {
		t.Fatalf("expected broadcasts only, got %#v", noTeam)
	}

	limited, err := svc.VisibleTo(context.Background(), Principal{UserID: 4, Team: strPtr("HR")}, 1)
	if err != nil {
		t.Fatalf("VisibleTo failed: %v", err)
	}
	if len(limited) != 1 || limited[0].Title != "HR only" {
		t.Fatalf("expected newest HR item only, got %#v", limited)
	}
}

func TestAnnouncementService_Publish(t *testing.T) {
	t.Parallel()

	svc := NewAnnouncementService(&announcementRepositoryStub{}, nil, nil)

	if _, err := svc.Publish(context.Background(), Principal{UserID: 2}, AnnouncementInput{Title: "x", Content: "y"}); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	_, err := svc.Publish(context.Background(), SystemPrincipal, AnnouncementInput{Title: " ", Content: "", TargetTeam: "FINANCE"})
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	for _, field := range []string{"title", "content", "target_team"} {
		if _, ok := vErr.FieldErrors[field]; !ok {
			t.Fatalf("expected error on %s, got %v", field, vErr.FieldErrors)
		}
	}

	published, err := svc.Publish(context.Background(), SystemPrincipal, AnnouncementInput{Title: "Payday", Content: "Friday", TargetTeam: "sales"})
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if published.TargetTeam == nil || *published.TargetTeam != "SALES" {
		t.Fatalf("expected normalised team, got %v", published.TargetTeam)
	}
}
