package testfixtures

import (
	"testing"
	"time"
)

func TestClockDefaultsToReferenceTime(t *testing.T) {
	clock := NewClock(time.Time{})
	if !clock.Now().Equal(ReferenceTime()) {
		t.Fatalf("expected ReferenceTime, got %v", clock.Now())
	}
	if got := clock.Now().In(Manila).Hour(); got != 9 {
		t.Fatalf("expected 09:00 in Manila, got hour %d", got)
	}
}

func TestClockAdvanceAcrossMidnight(t *testing.T) {
	start := time.Date(2024, time.May, 1, 23, 50, 0, 0, Manila)
	clock := NewClock(start)

	updated := clock.Advance(20 * time.Minute)
	if updated.In(Manila).Day() != 2 || updated.In(Manila).Minute() != 10 {
		t.Fatalf("expected 00:10 on the next day, got %v", updated)
	}

	nowFn := clock.NowFunc()
	clock.Set(start)
	if got := nowFn(); !got.Equal(start) {
		t.Fatalf("expected NowFunc to follow Set, got %v", got)
	}
}
