package services

import (
	"testing"
	"time"
)

func TestLoginThrottleLocksAfterThreshold(t *testing.T) {
	throttle := NewLoginThrottle(3, 10*time.Minute)
	now := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)

	for attempt := 0; attempt < 3; attempt++ {
		if throttle.Locked("jane", now) {
			t.Fatalf("expected key unlocked before attempt %d", attempt+1)
		}
		throttle.RecordFailure("jane", now.Add(time.Duration(attempt)*time.Second))
	}

	if !throttle.Locked("jane", now.Add(time.Minute)) {
		t.Fatal("expected key locked after threshold failures")
	}
	if throttle.Locked("other", now.Add(time.Minute)) {
		t.Fatal("expected lockout to be isolated per key")
	}
	if throttle.Locked("jane", now.Add(11*time.Minute)) {
		t.Fatal("expected lockout to end once the window elapses")
	}
}

func TestLoginThrottleResetClearsFailures(t *testing.T) {
	throttle := NewLoginThrottle(2, time.Hour)
	now := time.Now().UTC()

	throttle.RecordFailure("jane", now)
	throttle.Reset("jane")
	throttle.RecordFailure("jane", now)

	if throttle.Locked("jane", now) {
		t.Fatal("expected reset to clear earlier failures")
	}
}

func TestLoginThrottlePruneDropsExpiredKeys(t *testing.T) {
	throttle := NewLoginThrottle(3, 10*time.Minute)
	now := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)

	throttle.RecordFailure("identifier:ghost", now)
	throttle.RecordFailure("identifier:nobody", now.Add(time.Minute))
	throttle.RecordFailure("user:7", now.Add(8*time.Minute))

	if dropped := throttle.Prune(now.Add(5 * time.Minute)); dropped != 0 {
		t.Fatalf("expected nothing pruned inside the window, got %d", dropped)
	}
	if dropped := throttle.Prune(now.Add(10*time.Minute + 30*time.Second)); dropped != 1 {
		t.Fatalf("expected one expired key pruned, got %d", dropped)
	}
	if got := throttle.Len(); got != 2 {
		t.Fatalf("expected two keys left, got %d", got)
	}
	if dropped := throttle.Prune(now.Add(time.Hour)); dropped != 2 {
		t.Fatalf("expected remaining keys pruned, got %d", dropped)
	}
	if got := throttle.Len(); got != 0 {
		t.Fatalf("expected empty throttle, got %d keys", got)
	}
}
