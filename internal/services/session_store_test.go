package services

import (
	"testing"
	"time"

	"github.com/clubstride/hourtrack/internal/models"
)

func TestSessionStoreIdleExpiry(t *testing.T) {
	store := NewSessionStore(30*time.Minute, 12*time.Hour)
	start := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)
	session := store.Create(models.User{ID: 7, Role: models.RoleCoreIntern}, start)

	if _, ok := store.Touch(session.Token, start.Add(29*time.Minute)); !ok {
		t.Fatal("expected session to be valid before the idle timeout")
	}
	if _, ok := store.Touch(session.Token, start.Add(58*time.Minute)); !ok {
		t.Fatal("expected touch to refresh the idle deadline")
	}
	if _, ok := store.Touch(session.Token, start.Add(89*time.Minute)); ok {
		t.Fatal("expected session to expire after 30 idle minutes")
	}
	if store.Len() != 0 {
		t.Fatalf("expected expired session to be removed, got %d", store.Len())
	}
}

func TestSessionStoreAbsoluteLifetime(t *testing.T) {
	store := NewSessionStore(time.Hour, 2*time.Hour)
	start := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)
	session := store.Create(models.User{ID: 7, Role: models.RoleAdmin}, start)

	for minutes := 30; minutes < 120; minutes += 30 {
		if _, ok := store.Touch(session.Token, start.Add(time.Duration(minutes)*time.Minute)); !ok {
			t.Fatalf("expected session valid at +%dm", minutes)
		}
	}
	if _, ok := store.Touch(session.Token, start.Add(2*time.Hour)); ok {
		t.Fatal("expected session to end at the absolute lifetime")
	}
}

func TestSessionStoreRevokeUserOnlyAffectsThatUser(t *testing.T) {
	store := NewSessionStore(0, 0)
	now := time.Now().UTC()
	first := store.Create(models.User{ID: 1, Role: models.RoleCoreIntern}, now)
	store.Create(models.User{ID: 1, Role: models.RoleCoreIntern}, now)
	other := store.Create(models.User{ID: 2, Role: models.RoleLeadIntern}, now)

	if first.Token == other.Token {
		t.Fatal("expected distinct session tokens")
	}
	if removed := store.RevokeUser(1); removed != 2 {
		t.Fatalf("expected 2 sessions removed, got %d", removed)
	}
	if _, ok := store.Touch(first.Token, now); ok {
		t.Fatal("expected revoked session to be invalid")
	}
	touched, ok := store.Touch(other.Token, now)
	if !ok || touched.Caller().Role != models.RoleLeadIntern {
		t.Fatalf("expected other user's session intact, got %+v ok=%v", touched, ok)
	}
}

func TestSessionStorePrune(t *testing.T) {
	store := NewSessionStore(time.Minute, time.Hour)
	now := time.Now().UTC()
	store.Create(models.User{ID: 1}, now.Add(-2*time.Minute))
	store.Create(models.User{ID: 2}, now)

	if removed := store.Prune(now); removed != 1 {
		t.Fatalf("expected one pruned session, got %d", removed)
	}
}
