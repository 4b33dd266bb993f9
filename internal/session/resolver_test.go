package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/xelth-com/loadboard/internal/models"
)

func syncResolver(s Store) *Resolver {
	r := NewResolver(s)
	r.async = func(f func()) { f() }
	return r
}

func strPtr(s string) *string { return &s }

func TestResolveOrCreate_CreatesOnceThenReuses(t *testing.T) {
	fs := newFakeStore()
	r := syncResolver(fs)
	key := Key{Destination: "BANYO", Time: "08:00", ProfileID: "p1"}

	first, err := r.ResolveOrCreate(context.Background(), key, "")
	if err != nil {
		t.Fatalf("ResolveOrCreate: %v", err)
	}
	second, err := r.ResolveOrCreate(context.Background(), key, "")
	if err != nil {
		t.Fatalf("ResolveOrCreate: %v", err)
	}

	if first.ID != second.ID {
		t.Errorf("got %s then %s, want the same session", first.ID, second.ID)
	}
	if fs.creates != 1 {
		t.Errorf("creates = %d, want 1", fs.creates)
	}
	if first.UserID == nil || *first.UserID != "p1" {
		t.Errorf("owner = %v, want p1", first.UserID)
	}
}

func TestResolveOrCreate_RememberedFastPath(t *testing.T) {
	fs := newFakeStore()
	fs.add(models.LoadSession{ID: "mine", Destination: "ELSEWHERE", Time: "01:00"})
	fs.failFind = true // the fast path must not query
	r := syncResolver(fs)

	s, err := r.ResolveOrCreate(context.Background(), Key{Destination: "BANYO", Time: "08:00"}, "mine")
	if err != nil {
		t.Fatalf("ResolveOrCreate: %v", err)
	}
	if s.ID != "mine" {
		t.Errorf("got %s, want remembered session", s.ID)
	}
}

func TestResolveOrCreate_StaleRememberedIDFallsBack(t *testing.T) {
	fs := newFakeStore()
	r := syncResolver(fs)

	s, err := r.ResolveOrCreate(context.Background(), Key{Destination: "BANYO", Time: "08:00"}, "gone")
	if err != nil {
		t.Fatalf("ResolveOrCreate: %v", err)
	}
	if s.ID == "gone" || fs.creates != 1 {
		t.Errorf("expected a fresh session, got %s (creates %d)", s.ID, fs.creates)
	}
}

func TestResolveOrCreate_PrefersProgressAndDropsDuplicates(t *testing.T) {
	fs := newFakeStore()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	fs.add(models.LoadSession{ID: "newer-empty", Destination: "BANYO", Time: "08:00", UserID: strPtr("p1"), CreatedAt: base.Add(time.Hour)})
	fs.add(models.LoadSession{ID: "older-progress", Destination: "BANYO", Time: "08:00", UserID: strPtr("p1"), CreatedAt: base,
		Progress: map[string]interface{}{"o_1_0": float64(5)}})
	r := syncResolver(fs)

	s, err := r.ResolveOrCreate(context.Background(), Key{Destination: "BANYO", Time: "08:00", ProfileID: "p1"}, "")
	if err != nil {
		t.Fatalf("ResolveOrCreate: %v", err)
	}
	if s.ID != "older-progress" {
		t.Errorf("kept %s, want older-progress", s.ID)
	}
	if len(fs.deletedIDs) != 1 || fs.deletedIDs[0] != "newer-empty" {
		t.Errorf("deleted = %v, want [newer-empty]", fs.deletedIDs)
	}
}

func TestResolveOrCreate_KeepsProtectedDuplicates(t *testing.T) {
	fs := newFakeStore()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	fs.add(models.LoadSession{ID: "open-elsewhere", Destination: "BANYO", Time: "08:00", CreatedAt: base.Add(time.Hour)})
	fs.add(models.LoadSession{ID: "with-progress", Destination: "BANYO", Time: "08:00", CreatedAt: base,
		Progress: map[string]interface{}{"o_1_0": float64(5)}})
	fs.add(models.LoadSession{ID: "abandoned", Destination: "BANYO", Time: "08:00", CreatedAt: base.Add(-time.Hour)})
	r := syncResolver(fs)
	r.Protect(func(context.Context) []string { return []string{"open-elsewhere"} })

	s, err := r.ResolveOrCreate(context.Background(), Key{Destination: "BANYO", Time: "08:00"}, "")
	if err != nil {
		t.Fatalf("ResolveOrCreate: %v", err)
	}
	if s.ID != "with-progress" {
		t.Errorf("kept %s, want with-progress", s.ID)
	}
	if _, err := fs.Get(context.Background(), "open-elsewhere"); err != nil {
		t.Error("session in use on another screen was deleted")
	}
	if len(fs.deletedIDs) != 1 || fs.deletedIDs[0] != "abandoned" {
		t.Errorf("deleted = %v, want [abandoned]", fs.deletedIDs)
	}
}

func TestResolveOrCreate_NoProfileSkipsOwnedSessions(t *testing.T) {
	fs := newFakeStore()
	fs.add(models.LoadSession{ID: "owned", Destination: "BANYO", Time: "08:00", UserID: strPtr("p1"),
		Progress: map[string]interface{}{"o_1_0": float64(5)}})
	r := syncResolver(fs)

	s, err := r.ResolveOrCreate(context.Background(), Key{Destination: "BANYO", Time: "08:00"}, "")
	if err != nil {
		t.Fatalf("ResolveOrCreate: %v", err)
	}
	if s.ID == "owned" || s.UserID != nil {
		t.Errorf("got %s owned by %v, want a new unowned session", s.ID, s.UserID)
	}
	if len(fs.deletedIDs) != 0 {
		t.Errorf("deleted = %v", fs.deletedIDs)
	}
}

func TestResolveOrCreate_StoreDown(t *testing.T) {
	fs := newFakeStore()
	fs.failFind = true
	r := syncResolver(fs)

	_, err := r.ResolveOrCreate(context.Background(), Key{Destination: "BANYO", Time: "08:00"}, "")
	if !errors.Is(err, ErrResolution) {
		t.Errorf("err = %v, want ErrResolution", err)
	}
}

func TestRank(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	sessions := []models.LoadSession{
		{ID: "a", CreatedAt: base},
		{ID: "b", CreatedAt: base.Add(2 * time.Hour)},
		{ID: "c", CreatedAt: base.Add(time.Hour), Progress: map[string]interface{}{"x": float64(1)}},
	}

	keep, drop, ok := Rank(sessions, "")
	if !ok || keep.ID != "c" {
		t.Fatalf("keep = %s, want c", keep.ID)
	}
	if len(drop) != 2 || drop[0].ID != "b" || drop[1].ID != "a" {
		t.Errorf("drop = %v", drop)
	}

	keep, _, _ = Rank(sessions, "a")
	if keep.ID != "a" {
		t.Errorf("protected id should win, got %s", keep.ID)
	}

	if _, _, ok := Rank(nil, ""); ok {
		t.Error("empty input should not yield a session")
	}
	if sessions[0].ID != "a" {
		t.Error("input was reordered")
	}
}

func TestCleanupStale(t *testing.T) {
	fs := newFakeStore()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	progress := map[string]interface{}{"x": float64(1)}
	fs.add(models.LoadSession{ID: "live", Destination: "BANYO", Time: "08:00", CreatedAt: base, Progress: progress})
	fs.add(models.LoadSession{ID: "dup", Destination: "BANYO", Time: "08:00", CreatedAt: base.Add(time.Hour)})
	fs.add(models.LoadSession{ID: "other-owner", Destination: "BANYO", Time: "08:00", UserID: strPtr("p2"), CreatedAt: base})
	fs.add(models.LoadSession{ID: "stale", Destination: "MOONAH", Time: "09:00", CreatedAt: base})
	fs.add(models.LoadSession{ID: "active-stale", Destination: "GONE", Time: "10:00", CreatedAt: base})
	fs.add(models.LoadSession{ID: "active-dup", Destination: "SALISBURY", Time: "11:00", CreatedAt: base})
	fs.add(models.LoadSession{ID: "better-dup", Destination: "SALISBURY", Time: "11:00", CreatedAt: base.Add(time.Hour), Progress: progress})
	r := syncResolver(fs)

	valid := []string{models.OrderKey("BANYO", "08:00"), models.OrderKey("SALISBURY", "11:00")}
	n, err := r.CleanupStale(context.Background(), valid, "active-stale", "active-dup")
	if err != nil {
		t.Fatalf("CleanupStale: %v", err)
	}

	for _, id := range []string{"live", "other-owner", "active-stale", "active-dup"} {
		if _, err := fs.Get(context.Background(), id); err != nil {
			t.Errorf("%s should survive", id)
		}
	}
	for _, id := range []string{"dup", "stale", "better-dup"} {
		if _, err := fs.Get(context.Background(), id); err == nil {
			t.Errorf("%s should be deleted", id)
		}
	}
	if n != 3 {
		t.Errorf("deleted %d, want 3", n)
	}
}
