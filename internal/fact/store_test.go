package fact

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&Fact{}); err != nil {
		t.Fatalf("migrate error: %v", err)
	}
	return NewStore(db)
}

func TestNormalizeKey(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Sky", "sky"},
		{" Foo? ", "foo"},
		{"bar!?.,", "bar"},
		{"  ", ""},
		{"what now??", "what now"},
	}
	for _, c := range cases {
		if got := NormalizeKey(c.in); got != c.want {
			t.Errorf("NormalizeKey(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestStore_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	now := time.Now().Unix()
	if err := s.Set("Sky", "blue", "is", "alice", now, false); err != nil {
		t.Fatalf("set: %v", err)
	}
	f, err := s.Get("sky")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if f == nil || f.Value != "blue" || f.Word != "is" || f.SetBy != "alice" {
		t.Errorf("unexpected fact: %+v", f)
	}
	// Case and punctuation insensitive lookup
	f2, err := s.Get(" Sky? ")
	if err != nil || f2 == nil || f2.Value != "blue" {
		t.Errorf("normalized lookup failed: %+v err=%v", f2, err)
	}
}

func TestStore_GetMissing(t *testing.T) {
	s := newTestStore(t)
	f, err := s.Get("nothing here")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if f != nil {
		t.Errorf("expected nil for unknown key, got %+v", f)
	}
}

func TestStore_EmptyKeyNeverStored(t *testing.T) {
	s := newTestStore(t)
	if err := s.Set("?!.", "junk", "is", "bob", 0, false); err == nil {
		t.Errorf("expected error for empty normalized key")
	}
	count, _ := s.Count()
	if count != 0 {
		t.Errorf("expected empty store, got %d rows", count)
	}
}

func TestStore_Overwrite(t *testing.T) {
	s := newTestStore(t)
	if err := s.Set("sky", "blue", "is", "alice", 1, false); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Set("sky", "green", "was", "bob", 2, false); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	f, _ := s.Get("sky")
	if f == nil || f.Value != "green" || f.Word != "was" || f.SetBy != "bob" {
		t.Errorf("overwrite did not stick: %+v", f)
	}
	count, _ := s.Count()
	if count != 1 {
		t.Errorf("expected one row after upsert, got %d", count)
	}
}

func TestStore_LockedWritesRefused(t *testing.T) {
	s := newTestStore(t)
	if err := s.Set("sky", "blue", "is", "alice", 1, true); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Set("sky", "green", "is", "mallory", 2, false); !errors.Is(err, ErrLocked) {
		t.Errorf("expected ErrLocked on set, got %v", err)
	}
	if err := s.Delete("sky"); !errors.Is(err, ErrLocked) {
		t.Errorf("expected ErrLocked on delete, got %v", err)
	}
	f, _ := s.Get("sky")
	if f == nil || f.Value != "blue" {
		t.Errorf("locked fact changed: %+v", f)
	}
}

func TestStore_UnlockThenEdit(t *testing.T) {
	s := newTestStore(t)
	if err := s.Set("sky", "blue", "is", "alice", 1, true); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.SetLocked("Sky?", false); err != nil {
		t.Fatalf("unlock: %v", err)
	}
	if err := s.Set("sky", "green", "is", "bob", 2, false); err != nil {
		t.Fatalf("set after unlock: %v", err)
	}
	if err := s.Delete("sky"); err != nil {
		t.Fatalf("delete after unlock: %v", err)
	}
	f, _ := s.Get("sky")
	if f != nil {
		t.Errorf("expected fact gone, got %+v", f)
	}
}

func TestStore_Count(t *testing.T) {
	s := newTestStore(t)
	for _, k := range []string{"a", "b", "c"} {
		if err := s.Set(k, "v", "is", "alice", 1, false); err != nil {
			t.Fatalf("set %q: %v", k, err)
		}
	}
	count, err := s.Count()
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 3 {
		t.Errorf("expected 3 facts, got %d", count)
	}
}

func TestCache_NilClientPassesThrough(t *testing.T) {
	s := newTestStore(t)
	c := NewCache(s, nil, 0)
	if err := c.Set("sky", "blue", "is", "alice", 1, false); err != nil {
		t.Fatalf("set: %v", err)
	}
	f, err := c.Get("sky")
	if err != nil || f == nil || f.Value != "blue" {
		t.Errorf("pass-through get failed: %+v err=%v", f, err)
	}
	count, _ := c.Count()
	if count != 1 {
		t.Errorf("pass-through count failed: %d", count)
	}
}
