package tokenstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token")
	ctx := context.Background()

	store := NewFile(path)
	if err := store.Save(ctx, "abc123"); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// A fresh instance over the same path must see the token, which is
	// what makes the session survive a restart.
	reloaded := NewFile(path)
	got, err := reloaded.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != "abc123" {
		t.Fatalf("Load = %q, want abc123", got)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("token file mode = %o, want 600", perm)
	}
}

func TestFile_LoadAbsent(t *testing.T) {
	store := NewFile(filepath.Join(t.TempDir(), "missing"))
	got, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != "" {
		t.Fatalf("absent file should load as empty, got %q", got)
	}
}

func TestFile_ClearIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	ctx := context.Background()
	store := NewFile(path)

	if err := store.Save(ctx, "abc123"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := store.Clear(ctx); err != nil {
			t.Fatalf("Clear #%d: %v", i+1, err)
		}
	}
	if got, _ := store.Load(ctx); got != "" {
		t.Fatalf("token survived Clear: %q", got)
	}
}

func TestFile_TrimsWhitespace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	if err := os.WriteFile(path, []byte("abc123\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := NewFile(path).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != "abc123" {
		t.Fatalf("Load = %q, want trimmed token", got)
	}
}
