package tokenstore

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisStore(t *testing.T) *Redis {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedis(client, "test:token")
}

func TestRedis_RoundTrip(t *testing.T) {
	store := newRedisStore(t)
	ctx := context.Background()

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != "" {
		t.Fatalf("fresh store should be empty, got %q", got)
	}

	if err := store.Save(ctx, "abc123"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err = store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != "abc123" {
		t.Fatalf("Load = %q, want abc123", got)
	}
}

func TestRedis_ClearIsIdempotent(t *testing.T) {
	store := newRedisStore(t)
	ctx := context.Background()

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

func TestRedis_DefaultKey(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := NewRedis(client, "")
	if err := store.Save(context.Background(), "abc123"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if got, err := mr.Get("library:token"); err != nil || got != "abc123" {
		t.Fatalf("expected token under library:token, got %q (%v)", got, err)
	}
}
