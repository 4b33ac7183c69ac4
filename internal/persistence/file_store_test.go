package persistence

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFileStorePlaintext(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	store := NewFileStore(path, "")

	if got, err := store.Get(ctx, AccessTokenSlot); err != nil || got != "" {
		t.Fatalf("Get on missing file = %q, %v; want empty, nil", got, err)
	}
	if err := store.Set(ctx, AccessTokenSlot, "access"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := store.Set(ctx, RefreshTokenSlot, "refresh"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("file mode = %o, want 600", perm)
	}

	// A second store on the same path sees what the first wrote.
	reopened := NewFileStore(path, "")
	if got, _ := reopened.Get(ctx, RefreshTokenSlot); got != "refresh" {
		t.Fatalf("reopened refresh = %q, want refresh", got)
	}

	if err := store.Delete(ctx, AccessTokenSlot); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got, _ := store.Get(ctx, AccessTokenSlot); got != "" {
		t.Fatalf("access after delete = %q", got)
	}
	if err := store.Delete(ctx, Slots...); err != nil {
		t.Fatalf("Delete all: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("file should be removed once empty, stat err = %v", err)
	}
	if err := store.Delete(ctx, Slots...); err != nil {
		t.Fatalf("Delete on missing file: %v", err)
	}
}

func TestFileStoreSealed(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")
	store := NewFileStore(path, "correct horse")

	if err := store.Set(ctx, AccessTokenSlot, "secret-access-token"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if bytes.Contains(raw, []byte("secret-access-token")) {
		t.Fatal("sealed file contains the plaintext token")
	}
	if got, err := store.Get(ctx, AccessTokenSlot); err != nil || got != "secret-access-token" {
		t.Fatalf("Get = %q, %v", got, err)
	}

	wrong := NewFileStore(path, "battery staple")
	if _, err := wrong.Get(ctx, AccessTokenSlot); !errors.Is(err, ErrWrongPassphrase) {
		t.Fatalf("wrong passphrase error = %v, want ErrWrongPassphrase", err)
	}
	missing := NewFileStore(path, "")
	if _, err := missing.Get(ctx, AccessTokenSlot); !errors.Is(err, ErrWrongPassphrase) {
		t.Fatalf("no passphrase error = %v, want ErrWrongPassphrase", err)
	}
	// Clearing must still work when the file cannot be opened.
	if err := wrong.Delete(ctx, Slots...); err != nil {
		t.Fatalf("Delete with wrong passphrase: %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	_ = store.Set(ctx, AccessTokenSlot, "a")
	_ = store.Set(ctx, RefreshTokenSlot, "r")
	_ = store.Delete(ctx, Slots...)
	for _, slot := range Slots {
		if got, _ := store.Get(ctx, slot); got != "" {
			t.Fatalf("slot %s = %q after delete", slot, got)
		}
	}
}
