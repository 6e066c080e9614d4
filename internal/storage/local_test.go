package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLocalStoreSave(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(filepath.Join(dir, "uploads"), "http://localhost:5000/")
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}

	url, err := store.Save(context.Background(), "posts/a.png", strings.NewReader("png-bytes"), "image/png")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if url != "http://localhost:5000/uploads/posts/a.png" {
		t.Fatalf("unexpected url %q", url)
	}

	got, err := os.ReadFile(filepath.Join(store.Dir(), "posts", "a.png"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "png-bytes" {
		t.Fatalf("unexpected content %q", got)
	}

	if _, err := store.Save(context.Background(), "posts/a.png", strings.NewReader("again"), "image/png"); err == nil {
		t.Fatalf("expected an existing key not to be overwritten")
	}
}

func TestLocalStoreRejectsEscapingKeys(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "")
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	for _, key := range []string{"../evil.png", "/etc/evil.png", "posts/../../evil.png"} {
		if _, err := store.Save(context.Background(), key, strings.NewReader("x"), "image/png"); err == nil {
			t.Fatalf("expected key %q to be rejected", key)
		}
	}
}

func TestExtensionAndKey(t *testing.T) {
	if ext, ok := Extension("image/webp"); !ok || ext != ".webp" {
		t.Fatalf("unexpected webp extension %q %v", ext, ok)
	}
	if _, ok := Extension("text/plain; charset=utf-8"); ok {
		t.Fatalf("text must not be accepted")
	}
	key := NewKey(".png")
	if !strings.HasPrefix(key, "posts/") || !strings.HasSuffix(key, ".png") {
		t.Fatalf("unexpected key %q", key)
	}
	if NewKey(".png") == key {
		t.Fatalf("keys must be unique")
	}
}
