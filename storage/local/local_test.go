package local

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/kbukum/blockflow/logger"
	"github.com/kbukum/blockflow/observability"
	"github.com/kbukum/blockflow/storage"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := NewStorage(t.TempDir(), logger.NewNop())
	if err != nil {
		t.Fatalf("NewStorage: %v", err)
	}
	return s
}

func TestSaveLoad(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	key := storage.KeysFor("blockflow", "default").Stage("training")

	if _, err := s.Load(ctx, key); !stderrors.Is(err, storage.ErrEmpty) {
		t.Fatalf("expected ErrEmpty, got %v", err)
	}
	if err := s.Save(ctx, key, []byte(`[]`)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Save(ctx, key, []byte(`[{"id":"a"}]`)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.Load(ctx, key)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if string(got) != `[{"id":"a"}]` {
		t.Errorf("last write should win, got %s", got)
	}

	want := filepath.Join(s.BasePath(), "blockflow", "default", "stage", "training", "blocks.json")
	if _, err := os.Stat(want); err != nil {
		t.Errorf("expected snapshot at %s: %v", want, err)
	}
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if err := s.Save(ctx, "ns:progress", []byte("{}")); err != nil {
			t.Fatal(err)
		}
	}
	entries, err := os.ReadDir(filepath.Join(s.BasePath(), "ns"))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "progress.json" {
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("unexpected directory contents %v", names)
	}
}

func TestDelete(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	_ = s.Save(ctx, "ns:k", []byte("x"))
	if err := s.Delete(ctx, "ns:k"); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(ctx, "ns:k"); err != nil {
		t.Errorf("deleting a missing key should succeed, got %v", err)
	}
	if _, err := s.Load(ctx, "ns:k"); !stderrors.Is(err, storage.ErrEmpty) {
		t.Errorf("expected ErrEmpty, got %v", err)
	}
}

func TestRejectsEscapingKeys(t *testing.T) {
	s := newTestStorage(t)
	for _, key := range []string{"", "ns:..:etc", "ns::x", "ns:a/b", `ns:a\b`} {
		if err := s.Save(context.Background(), key, []byte("x")); err == nil {
			t.Errorf("Save(%q) should fail", key)
		}
	}
}

func TestHealth(t *testing.T) {
	s := newTestStorage(t)
	if h := s.CheckHealth(context.Background()); h.Status != observability.HealthStatusUp {
		t.Errorf("expected up, got %+v", h)
	}
	if err := os.RemoveAll(s.BasePath()); err != nil {
		t.Fatal(err)
	}
	if h := s.CheckHealth(context.Background()); h.Status != observability.HealthStatusDown {
		t.Errorf("expected down, got %+v", h)
	}
}

func TestRegisteredFactory(t *testing.T) {
	st, err := storage.New(storage.Config{Provider: storage.ProviderLocal, BasePath: t.TempDir()}, logger.NewNop())
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	if _, ok := st.(*Storage); !ok {
		t.Errorf("expected *local.Storage, got %T", st)
	}
}
