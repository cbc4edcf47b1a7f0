package memory

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/kbukum/blockflow/logger"
	"github.com/kbukum/blockflow/storage"
)

func TestSaveLoadDelete(t *testing.T) {
	s := New()
	ctx := context.Background()

	if _, err := s.Load(ctx, "k"); !stderrors.Is(err, storage.ErrEmpty) {
		t.Fatalf("expected ErrEmpty, got %v", err)
	}

	buf := []byte("one")
	if err := s.Save(ctx, "k", buf); err != nil {
		t.Fatal(err)
	}
	buf[0] = 'X'
	got, err := s.Load(ctx, "k")
	if err != nil || string(got) != "one" {
		t.Fatalf("Load = %q, %v; the store must keep its own copy", got, err)
	}

	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(ctx, "k"); err != nil {
		t.Errorf("deleting a missing key should succeed, got %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("expected empty store, got %d keys", s.Len())
	}
}

func TestRegisteredFactory(t *testing.T) {
	st, err := storage.New(storage.Config{Provider: storage.ProviderMemory}, logger.NewNop())
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	if _, ok := st.(*Store); !ok {
		t.Errorf("expected *memory.Store, got %T", st)
	}
}
