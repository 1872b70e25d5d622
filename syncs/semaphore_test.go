package syncs

import (
	"context"
	"errors"
	"testing"
)

func TestSemaphore(t *testing.T) {
	sem := NewSemaphore(1)
	sem.Acquire()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := sem.AcquireContext(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v", err)
	}

	sem.Release()
	if err := sem.AcquireContext(context.Background()); err != nil {
		t.Fatal(err)
	}
	sem.Release()
}
