package services

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestLocalLockerSerialisesKey(t *testing.T) {
	l := NewLocalLocker()
	key := LockKey("gold_star_3rd", 7)
	if key != "award:gold_star_3rd:tour:7" {
		t.Fatalf("key=%q", key)
	}

	unlock, err := l.Lock(context.Background(), key)
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := l.Lock(ctx, key); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("second Lock err=%v want=%v", err, context.DeadlineExceeded)
	}

	other, err := l.Lock(context.Background(), LockKey("gold_star_3rd", 8))
	if err != nil {
		t.Fatalf("other tour blocked: %v", err)
	}
	other()

	unlock()
	unlock()
	again, err := l.Lock(context.Background(), key)
	if err != nil {
		t.Fatalf("Lock after unlock: %v", err)
	}
	again()

	if n := len(l.locks); n != 0 {
		t.Fatalf("locks left=%d want=0", n)
	}
}

func TestLocalLockerHandsOver(t *testing.T) {
	l := NewLocalLocker()
	unlock, _ := l.Lock(context.Background(), "k")

	acquired := make(chan struct{})
	go func() {
		next, err := l.Lock(context.Background(), "k")
		if err == nil {
			close(acquired)
			next()
		}
	}()

	select {
	case <-acquired:
		t.Fatalf("lock acquired while held")
	case <-time.After(20 * time.Millisecond):
	}
	unlock()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatalf("waiter never acquired the lock")
	}
}
