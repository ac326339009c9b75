package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/iconidentify/tikgrab/internal/domain"
)

func video(u string) *domain.Descriptor {
	return &domain.Descriptor{Title: "t", Author: "@a", VideoURL: u}
}

func TestSession_BeginSettle(t *testing.T) {
	s := New("s1")

	h := s.Begin(context.Background())
	if !s.Pending() {
		t.Fatal("session should have a pending request")
	}

	got, err := s.Settle(h, video("https://v/1.mp4"), nil)
	if err != nil {
		t.Fatalf("Settle failed: %v", err)
	}
	if got.VideoURL != "https://v/1.mp4" {
		t.Errorf("VideoURL = %q", got.VideoURL)
	}
	if s.Pending() {
		t.Error("pending slot should be empty after settle")
	}

	cur, err := s.Current()
	if err != nil {
		t.Fatalf("Current failed: %v", err)
	}
	if cur != got {
		t.Error("current should be the settled descriptor")
	}
	if h.Context().Err() == nil {
		t.Error("settled handle context should be released")
	}
}

func TestSession_BeginCancelsPrevious(t *testing.T) {
	s := New("s1")

	first := s.Begin(context.Background())
	second := s.Begin(context.Background())

	if first.Context().Err() == nil {
		t.Fatal("first request should be canceled by the second Begin")
	}
	if second.Context().Err() != nil {
		t.Fatal("second request should still be live")
	}
	if second.Seq() <= first.Seq() {
		t.Errorf("sequence should increase: %d then %d", first.Seq(), second.Seq())
	}

	// First settles late, even successfully: dropped.
	if _, err := s.Settle(first, video("https://v/old.mp4"), nil); !errors.Is(err, domain.ErrSuperseded) {
		t.Errorf("late settle error = %v, want ErrSuperseded", err)
	}
	if _, err := s.Current(); !errors.Is(err, domain.ErrNoCurrent) {
		t.Error("superseded outcome must not become current")
	}

	if _, err := s.Settle(second, video("https://v/new.mp4"), nil); err != nil {
		t.Fatalf("Settle failed: %v", err)
	}
	cur, _ := s.Current()
	if cur.VideoURL != "https://v/new.mp4" {
		t.Errorf("current = %q, want the second result", cur.VideoURL)
	}
}

func TestSession_BeginClearsCurrent(t *testing.T) {
	s := New("s1")
	h := s.Begin(context.Background())
	s.Settle(h, video("https://v/1.mp4"), nil)

	s.Begin(context.Background())
	if _, err := s.Current(); !errors.Is(err, domain.ErrNoCurrent) {
		t.Error("starting a request should clear the current result")
	}
}

func TestSession_SettleError(t *testing.T) {
	s := New("s1")
	h := s.Begin(context.Background())

	_, err := s.Settle(h, nil, domain.ErrFetchFailed)
	if !errors.Is(err, domain.ErrFetchFailed) {
		t.Errorf("Settle error = %v, want ErrFetchFailed", err)
	}
	if s.Pending() {
		t.Error("failed request should clear the pending slot")
	}
}

func TestSession_Cancel(t *testing.T) {
	s := New("s1")
	h := s.Begin(context.Background())
	s.Cancel()

	if h.Context().Err() == nil {
		t.Error("Cancel should cancel the pending handle")
	}
	if _, err := s.Settle(h, video("x"), nil); !errors.Is(err, domain.ErrSuperseded) {
		t.Errorf("settle after Cancel = %v, want ErrSuperseded", err)
	}
}

func TestSession_ParentCancel(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	s := New("s1")
	h := s.Begin(parent)
	cancel()

	if h.Context().Err() == nil {
		t.Error("handle should follow its parent context")
	}
}

func TestSession_ConcurrentBegin(t *testing.T) {
	s := New("s1")

	var wg sync.WaitGroup
	handles := make(chan *Handle, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			handles <- s.Begin(context.Background())
		}()
	}
	wg.Wait()
	close(handles)

	live := 0
	for h := range handles {
		if h.Context().Err() == nil {
			live++
		}
	}
	if live != 1 {
		t.Errorf("live handles = %d, want exactly 1", live)
	}
}
