package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/iconidentify/tikgrab/internal/domain"
	"github.com/iconidentify/tikgrab/internal/repository"
)

// fakeFetcher answers from a map; URLs listed in block wait for their
// release channel or context cancellation.
type fakeFetcher struct {
	mu      sync.Mutex
	results map[string]*domain.Descriptor
	block   map[string]chan struct{}
	calls   []string
}

func (f *fakeFetcher) Fetch(ctx context.Context, contentURL string) (*domain.Descriptor, error) {
	f.mu.Lock()
	f.calls = append(f.calls, contentURL)
	release := f.block[contentURL]
	f.mu.Unlock()

	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return nil, domain.NewResolveError(contentURL, "fetch", domain.ErrCanceled)
		}
	}

	d, ok := f.results[contentURL]
	if !ok {
		return nil, domain.NewResolveError(contentURL, "fetch", domain.ErrFetchFailed)
	}
	return d, nil
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type recordingEmitter struct {
	mu     sync.Mutex
	events []domain.Event
}

func (r *recordingEmitter) Emit(e domain.Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *recordingEmitter) count(sev domain.EventSeverity) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Severity == sev {
			n++
		}
	}
	return n
}

const (
	videoURL = "https://www.tiktok.com/@alice/video/7234567890123456789"
	photoURL = "https://www.tiktok.com/@bob/photo/7234567890123456790"
	shortURL = "https://vm.tiktok.com/ZMabc123/"
)

func newResolveFixture() (*ResolveService, *fakeFetcher, *recordingEmitter) {
	fetcher := &fakeFetcher{
		results: map[string]*domain.Descriptor{
			videoURL: {Title: "clip", Author: "@alice", VideoURL: "https://cdn.example/v.mp4"},
			photoURL: {Title: "pics", Author: "@bob", IsPhoto: true, Images: []string{"https://cdn.example/1.jpg"}},
		},
		block: map[string]chan struct{}{},
	}
	events := &recordingEmitter{}
	svc := NewResolveService(fetcher, repository.NewInMemorySessionRepository(), events, testLogger())
	return svc, fetcher, events
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{"empty", "", "", domain.ErrEmptyURL},
		{"whitespace only", "   \t\n", "", domain.ErrEmptyURL},
		{"not tiktok", "https://example.com/video/1", "", domain.ErrInvalidURL},
		{"video", videoURL, videoURL, nil},
		{"trimmed", "  " + shortURL + "\n", shortURL, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Validate(tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate(%q) error = %v, want %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Validate(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestResolveService_Resolve(t *testing.T) {
	svc, _, events := newResolveFixture()
	ctx := context.Background()

	sess, _ := svc.Session(ctx, "s1")
	d, err := svc.Resolve(ctx, sess, "  "+videoURL+" ")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if d.Title != "clip" {
		t.Errorf("Title = %q, want clip", d.Title)
	}

	cur, err := svc.Current(ctx, "s1")
	if err != nil || cur != d {
		t.Errorf("Current = %v, %v; want resolved descriptor", cur, err)
	}
	if events.count(domain.EventSeveritySuccess) != 1 {
		t.Error("expected one success event")
	}
}

func TestResolveService_Resolve_InvalidDoesNotFetch(t *testing.T) {
	svc, fetcher, _ := newResolveFixture()
	ctx := context.Background()

	_, err := svc.ResolveFor(ctx, "s1", "not a url")
	if !errors.Is(err, domain.ErrInvalidURL) {
		t.Fatalf("expected ErrInvalidURL, got %v", err)
	}
	if fetcher.callCount() != 0 {
		t.Error("invalid input must not reach the fetcher")
	}
}

func TestResolveService_Resolve_InvalidKeepsPending(t *testing.T) {
	svc, fetcher, _ := newResolveFixture()
	ctx := context.Background()

	release := make(chan struct{})
	fetcher.block[videoURL] = release

	sess, _ := svc.Session(ctx, "s1")
	done := make(chan error, 1)
	go func() {
		_, err := svc.Resolve(ctx, sess, videoURL)
		done <- err
	}()

	waitFor(t, sess.Pending)

	if _, err := svc.Resolve(ctx, sess, ""); !errors.Is(err, domain.ErrEmptyURL) {
		t.Fatalf("expected ErrEmptyURL, got %v", err)
	}
	if !sess.Pending() {
		t.Fatal("validation failure must not cancel the request in flight")
	}

	close(release)
	if err := <-done; err != nil {
		t.Errorf("first request should still succeed, got %v", err)
	}
}

func TestResolveService_Resolve_LastRequestWins(t *testing.T) {
	svc, fetcher, events := newResolveFixture()
	ctx := context.Background()

	fetcher.block[videoURL] = make(chan struct{})

	sess, _ := svc.Session(ctx, "s1")
	first := make(chan error, 1)
	go func() {
		_, err := svc.Resolve(ctx, sess, videoURL)
		first <- err
	}()

	waitFor(t, sess.Pending)

	d, err := svc.Resolve(ctx, sess, photoURL)
	if err != nil {
		t.Fatalf("second Resolve failed: %v", err)
	}
	if !d.IsPhoto {
		t.Error("current result should be the photo post")
	}

	select {
	case err := <-first:
		if !domain.IsSilent(err) {
			t.Errorf("first request error = %v, want a silent error", err)
		}
	case <-time.After(time.Second):
		t.Fatal("first request was not canceled")
	}

	cur, _ := sess.Current()
	if cur != d {
		t.Error("superseded request must not overwrite the current result")
	}
	if events.count(domain.EventSeverityError) != 0 {
		t.Error("superseded request must not emit an error event")
	}
}

func TestResolveService_Resolve_FetchFailure(t *testing.T) {
	svc, _, events := newResolveFixture()
	ctx := context.Background()

	_, err := svc.ResolveFor(ctx, "s1", shortURL)
	if !errors.Is(err, domain.ErrFetchFailed) {
		t.Fatalf("expected ErrFetchFailed, got %v", err)
	}
	if domain.UserMessage(err) != domain.MsgFetchFailed {
		t.Errorf("UserMessage = %q", domain.UserMessage(err))
	}
	if _, err := svc.Current(ctx, "s1"); !errors.Is(err, domain.ErrNoCurrent) {
		t.Errorf("Current after failure = %v, want ErrNoCurrent", err)
	}
	if events.count(domain.EventSeverityError) != 1 {
		t.Error("expected one error event")
	}
}

func TestResolveService_Resolve_ParentCanceled(t *testing.T) {
	svc, fetcher, _ := newResolveFixture()
	fetcher.block[videoURL] = make(chan struct{})

	ctx, cancel := context.WithCancel(context.Background())
	sess, _ := svc.Session(ctx, "s1")

	done := make(chan error, 1)
	go func() {
		_, err := svc.Resolve(ctx, sess, videoURL)
		done <- err
	}()

	waitFor(t, sess.Pending)
	cancel()

	if err := <-done; !errors.Is(err, domain.ErrCanceled) {
		t.Errorf("expected ErrCanceled, got %v", err)
	}
}

func TestResolveService_Current_UnknownSession(t *testing.T) {
	svc, _, _ := newResolveFixture()

	if _, err := svc.Current(context.Background(), "nope"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(time.Millisecond)
	}
}
