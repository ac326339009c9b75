package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/iconidentify/tikgrab/internal/config"
	"github.com/iconidentify/tikgrab/internal/domain"
	"github.com/iconidentify/tikgrab/internal/downloader"
	"github.com/iconidentify/tikgrab/internal/repository"
	"github.com/iconidentify/tikgrab/internal/service"
)

const testSessionID = "6f1c2b1e-8d7a-4c55-9a3e-0b3f9b4d2a11"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockFetcher returns canned results per content URL. A URL listed in
// block waits until its channel is closed or the context ends.
type mockFetcher struct {
	mu      sync.Mutex
	results map[string]*domain.Descriptor
	block   map[string]chan struct{}
	calls   int
}

func newMockFetcher() *mockFetcher {
	return &mockFetcher{
		results: make(map[string]*domain.Descriptor),
		block:   make(map[string]chan struct{}),
	}
}

func (m *mockFetcher) Fetch(ctx context.Context, contentURL string) (*domain.Descriptor, error) {
	m.mu.Lock()
	m.calls++
	d, ok := m.results[contentURL]
	wait := m.block[contentURL]
	m.mu.Unlock()

	if wait != nil {
		select {
		case <-wait:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if !ok {
		return nil, domain.ErrFetchFailed
	}
	return d, nil
}

func (m *mockFetcher) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// mockDownloader serves bodies keyed by URL.
type mockDownloader struct {
	bodies map[string]string
	err    error
}

func (m *mockDownloader) Download(ctx context.Context, url string) (io.ReadCloser, int64, string, error) {
	if m.err != nil {
		return nil, 0, "", m.err
	}
	body, ok := m.bodies[url]
	if !ok {
		return nil, 0, "", errors.New("not found")
	}
	return io.NopCloser(strings.NewReader(body)), int64(len(body)), "video/mp4", nil
}

func (m *mockDownloader) Probe(ctx context.Context, url string) (*downloader.ProbeResult, error) {
	_, ok := m.bodies[url]
	return &downloader.ProbeResult{Accessible: ok}, nil
}

type handlerFixture struct {
	fetcher  *mockFetcher
	dl       *mockDownloader
	sessions *repository.InMemorySessionRepository
	events   *service.EventService
	resolve  *ResolveHandler
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()

	events, err := service.NewEventService(config.EventsConfig{RingBufferSize: 100}, testLogger())
	if err != nil {
		t.Fatalf("failed to create event service: %v", err)
	}
	t.Cleanup(func() { events.Close() })

	f := &handlerFixture{
		fetcher:  newMockFetcher(),
		dl:       &mockDownloader{bodies: make(map[string]string)},
		sessions: repository.NewInMemorySessionRepository(),
		events:   events,
	}
	svc := service.NewResolveService(f.fetcher, f.sessions, events, testLogger())
	f.resolve = NewResolveHandler(svc, f.dl, events, testLogger())
	return f
}

func videoDescriptor() *domain.Descriptor {
	return &domain.Descriptor{
		Title:        "dance",
		Author:       "alice",
		ThumbnailURL: "https://cdn.example/cover.jpg",
		VideoURL:     "https://cdn.example/play.mp4",
	}
}

func photoDescriptor() *domain.Descriptor {
	return &domain.Descriptor{
		Author:  "@bob",
		IsPhoto: true,
		Images:  []string{"https://cdn.example/1.jpg", "https://cdn.example/2.jpg"},
	}
}
