package domain

import (
	"errors"
	"fmt"
	"testing"
)

// =============================================================================
// Descriptor Tests
// =============================================================================

func TestNormalizeAuthor(t *testing.T) {
	tests := []struct {
		name   string
		author string
		want   string
	}{
		{"bare handle", "alice", "@alice"},
		{"already prefixed", "@bob", "@bob"},
		{"empty falls back", "", "@tiktok"},
		{"dots and dashes", "some.user-1", "@some.user-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeAuthor(tt.author); got != tt.want {
				t.Errorf("NormalizeAuthor(%q) = %q, want %q", tt.author, got, tt.want)
			}
		})
	}
}

func TestDescriptor_DisplayTitle(t *testing.T) {
	d := &Descriptor{}
	if got := d.DisplayTitle(); got != DefaultTitle {
		t.Errorf("DisplayTitle() = %q, want %q", got, DefaultTitle)
	}

	d.Title = "dance"
	if got := d.DisplayTitle(); got != "dance" {
		t.Errorf("DisplayTitle() = %q, want %q", got, "dance")
	}
}

func TestDescriptor_ContentType(t *testing.T) {
	video := &Descriptor{VideoURL: "https://v/1.mp4"}
	if got := video.ContentType(); got != "VIDEO" {
		t.Errorf("ContentType() = %q, want VIDEO", got)
	}

	photo := &Descriptor{IsPhoto: true, Images: []string{"a", "b", "c"}}
	if got := photo.ContentType(); got != "PHOTO · 3 IMAGES" {
		t.Errorf("ContentType() = %q, want %q", got, "PHOTO · 3 IMAGES")
	}
}

func TestDescriptor_Validate(t *testing.T) {
	tests := []struct {
		name    string
		d       Descriptor
		wantErr bool
	}{
		{"video only", Descriptor{VideoURL: "https://v/1.mp4"}, false},
		{"images only", Descriptor{IsPhoto: true, Images: []string{"https://i/1.jpg"}}, false},
		{"neither", Descriptor{}, true},
		{"both", Descriptor{IsPhoto: true, VideoURL: "https://v/1.mp4", Images: []string{"x"}}, true},
		{"photo flag without images", Descriptor{IsPhoto: true, VideoURL: "https://v/1.mp4"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.d.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrNoMediaURLs) {
				t.Errorf("Validate() error should wrap ErrNoMediaURLs, got %v", err)
			}
		})
	}
}

func TestDescriptor_References(t *testing.T) {
	d := &Descriptor{
		ThumbnailURL: "https://t/cover.jpg",
		IsPhoto:      true,
		Images:       []string{"https://i/1.jpg", "https://i/2.jpg"},
	}

	if !d.References("https://i/2.jpg") {
		t.Error("should reference gallery image")
	}
	if !d.References("https://t/cover.jpg") {
		t.Error("should reference thumbnail")
	}
	if d.References("https://evil/x") {
		t.Error("should not reference unknown URL")
	}
	if d.References("") {
		t.Error("empty URL is never referenced")
	}
}

// =============================================================================
// Error Tests
// =============================================================================

func TestResolveError(t *testing.T) {
	err := NewResolveError("https://vm.tiktok.com/x", "fetch", ErrFetchFailed)

	if !errors.Is(err, ErrFetchFailed) {
		t.Error("ResolveError should unwrap to ErrFetchFailed")
	}
	want := "fetch [https://vm.tiktok.com/x]: unable to fetch content"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	noURL := NewResolveError("", "fetch", ErrCanceled)
	if noURL.Error() != "fetch: request canceled" {
		t.Errorf("Error() = %q", noURL.Error())
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"canceled is silent", ErrCanceled, ""},
		{"superseded is silent", fmt.Errorf("resolve: %w", ErrSuperseded), ""},
		{"empty", ErrEmptyURL, MsgEmptyURL},
		{"invalid", ErrInvalidURL, MsgInvalidURL},
		{"fetch wrapped", NewResolveError("u", "fetch", fmt.Errorf("status 500: %w", ErrFetchFailed)), MsgFetchFailed},
		{"unknown", errors.New("boom"), MsgGeneric},
		{"storage full", fmt.Errorf("save: %w", ErrStorageFull), MsgStorageFull},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.want {
				t.Errorf("UserMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

// =============================================================================
// Event Tests
// =============================================================================

func TestEventFilter_Matches(t *testing.T) {
	sev := EventSeverityError
	cat := EventCategoryResolve
	e := Event{Severity: EventSeverityError, Category: EventCategoryResolve, Source: "resolver"}

	if !(EventFilter{}).Matches(e) {
		t.Error("empty filter should match everything")
	}
	if !(EventFilter{Severity: &sev, Category: &cat, Source: "resolver"}).Matches(e) {
		t.Error("exact filter should match")
	}
	other := EventCategoryDownload
	if (EventFilter{Category: &other}).Matches(e) {
		t.Error("category filter should reject")
	}
}

func TestEventMetadata_ToJSON(t *testing.T) {
	if EventMetadata(nil).ToJSON() != nil {
		t.Error("nil metadata should produce nil JSON")
	}
	got := string(EventMetadata{"url": "x"}.ToJSON())
	if got != `{"url":"x"}` {
		t.Errorf("ToJSON() = %s", got)
	}
}
