package domain

import (
	"fmt"
	"strings"
)

const (
	// DefaultTitle is shown when the upstream response carries no title.
	DefaultTitle = "TikTok Content"

	// DefaultAuthor is used when neither unique_id nor nickname is present.
	DefaultAuthor = "tiktok"

	// AuthorMarker prefixes every displayed author handle.
	AuthorMarker = "@"
)

// Descriptor is the normalized result of resolving a content URL.
// Exactly one of VideoURL or Images is populated.
type Descriptor struct {
	Title        string   `json:"title"`
	Author       string   `json:"author"`
	ThumbnailURL string   `json:"thumbnail_url,omitempty"`
	IsPhoto      bool     `json:"is_photo"`
	VideoURL     string   `json:"video_url,omitempty"`
	Images       []string `json:"images,omitempty"`
	Duration     *float64 `json:"duration,omitempty"`
}

// DisplayAuthor returns the author handle with a leading "@".
func (d *Descriptor) DisplayAuthor() string {
	return NormalizeAuthor(d.Author)
}

// DisplayTitle returns the title or the placeholder.
func (d *Descriptor) DisplayTitle() string {
	if d.Title == "" {
		return DefaultTitle
	}
	return d.Title
}

// ContentType returns the label shown above the result.
func (d *Descriptor) ContentType() string {
	if d.IsPhoto {
		return fmt.Sprintf("PHOTO · %d IMAGES", len(d.Images))
	}
	return "VIDEO"
}

// MediaURLs returns every downloadable URL referenced by the descriptor.
func (d *Descriptor) MediaURLs() []string {
	if d.IsPhoto {
		return d.Images
	}
	if d.VideoURL == "" {
		return nil
	}
	return []string{d.VideoURL}
}

// References reports whether u is one of the descriptor's media or thumbnail URLs.
func (d *Descriptor) References(u string) bool {
	if u == "" {
		return false
	}
	if u == d.ThumbnailURL {
		return true
	}
	for _, m := range d.MediaURLs() {
		if m == u {
			return true
		}
	}
	return false
}

// Validate checks the photo/video exclusivity invariant.
func (d *Descriptor) Validate() error {
	hasVideo := d.VideoURL != ""
	hasImages := len(d.Images) > 0

	switch {
	case hasVideo && hasImages:
		return fmt.Errorf("descriptor has both video and images: %w", ErrNoMediaURLs)
	case !hasVideo && !hasImages:
		return ErrNoMediaURLs
	case d.IsPhoto != hasImages:
		return fmt.Errorf("descriptor photo flag disagrees with media: %w", ErrNoMediaURLs)
	}
	return nil
}

// NormalizeAuthor prefixes a handle with "@" unless it already has one.
// An empty handle becomes "@tiktok".
func NormalizeAuthor(author string) string {
	if author == "" {
		author = DefaultAuthor
	}
	if strings.HasPrefix(author, AuthorMarker) {
		return author
	}
	return AuthorMarker + author
}
