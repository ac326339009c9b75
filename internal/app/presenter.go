// Package app drives a front end: it turns user events into resolve,
// preview, copy and download actions and renders outcomes on a Presenter.
package app

import (
	"github.com/iconidentify/tikgrab/internal/domain"
)

// LoadState is the load state of one gallery image.
type LoadState string

const (
	LoadPending LoadState = "pending"
	LoadLoaded  LoadState = "loaded"
	LoadError   LoadState = "error"
)

// GalleryItem is one image of a photo post.
type GalleryItem struct {
	Index int
	URL   string
	State LoadState
}

// PreviewKind selects the preview surface.
type PreviewKind int

const (
	PreviewVideo PreviewKind = iota
	PreviewImage
)

// Presenter renders application state. Implementations must be safe for
// calls from any goroutine.
type Presenter interface {
	SetLoading(loading bool)
	ShowError(msg string)
	ClearError()
	HideResult()
	ShowVideo(d *domain.Descriptor)
	ShowGallery(d *domain.Descriptor, items []GalleryItem)
	Notify(msg string, isError bool)
	Preview(kind PreviewKind, url string)
}

// Dispatch presents d as a gallery or a video.
func Dispatch(p Presenter, d *domain.Descriptor) {
	if d.IsPhoto {
		p.ShowGallery(d, NewGallery(d.Images))
		return
	}
	p.ShowVideo(d)
}

// NewGallery returns one pending item per image URL.
func NewGallery(images []string) []GalleryItem {
	items := make([]GalleryItem, len(images))
	for i, u := range images {
		items[i] = GalleryItem{Index: i, URL: u, State: LoadPending}
	}
	return items
}
