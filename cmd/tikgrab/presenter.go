package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/iconidentify/tikgrab/internal/app"
	"github.com/iconidentify/tikgrab/internal/domain"
)

// terminalPresenter prints results to stdout and status to stderr.
// In JSON mode every result is one JSON object per line.
type terminalPresenter struct {
	mu     sync.Mutex
	out    io.Writer
	errOut io.Writer
	json   bool
}

func newTerminalPresenter(out, errOut io.Writer, asJSON bool) *terminalPresenter {
	return &terminalPresenter{out: out, errOut: errOut, json: asJSON}
}

type resultJSON struct {
	*domain.Descriptor
	DisplayTitle  string `json:"display_title"`
	DisplayAuthor string `json:"display_author"`
	ContentType   string `json:"content_type"`
}

func (p *terminalPresenter) SetLoading(loading bool) {
	if !loading || p.json {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.errOut, "Resolving...")
}

func (p *terminalPresenter) ShowError(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.errOut, "error: %s\n", msg)
}

func (p *terminalPresenter) ClearError() {}

func (p *terminalPresenter) HideResult() {}

func (p *terminalPresenter) ShowVideo(d *domain.Descriptor) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.json {
		p.encode(d)
		return
	}
	p.header(d)
	fmt.Fprintf(p.out, "  video: %s\n", d.VideoURL)
	if d.ThumbnailURL != "" {
		fmt.Fprintf(p.out, "  cover: %s\n", d.ThumbnailURL)
	}
}

func (p *terminalPresenter) ShowGallery(d *domain.Descriptor, items []app.GalleryItem) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.json {
		p.encode(d)
		return
	}
	p.header(d)
	for _, item := range items {
		fmt.Fprintf(p.out, "  %2d: %s\n", item.Index+1, item.URL)
	}
}

func (p *terminalPresenter) Notify(msg string, isError bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if isError {
		fmt.Fprintf(p.errOut, "error: %s\n", msg)
		return
	}
	fmt.Fprintln(p.errOut, msg)
}

func (p *terminalPresenter) Preview(kind app.PreviewKind, url string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, url)
}

// Saved prints the files written by a download.
func (p *terminalPresenter) Saved(paths []string) {
	if len(paths) == 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.json {
		json.NewEncoder(p.out).Encode(map[string][]string{"files": paths})
		return
	}
	for _, path := range paths {
		fmt.Fprintf(p.out, "saved %s\n", path)
	}
}

func (p *terminalPresenter) header(d *domain.Descriptor) {
	fmt.Fprintf(p.out, "%s\n%s\n%s\n", d.ContentType(), d.DisplayTitle(), d.DisplayAuthor())
}

func (p *terminalPresenter) encode(d *domain.Descriptor) {
	json.NewEncoder(p.out).Encode(resultJSON{
		Descriptor:    d,
		DisplayTitle:  d.DisplayTitle(),
		DisplayAuthor: d.DisplayAuthor(),
		ContentType:   d.ContentType(),
	})
}
