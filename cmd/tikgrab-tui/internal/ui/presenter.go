package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rivo/tview"

	"github.com/iconidentify/tikgrab/internal/app"
	"github.com/iconidentify/tikgrab/internal/domain"
)

var stateMarkers = map[app.LoadState]string{
	app.LoadPending: "[gray]…[white]",
	app.LoadLoaded:  "[green]✓[white]",
	app.LoadError:   "[red]✗[white]",
}

// SetLoading implements app.Presenter.
func (a *App) SetLoading(loading bool) {
	a.mu.Lock()
	a.loading = loading
	a.mu.Unlock()
	a.update(a.renderStatus)
}

// ShowError implements app.Presenter.
func (a *App) ShowError(msg string) {
	a.mu.Lock()
	a.errorMsg = msg
	a.mu.Unlock()
	a.update(func() {
		a.input.SetLabel(" [red]URL[white] ")
		a.renderStatus()
	})
}

// ClearError implements app.Presenter.
func (a *App) ClearError() {
	a.mu.Lock()
	a.errorMsg = ""
	a.mu.Unlock()
	a.update(func() {
		a.input.SetLabel(" URL ")
		a.renderStatus()
	})
}

// HideResult implements app.Presenter.
func (a *App) HideResult() {
	a.mu.Lock()
	a.galleryGen++
	a.galleryState = nil
	a.mu.Unlock()
	a.update(func() {
		a.resultView.Clear()
		a.galleryList.Clear()
	})
}

// ShowVideo implements app.Presenter.
func (a *App) ShowVideo(d *domain.Descriptor) {
	text := resultText(d) +
		fmt.Sprintf("\n[gray]Video:[white] %s\n\n[yellow]^P[white] preview  [yellow]^Y[white] copy link  [yellow]^D[white] download", d.VideoURL)
	a.update(func() {
		a.resultView.SetText(text)
	})
}

// ShowGallery implements app.Presenter. Each image is probed in the
// background and its outcome reported through the image-load handler.
func (a *App) ShowGallery(d *domain.Descriptor, items []app.GalleryItem) {
	a.mu.Lock()
	a.galleryGen++
	gen := a.galleryGen
	a.galleryState = make([]string, len(items))
	for i, item := range items {
		a.galleryState[i] = string(item.State)
	}
	a.mu.Unlock()

	text := resultText(d) + "\n[yellow]Tab[white] select image  [yellow]Enter[white] preview  [yellow]^D[white] download all"
	a.update(func() {
		a.resultView.SetText(text)
		a.galleryList.Clear()
		for _, item := range items {
			a.galleryList.AddItem(galleryItemText(item.Index, item.State), "", 0, nil)
		}
	})

	for _, item := range items {
		go a.probeImage(gen, item)
	}
}

func (a *App) probeImage(gen int, item app.GalleryItem) {
	if a.prober == nil {
		return
	}
	ctx, cancel := context.WithTimeout(a.ctx, a.probeTimeout())
	defer cancel()

	res, err := a.prober.Probe(ctx, item.URL)
	ok := err == nil && res != nil && res.Accessible

	a.mu.Lock()
	if gen != a.galleryGen || item.Index >= len(a.galleryState) {
		a.mu.Unlock()
		return
	}
	state := app.LoadLoaded
	if !ok {
		state = app.LoadError
	}
	a.galleryState[item.Index] = string(state)
	onLoad := a.handlers.imageLoad
	a.mu.Unlock()

	if onLoad != nil {
		onLoad(item.Index, item.URL, ok)
	}
	a.update(func() {
		if item.Index < a.galleryList.GetItemCount() {
			a.galleryList.SetItemText(item.Index, galleryItemText(item.Index, state), "")
		}
	})
}

// Notify implements app.Presenter.
func (a *App) Notify(msg string, isError bool) {
	color := "green"
	if isError {
		color = "red"
	}
	a.update(func() {
		a.statusBar.SetText(fmt.Sprintf(" [%s]%s", color, tview.Escape(msg)))
	})

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.notifyTimer != nil {
		a.notifyTimer.Stop()
	}
	a.notifyTimer = time.AfterFunc(a.notifyDuration(), func() {
		a.update(a.renderStatus)
	})
}

// Preview implements app.Presenter. A terminal cannot play media, so the
// preview shows the direct URL for an external player.
func (a *App) Preview(kind app.PreviewKind, url string) {
	title := "Video preview"
	if kind == app.PreviewImage {
		title = "Image preview"
	}
	a.update(func() {
		modal := tview.NewModal().
			SetText(fmt.Sprintf("%s\n\n%s", title, url)).
			AddButtons([]string{"Close"}).
			SetDoneFunc(func(int, string) {
				a.pages.RemovePage("preview")
				a.app.SetFocus(a.input)
			})
		a.pages.AddPage("preview", modal, true, true)
	})
}

// renderStatus redraws the status bar from loading and error state.
// It must run on the event loop.
func (a *App) renderStatus() {
	a.mu.Lock()
	loading, errMsg := a.loading, a.errorMsg
	a.mu.Unlock()

	switch {
	case errMsg != "":
		a.statusBar.SetText(" [red]" + tview.Escape(errMsg))
	case loading:
		a.statusBar.SetText(" [yellow]Resolving...")
	default:
		a.statusBar.SetText("")
	}
}

func (a *App) probeTimeout() time.Duration {
	if a.cfg != nil && a.cfg.ProbeTimeout > 0 {
		return a.cfg.ProbeTimeout
	}
	return 15 * time.Second
}

func (a *App) notifyDuration() time.Duration {
	if a.cfg != nil && a.cfg.NotifyDuration > 0 {
		return a.cfg.NotifyDuration
	}
	return 3 * time.Second
}

func resultText(d *domain.Descriptor) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[aqua]%s[white]\n\n", d.ContentType())
	fmt.Fprintf(&b, "[white::b]%s[white::-]\n", tview.Escape(d.DisplayTitle()))
	fmt.Fprintf(&b, "[gray]%s[white]\n", tview.Escape(d.DisplayAuthor()))
	if d.Duration != nil {
		fmt.Fprintf(&b, "[gray]%s[white]\n", time.Duration(*d.Duration*float64(time.Second)).Round(time.Second))
	}
	return b.String()
}

func galleryItemText(index int, state app.LoadState) string {
	return fmt.Sprintf("%s Image %d", stateMarkers[state], index+1)
}
