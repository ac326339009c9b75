package app

import (
	"context"
)

// EventSource delivers user events from a front end. Each On method
// registers the single handler for its event.
type EventSource interface {
	OnSubmit(func(raw string))
	OnPaste(func(text string))
	OnInput(func())
	OnPreview(func())
	OnPhotoPreview(func(index int))
	OnImageLoad(func(index int, url string, ok bool))
	OnCopy(func())
	OnDownload(func())
}

// Bind registers the App's handlers on src. Handlers that perform network
// or disk I/O run on their own goroutine so src's event loop never blocks.
func (a *App) Bind(ctx context.Context, src EventSource) {
	src.OnSubmit(func(raw string) {
		go a.HandleSubmit(ctx, raw)
	})
	src.OnPaste(func(text string) {
		a.HandlePaste(ctx, text)
	})
	src.OnInput(a.HandleInput)
	src.OnPreview(func() {
		if err := a.HandlePreview(); err != nil {
			a.logger.Debug("preview refused", "error", err)
		}
	})
	src.OnPhotoPreview(func(index int) {
		if err := a.HandlePhotoPreview(index); err != nil {
			a.logger.Debug("photo preview refused", "index", index, "error", err)
		}
	})
	src.OnImageLoad(a.HandleImageLoad)
	src.OnCopy(func() {
		if err := a.HandleCopy(); err != nil {
			a.logger.Debug("copy failed", "error", err)
		}
	})
	src.OnDownload(func() {
		go a.HandleDownload(ctx)
	})
}
