package ui

// OnSubmit implements app.EventSource.
func (a *App) OnSubmit(f func(raw string)) {
	a.mu.Lock()
	a.handlers.submit = f
	a.mu.Unlock()
}

// OnPaste implements app.EventSource.
func (a *App) OnPaste(f func(text string)) {
	a.mu.Lock()
	a.handlers.paste = f
	a.mu.Unlock()
}

// OnInput implements app.EventSource.
func (a *App) OnInput(f func()) {
	a.mu.Lock()
	a.handlers.input = f
	a.mu.Unlock()
}

// OnPreview implements app.EventSource.
func (a *App) OnPreview(f func()) {
	a.mu.Lock()
	a.handlers.preview = f
	a.mu.Unlock()
}

// OnPhotoPreview implements app.EventSource.
func (a *App) OnPhotoPreview(f func(index int)) {
	a.mu.Lock()
	a.handlers.photoPreview = f
	a.mu.Unlock()
}

// OnImageLoad implements app.EventSource.
func (a *App) OnImageLoad(f func(index int, url string, ok bool)) {
	a.mu.Lock()
	a.handlers.imageLoad = f
	a.mu.Unlock()
}

// OnCopy implements app.EventSource.
func (a *App) OnCopy(f func()) {
	a.mu.Lock()
	a.handlers.copy = f
	a.mu.Unlock()
}

// OnDownload implements app.EventSource.
func (a *App) OnDownload(f func()) {
	a.mu.Lock()
	a.handlers.download = f
	a.mu.Unlock()
}
