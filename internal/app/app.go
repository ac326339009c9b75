package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/iconidentify/tikgrab/internal/clipboard"
	"github.com/iconidentify/tikgrab/internal/domain"
	"github.com/iconidentify/tikgrab/internal/service"
	"github.com/iconidentify/tikgrab/internal/session"
	"github.com/iconidentify/tikgrab/pkg/tiktok"
)

// DefaultPasteDebounce is the delay between a paste and its auto-resolve.
const DefaultPasteDebounce = 500 * time.Millisecond

var (
	// ErrNothingSelected is returned when an action has no target in the current result.
	ErrNothingSelected = errors.New("nothing to act on")

	// ErrImageFailed is returned when previewing an image that failed to load.
	ErrImageFailed = errors.New("image failed to load")
)

// Resolver resolves raw input within a session.
type Resolver interface {
	Resolve(ctx context.Context, sess *session.Session, raw string) (*domain.Descriptor, error)
}

// Saver writes the media of a descriptor to disk.
type Saver interface {
	Save(ctx context.Context, sourceURL string, d *domain.Descriptor) ([]string, error)
}

// Config holds App dependencies.
type Config struct {
	Resolver      Resolver
	Presenter     Presenter
	Clipboard     clipboard.Writer
	Saver         Saver // optional
	PasteDebounce time.Duration
	Logger        *slog.Logger
}

// App is the single-user controller shared by interactive front ends.
type App struct {
	resolver  Resolver
	presenter Presenter
	clip      clipboard.Writer
	saver     Saver
	debounce  time.Duration
	logger    *slog.Logger
	sess      *session.Session

	mu         sync.Mutex
	seq        uint64
	inputError bool
	sourceURL  string
	gallery    []GalleryItem
	pasteTimer *time.Timer
}

// New creates an App with its own session.
func New(cfg Config) *App {
	if cfg.PasteDebounce <= 0 {
		cfg.PasteDebounce = DefaultPasteDebounce
	}
	if cfg.Clipboard == nil {
		cfg.Clipboard = clipboard.System{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &App{
		resolver:  cfg.Resolver,
		presenter: cfg.Presenter,
		clip:      cfg.Clipboard,
		saver:     cfg.Saver,
		debounce:  cfg.PasteDebounce,
		logger:    cfg.Logger,
		sess:      session.New("local"),
	}
}

// Session returns the App's session.
func (a *App) Session() *session.Session {
	return a.sess
}

// Current returns the current descriptor.
func (a *App) Current() (*domain.Descriptor, error) {
	return a.sess.Current()
}

// HandleSubmit validates raw and resolves it. Validation errors are shown
// without canceling a request already in flight; a request replaced by a
// newer one returns ErrSuperseded and leaves the presenter to the newer one.
//
// Outcomes are rendered under a.mu and only while the request is still the
// newest submit, so a result that settles just before a newer submit starts
// is never shown after it.
func (a *App) HandleSubmit(ctx context.Context, raw string) error {
	contentURL, err := service.Validate(raw)
	if err != nil {
		a.showError(err)
		return err
	}

	a.mu.Lock()
	a.seq++
	mine := a.seq
	a.mu.Unlock()

	a.clearError()
	a.presenter.HideResult()
	a.presenter.SetLoading(true)

	d, err := a.resolver.Resolve(ctx, a.sess, contentURL)

	a.mu.Lock()
	defer a.mu.Unlock()

	if mine != a.seq {
		return domain.ErrSuperseded
	}
	defer a.presenter.SetLoading(false)

	if err != nil {
		if !domain.IsSilent(err) {
			a.inputError = true
			a.presenter.ShowError(domain.UserMessage(err))
		}
		return err
	}

	a.sourceURL = contentURL
	a.gallery = nil
	if d.IsPhoto {
		a.gallery = NewGallery(d.Images)
	}

	Dispatch(a.presenter, d)
	return nil
}

// HandlePaste schedules an auto-resolve of text after the paste debounce.
// A later paste restarts the timer. Invalid text is ignored.
func (a *App) HandlePaste(ctx context.Context, text string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.pasteTimer != nil {
		a.pasteTimer.Stop()
	}
	a.pasteTimer = time.AfterFunc(a.debounce, func() {
		if !tiktok.IsValidURL(tiktok.NormalizeURL(text)) {
			return
		}
		if err := a.HandleSubmit(ctx, text); err != nil && !domain.IsSilent(err) {
			a.logger.Debug("auto-resolve failed", "error", err)
		}
	})
}

// HandleInput clears the input error once the user edits the input.
func (a *App) HandleInput() {
	a.mu.Lock()
	had := a.inputError
	a.inputError = false
	a.mu.Unlock()

	if had {
		a.presenter.ClearError()
	}
}

// HasInputError reports whether the input is flagged as erroneous.
func (a *App) HasInputError() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.inputError
}

// HandleImageLoad records the load outcome of gallery image index. Reports
// for a URL that is not the image at index, such as late loads from a
// previous gallery, are ignored.
func (a *App) HandleImageLoad(index int, url string, ok bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if index < 0 || index >= len(a.gallery) || a.gallery[index].URL != url {
		return
	}
	if ok {
		a.gallery[index].State = LoadLoaded
	} else {
		a.gallery[index].State = LoadError
	}
}

// ImageState returns the load state of gallery image index.
func (a *App) ImageState(index int) LoadState {
	a.mu.Lock()
	defer a.mu.Unlock()

	if index < 0 || index >= len(a.gallery) {
		return ""
	}
	return a.gallery[index].State
}

// HandlePreview previews the current video.
func (a *App) HandlePreview() error {
	d, err := a.sess.Current()
	if err != nil {
		return err
	}
	if d.VideoURL == "" {
		return ErrNothingSelected
	}
	a.presenter.Preview(PreviewVideo, d.VideoURL)
	return nil
}

// HandlePhotoPreview previews gallery image index unless it failed to load.
func (a *App) HandlePhotoPreview(index int) error {
	d, err := a.sess.Current()
	if err != nil {
		return err
	}
	if !d.IsPhoto || index < 0 || index >= len(d.Images) {
		return ErrNothingSelected
	}
	if a.ImageState(index) == LoadError {
		return ErrImageFailed
	}
	a.presenter.Preview(PreviewImage, d.Images[index])
	return nil
}

// HandleCopy copies the current video link and notifies the outcome.
func (a *App) HandleCopy() error {
	d, err := a.sess.Current()
	if err != nil {
		return err
	}
	if d.VideoURL == "" {
		return ErrNothingSelected
	}

	if err := a.clip.WriteAll(d.VideoURL); err != nil {
		a.logger.Warn("failed to copy link", "error", err)
		a.presenter.Notify(domain.MsgCopyFailed, true)
		return err
	}
	a.presenter.Notify(domain.MsgCopied, false)
	return nil
}

// HandleDownload saves the current media and notifies the outcome.
func (a *App) HandleDownload(ctx context.Context) ([]string, error) {
	if a.saver == nil {
		return nil, ErrNothingSelected
	}
	d, err := a.sess.Current()
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	source := a.sourceURL
	a.mu.Unlock()

	paths, err := a.saver.Save(ctx, source, d)
	if err != nil {
		a.logger.Warn("download failed", "error", err, "saved", len(paths))
		a.presenter.Notify(domain.UserMessage(err), true)
		return paths, err
	}
	a.presenter.Notify(fmt.Sprintf("%s: %d file(s)", domain.MsgDownloadDone, len(paths)), false)
	return paths, nil
}

// Close cancels any pending paste and request.
func (a *App) Close() {
	a.mu.Lock()
	if a.pasteTimer != nil {
		a.pasteTimer.Stop()
	}
	a.mu.Unlock()
	a.sess.Cancel()
}

func (a *App) showError(err error) {
	a.mu.Lock()
	a.inputError = true
	a.mu.Unlock()
	a.presenter.ShowError(domain.UserMessage(err))
}

func (a *App) clearError() {
	a.mu.Lock()
	a.inputError = false
	a.mu.Unlock()
	a.presenter.ClearError()
}
