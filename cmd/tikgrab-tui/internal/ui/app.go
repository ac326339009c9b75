// Package ui provides the terminal user interface for tikgrab.
package ui

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/iconidentify/tikgrab/cmd/tikgrab-tui/internal/config"
	"github.com/iconidentify/tikgrab/internal/clipboard"
	"github.com/iconidentify/tikgrab/internal/domain"
	"github.com/iconidentify/tikgrab/internal/downloader"
)

// Panel represents a UI panel type.
type Panel int

const (
	PanelMain Panel = iota
	PanelActivity
	PanelHelp
)

// Prober checks whether a media URL is reachable.
type Prober interface {
	Probe(ctx context.Context, url string) (*downloader.ProbeResult, error)
}

// ActivityLog lists recent events.
type ActivityLog interface {
	Query(ctx context.Context, query domain.EventQuery) (*domain.EventQueryResult, error)
}

// Options holds TUI dependencies.
type Options struct {
	Config    *config.Config
	Clipboard clipboard.Reader
	Prober    Prober
	Activity  ActivityLog // optional
}

// App is the main TUI application. It implements app.Presenter and
// app.EventSource.
type App struct {
	app          *tview.Application
	pages        *tview.Pages
	cfg          *config.Config
	clip         clipboard.Reader
	prober       Prober
	activity     ActivityLog
	currentPanel Panel
	ctx          context.Context
	cancel       context.CancelFunc

	// update applies a UI mutation on the event loop.
	update func(func())

	// UI components
	mainFlex     *tview.Flex
	header       *tview.TextView
	footer       *tview.TextView
	statusBar    *tview.TextView
	input        *tview.InputField
	resultView   *tview.TextView
	galleryList  *tview.List
	activityView *tview.TextView
	helpView     *tview.TextView

	mu           sync.Mutex
	handlers     handlers
	loading      bool
	errorMsg     string
	galleryGen   int
	galleryState []string
	notifyTimer  *time.Timer
}

type handlers struct {
	submit       func(raw string)
	paste        func(text string)
	input        func()
	preview      func()
	photoPreview func(index int)
	imageLoad    func(index int, url string, ok bool)
	copy         func()
	download     func()
}

// NewApp creates a new TUI application.
func NewApp(opts Options) *App {
	ctx, cancel := context.WithCancel(context.Background())

	a := &App{
		app:      tview.NewApplication(),
		pages:    tview.NewPages(),
		cfg:      opts.Config,
		clip:     opts.Clipboard,
		prober:   opts.Prober,
		activity: opts.Activity,
		ctx:      ctx,
		cancel:   cancel,
	}
	a.update = func(f func()) { a.app.QueueUpdateDraw(f) }

	a.setupUI()
	return a
}

// setupUI initializes all UI components.
func (a *App) setupUI() {
	// Header
	a.header = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	a.header.SetBackgroundColor(tcell.ColorDarkBlue)
	a.updateHeader()

	// Footer with keybindings
	a.footer = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter).
		SetText("[yellow]Enter[white]:Resolve [yellow]^V[white]:Paste [yellow]^P[white]:Preview [yellow]^Y[white]:Copy [yellow]^D[white]:Download [yellow]Tab[white]:Gallery [yellow]F2[white]:Activity [yellow]F1[white]:Help [yellow]^Q[white]:Quit")
	a.footer.SetBackgroundColor(tcell.ColorDarkBlue)

	// Status bar
	a.statusBar = tview.NewTextView().
		SetDynamicColors(true)
	a.statusBar.SetBackgroundColor(tcell.ColorDarkGreen)

	// Create panels
	mainView := a.createMainPanel()
	a.createActivityPanel()
	a.createHelpPanel()

	// Add panels to pages
	a.pages.AddPage("main", mainView, true, true)
	a.pages.AddPage("activity", a.activityView, true, false)
	a.pages.AddPage("help", a.helpView, true, false)

	// Main layout
	a.mainFlex = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(a.header, 3, 0, false).
		AddItem(a.pages, 0, 1, true).
		AddItem(a.statusBar, 1, 0, false).
		AddItem(a.footer, 1, 0, false)

	// Global key bindings
	a.app.SetInputCapture(a.handleGlobalKeys)

	a.app.SetRoot(a.mainFlex, true).SetFocus(a.input)
}

// createMainPanel builds the input, result and gallery views.
func (a *App) createMainPanel() tview.Primitive {
	a.input = tview.NewInputField().
		SetLabel(" URL ").
		SetPlaceholder("Paste a TikTok link").
		SetFieldWidth(0)
	a.input.SetBorder(true).SetTitle(" Link ")
	a.input.SetChangedFunc(func(string) {
		if h := a.handler().input; h != nil {
			h()
		}
	})
	a.input.SetDoneFunc(func(key tcell.Key) {
		if key != tcell.KeyEnter {
			return
		}
		if h := a.handler().submit; h != nil {
			h(a.input.GetText())
		}
	})

	a.resultView = tview.NewTextView().
		SetDynamicColors(true).
		SetWordWrap(true)
	a.resultView.SetBorder(true).SetTitle(" Result ")

	a.galleryList = tview.NewList().
		ShowSecondaryText(false).
		SetHighlightFullLine(true)
	a.galleryList.SetBorder(true).SetTitle(" Gallery ")
	a.galleryList.SetSelectedFunc(func(index int, _, _ string, _ rune) {
		if h := a.handler().photoPreview; h != nil {
			h(index)
		}
	})

	return tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(a.input, 3, 0, true).
		AddItem(tview.NewFlex().
			AddItem(a.resultView, 0, 2, false).
			AddItem(a.galleryList, 0, 1, false), 0, 1, false)
}

// handleGlobalKeys handles global keyboard shortcuts.
func (a *App) handleGlobalKeys(event *tcell.EventKey) *tcell.EventKey {
	switch event.Key() {
	case tcell.KeyCtrlQ:
		a.Stop()
		return nil
	case tcell.KeyCtrlV:
		a.pasteFromClipboard()
		return nil
	case tcell.KeyCtrlP:
		if h := a.handler().preview; h != nil {
			h()
		}
		return nil
	case tcell.KeyCtrlY:
		if h := a.handler().copy; h != nil {
			h()
		}
		return nil
	case tcell.KeyCtrlD:
		if h := a.handler().download; h != nil {
			h()
		}
		return nil
	case tcell.KeyTab:
		if a.currentPanel == PanelMain {
			a.toggleFocus()
			return nil
		}
	case tcell.KeyF1:
		a.switchPanel(PanelHelp)
		return nil
	case tcell.KeyF2:
		a.switchPanel(PanelActivity)
		return nil
	case tcell.KeyEscape:
		if a.currentPanel != PanelMain {
			a.switchPanel(PanelMain)
			return nil
		}
	}

	return event
}

func (a *App) pasteFromClipboard() {
	if a.clip == nil {
		return
	}
	text, err := a.clip.ReadAll()
	if err != nil {
		a.Notify(domain.ErrClipboardUnavailable.Error(), true)
		return
	}
	a.input.SetText(text)
	if h := a.handler().paste; h != nil {
		h(text)
	}
}

func (a *App) toggleFocus() {
	if a.app.GetFocus() == a.input && a.galleryList.GetItemCount() > 0 {
		a.app.SetFocus(a.galleryList)
		return
	}
	a.app.SetFocus(a.input)
}

// switchPanel switches to the specified panel.
func (a *App) switchPanel(panel Panel) {
	a.currentPanel = panel

	switch panel {
	case PanelMain:
		a.pages.SwitchToPage("main")
		a.app.SetFocus(a.input)
	case PanelActivity:
		a.refreshActivity()
		a.pages.SwitchToPage("activity")
	case PanelHelp:
		a.pages.SwitchToPage("help")
	}

	a.updateHeader()
}

// updateHeader updates the header with current panel name.
func (a *App) updateHeader() {
	var panelName string
	switch a.currentPanel {
	case PanelMain:
		panelName = "Resolve"
	case PanelActivity:
		panelName = "Activity"
	case PanelHelp:
		panelName = "Help"
	}

	a.header.SetText(fmt.Sprintf("\n[white::b]tikgrab[white] - [yellow]%s", panelName))
}

// Run starts the TUI application.
func (a *App) Run() error {
	return a.app.Run()
}

// Stop stops the TUI application.
func (a *App) Stop() {
	a.cancel()
	a.mu.Lock()
	if a.notifyTimer != nil {
		a.notifyTimer.Stop()
	}
	a.mu.Unlock()
	a.app.Stop()
}

func (a *App) handler() handlers {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.handlers
}
