package ui

import (
	"github.com/rivo/tview"
)

// createHelpPanel creates the help panel.
func (a *App) createHelpPanel() {
	a.helpView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true)
	a.helpView.SetBorder(true).SetTitle(" Help ")

	helpText := `[yellow::b]tikgrab - TikTok link resolver[white]

Paste a TikTok video or photo link to get direct media links.

[yellow::b]RESOLVE[white]
[cyan]Enter[white]        Resolve the link in the input field
[cyan]Ctrl+V[white]       Paste from the clipboard (resolves automatically)
[cyan]Tab[white]          Switch between the input and the gallery

A newer request always replaces an older one that is still running.

[yellow::b]RESULT ACTIONS[white]
[cyan]Ctrl+P[white]       Preview the video link
[cyan]Ctrl+Y[white]       Copy the video link to the clipboard
[cyan]Ctrl+D[white]       Download the video or every gallery image
[cyan]Enter[white]        Preview the selected gallery image

Gallery markers: [gray]…[white] checking  [green]✓[white] reachable  [red]✗[white] failed
Images that failed cannot be previewed.

[yellow::b]PANELS[white]
[cyan]F1[white]           Help           - This help screen
[cyan]F2[white]           Activity       - Recent resolves and downloads
[cyan]Escape[white]       Back           - Return to the resolver
[cyan]Ctrl+Q[white]       Quit           - Exit the application

[yellow::b]ENVIRONMENT VARIABLES[white]
[cyan]TIKGRAB_CONFIG[white]           Shared YAML config file
[cyan]TIKGRAB_DOWNLOAD_DIR[white]     Download directory override
[cyan]TIKGRAB_TUI_LOG[white]          Log file (default: $TMPDIR/tikgrab-tui.log)
[cyan]TIKGRAB_NOTIFY_DURATION[white]  How long notifications stay (default: 3s)
[cyan]TIKGRAB_PROBE_TIMEOUT[white]    Gallery image check timeout (default: 15s)

Resolver and download settings (RESOLVER_*, DOWNLOAD_*) are shared with
the server and the CLI.

[dim]Press Escape to return[white]
`

	a.helpView.SetText(helpText)
}
