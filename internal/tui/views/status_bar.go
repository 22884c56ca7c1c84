package views

import (
	"fmt"
	"time"

	"github.com/rivo/tview"

	"github.com/nidaan/mentorchat/internal/status"
)

// StatusBar displays the session name, connection state and flashes.
type StatusBar struct {
	*tview.TextView
	session string
	state   status.State
	flash   string
}

// NewStatusBar creates a new status bar.
func NewStatusBar() *StatusBar {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBackgroundColor(tview.Styles.MoreContrastBackgroundColor)

	return &StatusBar{TextView: tv, state: status.Booting}
}

// SetSession updates the session name display.
func (sb *StatusBar) SetSession(name string) {
	sb.session = name
	sb.render()
}

// SetState updates the connection state display.
func (sb *StatusBar) SetState(s status.State) {
	sb.state = s
	sb.render()
}

// SetFlash sets a temporary message.
func (sb *StatusBar) SetFlash(msg string) {
	sb.flash = msg
	sb.render()
}

func (sb *StatusBar) render() {
	sb.Clear()

	color := "red"
	switch sb.state {
	case status.Connected:
		color = "green"
	case status.Connecting, status.Degraded:
		color = "yellow"
	}

	line := fmt.Sprintf(" [::b]%s[-:-:-] | [%s]%s[-] | %s",
		sb.session, color, sb.state, time.Now().Format("15:04"))
	if sb.flash != "" {
		line += fmt.Sprintf(" | [yellow]%s[-]", sb.flash)
	}

	_, _ = fmt.Fprint(sb, line)
}
