package views

import (
	"fmt"

	"github.com/rivo/tview"

	"github.com/nidaan/mentorchat/internal/chat"
)

// MessageView displays the active conversation's log.
type MessageView struct {
	*tview.TextView
	peerName string
	typing   bool
}

// NewMessageView creates the conversation log view.
func NewMessageView() *MessageView {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWordWrap(true)
	tv.SetBorder(true).SetTitle(" Conversation ")

	return &MessageView{TextView: tv}
}

// SetPeer updates the title with the peer's name.
func (mv *MessageView) SetPeer(name string) {
	mv.peerName = name
	mv.renderTitle()
}

// SetTyping toggles the peer's typing indicator in the title.
func (mv *MessageView) SetTyping(typing bool) {
	mv.typing = typing
	mv.renderTitle()
}

func (mv *MessageView) renderTitle() {
	title := fmt.Sprintf(" %s ", mv.peerName)
	if mv.typing {
		title = fmt.Sprintf(" %s [green::d](typing...)[-:-:-] ", mv.peerName)
	}
	mv.SetTitle(title)
}

// Update re-renders the log. Consecutive messages from the same sender
// are grouped under one header, the way chat threads usually read, and
// the last confirmed own message carries a delivery tick.
func (mv *MessageView) Update(selfID string, msgs []chat.Message) {
	mv.Clear()

	lastOwn := -1
	for i, m := range msgs {
		if m.Sender.ID == selfID && !m.Pending {
			lastOwn = i
		}
	}

	prevSender := ""
	for i, m := range msgs {
		if m.Sender.ID != prevSender {
			sender := m.Sender.FullName
			if sender == "" {
				sender = m.Sender.ID
			}
			if m.Sender.ID == selfID {
				sender = "You"
			}
			ts := ""
			if !m.CreatedAt.IsZero() {
				ts = m.CreatedAt.Format("15:04")
			}
			_, _ = fmt.Fprintf(mv, "[::b]%s[-:-:-] [::d]%s[-:-:-]\n", sanitizeForTerminal(sender), ts)
			prevSender = m.Sender.ID
		}

		if m.Body != "" {
			marker := ""
			if m.Pending {
				marker = " [::d]sending...[-:-:-]"
			} else if i == lastOwn {
				marker = " [::d]✓[-:-:-]"
			}
			_, _ = fmt.Fprintf(mv, "  %s%s\n", sanitizeForTerminal(m.Body), marker)
		}

		switch chat.ClassifyFile(m.FileURL) {
		case chat.FileImage:
			_, _ = fmt.Fprintf(mv, "  [blue][image] %s[-]\n", m.FileURL)
		case chat.FileGeneric:
			_, _ = fmt.Fprintf(mv, "  [blue][file] %s[-]\n", m.FileURL)
		}
	}

	mv.ScrollToEnd()
}
