package views

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// Composer is the text input for sending messages. Every edit feeds the
// keystroke callback so the typing debounce sees real activity, and a
// rejected send can put its draft back with SetDraft.
type Composer struct {
	*tview.InputField
	onSend      func(text string)
	onKeystroke func()
}

// NewComposer creates a new message composer.
func NewComposer() *Composer {
	input := tview.NewInputField().
		SetLabel(" > ").
		SetFieldWidth(0)

	c := &Composer{InputField: input}

	input.SetChangedFunc(func(text string) {
		if text != "" && c.onKeystroke != nil {
			c.onKeystroke()
		}
	})

	input.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEnter && c.onSend != nil {
			text := c.GetText()
			if text != "" {
				// Clear before the callback so a rejected send can put
				// its draft back without being wiped here.
				c.SetText("")
				c.onSend(text)
			}
		}
	})

	return c
}

// SetOnSend sets the callback when a message is submitted.
func (c *Composer) SetOnSend(fn func(text string)) {
	c.onSend = fn
}

// SetOnKeystroke sets the callback fired on every edit.
func (c *Composer) SetOnKeystroke(fn func()) {
	c.onKeystroke = fn
}

// SetDraft restores text into the field without firing the keystroke
// callback, used when a failed send hands the draft back.
func (c *Composer) SetDraft(text string) {
	prev := c.onKeystroke
	c.onKeystroke = nil
	c.SetText(text)
	c.onKeystroke = prev
}
