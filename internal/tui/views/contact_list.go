// Package views contains the tview widgets of the terminal client. Each
// view renders from snapshots handed to Update; none of them reach into
// the chat core directly.
package views

import (
	"fmt"

	"github.com/rivo/tview"

	"github.com/nidaan/mentorchat/internal/chat"
)

// ContactRow is the render model for one contact-list entry.
type ContactRow struct {
	Contact chat.Contact
	Unread  int
	Typing  bool
}

// ContactList is the contact table with unread badges and previews.
type ContactList struct {
	*tview.Table
	rows       []ContactRow
	selectedFn func() (int, int)
}

// NewContactList creates the contact list table.
func NewContactList() *ContactList {
	table := tview.NewTable().
		SetSelectable(true, false).
		SetBorders(false)
	table.SetBorder(true).SetTitle(" Mentors ")

	cl := &ContactList{Table: table}
	cl.selectedFn = table.GetSelection
	return cl
}

// Update refreshes the table with new rows.
func (cl *ContactList) Update(rows []ContactRow) {
	row, col := cl.selectedFn()
	cl.rows = rows
	cl.Clear()

	cl.SetCell(0, 0, tview.NewTableCell(" Name").SetSelectable(false).SetTextColor(tview.Styles.SecondaryTextColor))
	cl.SetCell(0, 1, tview.NewTableCell(" Last Message").SetSelectable(false).SetTextColor(tview.Styles.SecondaryTextColor))

	for i, r := range rows {
		name := r.Contact.FullName
		if name == "" {
			name = r.Contact.ID
		}
		if r.Contact.Online {
			name = "* " + name
		}
		if r.Unread > 0 {
			name = fmt.Sprintf("%s (%d)", name, r.Unread)
		}

		preview := truncatePreview(sanitizeForTerminal(r.Contact.LastMessage))
		if r.Typing {
			preview = "[green::d]typing...[-:-:-]"
		}

		cl.SetCell(i+1, 0, tview.NewTableCell(" "+sanitizeForTerminal(name)).SetMaxWidth(30).SetExpansion(1))
		cl.SetCell(i+1, 1, tview.NewTableCell(" "+preview).SetMaxWidth(40).SetExpansion(2))
	}

	if row > len(rows) {
		row = len(rows)
	}
	if row < 1 && len(rows) > 0 {
		row = 1
	}
	cl.Select(row, col)
}

// SelectedContact returns the id of the selected row, or empty.
func (cl *ContactList) SelectedContact() string {
	row, _ := cl.selectedFn()
	idx := row - 1 // header row
	if idx >= 0 && idx < len(cl.rows) {
		return cl.rows[idx].Contact.ID
	}
	return ""
}
