// Package tui is the terminal shell over the chat core. It renders
// snapshots and forwards input; every piece of chat state lives behind
// the service.
package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"go.uber.org/zap"

	"github.com/nidaan/mentorchat/internal/bus"
	"github.com/nidaan/mentorchat/internal/chat"
	"github.com/nidaan/mentorchat/internal/status"
	"github.com/nidaan/mentorchat/internal/tui/model"
	"github.com/nidaan/mentorchat/internal/tui/views"
)

// App is the main TUI application shell.
type App struct {
	app     *tview.Application
	pages   *tview.Pages
	svc     *chat.Service
	machine *status.Machine
	bus     *bus.Bus
	logger  *zap.Logger
	flash   *model.Flash

	statusBar   *views.StatusBar
	contactList *views.ContactList
	msgView     *views.MessageView
	composer    *views.Composer
	loginView   *views.LoginView

	ctx    context.Context
	cancel context.CancelFunc
}

// NewApp creates the TUI application.
func NewApp(svc *chat.Service, machine *status.Machine, b *bus.Bus, logger *zap.Logger, sessionName string) *App {
	ctx, cancel := context.WithCancel(context.Background())

	a := &App{
		app:         tview.NewApplication(),
		pages:       tview.NewPages(),
		svc:         svc,
		machine:     machine,
		bus:         b,
		logger:      logger,
		flash:       &model.Flash{},
		statusBar:   views.NewStatusBar(),
		contactList: views.NewContactList(),
		msgView:     views.NewMessageView(),
		composer:    views.NewComposer(),
		loginView:   views.NewLoginView(),
		ctx:         ctx,
		cancel:      cancel,
	}

	a.statusBar.SetSession(sessionName)
	a.setupCallbacks()
	a.setupLayout()

	return a
}

func (a *App) setupCallbacks() {
	a.loginView.SetOnSubmit(func(email, password string) {
		go func() {
			if err := a.svc.Login(a.ctx, email, "", password); err != nil {
				a.flash.Notice("Login failed: " + err.Error())
				a.app.QueueUpdateDraw(func() {
					a.statusBar.SetFlash(a.flash.Get())
				})
				return
			}
			a.app.QueueUpdateDraw(func() {
				a.refreshContacts()
				a.pages.SwitchToPage("contacts")
				a.app.SetFocus(a.contactList)
			})
		}()
	})

	a.contactList.SetSelectedFunc(func(row, col int) {
		id := a.contactList.SelectedContact()
		if id != "" {
			a.openContact(id)
		}
	})

	a.composer.SetOnSend(func(text string) {
		body, att, err := parseComposition(text)
		if err != nil {
			a.flash.Notice(err.Error())
			a.statusBar.SetFlash(a.flash.Get())
			a.composer.SetDraft(text)
			return
		}
		go func() {
			if err := a.svc.Send(a.ctx, body, att); err != nil {
				a.logger.Warn("send rejected", zap.Error(err))
			}
		}()
	})

	a.composer.SetOnKeystroke(func() {
		a.svc.Keystroke(a.ctx)
	})
}

func (a *App) setupLayout() {
	chatFlex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.msgView, 0, 1, false).
		AddItem(a.composer, 1, 0, false)

	a.pages.AddPage("login", a.loginView, true, true)
	a.pages.AddPage("contacts", a.contactList, true, false)
	a.pages.AddPage("chat", chatFlex, true, false)

	root := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.pages, 0, 1, true).
		AddItem(a.statusBar, 1, 0, false)

	a.app.SetRoot(root, true)

	a.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		currentPage, _ := a.pages.GetFrontPage()

		if event.Key() == tcell.KeyEscape && currentPage == "chat" {
			a.svc.Store().Deselect()
			a.msgView.SetTyping(false)
			a.pages.SwitchToPage("contacts")
			a.app.SetFocus(a.contactList)
			return nil
		}

		// Let text input widgets handle all keys normally.
		if _, ok := a.app.GetFocus().(*tview.InputField); ok {
			return event
		}

		if currentPage == "chat" && event.Key() == tcell.KeyRune && event.Rune() == 'i' {
			a.app.SetFocus(a.composer.InputField)
			return nil
		}

		if event.Key() == tcell.KeyRune {
			switch event.Rune() {
			case 'q':
				a.app.Stop()
				return nil
			case 'r':
				if a.machine.Current() == status.Degraded {
					go func() { _ = a.svc.Reconnect(a.ctx) }()
				}
				return nil
			case 'L':
				if currentPage != "login" {
					a.doLogout()
				}
				return nil
			}
		}

		return event
	})
}

func (a *App) openContact(contactID string) {
	go func() {
		if !a.svc.SelectContact(a.ctx, contactID) {
			a.flash.Notice("No conversation with this mentor yet")
			a.app.QueueUpdateDraw(func() {
				a.statusBar.SetFlash(a.flash.Get())
			})
			return
		}
		peer := a.svc.Store().ActivePeer()
		a.app.QueueUpdateDraw(func() {
			a.msgView.SetPeer(peer.FullName)
			a.msgView.SetTyping(false)
			a.msgView.Update(a.svc.Self().ID, a.svc.Store().Messages())
			a.pages.SwitchToPage("chat")
			a.app.SetFocus(a.composer.InputField)
		})
	}()
}

func (a *App) doLogout() {
	go func() {
		a.svc.Logout(a.ctx)
		a.app.QueueUpdateDraw(func() {
			a.composer.SetText("")
			a.msgView.Clear()
			a.contactList.Update(nil)
			a.pages.SwitchToPage("login")
			a.app.SetFocus(a.loginView)
		})
	}()
}

// refreshContacts rebuilds the contact rows from the store and tracker.
func (a *App) refreshContacts() {
	store := a.svc.Store()
	tracker := a.svc.Tracker()
	peer := store.ActivePeer()

	contacts := store.Contacts()
	rows := make([]views.ContactRow, 0, len(contacts))
	for _, c := range contacts {
		rows = append(rows, views.ContactRow{
			Contact: c,
			Unread:  tracker.Unread(c.ID),
			Typing:  !peer.IsZero() && peer.ID == c.ID && tracker.Typing(),
		})
	}
	a.contactList.Update(rows)
}

// Run starts the shell: the bus redraw loop, the clock tick and the
// tview event loop. Returns when the user quits.
func (a *App) Run() error {
	go a.eventLoop()
	go a.clockLoop()
	return a.app.Run()
}

// eventLoop translates chat-core events into redraws. Rendering always
// reads fresh snapshots, so a dropped bus event only delays a repaint
// until the next one.
func (a *App) eventLoop() {
	events, cancel := a.bus.Subscribe("", 64)
	defer cancel()

	for {
		select {
		case evt := <-events:
			a.handleEvent(evt)
		case <-a.ctx.Done():
			return
		}
	}
}

func (a *App) handleEvent(evt bus.Event) {
	switch evt.Kind {
	case bus.KindContacts, bus.KindUnread:
		a.app.QueueUpdateDraw(a.refreshContacts)

	case bus.KindMessages:
		a.app.QueueUpdateDraw(func() {
			a.msgView.Update(a.svc.Self().ID, a.svc.Store().Messages())
		})

	case bus.KindTyping:
		typing, _ := evt.Payload.(bool)
		a.app.QueueUpdateDraw(func() {
			a.msgView.SetTyping(typing)
			a.refreshContacts()
		})

	case bus.KindSendFailed:
		failure, ok := evt.Payload.(chat.SendFailure)
		if !ok {
			return
		}
		a.flash.Notice("Send failed: " + failure.Err.Error())
		a.app.QueueUpdateDraw(func() {
			// Hand the draft back so the user edits instead of retyping.
			if a.composer.GetText() == "" {
				a.composer.SetDraft(failure.Draft)
			}
			a.statusBar.SetFlash(a.flash.Get())
		})

	case bus.KindConnStatus:
		change, ok := evt.Payload.(status.Change)
		if !ok {
			return
		}
		a.app.QueueUpdateDraw(func() {
			a.statusBar.SetState(change.To)
		})
	}
}

// clockLoop repaints the status bar clock and expires flashes.
func (a *App) clockLoop() {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			a.app.QueueUpdateDraw(func() {
				a.statusBar.SetState(a.machine.Current())
				a.statusBar.SetFlash(a.flash.Get())
			})
		case <-a.ctx.Done():
			return
		}
	}
}

// parseComposition splits a composer submission into message text and an
// optional attachment. "/attach <path> [caption]" reads the file so the
// pipeline can upload it.
func parseComposition(text string) (string, *chat.Attachment, error) {
	const prefix = "/attach "
	if !strings.HasPrefix(text, prefix) {
		return text, nil, nil
	}

	rest := strings.TrimSpace(strings.TrimPrefix(text, prefix))
	path, caption, _ := strings.Cut(rest, " ")
	if path == "" {
		return "", nil, errors.New("usage: /attach <path> [caption]")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("read attachment: %w", err)
	}
	return caption, &chat.Attachment{
		Name:      filepath.Base(path),
		LocalPath: path,
		Data:      data,
	}, nil
}

// Stop gracefully shuts down the TUI.
func (a *App) Stop() {
	a.cancel()
	a.app.Stop()
}
