package views

import (
	"github.com/rivo/tview"
)

// LoginView is the credential form shown until a session is established.
type LoginView struct {
	*tview.Form
	message  *tview.TextView
	onSubmit func(email, password string)
}

// NewLoginView creates the login form.
func NewLoginView() *LoginView {
	lv := &LoginView{
		Form:    tview.NewForm(),
		message: tview.NewTextView().SetDynamicColors(true),
	}

	lv.AddInputField("Email", "", 40, nil, nil)
	lv.AddPasswordField("Password", "", 40, '*', nil)
	lv.AddButton("Sign in", func() {
		if lv.onSubmit == nil {
			return
		}
		email := lv.GetFormItemByLabel("Email").(*tview.InputField).GetText()
		password := lv.GetFormItemByLabel("Password").(*tview.InputField).GetText()
		lv.onSubmit(email, password)
	})
	lv.SetBorder(true).SetTitle(" Sign in ")

	return lv
}

// SetOnSubmit sets the callback fired with the entered credentials.
func (lv *LoginView) SetOnSubmit(fn func(email, password string)) {
	lv.onSubmit = fn
}
