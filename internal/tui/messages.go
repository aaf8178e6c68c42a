package tui

import (
	"time"

	"github.com/pavan3030-vikal/VIKAL-NEW/internal/app"
	"github.com/pavan3030-vikal/VIKAL-NEW/internal/auth"
	"github.com/pavan3030-vikal/VIKAL-NEW/internal/study"
)

// Custom messages for Bubble Tea

// TickMsg is sent periodically for updates
type TickMsg struct {
	Time time.Time
}

// SignInPromptMsg carries the device code to show while sign-in polls.
// It is sent from the identity provider's prompt callback.
type SignInPromptMsg struct {
	Code auth.DeviceCode
}

// SignInDoneMsg is sent when the sign-in flow finishes
type SignInDoneMsg struct {
	Action   app.SignIn
	Upgraded bool
	Err      error
}

// SubmitDoneMsg is sent when a submission finishes
type SubmitDoneMsg struct {
	Mode   study.Mode
	Result study.Result
}

// FeedbackDoneMsg is sent when feedback has been posted
type FeedbackDoneMsg struct {
	Err error
}

// SignOutDoneMsg is sent after the session was ended
type SignOutDoneMsg struct {
	Err error
}

// TermsAcceptedMsg is sent after the terms marker was stored
type TermsAcceptedMsg struct {
	Err error
}

// ClipboardMsg is sent after copying notes
type ClipboardMsg struct {
	Err error
}

// BrowserMsg is sent after trying to open a URL
type BrowserMsg struct {
	URL string
	Err error
}

// ToastMsg displays a notification
type ToastMsg struct {
	Message  string
	Duration time.Duration
	Type     ToastType
}

// ToastType defines the toast notification style
type ToastType int

const (
	ToastInfo ToastType = iota
	ToastSuccess
	ToastWarning
	ToastError
)
