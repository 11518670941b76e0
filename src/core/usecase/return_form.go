package usecase

import (
	"returnsdesk/src/core/domain"
	"returnsdesk/src/core/ports"
)

// FormOptions configures a ReturnForm.
type FormOptions struct {
	// OnClose is invoked once when the form closes, either by Cancel or
	// after a successful Submit.
	OnClose func()

	// Notifier receives the form's notifications. Nil discards them.
	Notifier ports.Notifier
}

// ReturnForm holds a return request draft while it is being filled in.
// It is not safe for concurrent use; a form belongs to a single interaction.
type ReturnForm struct {
	opts   FormOptions
	draft  domain.ReturnDraft
	closed bool
}

// NewReturnForm opens a form with an empty draft.
func NewReturnForm(opts FormOptions) *ReturnForm {
	return &ReturnForm{opts: opts}
}

// Set updates a single field of the draft.
func (f *ReturnForm) Set(field domain.ReturnField, value string) error {
	if f.closed {
		return domain.NewConflictError("return form is closed")
	}
	return f.draft.Set(field, value)
}

// AttachImage records a supporting image name. Images are never uploaded.
func (f *ReturnForm) AttachImage(name string) {
	if f.closed || name == "" {
		return
	}
	f.draft.Images = append(f.draft.Images, name)
}

// Draft returns a copy of the current draft.
func (f *ReturnForm) Draft() domain.ReturnDraft {
	d := f.draft
	d.Images = append([]string(nil), f.draft.Images...)
	return d
}

// Closed reports whether the form has been closed.
func (f *ReturnForm) Closed() bool {
	return f.closed
}

// Submit accepts the draft when every required field is present.
// On missing fields it notifies "Missing Information" and leaves the draft
// untouched. On success it notifies "Return Request Created", discards the
// draft and closes the form. Nothing is sent anywhere.
func (f *ReturnForm) Submit() bool {
	if f.closed {
		return false
	}
	if !f.draft.Complete() {
		f.notify(domain.MissingInformation())
		return false
	}

	f.notify(domain.ReturnRequestCreated(f.draft.CustomerName))
	f.close()
	return true
}

// Cancel closes the form without notifying.
func (f *ReturnForm) Cancel() {
	if f.closed {
		return
	}
	f.close()
}

func (f *ReturnForm) notify(n domain.Notification) {
	if f.opts.Notifier != nil {
		f.opts.Notifier.Notify(n)
	}
}

func (f *ReturnForm) close() {
	f.closed = true
	f.draft = domain.ReturnDraft{}
	if f.opts.OnClose != nil {
		f.opts.OnClose()
	}
}

// NotificationRecorder is a Notifier that keeps every notification in order.
type NotificationRecorder struct {
	notes []domain.Notification
}

// Notify implements ports.Notifier.
func (r *NotificationRecorder) Notify(n domain.Notification) {
	r.notes = append(r.notes, n)
}

// Notifications returns the recorded notifications.
func (r *NotificationRecorder) Notifications() []domain.Notification {
	return append([]domain.Notification(nil), r.notes...)
}
