package domain

import "fmt"

// NotificationVariant controls how a notification is presented.
type NotificationVariant string

const (
	VariantDefault     NotificationVariant = "default"
	VariantDestructive NotificationVariant = "destructive"
)

// Notification is a short user-visible message (a toast).
type Notification struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Variant     NotificationVariant `json:"variant"`
}

// MissingInformation is emitted when a submit is attempted with required fields empty.
func MissingInformation() Notification {
	return Notification{
		Title:       "Missing Information",
		Description: "Please fill in all required fields.",
		Variant:     VariantDestructive,
	}
}

// ReturnRequestCreated is emitted after a draft for customerName is accepted.
func ReturnRequestCreated(customerName string) Notification {
	return Notification{
		Title:       "Return Request Created",
		Description: fmt.Sprintf("Return request for %s has been submitted for review.", customerName),
		Variant:     VariantDefault,
	}
}
