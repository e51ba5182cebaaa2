package domain

import "time"

// AcknowledgmentMessage is returned for every accepted submission.
const AcknowledgmentMessage = "Notification request submitted successfully."

// NotificationRequest is what a requester submits. Supervisor is a pointer so
// that an absent object can be told apart from an empty one.
type NotificationRequest struct {
	FirstName   string      `json:"firstName"`
	LastName    string      `json:"lastName"`
	Email       string      `json:"email"`
	PhoneNumber string      `json:"phoneNumber"`
	Supervisor  *Supervisor `json:"supervisor"`
}

// Acknowledgment is the fixed success payload; submissions are never echoed.
type Acknowledgment struct {
	Message string `json:"message"`
}

// NewAcknowledgment returns the standard acknowledgment.
func NewAcknowledgment() Acknowledgment {
	return Acknowledgment{Message: AcknowledgmentMessage}
}

// Delivery is an accepted request handed to a sink.
type Delivery struct {
	ID         string              `json:"id"`
	ReceivedAt time.Time           `json:"receivedAt"`
	Request    NotificationRequest `json:"request"`
}
