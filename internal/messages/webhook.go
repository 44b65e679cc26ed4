package messages

import "fmt"

const fieldMessages = "messages"

// WebhookPayload is the WhatsApp Cloud API notification envelope: a list of
// entries, each carrying a list of changes, each wrapping a value that may
// contain messages. Deliveries without messages (status updates, other
// fields) are a normal variety of input, not an error.
type WebhookPayload struct {
	Object string  `json:"object"`
	Entry  []Entry `json:"entry"`
}

// Entry represents one business account entry.
type Entry struct {
	ID      string   `json:"id"`
	Changes []Change `json:"changes"`
}

// Change wraps a single change notification.
type Change struct {
	Field string      `json:"field"`
	Value ChangeValue `json:"value"`
}

// ChangeValue holds the notification data for one change.
type ChangeValue struct {
	MessagingProduct string    `json:"messaging_product"`
	Metadata         Metadata  `json:"metadata"`
	Contacts         []Contact `json:"contacts,omitempty"`
	Messages         []Message `json:"messages,omitempty"`
	Statuses         []Status  `json:"statuses,omitempty"`
}

// Metadata identifies the receiving phone number.
type Metadata struct {
	DisplayPhoneNumber string `json:"display_phone_number"`
	PhoneNumberID      string `json:"phone_number_id"`
}

// Contact is the sender's WhatsApp contact record.
type Contact struct {
	Profile ContactProfile `json:"profile"`
	WaID    string         `json:"wa_id"`
}

// ContactProfile carries the sender's display name.
type ContactProfile struct {
	Name string `json:"name"`
}

// Message is one incoming message inside a change value.
type Message struct {
	From      string    `json:"from"`
	ID        string    `json:"id"`
	Timestamp string    `json:"timestamp"`
	Type      string    `json:"type"`
	Text      *TextBody `json:"text,omitempty"`
}

// TextBody holds a text message body.
type TextBody struct {
	Body string `json:"body"`
}

// Status is a delivery status update; this service ignores them.
type Status struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
	RecipientID string `json:"recipient_id"`
}

// ExtractMessage navigates the envelope defensively and returns the first
// message, or ok=false when the delivery carries none. Each abort condition
// is an explicit branch so the set of ignored shapes stays enumerable.
func ExtractMessage(payload WebhookPayload) (Message, bool) {
	if len(payload.Entry) == 0 {
		return Message{}, false
	}
	entry := payload.Entry[0]

	if len(entry.Changes) == 0 {
		return Message{}, false
	}
	change := entry.Changes[0]

	if change.Field != fieldMessages {
		return Message{}, false
	}
	if len(change.Value.Messages) == 0 {
		return Message{}, false
	}

	return change.Value.Messages[0], true
}

// NormalizeText resolves the stored text for a message: the literal body for
// text messages (empty when absent), a bracketed type tag such as "[image]"
// for everything else.
func NormalizeText(message Message) string {
	if message.Type == "text" {
		if message.Text == nil {
			return ""
		}
		return message.Text.Body
	}
	return fmt.Sprintf("[%s]", message.Type)
}
