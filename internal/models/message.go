package models

import "time"

// GeneralContext is the fallback conversation context for messages sent
// outside any campaign thread.
const GeneralContext = "general"

// Message is a direct message between two users, scoped by a context key
// such as "general" or "campaign:<id>".
type Message struct {
	ID          string    `db:"id" json:"id"`
	SenderID    string    `db:"sender_id" json:"sender"`
	RecipientID string    `db:"recipient_id" json:"recipient_id"`
	Context     string    `db:"context" json:"context"`
	Content     string    `db:"content" json:"content"`
	Read        bool      `db:"read" json:"read"`
	CreatedAt   time.Time `db:"created_at" json:"timestamp"`
}

// MessageFilter captures list filters for messages.
type MessageFilter struct {
	Context      string
	Participants []string
	Limit        int
}

// SendMessageRequest is the payload for posting a new message.
type SendMessageRequest struct {
	RecipientID string `json:"recipient" validate:"required"`
	Context     string `json:"context"`
	Content     string `json:"content" validate:"required"`
}
