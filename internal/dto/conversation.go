package dto

import "time"

// ConversationSummary is one derived inbox entry: the counterpart user and
// context pair with the most recent message in that thread.
type ConversationSummary struct {
	OtherUserID   string    `json:"other_user_id"`
	OtherUserName string    `json:"other_user_name"`
	Context       string    `json:"context"`
	LastMessage   string    `json:"last_message"`
	LastTimestamp time.Time `json:"last_timestamp"`
	MessageCount  int       `json:"message_count"`
}
