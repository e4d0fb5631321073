package models

import (
	"time"
	"unicode/utf8"
)

// TitleMaxRunes is the number of characters of the first user message kept as a title.
const TitleMaxRunes = 30

// Conversation is an owned, ordered collection of messages
// Collection / table: conversations
type Conversation struct {
	ID        int64     `bson:"_id" json:"id"`
	UserID    int64     `bson:"user_id" json:"user_id"`
	Title     string    `bson:"title" json:"title"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// TitleFromMessage derives a display title from the first user message:
// the first 30 characters, with "..." appended when the message is longer.
func TitleFromMessage(message string) string {
	if utf8.RuneCountInString(message) <= TitleMaxRunes {
		return message
	}
	rs := []rune(message)
	return string(rs[:TitleMaxRunes]) + "..."
}
