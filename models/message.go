package models

import "time"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single persisted turn half
// Collection / table: messages
// Ordering within a conversation is (created_at, id) ascending.
type Message struct {
	ID             int64     `bson:"_id" json:"id"`
	ConversationID int64     `bson:"conversation_id" json:"conversation_id"`
	Role           string    `bson:"role" json:"role"`
	Content        string    `bson:"content" json:"content"`
	CreatedAt      time.Time `bson:"created_at" json:"created_at"`
}

// ValidRole reports whether role is one of the persisted roles.
func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAssistant
}
