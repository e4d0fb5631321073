package dto

import (
	"time"

	"gemini-chat/models"
)

type ConversationDTO struct {
	ID        int64     `json:"id" example:"1"`
	Title     string    `json:"title" example:"Hello"`
	CreatedAt time.Time `json:"created_at"`
}

type MessageDTO struct {
	Role      string    `json:"role" example:"assistant"`
	Content   string    `json:"content" example:"Hi there!"`
	CreatedAt time.Time `json:"created_at"`
}

func ToConversationDTOs(conversations []models.Conversation) []ConversationDTO {
	out := make([]ConversationDTO, 0, len(conversations))
	for _, c := range conversations {
		out = append(out, ConversationDTO{ID: c.ID, Title: c.Title, CreatedAt: c.CreatedAt})
	}
	return out
}

func ToMessageDTOs(messages []models.Message) []MessageDTO {
	out := make([]MessageDTO, 0, len(messages))
	for _, m := range messages {
		out = append(out, MessageDTO{Role: m.Role, Content: m.Content, CreatedAt: m.CreatedAt})
	}
	return out
}
