// Package chat stores and fetches chat messages through the provider's data
// REST surface and forwards AI prompts to the text-generation client. Which
// rooms a user may read or write is enforced by the provider's row-level
// security, not here.
package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/groupify/backend/pkg/ai"
)

// Message is one row of the messages table.
type Message struct {
	ID        int64     `json:"id"`
	SenderID  string    `json:"sender_id"`
	RoomID    string    `json:"room_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// ErrRejected indicates the provider refused the write, typically because
// the sender is not a member of the room.
var ErrRejected = errors.New("chat: message rejected")

// DataAPI is the slice of the provider's data REST surface this service uses.
type DataAPI interface {
	SelectRows(ctx context.Context, bearer, table string, filters map[string]string, order string, dest interface{}) error
	InsertRow(ctx context.Context, bearer, table string, row, dest interface{}) error
}

// Generator produces text completions.
type Generator interface {
	Generate(ctx context.Context, model, prompt string) (*ai.GenerateResponse, error)
}

// Service implements message storage and the AI pass-through.
type Service struct {
	data DataAPI
	gen  Generator
}

// NewService creates a chat service. gen may be nil when the AI endpoint is
// not configured.
func NewService(data DataAPI, gen Generator) *Service {
	return &Service{data: data, gen: gen}
}

// Send inserts a message and returns the stored row.
func (s *Service) Send(ctx context.Context, bearer, senderID, roomID, content string) (*Message, error) {
	if roomID == "" {
		return nil, fmt.Errorf("chat: room_id is required")
	}
	if content == "" {
		return nil, fmt.Errorf("chat: content is required")
	}

	row := map[string]string{
		"sender_id": senderID,
		"room_id":   roomID,
		"content":   content,
	}
	var rows []Message
	if err := s.data.InsertRow(ctx, bearer, "messages", row, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrRejected
	}
	return &rows[0], nil
}

// Messages fetches all messages for a room, oldest first.
func (s *Service) Messages(ctx context.Context, bearer, roomID string) ([]Message, error) {
	if roomID == "" {
		return nil, fmt.Errorf("chat: room_id is required")
	}
	var rows []Message
	err := s.data.SelectRows(ctx, bearer, "messages", map[string]string{"room_id": "eq." + roomID}, "created_at", &rows)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []Message{}
	}
	return rows, nil
}

// Generate forwards a prompt to the text-generation service.
func (s *Service) Generate(ctx context.Context, model, prompt string) (*ai.GenerateResponse, error) {
	if s.gen == nil {
		return nil, fmt.Errorf("chat: text generation is not configured")
	}
	return s.gen.Generate(ctx, model, prompt)
}
