package chat

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groupify/backend/pkg/ai"
)

type fakeData struct {
	selectRows  []Message
	insertRows  []Message
	insertErr   error
	lastFilters map[string]string
	lastOrder   string
	lastRow     interface{}
}

func (f *fakeData) SelectRows(ctx context.Context, bearer, table string, filters map[string]string, order string, dest interface{}) error {
	f.lastFilters, f.lastOrder = filters, order
	return copyRows(f.selectRows, dest)
}

func (f *fakeData) InsertRow(ctx context.Context, bearer, table string, row, dest interface{}) error {
	f.lastRow = row
	if f.insertErr != nil {
		return f.insertErr
	}
	return copyRows(f.insertRows, dest)
}

func copyRows(rows []Message, dest interface{}) error {
	data, err := json.Marshal(rows)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

type fakeGen struct {
	resp *ai.GenerateResponse
	err  error
}

func (g *fakeGen) Generate(ctx context.Context, model, prompt string) (*ai.GenerateResponse, error) {
	return g.resp, g.err
}

func TestSend(t *testing.T) {
	stored := Message{ID: 7, SenderID: "user-1", RoomID: "room-1", Content: "hi", CreatedAt: time.Now().UTC()}
	data := &fakeData{insertRows: []Message{stored}}
	svc := NewService(data, nil)

	msg, err := svc.Send(context.Background(), "tok", "user-1", "room-1", "hi")
	require.NoError(t, err)
	assert.Equal(t, int64(7), msg.ID)
	assert.Equal(t, map[string]string{"sender_id": "user-1", "room_id": "room-1", "content": "hi"}, data.lastRow)
}

func TestSend_Validation(t *testing.T) {
	svc := NewService(&fakeData{}, nil)

	_, err := svc.Send(context.Background(), "tok", "user-1", "", "hi")
	assert.ErrorContains(t, err, "room_id")

	_, err = svc.Send(context.Background(), "tok", "user-1", "room-1", "")
	assert.ErrorContains(t, err, "content")
}

func TestSend_RejectedWrite(t *testing.T) {
	// Row security can deny the insert without an HTTP error; the returned
	// representation is simply empty.
	svc := NewService(&fakeData{}, nil)

	_, err := svc.Send(context.Background(), "tok", "user-1", "room-1", "hi")
	assert.ErrorIs(t, err, ErrRejected)
}

func TestMessages(t *testing.T) {
	data := &fakeData{selectRows: []Message{
		{ID: 1, RoomID: "room-1", Content: "first"},
		{ID: 2, RoomID: "room-1", Content: "second"},
	}}
	svc := NewService(data, nil)

	msgs, err := svc.Messages(context.Background(), "tok", "room-1")
	require.NoError(t, err)
	assert.Len(t, msgs, 2)
	assert.Equal(t, map[string]string{"room_id": "eq.room-1"}, data.lastFilters)
	assert.Equal(t, "created_at", data.lastOrder)
}

func TestMessages_EmptyRoomGivesEmptySlice(t *testing.T) {
	svc := NewService(&fakeData{}, nil)

	msgs, err := svc.Messages(context.Background(), "tok", "room-1")
	require.NoError(t, err)
	assert.NotNil(t, msgs)
	assert.Empty(t, msgs)
}

func TestGenerate(t *testing.T) {
	gen := &fakeGen{resp: &ai.GenerateResponse{Response: "generated text", Done: true}}
	svc := NewService(&fakeData{}, gen)

	resp, err := svc.Generate(context.Background(), "", "prompt")
	require.NoError(t, err)
	assert.Equal(t, "generated text", resp.Response)
}

func TestGenerate_NotConfigured(t *testing.T) {
	svc := NewService(&fakeData{}, nil)

	_, err := svc.Generate(context.Background(), "", "prompt")
	assert.ErrorContains(t, err, "not configured")
}

func TestGenerate_UpstreamFailure(t *testing.T) {
	svc := NewService(&fakeData{}, &fakeGen{err: errors.New("ollama down")})

	_, err := svc.Generate(context.Background(), "", "prompt")
	assert.Error(t, err)
}
