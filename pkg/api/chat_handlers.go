package api

import (
	"errors"
	"net/http"

	"github.com/groupify/backend/pkg/chat"
	"github.com/groupify/backend/pkg/contextkeys"
	"github.com/groupify/backend/pkg/httputil"
)

// sendMessage posts a chat message as the authenticated user.
func (s *Server) sendMessage(w http.ResponseWriter, r *http.Request) {
	user := contextkeys.UserFrom(r.Context())
	if user == nil {
		httputil.WriteUnauthorized(w, "not authenticated")
		return
	}

	var req SendMessageRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if !httputil.RequireNonEmpty(w, req.RoomID, "room_id") {
		return
	}
	if !httputil.RequireNonEmpty(w, req.Content, "content") {
		return
	}

	msg, err := s.chats.Send(r.Context(), contextkeys.TokenFrom(r.Context()), user.ID, req.RoomID, req.Content)
	if err != nil {
		if errors.Is(err, chat.ErrRejected) {
			httputil.WriteErrorMessage(w, http.StatusForbidden, "not a member of this room")
			return
		}
		httputil.WriteBadGateway(w, err.Error())
		return
	}

	httputil.WriteCreated(w, msg)
}

// roomMessages lists a room's messages, oldest first. Rooms the caller may
// not read come back empty from the provider.
func (s *Server) roomMessages(w http.ResponseWriter, r *http.Request) {
	roomID, ok := httputil.ParsePathStringOrError(w, r, "room_id")
	if !ok {
		return
	}

	msgs, err := s.chats.Messages(r.Context(), contextkeys.TokenFrom(r.Context()), roomID)
	if err != nil {
		httputil.WriteBadGateway(w, err.Error())
		return
	}
	httputil.WriteSuccess(w, map[string]interface{}{"messages": msgs})
}

// generateAI forwards a prompt to the local text-generation service.
func (s *Server) generateAI(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if !httputil.RequireNonEmpty(w, req.Prompt, "prompt") {
		return
	}

	model := req.Model
	if model == "" {
		model = s.defaultModel
	}

	resp, err := s.chats.Generate(r.Context(), model, req.Prompt)
	if err != nil {
		httputil.WriteBadGateway(w, err.Error())
		return
	}

	httputil.WriteSuccess(w, GenerateResponse{Response: resp.Response, Model: resp.Model})
}
