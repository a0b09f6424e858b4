// Package v1 implements the versioned HTTP API routes.
package v1

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/confluxhq/conflux"
	"github.com/confluxhq/conflux/domain/chat"
	"github.com/confluxhq/conflux/infrastructure/api/middleware"
)

// ChatRouter handles chat API endpoints.
type ChatRouter struct {
	client *conflux.Client
	logger *slog.Logger
}

// NewChatRouter creates a ChatRouter.
func NewChatRouter(client *conflux.Client) *ChatRouter {
	return &ChatRouter{client: client, logger: client.Logger()}
}

// Routes returns the chi router for chat endpoints.
func (r *ChatRouter) Routes() chi.Router {
	router := chi.NewRouter()
	router.Post("/", r.Ask)
	return router
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	ConventionID int64         `json:"convention_id"`
	Question     string        `json:"question"`
	Role         string        `json:"role,omitempty"`
	SubjectID    int64         `json:"subject_id,omitempty"`
	MemberID     string        `json:"member_id,omitempty"`
	History      []chatMessage `json:"history,omitempty"`
}

type chatResponse struct {
	Answer   string `json:"answer"`
	Provider string `json:"provider"`
	Intent   string `json:"intent"`
}

// Ask handles POST /api/v1/chat.
func (r *ChatRouter) Ask(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	var body chatRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		middleware.WriteError(w, req, fmt.Errorf("%w: %s", middleware.ErrBadRequest, err), r.logger)
		return
	}
	if body.ConventionID == 0 || body.Question == "" {
		middleware.WriteError(w, req,
			fmt.Errorf("%w: convention_id and question are required", middleware.ErrBadRequest), r.logger)
		return
	}

	user := chat.AnonymousUser()
	if body.Role != "" {
		user = chat.NewUserContext(chat.Role(body.Role), body.SubjectID, body.MemberID)
	}

	history := make([]chat.Message, len(body.History))
	for i, m := range body.History {
		history[i] = chat.NewMessage(m.Role, m.Content)
	}

	answer, err := r.client.Chat.Ask(ctx, body.ConventionID, user, body.Question, history)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, chatResponse{
		Answer:   answer.Text(),
		Provider: answer.Provider(),
		Intent:   string(answer.Intent()),
	})
}
