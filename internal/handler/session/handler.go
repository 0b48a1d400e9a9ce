package session

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/endoscribe/backend/internal/service/ai"
	"github.com/endoscribe/backend/pkg/utils"

	sessionmodel "github.com/endoscribe/backend/internal/model/session"
	sessionstore "github.com/endoscribe/backend/internal/service/session"
)

// NoteGenerator drafts an operative note from session history.
type NoteGenerator interface {
	GenerateNote(ctx context.Context, messages []sessionmodel.Message, images []sessionmodel.Image, baseNote string) (*ai.Note, error)
}

// Handler exposes the session lifecycle over HTTP.
type Handler struct {
	store *sessionstore.Store
	notes NoteGenerator
}

// New creates the session handler. notes may be nil when note generation
// is not configured.
func New(store *sessionstore.Store, notes NoteGenerator) *Handler {
	return &Handler{store: store, notes: notes}
}

// RegisterRoutes mounts the session lifecycle endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/sessions", h.handleStart)
	r.Post("/sessions/{sessionID}/messages", h.handleAppendMessage)
	r.Post("/sessions/{sessionID}/close", h.handleClose)
	r.Post("/sessions/{sessionID}/opnote", h.handleOpnote)
}

func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	payload := struct {
		AutoGenerate *bool `json:"autoGenerate"`
	}{}
	if err := decodeOptionalBody(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	autoGenerate := true
	if payload.AutoGenerate != nil {
		autoGenerate = *payload.AutoGenerate
	}

	state := h.store.Create(r.Context(), autoGenerate)
	log.Printf("[session] started session=%s autoGenerate=%t", state.ID, state.AutoGenerate)

	utils.RespondJSON(w, http.StatusCreated, map[string]any{
		"sessionId":    state.ID,
		"autoGenerate": state.AutoGenerate,
	})
}

func (h *Handler) handleAppendMessage(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	payload := struct {
		Text string `json:"text"`
		Role string `json:"role"`
	}{}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	text := strings.TrimSpace(payload.Text)
	if text == "" {
		utils.RespondError(w, http.StatusBadRequest, "text is required")
		return
	}

	role := strings.TrimSpace(payload.Role)
	if role == "" {
		role = "user"
	}

	state, err := h.store.AddMessage(r.Context(), sessionID, role, text)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"sessionId":    sessionID,
		"messageCount": len(state.Messages),
	})
}

func (h *Handler) handleClose(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	payload := struct {
		BaseNote     string `json:"baseNote"`
		AutoGenerate *bool  `json:"autoGenerate"`
	}{}
	if err := decodeOptionalBody(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	state, err := h.store.Close(r.Context(), sessionID)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	if payload.AutoGenerate != nil {
		state, err = h.store.SetAutoGenerate(r.Context(), sessionID, *payload.AutoGenerate)
		if err != nil {
			respondStoreError(w, err)
			return
		}
	}

	result := map[string]any{
		"sessionId":    sessionID,
		"autoGenerate": state.AutoGenerate,
		"closed":       true,
	}

	if state.AutoGenerate {
		if h.notes == nil {
			utils.RespondError(w, http.StatusServiceUnavailable, "note generation unavailable")
			return
		}
		note, err := h.notes.GenerateNote(r.Context(), state.Messages, state.Images, payload.BaseNote)
		if err != nil {
			log.Printf("[session] opnote generation failed session=%s: %v", sessionID, err)
			utils.RespondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		result["operativeNote"] = note.Markdown
		result["usage"] = note.Usage
	}

	log.Printf("[session] closed session=%s autoGenerate=%t", sessionID, state.AutoGenerate)
	utils.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) handleOpnote(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	payload := struct {
		BaseNote string `json:"baseNote"`
	}{}
	if err := decodeOptionalBody(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if h.notes == nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "note generation unavailable")
		return
	}

	state, err := h.store.Get(r.Context(), sessionID)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	note, err := h.notes.GenerateNote(r.Context(), state.Messages, state.Images, payload.BaseNote)
	if err != nil {
		log.Printf("[session] opnote generation failed session=%s: %v", sessionID, err)
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"sessionId":     sessionID,
		"operativeNote": note.Markdown,
		"usage":         note.Usage,
	})
}

// decodeOptionalBody decodes a JSON body, treating an empty body as all
// defaults.
func decodeOptionalBody(r *http.Request, dst any) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func respondStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, sessionstore.ErrSessionNotFound) {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}
	utils.RespondError(w, http.StatusInternalServerError, err.Error())
}
