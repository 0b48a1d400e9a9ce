package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/endoscribe/backend/internal/service/ai"

	imagemodel "github.com/endoscribe/backend/internal/model/image"
	sessionmodel "github.com/endoscribe/backend/internal/model/session"
	sessionstore "github.com/endoscribe/backend/internal/service/session"
)

const readDeadline = 60 * time.Second

// SessionStore is the slice of the session registry the realtime
// handlers depend on.
type SessionStore interface {
	Get(ctx context.Context, sessionID string) (sessionmodel.State, error)
	AddMessage(ctx context.Context, sessionID, role, content string) (sessionmodel.State, error)
	AddImage(ctx context.Context, sessionID string, img sessionmodel.Image) (sessionmodel.State, error)
	RecentMessagesText(ctx context.Context, sessionID string, limit int) (string, error)
	ImagesSummary(ctx context.Context, sessionID string) (string, error)
}

// Classifier labels one endoscopic frame against session context.
type Classifier interface {
	ClassifyImage(ctx context.Context, req ai.ClassifyRequest) (*ai.Classification, error)
}

// Transcriber converts one dictation audio buffer into text.
type Transcriber interface {
	TranscribeBuffer(ctx context.Context, audio []byte, mimeType string) (string, error)
}

// ImageStore persists classified image records.
type ImageStore interface {
	Create(ctx context.Context, record imagemodel.Record) (int64, error)
}

// Thumbnailer produces a bounded-size preview from raw image bytes.
type Thumbnailer interface {
	FromBytes(data []byte) ([]byte, error)
}

// Handler owns the realtime websocket surface: it upgrades connections
// and runs one sequential dispatch loop per connection.
type Handler struct {
	store     SessionStore
	image     *ImageMessageHandler
	dictation *DictationMessageHandler
	upgrader  websocket.Upgrader
}

// NewHandler creates the realtime websocket handler.
func NewHandler(store SessionStore, classifier Classifier, transcriber Transcriber, images ImageStore, thumbnailer Thumbnailer) *Handler {
	return &Handler{
		store:     store,
		image:     NewImageMessageHandler(store, classifier, images, thumbnailer),
		dictation: NewDictationMessageHandler(store, transcriber),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
	}
}

// RegisterRoutes mounts the websocket endpoint.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/realtime/{sessionID}", h.handleWebSocket)
}

// handleWebSocket runs the per-connection receive loop. Frames are
// processed strictly in arrival order: a frame's response is written
// before the next frame is read.
func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		http.Error(w, "sessionID is required", http.StatusBadRequest)
		return
	}

	if _, err := h.store.Get(r.Context(), sessionID); err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[realtime] upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	log.Printf("[realtime] new connection for session: %s", sessionID)

	// Cancelling on exit aborts any in-flight oracle call once the
	// connection is gone.
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	conn.SetReadDeadline(time.Now().Add(readDeadline))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(readDeadline))
		return nil
	})

	go h.pingLoop(ctx, conn)

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Printf("[realtime] read error: %v", err)
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(readDeadline))

		response := h.dispatch(ctx, sessionID, raw)
		if err := conn.WriteJSON(response); err != nil {
			log.Printf("[realtime] write failed: %v", err)
			return
		}
	}
}

// dispatch decodes one inbound frame and routes it to the matching
// handler. Every failure is converted into an error frame at this
// boundary; nothing here terminates the connection.
func (h *Handler) dispatch(ctx context.Context, sessionID string, raw []byte) any {
	var envelope inboundFrame
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return errorFrame{Type: typeError, Detail: "payload must be JSON"}
	}

	switch envelope.Type {
	case typeConversationAppend:
		var payload conversationPayload
		if err := json.Unmarshal(raw, &payload); err != nil {
			return errorFrame{Type: typeError, RequestID: envelope.RequestID, Detail: "invalid conversation payload"}
		}
		ack, err := h.appendConversation(ctx, sessionID, payload)
		if err != nil {
			return errorFrame{Type: typeError, RequestID: envelope.RequestID, Detail: err.Error()}
		}
		ack.RequestID = envelope.RequestID
		return ack

	case typeImageClassify:
		var payload imagePayload
		if err := json.Unmarshal(raw, &payload); err != nil {
			return errorFrame{Type: typeError, RequestID: envelope.RequestID, Detail: "invalid image payload"}
		}
		result, err := h.image.Classify(ctx, sessionID, payload)
		if err != nil {
			return errorFrame{Type: typeError, RequestID: envelope.RequestID, Detail: err.Error()}
		}
		result.RequestID = envelope.RequestID
		return result

	case typeDictationAudio:
		var payload dictationPayload
		if err := json.Unmarshal(raw, &payload); err != nil {
			return errorFrame{Type: typeError, RequestID: envelope.RequestID, Detail: "invalid dictation payload"}
		}
		result, err := h.dictation.Transcribe(ctx, sessionID, payload)
		if err != nil {
			return errorFrame{Type: typeError, RequestID: envelope.RequestID, Detail: err.Error()}
		}
		result.RequestID = envelope.RequestID
		return result

	default:
		return errorFrame{Type: typeError, RequestID: envelope.RequestID, Detail: "unsupported message type: " + envelope.Type}
	}
}

// appendConversation persists a text snippet into the session narrative.
func (h *Handler) appendConversation(ctx context.Context, sessionID string, payload conversationPayload) (conversationAckFrame, error) {
	state, err := h.store.Get(ctx, sessionID)
	if err != nil {
		return conversationAckFrame{}, err
	}
	if state.Closed {
		return conversationAckFrame{}, sessionstore.ErrSessionClosed
	}

	text := strings.TrimSpace(payload.Text)
	if text == "" {
		return conversationAckFrame{}, fmt.Errorf("conversation text is required")
	}

	role := strings.TrimSpace(payload.Role)
	if role == "" {
		role = "user"
	}

	state, err = h.store.AddMessage(ctx, sessionID, role, text)
	if err != nil {
		return conversationAckFrame{}, err
	}

	return conversationAckFrame{
		Type:         typeConversationAck,
		MessageCount: len(state.Messages),
	}, nil
}

// pingLoop keeps the connection alive under the read deadline.
func (h *Handler) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(readDeadline * 9 / 10)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
