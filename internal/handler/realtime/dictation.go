package realtime

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"strings"

	sessionstore "github.com/endoscribe/backend/internal/service/session"
)

// DictationMessageHandler transcribes audio chunks and persists the
// resulting dictation snippets.
type DictationMessageHandler struct {
	store       SessionStore
	transcriber Transcriber
}

// NewDictationMessageHandler wires the dictation pipeline.
func NewDictationMessageHandler(store SessionStore, transcriber Transcriber) *DictationMessageHandler {
	return &DictationMessageHandler{store: store, transcriber: transcriber}
}

// Transcribe converts one audio chunk into text and, when non-empty,
// appends it to the session as a dictation message.
func (h *DictationMessageHandler) Transcribe(ctx context.Context, sessionID string, payload dictationPayload) (dictationTranscriptFrame, error) {
	state, err := h.store.Get(ctx, sessionID)
	if err != nil {
		return dictationTranscriptFrame{}, err
	}
	if state.Closed {
		return dictationTranscriptFrame{}, sessionstore.ErrSessionClosed
	}

	if h.transcriber == nil {
		return dictationTranscriptFrame{}, fmt.Errorf("dictation transcription unavailable")
	}

	audioB64 := strings.TrimSpace(payload.AudioData)
	if audioB64 == "" {
		return dictationTranscriptFrame{}, fmt.Errorf("audio payload is required for dictation")
	}

	audio, err := base64.StdEncoding.DecodeString(audioB64)
	if err != nil {
		return dictationTranscriptFrame{}, fmt.Errorf("audio payload is not valid base64: %w", err)
	}

	transcript, err := h.transcriber.TranscribeBuffer(ctx, audio, payload.MimeHint)
	if err != nil {
		return dictationTranscriptFrame{}, err
	}

	if transcript != "" {
		state, err = h.store.AddMessage(ctx, sessionID, "dictation", transcript)
		if err != nil {
			return dictationTranscriptFrame{}, err
		}
	}

	log.Printf("[realtime] dictation session=%s transcript chars=%d", sessionID, len(transcript))

	return dictationTranscriptFrame{
		Type:         typeDictationTranscript,
		Text:         transcript,
		MessageCount: len(state.Messages),
	}, nil
}
