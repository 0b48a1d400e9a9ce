package realtime

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/endoscribe/backend/internal/service/ai"

	imagemodel "github.com/endoscribe/backend/internal/model/image"
	sessionmodel "github.com/endoscribe/backend/internal/model/session"
	sessionstore "github.com/endoscribe/backend/internal/service/session"
)

// contextMessageLimit bounds how much conversation the classifier sees.
const contextMessageLimit = 15

// ImageMessageHandler classifies and persists one frame for a session.
type ImageMessageHandler struct {
	store       SessionStore
	classifier  Classifier
	images      ImageStore
	thumbnailer Thumbnailer
}

// NewImageMessageHandler wires the image classification pipeline.
func NewImageMessageHandler(store SessionStore, classifier Classifier, images ImageStore, thumbnailer Thumbnailer) *ImageMessageHandler {
	return &ImageMessageHandler{
		store:       store,
		classifier:  classifier,
		images:      images,
		thumbnailer: thumbnailer,
	}
}

// Classify runs the full pipeline: validate, optionally record the text
// hint, call the classification oracle, generate a thumbnail, persist the
// durable record, and fold the result into the session history.
func (h *ImageMessageHandler) Classify(ctx context.Context, sessionID string, payload imagePayload) (imageClassifiedFrame, error) {
	state, err := h.store.Get(ctx, sessionID)
	if err != nil {
		return imageClassifiedFrame{}, err
	}
	if state.Closed {
		return imageClassifiedFrame{}, sessionstore.ErrSessionClosed
	}

	if h.classifier == nil {
		return imageClassifiedFrame{}, fmt.Errorf("image classification unavailable")
	}

	imageData := strings.TrimSpace(payload.ImageData)
	if imageData == "" {
		return imageClassifiedFrame{}, fmt.Errorf("image payload is required")
	}

	// The hint is recorded before classification so the oracle sees it
	// as part of the conversation context.
	textHint := strings.TrimSpace(payload.TextHint)
	if textHint != "" {
		if _, err := h.store.AddMessage(ctx, sessionID, "user", textHint); err != nil {
			return imageClassifiedFrame{}, err
		}
	}

	imageB64, rawImage, err := normalizeBase64Image(imageData)
	if err != nil {
		return imageClassifiedFrame{}, err
	}

	conversation, err := h.store.RecentMessagesText(ctx, sessionID, contextMessageLimit)
	if err != nil {
		return imageClassifiedFrame{}, err
	}
	imagesSummary, err := h.store.ImagesSummary(ctx, sessionID)
	if err != nil {
		return imageClassifiedFrame{}, err
	}

	classification, err := h.classifier.ClassifyImage(ctx, ai.ClassifyRequest{
		ImageB64:      imageB64,
		Conversation:  conversation,
		ImagesSummary: imagesSummary,
		TextHint:      textHint,
	})
	if err != nil {
		return imageClassifiedFrame{}, err
	}

	thumb, err := h.thumbnailer.FromBytes(rawImage)
	if err != nil {
		return imageClassifiedFrame{}, err
	}

	filename := strings.TrimSpace(payload.Filename)
	if filename == "" {
		filename = "upload"
	}

	imageID, err := h.images.Create(ctx, imagemodel.Record{
		Filename:    filename,
		Description: classification.Description,
		Thumbnail:   thumb,
		Label:       classification.Label,
	})
	if err != nil {
		return imageClassifiedFrame{}, err
	}

	if _, err := h.store.AddImage(ctx, sessionID, sessionmodel.Image{
		ID:          imageID,
		Label:       classification.Label,
		Reasoning:   classification.Reasoning,
		Description: classification.Description,
	}); err != nil {
		return imageClassifiedFrame{}, err
	}

	summary := fmt.Sprintf("Image %d labeled %s: %s", imageID, classification.Label, classification.Description)
	if _, err := h.store.AddMessage(ctx, sessionID, "assistant", summary); err != nil {
		return imageClassifiedFrame{}, err
	}

	log.Printf("[realtime] classified image session=%s image=%d label=%s", sessionID, imageID, classification.Label)

	return imageClassifiedFrame{
		Type:          typeImageClassified,
		ImageID:       imageID,
		ClientImageID: payload.ClientImageID,
		Label:         classification.Label,
		Reasoning:     classification.Reasoning,
		Description:   classification.Description,
		Latency:       classification.Latency,
		InputTokens:   classification.Usage.InputTokens,
		OutputTokens:  classification.Usage.OutputTokens,
	}, nil
}
