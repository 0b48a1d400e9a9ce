package transcribe

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/endoscribe/backend/internal/config"
)

const defaultMIMEType = "audio/webm"

// Service converts dictation audio buffers into text transcripts via an
// OpenAI-compatible transcription endpoint.
type Service struct {
	cfg        config.TranscribeConfig
	httpClient *http.Client
}

// NewService creates the transcription client.
func NewService(cfg config.TranscribeConfig) *Service {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Service{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// TranscribeBuffer returns a whitespace-trimmed transcript for one audio
// chunk. The MIME type hint selects the upload filename extension.
func (s *Service) TranscribeBuffer(ctx context.Context, audio []byte, mimeType string) (string, error) {
	if len(audio) == 0 {
		return "", fmt.Errorf("audio buffer is empty")
	}
	if mimeType == "" {
		mimeType = defaultMIMEType
	}

	filename, err := filenameForMIME(mimeType)
	if err != nil {
		return "", err
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("build transcription request: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return "", fmt.Errorf("build transcription request: %w", err)
	}
	if err := writer.WriteField("model", s.cfg.Model); err != nil {
		return "", fmt.Errorf("build transcription request: %w", err)
	}
	if err := writer.WriteField("response_format", "text"); err != nil {
		return "", fmt.Errorf("build transcription request: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("build transcription request: %w", err)
	}

	url := strings.TrimRight(s.cfg.BaseURL, "/") + "/audio/transcriptions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return "", fmt.Errorf("build transcription request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if s.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("transcription request failed: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read transcription response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("transcription failed: status %d: %s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}

	transcript := strings.TrimSpace(string(payload))
	log.Printf("[transcribe] audio bytes=%d transcript chars=%d", len(audio), len(transcript))
	return transcript, nil
}
