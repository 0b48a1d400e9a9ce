package transcribe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/endoscribe/backend/internal/config"
)

func TestFilenameForMIME(t *testing.T) {
	cases := map[string]string{
		"audio/webm":             "dictation.webm",
		"audio/webm;codecs=opus": "dictation.webm",
		"AUDIO/WAV":              "dictation.wav",
		"audio/mpeg":             "dictation.mp3",
		"audio/opus":             "dictation.ogg",
		"audio/ogg":              "dictation.oga",
		"audio/x-flac":           "dictation.flac",
		"audio/m4a":              "dictation.m4a",
	}

	for mime, want := range cases {
		got, err := filenameForMIME(mime)
		if err != nil {
			t.Fatalf("filenameForMIME(%q) err: %v", mime, err)
		}
		if got != want {
			t.Fatalf("filenameForMIME(%q) = %q, want %q", mime, got, want)
		}
	}
}

func TestFilenameForMIMEUnknown(t *testing.T) {
	if _, err := filenameForMIME("video/quicktime"); err == nil {
		t.Fatal("expected error for unsupported MIME type")
	}
}

func TestTranscribeBuffer(t *testing.T) {
	var gotAuth, gotModel, gotFilename string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/audio/transcriptions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")

		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("ParseMultipartForm err: %v", err)
		}
		gotModel = r.FormValue("model")
		if files := r.MultipartForm.File["file"]; len(files) == 1 {
			gotFilename = files[0].Filename
		}

		w.Write([]byte("  cecum reached without difficulty \n"))
	}))
	defer server.Close()

	svc := NewService(config.TranscribeConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "whisper-1",
		Timeout: 5,
	})

	text, err := svc.TranscribeBuffer(context.Background(), []byte("audio-bytes"), "audio/webm;codecs=opus")
	if err != nil {
		t.Fatalf("TranscribeBuffer err: %v", err)
	}
	if text != "cecum reached without difficulty" {
		t.Fatalf("expected trimmed transcript, got %q", text)
	}
	if gotAuth != "Bearer test-key" {
		t.Fatalf("unexpected auth header: %q", gotAuth)
	}
	if gotModel != "whisper-1" {
		t.Fatalf("unexpected model field: %q", gotModel)
	}
	if gotFilename != "dictation.webm" {
		t.Fatalf("unexpected upload filename: %q", gotFilename)
	}
}

func TestTranscribeBufferUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	svc := NewService(config.TranscribeConfig{BaseURL: server.URL, Model: "whisper-1"})

	_, err := svc.TranscribeBuffer(context.Background(), []byte("audio"), "audio/wav")
	if err == nil {
		t.Fatal("expected error from failing upstream")
	}
	if !strings.Contains(err.Error(), "status 503") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTranscribeBufferEmptyAudio(t *testing.T) {
	svc := NewService(config.TranscribeConfig{BaseURL: "http://localhost", Model: "whisper-1"})

	if _, err := svc.TranscribeBuffer(context.Background(), nil, "audio/wav"); err == nil {
		t.Fatal("expected error for empty audio buffer")
	}
}
