package transcribe

import (
	"fmt"
	"strings"
)

var mimeExtensions = map[string]string{
	"audio/webm":   "webm",
	"audio/wav":    "wav",
	"audio/x-wav":  "wav",
	"audio/mpeg":   "mp3",
	"audio/mp3":    "mp3",
	"audio/mp4":    "mp4",
	"audio/aac":    "m4a",
	"audio/ogg":    "oga",
	"audio/opus":   "ogg",
	"audio/flac":   "flac",
	"audio/x-flac": "flac",
}

var knownSuffixes = map[string]struct{}{
	"webm": {}, "wav": {}, "mp3": {}, "mp4": {}, "mpeg": {},
	"mpga": {}, "oga": {}, "ogg": {}, "flac": {}, "m4a": {},
}

// filenameForMIME maps an audio MIME type to an upload filename whose
// extension the transcription endpoint accepts. Parameters such as
// ';codecs=opus' are stripped before matching.
func filenameForMIME(mimeType string) (string, error) {
	mime := strings.TrimSpace(strings.ToLower(mimeType))
	if idx := strings.Index(mime, ";"); idx >= 0 {
		mime = strings.TrimSpace(mime[:idx])
	}

	if suffix, ok := mimeExtensions[mime]; ok {
		return "dictation." + suffix, nil
	}

	if idx := strings.LastIndex(mime, "/"); idx >= 0 {
		candidate := mime[idx+1:]
		if _, ok := knownSuffixes[candidate]; ok {
			return "dictation." + candidate, nil
		}
	}

	return "", fmt.Errorf("unsupported audio MIME type: %q", mimeType)
}
