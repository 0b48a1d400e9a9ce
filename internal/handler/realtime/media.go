package realtime

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// normalizeBase64Image validates the inbound image payload and returns
// both the canonical base64 text handed to the classifier and the raw
// bytes used for thumbnail generation. A leading data-URL prefix such as
// "data:image/jpeg;base64," is stripped.
func normalizeBase64Image(data string) (string, []byte, error) {
	trimmed := strings.TrimSpace(data)
	if idx := strings.Index(trimmed, ";base64,"); idx >= 0 && strings.HasPrefix(trimmed, "data:") {
		trimmed = trimmed[idx+len(";base64,"):]
	}

	raw, err := base64.StdEncoding.DecodeString(trimmed)
	if err != nil {
		return "", nil, fmt.Errorf("image payload is not valid base64: %w", err)
	}
	if len(raw) == 0 {
		return "", nil, fmt.Errorf("image payload is empty")
	}
	return trimmed, raw, nil
}
