package realtime

import "encoding/json"

// Inbound frame types accepted by the dispatcher.
const (
	typeConversationAppend = "conversation.append"
	typeImageClassify      = "image.classify"
	typeDictationAudio     = "dictation.audio"
)

// Outbound frame types.
const (
	typeConversationAck     = "conversation.ack"
	typeImageClassified     = "image.classified"
	typeDictationTranscript = "dictation.transcript"
	typeError               = "error"
)

// inboundFrame is the envelope shared by every inbound frame. RequestID
// is opaque to the server and echoed back unchanged, so it stays raw.
type inboundFrame struct {
	Type      string          `json:"type"`
	RequestID json.RawMessage `json:"requestId,omitempty"`
}

// conversationPayload carries a text snippet for the session narrative.
type conversationPayload struct {
	Text string `json:"text"`
	Role string `json:"role"`
}

// imagePayload carries one frame to classify.
type imagePayload struct {
	ImageData     string          `json:"imageData"`
	TextHint      string          `json:"textHint"`
	Filename      string          `json:"filename"`
	ClientImageID json.RawMessage `json:"clientImageId"`
}

// dictationPayload carries one chunk of dictated audio.
type dictationPayload struct {
	AudioData string `json:"audioData"`
	MimeHint  string `json:"mimeHint"`
}

type conversationAckFrame struct {
	Type         string          `json:"type"`
	RequestID    json.RawMessage `json:"requestId,omitempty"`
	MessageCount int             `json:"messageCount"`
}

type imageClassifiedFrame struct {
	Type          string          `json:"type"`
	RequestID     json.RawMessage `json:"requestId,omitempty"`
	ImageID       int64           `json:"imageId"`
	ClientImageID json.RawMessage `json:"clientImageId,omitempty"`
	Label         string          `json:"label"`
	Reasoning     string          `json:"reasoning"`
	Description   string          `json:"description"`
	Latency       float64         `json:"latency"`
	InputTokens   int             `json:"inputTokens"`
	OutputTokens  int             `json:"outputTokens"`
}

type dictationTranscriptFrame struct {
	Type         string          `json:"type"`
	RequestID    json.RawMessage `json:"requestId,omitempty"`
	Text         string          `json:"text"`
	MessageCount int             `json:"messageCount"`
}

type errorFrame struct {
	Type      string          `json:"type"`
	RequestID json.RawMessage `json:"requestId,omitempty"`
	Detail    string          `json:"detail"`
}
