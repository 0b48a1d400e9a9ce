package session

import "time"

// Message is one entry in a session's narrative timeline.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// Image records one classified frame in arrival order.
type Image struct {
	ID          int64  `json:"id"`
	Label       string `json:"label"`
	Reasoning   string `json:"reasoning"`
	Description string `json:"description"`
}

// State captures one procedure's realtime annotation history.
type State struct {
	ID           string    `json:"id"`
	AutoGenerate bool      `json:"autoGenerate"`
	Messages     []Message `json:"messages"`
	Images       []Image   `json:"images"`
	Closed       bool      `json:"closed"`
	CreatedAt    time.Time `json:"createdAt"`
}
