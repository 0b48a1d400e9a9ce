package image

import "time"

// Record is one row of the durable image table.
type Record struct {
	ID          int64     `json:"id"`
	Filename    string    `json:"filename"`
	Description string    `json:"description"`
	Thumbnail   []byte    `json:"-"`
	Label       string    `json:"label"`
	CreatedAt   time.Time `json:"createdAt"`
}
