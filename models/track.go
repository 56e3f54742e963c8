package models

import "time"

// Track represents an uploaded audio track in the catalog. Stored filenames
// are server-generated and never exposed to clients; covers are fetched
// through the cover endpoint instead.
type Track struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Artist          string    `json:"artist"`
	AudioFilename   string    `json:"-"`
	CoverFilename   *string   `json:"-"`
	DurationSeconds int       `json:"duration"`
	UploadedBy      int64     `json:"uploaded_by"`
	CreatedAt       time.Time `json:"created_at"`
	HasCover        bool      `json:"has_cover"`
}
