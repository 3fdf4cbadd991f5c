package domain

import "time"

// HistoryRecord links an original photo, a style and the synthesis result.
type HistoryRecord struct {
	ID                string    `json:"id"`
	MemberID          *string   `json:"member_id,omitempty"`
	OriginalPhotoPath string    `json:"original_photo_path"`
	ReferenceStyleID  string    `json:"reference_style_id"`
	ResultPhotoPath   string    `json:"result_photo_path,omitempty"`
	IsSynced          bool      `json:"is_synced"`
	CreatedAt         time.Time `json:"created_at"`
}

// NewHistoryRecord is the payload for creating a HistoryRecord.
type NewHistoryRecord struct {
	MemberID          *string `json:"member_id,omitempty"`
	OriginalPhotoPath string  `json:"original_photo_path"`
	ReferenceStyleID  string  `json:"reference_style_id"`
	ResultPhotoPath   string  `json:"result_photo_path"`
}
