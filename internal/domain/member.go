package domain

import "time"

// Member is a salon client.
type Member struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Phone     string     `json:"phone"`
	Memo      *string    `json:"memo,omitempty"`
	PhotoPath *string    `json:"photo_path,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// Photo returns the stored photo reference or "".
func (m Member) Photo() string {
	if m.PhotoPath == nil {
		return ""
	}
	return *m.PhotoPath
}
