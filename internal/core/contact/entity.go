package contact

import "time"

// Contact は社員に紐づく連絡先です。
type Contact struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
