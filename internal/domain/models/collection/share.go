package collection

import "time"

// ShareToken is a frozen copy of a project's tree that can be imported as a new project.
type ShareToken struct {
	ID          string      `json:"id"`
	ProjectName string      `json:"project_name"`
	Tree        *FolderNode `json:"tree"`
	ReadOnly    bool        `json:"read_only"`
	CreatedAt   time.Time   `json:"created_at"`
	ExpiresAt   *time.Time  `json:"expires_at,omitempty"`
}

// Expired reports whether the token is past its expiry at now.
func (s *ShareToken) Expired(now time.Time) bool {
	return s.ExpiresAt != nil && !now.Before(*s.ExpiresAt)
}
