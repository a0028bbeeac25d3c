package collection

import "time"

// Folder is a node of a project's request hierarchy.
// Only the project root has a nil ParentID.
type Folder struct {
	ID        string    `json:"id" db:"id"`
	ProjectID string    `json:"project_id" db:"project_id"`
	ParentID  *string   `json:"parent_id" db:"parent_id"`
	Name      string    `json:"name" db:"name"`
	Position  int       `json:"position" db:"position"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// IsRoot reports whether the folder is its project's root.
func (f *Folder) IsRoot() bool {
	return f.ParentID == nil
}
