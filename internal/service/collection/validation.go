package collection

import (
	"context"
	"fmt"
	"strings"

	collectionRepo "lumina/internal/domain/repositories/collection"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ResourceValidator checks that the resources an operation targets exist
// before anything is written.
type ResourceValidator struct {
	projectRepo collectionRepo.ProjectRepository
	folderRepo  collectionRepo.FolderRepository
}

// NewResourceValidator creates a new resource validator
func NewResourceValidator(
	projectRepo collectionRepo.ProjectRepository,
	folderRepo collectionRepo.FolderRepository,
) *ResourceValidator {
	return &ResourceValidator{
		projectRepo: projectRepo,
		folderRepo:  folderRepo,
	}
}

// ValidateProject ensures a project exists
func (v *ResourceValidator) ValidateProject(ctx context.Context, projectID string) error {
	if _, err := v.projectRepo.GetByID(ctx, projectID); err != nil {
		return fmt.Errorf("invalid project: %w", err)
	}
	return nil
}

// ValidateFolder ensures a folder exists inside the project
func (v *ResourceValidator) ValidateFolder(ctx context.Context, folderID, projectID string) error {
	if _, err := v.folderRepo.GetByID(ctx, folderID, projectID); err != nil {
		return fmt.Errorf("invalid folder: %w", err)
	}
	return nil
}

// notBlank rejects names that are empty after trimming
func notBlank(value interface{}) error {
	value, isNil := validation.Indirect(value)
	if isNil {
		return nil
	}
	name, ok := value.(string)
	if !ok {
		return fmt.Errorf("name must be a string")
	}
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("name cannot be empty")
	}
	return nil
}

var httpMethods = []interface{}{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"}

// methodRule accepts the supported methods in any case
var methodRule = validation.By(func(value interface{}) error {
	m, _ := value.(string)
	if m == "" {
		return nil
	}
	return validation.In(httpMethods...).Validate(strings.ToUpper(m))
})
