package task

import (
	"github.com/google/uuid"

	"github.com/taskvault/backend/internal/api"
)

// CreateTaskRequest represents the create-task request body. The owner is
// taken from the authenticated principal, never from the body.
type CreateTaskRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
}

func (req *CreateTaskRequest) Validate() api.ValidationErrors {
	// Both fields are optional; nothing to reject yet.
	return nil
}

// UpdateTaskRequest represents the update-task request body. nil means the
// field was absent and keeps its previous value; an empty string clears it.
type UpdateTaskRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
}

func (req *UpdateTaskRequest) Validate() api.ValidationErrors {
	return nil
}

// ValidateTaskID checks a path parameter is a well-formed task id.
func ValidateTaskID(taskID string) api.ValidationErrors {
	if _, err := uuid.Parse(taskID); err != nil {
		return api.ValidationErrors{{Field: "taskID", Message: "must be a valid UUID"}}
	}
	return nil
}

// DeleteTaskResponse mirrors the delete confirmation body.
type DeleteTaskResponse struct {
	Message string `json:"message"`
}
