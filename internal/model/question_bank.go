package model

import (
	"time"

	"github.com/google/uuid"
)

// QuestionBank represents a collection of questions owned by a department.
type QuestionBank struct {
	ID           uuid.UUID `json:"id"`
	DepartmentID *string   `json:"departmentId,omitempty"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type CreateQuestionBankRequest struct {
	Name         string  `json:"name" binding:"required,min=3,max=255"`
	Description  string  `json:"description" binding:"omitempty"`
	DepartmentID *string `json:"departmentId" binding:"omitempty,max=64"`
}
