package repository

import (
	"context"

	"prdapi/internal/model"
)

// Package repository contains data access abstractions for PRD metadata.
// Implementations live in subpackages (e.g., postgres) inside this directory.

// PRDRepository is insert-only: rows are never updated or deleted by this service.
type PRDRepository interface {
	// Create inserts a new PRD record and returns the stored row.
	Create(ctx context.Context, prd *model.PRD) (*model.PRD, error)
}
