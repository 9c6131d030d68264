package mocks

import (
	"context"

	"prdapi/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockPRDRepository struct {
	mock.Mock
}

func (m *MockPRDRepository) Create(ctx context.Context, prd *model.PRD) (*model.PRD, error) {
	args := m.Called(ctx, prd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PRD), args.Error(1)
}
