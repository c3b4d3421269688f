package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/avolkovs/clipstream/internal/clips/models"
)

type RepoMock struct {
	mock.Mock
}

func (m *RepoMock) Create(ctx context.Context, c *models.Clip) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *RepoMock) GetByID(ctx context.Context, id uuid.UUID) (*models.Clip, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*models.Clip), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RepoMock) UpdateTitle(ctx context.Context, id uuid.UUID, title string) (*models.Clip, error) {
	args := m.Called(ctx, id, title)
	if v := args.Get(0); v != nil {
		return v.(*models.Clip), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RepoMock) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *RepoMock) ListPage(ctx context.Context, after *models.FeedPosition, limit int, order models.SortOrder) ([]models.Clip, error) {
	args := m.Called(ctx, after, limit, order)
	if v := args.Get(0); v != nil {
		return v.([]models.Clip), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RepoMock) ListByOwner(ctx context.Context, ownerID string, order models.SortOrder) ([]models.Clip, error) {
	args := m.Called(ctx, ownerID, order)
	if v := args.Get(0); v != nil {
		return v.([]models.Clip), args.Error(1)
	}
	return nil, args.Error(1)
}
