package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"rental-booking/internal/data/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockPropertyRepository struct {
	mock.Mock
}

func (m *MockPropertyRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Property, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Property), args.Error(1)
}

func TestCachedPropertyRepository_HitsInnerOnce(t *testing.T) {
	inner := new(MockPropertyRepository)
	landlord := uuid.New()
	property := &entity.Property{ID: uuid.New(), LandlordID: &landlord, Title: "Loft", RentPerMonth: decimal.NewFromInt(3000)}
	inner.On("FindByID", mock.Anything, property.ID).Return(property, nil).Once()

	repo := NewCachedPropertyRepository(inner, time.Minute, zap.NewNop())

	first, err := repo.FindByID(context.Background(), property.ID)
	require.NoError(t, err)
	second, err := repo.FindByID(context.Background(), property.ID)
	require.NoError(t, err)

	assert.Equal(t, "Loft", first.Title)
	assert.Equal(t, "Loft", second.Title)
	inner.AssertExpectations(t)
}

func TestCachedPropertyRepository_DoesNotCacheMissesOrErrors(t *testing.T) {
	inner := new(MockPropertyRepository)
	missing := uuid.New()
	broken := uuid.New()
	inner.On("FindByID", mock.Anything, missing).Return(nil, nil).Twice()
	inner.On("FindByID", mock.Anything, broken).Return(nil, errors.New("db down")).Twice()

	repo := NewCachedPropertyRepository(inner, time.Minute, zap.NewNop())

	for i := 0; i < 2; i++ {
		p, err := repo.FindByID(context.Background(), missing)
		assert.NoError(t, err)
		assert.Nil(t, p)

		_, err = repo.FindByID(context.Background(), broken)
		assert.Error(t, err)
	}
	inner.AssertExpectations(t)
}

func TestCachedPropertyRepository_ZeroTTLDisablesCache(t *testing.T) {
	inner := new(MockPropertyRepository)
	repo := NewCachedPropertyRepository(inner, 0, zap.NewNop())
	assert.Same(t, inner, repo)
}
