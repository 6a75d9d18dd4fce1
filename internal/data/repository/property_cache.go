package repository

import (
	"context"
	"time"

	"rental-booking/internal/data/entity"

	"github.com/google/uuid"
	"github.com/karlseguin/ccache/v3"
	"go.uber.org/zap"
)

// cachedPropertyRepository keeps recently read properties in process memory.
// Landlord reassignment is visible after at most one TTL.
type cachedPropertyRepository struct {
	next  PropertyRepository
	cache *ccache.Cache[*entity.Property]
	ttl   time.Duration
	log   *zap.Logger
}

func NewCachedPropertyRepository(next PropertyRepository, ttl time.Duration, log *zap.Logger) PropertyRepository {
	if ttl <= 0 {
		return next
	}

	return &cachedPropertyRepository{
		next:  next,
		cache: ccache.New(ccache.Configure[*entity.Property]().MaxSize(5000)),
		ttl:   ttl,
		log:   log.With(zap.String("repository", "property_cache")),
	}
}

func (r *cachedPropertyRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Property, error) {
	key := id.String()

	if item := r.cache.Get(key); item != nil && !item.Expired() {
		r.log.Debug("Property cache hit", zap.String("property_id", key))
		cp := *item.Value()
		return &cp, nil
	}

	property, err := r.next.FindByID(ctx, id)
	if err != nil || property == nil {
		return property, err
	}

	cp := *property
	r.cache.Set(key, &cp, r.ttl)
	return property, nil
}
