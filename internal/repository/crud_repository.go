package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Store is a generic repository over the capability set the reference
// entities need: list, get, create, update, delete. Clients, workers,
// vehicles and carts all go through it; their field schemas live in the
// model struct tags.
type Store[T any] struct {
	db *gorm.DB
}

func NewStore[T any](db *gorm.DB) *Store[T] {
	return &Store[T]{db: db}
}

func (s *Store[T]) List(ctx context.Context) ([]T, error) {
	var entities []T
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&entities).Error; err != nil {
		return nil, err
	}
	return entities, nil
}

func (s *Store[T]) Get(ctx context.Context, id uuid.UUID) (*T, error) {
	var entity T
	if err := s.db.WithContext(ctx).First(&entity, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &entity, nil
}

func (s *Store[T]) Create(ctx context.Context, entity *T) error {
	return s.db.WithContext(ctx).Create(entity).Error
}

// Update overwrites every column except id and created_at, so cleared
// fields (an unchecked flag, an emptied note) actually persist.
func (s *Store[T]) Update(ctx context.Context, id uuid.UUID, entity *T) error {
	result := s.db.WithContext(ctx).Model(entity).
		Where("id = ?", id).
		Select("*").
		Omit("id", "created_at").
		Updates(entity)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (s *Store[T]) Delete(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Delete(new(T), "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
