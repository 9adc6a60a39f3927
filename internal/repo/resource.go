package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Entity is a pointer to a resource model that can carry a path id.
type Entity[T any] interface {
	*T
	SetID(id uint)
	GetID() uint
}

// Store is plain CRUD over one resource table.
type Store[T any, P Entity[T]] struct {
	DB *gorm.DB
}

func NewStore[T any, P Entity[T]](db *gorm.DB) *Store[T, P] {
	return &Store[T, P]{DB: db}
}

func (s *Store[T, P]) List(ctx context.Context) ([]T, error) {
	items := make([]T, 0)
	if err := s.DB.WithContext(ctx).Order("id ASC").Find(&items).Error; err != nil {
		return nil, translate(err)
	}
	return items, nil
}

func (s *Store[T, P]) Get(ctx context.Context, id uint) (*T, error) {
	var item T
	if err := s.DB.WithContext(ctx).First(&item, id).Error; err != nil {
		return nil, translate(err)
	}
	return &item, nil
}

func (s *Store[T, P]) Create(ctx context.Context, item *T) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return translate(tx.Omit(clause.Associations).Create(item).Error)
	})
}

// Update replaces every column of the row with id. Save would insert a missing
// row, so existence is checked first inside the same transaction.
func (s *Store[T, P]) Update(ctx context.Context, id uint, item *T) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing T
		if err := tx.First(&existing, id).Error; err != nil {
			return translate(err)
		}
		P(item).SetID(id)
		return translate(tx.Omit(clause.Associations).Save(item).Error)
	})
}

func (s *Store[T, P]) Delete(ctx context.Context, id uint) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(new(T), id)
		if res.Error != nil {
			return translate(res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
