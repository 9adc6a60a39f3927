package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/Skotchmaster/campusflow/internal/models"
)

func (r *GormRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// InsertUser relies on the unique index on username; a clash returns ErrDuplicateKey.
func (r *GormRepo) InsertUser(ctx context.Context, u *models.User) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return translate(tx.Create(u).Error)
	})
}

func (r *GormRepo) UpdateRole(ctx context.Context, username, role string) (int64, error) {
	var affected int64
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).
			Where("username = ?", username).
			Update("role", role)
		if res.Error != nil {
			return translate(res.Error)
		}
		affected = res.RowsAffected
		return nil
	})
	return affected, err
}

func (r *GormRepo) Ping(ctx context.Context) error {
	sqlDB, err := r.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
