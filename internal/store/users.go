package store

import (
	"context"

	"backoffice-backend/internal/attainment"
	"backoffice-backend/internal/models"

	"gorm.io/gorm"
)

type UserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

// ListUsers returns users ordered by id.
func (s *UserStore) ListUsers(ctx context.Context, q attainment.UserQuery) ([]models.User, error) {
	dbq := s.db.WithContext(ctx).Model(&models.User{})
	if len(q.Roles) > 0 {
		dbq = dbq.Where("role IN ?", q.Roles)
	}
	if len(q.IDs) > 0 {
		dbq = dbq.Where("id IN ?", q.IDs)
	}
	if q.ActiveOnly {
		dbq = dbq.Where("is_active = ?", true)
	}

	var users []models.User
	if err := dbq.Order("id ASC").Find(&users).Error; err != nil {
		return nil, wrap("list users", err)
	}
	return users, nil
}

func (s *UserStore) Get(ctx context.Context, id uint) (models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).First(&u, "id = ?", id).Error
	return u, wrap("get user", err)
}
