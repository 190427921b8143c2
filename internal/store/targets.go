package store

import (
	"context"

	"backoffice-backend/internal/attainment"
	"backoffice-backend/internal/models"

	"gorm.io/gorm"
)

type TargetStore struct {
	db *gorm.DB
}

func NewTargetStore(db *gorm.DB) *TargetStore {
	return &TargetStore{db: db}
}

func (s *TargetStore) ListTargets(ctx context.Context, q attainment.TargetQuery) ([]models.Target, error) {
	dbq := s.db.WithContext(ctx).Model(&models.Target{})

	switch {
	case q.OwnerID != nil:
		dbq = dbq.Where("owner_id = ?", *q.OwnerID)
	case q.CompanyOnly:
		dbq = dbq.Where("owner_id IS NULL")
	}
	if q.Type != "" {
		dbq = dbq.Where("target_type = ?", q.Type)
	}
	if q.ActiveOnly {
		dbq = dbq.Where("is_active = ?", true)
	}
	if len(q.Periods) > 0 {
		dbq = dbq.Where("target_period IN ?", q.Periods)
	}

	var targets []models.Target
	if err := dbq.Order("target_period ASC").Order("id ASC").Find(&targets).Error; err != nil {
		return nil, wrap("list targets", err)
	}
	return targets, nil
}

func (s *TargetStore) Get(ctx context.Context, id uint) (models.Target, error) {
	var t models.Target
	err := s.db.WithContext(ctx).First(&t, "id = ?", id).Error
	return t, wrap("get target", err)
}

func (s *TargetStore) Create(ctx context.Context, t *models.Target) error {
	return wrap("create target", s.db.WithContext(ctx).Create(t).Error)
}

func (s *TargetStore) Save(ctx context.Context, t *models.Target) error {
	return wrap("save target", s.db.WithContext(ctx).Save(t).Error)
}

func (s *TargetStore) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Target{}, "id = ?", id)
	if res.Error != nil {
		return wrap("delete target", res.Error)
	}
	if res.RowsAffected == 0 {
		return wrap("delete target", gorm.ErrRecordNotFound)
	}
	return nil
}

// HasActiveDuplicate reports whether another active target exists for the
// same (owner, type, period). excludeID skips the target being updated.
func (s *TargetStore) HasActiveDuplicate(ctx context.Context, t models.Target, excludeID uint) (bool, error) {
	dbq := s.db.WithContext(ctx).Model(&models.Target{}).
		Where("target_type = ? AND target_period = ? AND is_active = ?", t.TargetType, t.TargetPeriod, true)
	if t.OwnerID != nil {
		dbq = dbq.Where("owner_id = ?", *t.OwnerID)
	} else {
		dbq = dbq.Where("owner_id IS NULL")
	}
	if excludeID != 0 {
		dbq = dbq.Where("id <> ?", excludeID)
	}

	var count int64
	if err := dbq.Count(&count).Error; err != nil {
		return false, wrap("check duplicate target", err)
	}
	return count > 0, nil
}
