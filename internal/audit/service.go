package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"backoffice-backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrLogNotFound   = errors.New("log bulunamadı")
	ErrAlreadyUndone = errors.New("bu işlem zaten geri alınmış")
	ErrNotUndoable   = errors.New("bu işlem türü geri alınamaz")
	ErrUnknownEntity = errors.New("bilinmeyen entity tipi")
)

type LogOptions struct {
	UserID      uint
	UserName    string
	EntityType  string
	EntityID    uint
	Action      models.AuditAction
	Description string
	Before      any
	After       any
}

// WriteLog db bir transaction da olabilir; o durumda log aynı transaction'a yazılır.
func WriteLog(ctx context.Context, db *gorm.DB, opts LogOptions) error {
	log := models.AuditLog{
		UserID:      opts.UserID,
		UserName:    opts.UserName,
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		Description: opts.Description,
		BeforeData:  marshalOrNull(opts.Before),
		AfterData:   marshalOrNull(opts.After),
	}

	if err := db.WithContext(ctx).Create(&log).Error; err != nil {
		return fmt.Errorf("audit log kaydedilemedi: %w", err)
	}
	return nil
}

func marshalOrNull(v any) string {
	if v == nil {
		return "null"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}

// UndoLog bir audit log'u geri alır ve sonucu yeni bir "undo" log'u olarak yazar.
func UndoLog(ctx context.Context, db *gorm.DB, logID, userID uint, userName string) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var log models.AuditLog
		if err := tx.First(&log, "id = ?", logID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrLogNotFound
			}
			return fmt.Errorf("log okunamadı: %w", err)
		}
		if log.IsUndone {
			return ErrAlreadyUndone
		}

		switch log.Action {
		case models.AuditActionCreate:
			if err := deleteEntity(tx, log.EntityType, log.EntityID); err != nil {
				return fmt.Errorf("entity silinemedi: %w", err)
			}
		case models.AuditActionUpdate:
			if err := restoreEntity(tx, log.EntityType, log.EntityID, log.BeforeData); err != nil {
				return fmt.Errorf("entity geri yüklenemedi: %w", err)
			}
		case models.AuditActionDelete:
			if err := recreateEntity(tx, log.EntityType, log.BeforeData); err != nil {
				return fmt.Errorf("entity geri oluşturulamadı: %w", err)
			}
		default:
			return ErrNotUndoable
		}

		now := time.Now()
		log.IsUndone = true
		log.UndoneBy = &userID
		log.UndoneAt = &now
		if err := tx.Save(&log).Error; err != nil {
			return fmt.Errorf("log güncellenemedi: %w", err)
		}

		undoLog := models.AuditLog{
			UserID:      userID,
			UserName:    userName,
			EntityType:  log.EntityType,
			EntityID:    log.EntityID,
			Action:      models.AuditActionUndo,
			Description: fmt.Sprintf("Geri alındı: %s", log.Description),
			BeforeData:  log.AfterData,
			AfterData:   log.BeforeData,
			Undone:      true,
		}
		if err := tx.Create(&undoLog).Error; err != nil {
			return fmt.Errorf("undo log kaydedilemedi: %w", err)
		}
		return nil
	})
}

func deleteEntity(tx *gorm.DB, entityType string, entityID uint) error {
	switch entityType {
	case models.EntityTarget:
		return tx.Delete(&models.Target{}, "id = ?", entityID).Error
	case models.EntityInvoice:
		return tx.Delete(&models.Invoice{}, "id = ?", entityID).Error
	default:
		return fmt.Errorf("%w: %s", ErrUnknownEntity, entityType)
	}
}

// recreateEntity silinen kaydı eski ID'siyle geri yazar.
func recreateEntity(tx *gorm.DB, entityType string, dataJSON string) error {
	switch entityType {
	case models.EntityTarget:
		var target models.Target
		if err := json.Unmarshal([]byte(dataJSON), &target); err != nil {
			return err
		}
		return tx.Create(&target).Error
	case models.EntityInvoice:
		var invoice models.Invoice
		if err := json.Unmarshal([]byte(dataJSON), &invoice); err != nil {
			return err
		}
		return tx.Create(&invoice).Error
	default:
		return fmt.Errorf("%w: %s", ErrUnknownEntity, entityType)
	}
}

func restoreEntity(tx *gorm.DB, entityType string, entityID uint, dataJSON string) error {
	switch entityType {
	case models.EntityTarget:
		var target models.Target
		if err := json.Unmarshal([]byte(dataJSON), &target); err != nil {
			return err
		}
		return tx.Model(&models.Target{}).Where("id = ?", entityID).Updates(map[string]interface{}{
			"owner_id":      target.OwnerID,
			"target_type":   target.TargetType,
			"target_period": target.TargetPeriod,
			"target_amount": target.TargetAmount,
			"is_active":     target.IsActive,
			"notes":         target.Notes,
		}).Error
	case models.EntityInvoice:
		var invoice models.Invoice
		if err := json.Unmarshal([]byte(dataJSON), &invoice); err != nil {
			return err
		}
		return tx.Model(&models.Invoice{}).Where("id = ?", entityID).Updates(map[string]interface{}{
			"status":     invoice.Status,
			"paid_at":    invoice.PaidAt,
			"created_by": invoice.CreatedBy,
		}).Error
	default:
		return fmt.Errorf("%w: %s", ErrUnknownEntity, entityType)
	}
}
