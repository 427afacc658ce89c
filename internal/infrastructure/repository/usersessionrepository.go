package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bizhub/internal/domain/session"
	"bizhub/internal/infrastructure/persistence/mappers"
	"bizhub/internal/infrastructure/persistence/models"
	"bizhub/internal/shared/constants"
	"bizhub/internal/shared/db"
)

// UserSessionRepository stores sessions in exactly one tenant store. It is
// built per request from the tenant handle and never cached across tenants.
type UserSessionRepository struct {
	db     *gorm.DB
	txMgr  *db.TransactionManager
	mapper mappers.UserSessionMapper
}

func NewUserSessionRepository(store *gorm.DB, txMgr *db.TransactionManager) *UserSessionRepository {
	return &UserSessionRepository{
		db:     store,
		txMgr:  txMgr,
		mapper: mappers.NewUserSessionMapper(),
	}
}

// CreateCurrent serializes logins of one user on the user's row, then demotes
// and inserts inside one transaction.
func (r *UserSessionRepository) CreateCurrent(ctx context.Context, s *session.UserSession) error {
	model := r.mapper.ToModel(s)
	model.IsCurrent = true

	err := r.txMgr.RunInTransaction(ctx, func(txCtx context.Context) error {
		tx := r.txMgr.GetTx(txCtx)

		if tx.Dialector.Name() == "mysql" {
			var ids []uint
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Table(constants.TableUsers).
				Where("id = ?", s.UserID).
				Pluck("id", &ids).Error; err != nil {
				return fmt.Errorf("failed to lock user row: %w", err)
			}
		}

		if err := tx.Model(&models.UserSessionModel{}).
			Where("user_id = ? AND is_current = ?", s.UserID, true).
			Updates(map[string]interface{}{
				"is_current": false,
				"updated_at": model.UpdatedAt,
			}).Error; err != nil {
			return fmt.Errorf("failed to demote sessions: %w", err)
		}

		if err := tx.Create(model).Error; err != nil {
			return fmt.Errorf("failed to create session: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.ID = model.ID
	s.IsCurrent = true
	return nil
}

func (r *UserSessionRepository) GetActive(ctx context.Context, sessionID string) (*session.UserSession, error) {
	var model models.UserSessionModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("session_id = ? AND logged_out_at IS NULL", sessionID).
		First(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return r.mapper.ToDomain(&model), nil
}

func (r *UserSessionRepository) ListActiveByUser(ctx context.Context, userID uint) ([]*session.UserSession, error) {
	var list []*models.UserSessionModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("user_id = ? AND logged_out_at IS NULL", userID).
		Order("last_activity DESC").
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active sessions: %w", err)
	}
	return r.mapper.ToDomainList(list), nil
}

func (r *UserSessionRepository) ListRecentByUser(ctx context.Context, userID uint, since time.Time, limit int, excludeSessionID string) ([]*session.UserSession, error) {
	query := db.GetTxFromContext(ctx, r.db).
		Where("user_id = ?", userID).
		Where("(logged_out_at IS NULL OR created_at >= ?)", since)
	if excludeSessionID != "" {
		query = query.Where("session_id <> ?", excludeSessionID)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var list []*models.UserSessionModel
	if err := query.Order("created_at DESC").Order("id DESC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to list recent sessions: %w", err)
	}
	return r.mapper.ToDomainList(list), nil
}

func (r *UserSessionRepository) TouchActivity(ctx context.Context, sessionID string, at time.Time) error {
	err := db.GetTxFromContext(ctx, r.db).Model(&models.UserSessionModel{}).
		Where("session_id = ? AND logged_out_at IS NULL", sessionID).
		Updates(map[string]interface{}{
			"last_activity": at,
			"updated_at":    at,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update session activity: %w", err)
	}
	return nil
}

func (r *UserSessionRepository) Logout(ctx context.Context, userID uint, sessionID string, at time.Time) (bool, error) {
	result := db.GetTxFromContext(ctx, r.db).Model(&models.UserSessionModel{}).
		Where("user_id = ? AND session_id = ? AND logged_out_at IS NULL", userID, sessionID).
		Updates(logoutColumns(at))
	if result.Error != nil {
		return false, fmt.Errorf("failed to logout session: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *UserSessionRepository) LogoutOthers(ctx context.Context, userID uint, keepSessionID string, at time.Time) (int64, error) {
	result := db.GetTxFromContext(ctx, r.db).Model(&models.UserSessionModel{}).
		Where("user_id = ? AND session_id <> ? AND logged_out_at IS NULL", userID, keepSessionID).
		Updates(logoutColumns(at))
	if result.Error != nil {
		return 0, fmt.Errorf("failed to logout other sessions: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *UserSessionRepository) LogoutIdleBefore(ctx context.Context, threshold, at time.Time) (int64, error) {
	result := db.GetTxFromContext(ctx, r.db).Model(&models.UserSessionModel{}).
		Where("logged_out_at IS NULL AND last_activity < ?", threshold).
		Updates(logoutColumns(at))
	if result.Error != nil {
		return 0, fmt.Errorf("failed to logout idle sessions: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func logoutColumns(at time.Time) map[string]interface{} {
	return map[string]interface{}{
		"logged_out_at": at,
		"is_current":    false,
		"updated_at":    at,
	}
}
