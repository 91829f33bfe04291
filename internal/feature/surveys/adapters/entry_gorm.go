// Package adapters provides repository implementations for the surveys feature.
package adapters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"survey_backend/internal/feature/surveys/domain/entity"
	"survey_backend/internal/feature/surveys/usecase"
)

// entryGorm is a GORM implementation of the EntryRepository interface.
type entryGorm struct {
	db *gorm.DB
}

// Compile-time check to ensure entryGorm implements EntryRepository.
var _ usecase.EntryRepository = (*entryGorm)(nil)

// NewEntryRepository creates a new entryGorm backed by db.
func NewEntryRepository(db *gorm.DB) *entryGorm {
	return &entryGorm{db: db}
}

// Insert stores a new entry.
func (r *entryGorm) Insert(ctx context.Context, e *entity.Entry) error {
	m, err := EntryModelFromEntity(e)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(m).Error; err != nil {
		return translateError(err)
	}
	return nil
}

// FindByID retrieves one entry. It returns usecase.ErrEntryNotFound when absent.
func (r *entryGorm) FindByID(ctx context.Context, id string) (*entity.Entry, error) {
	var m EntryModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrEntryNotFound
		}
		return nil, err
	}
	return m.ToEntity()
}

// FindAll returns every entry newest first, with the owner's username attached.
func (r *entryGorm) FindAll(ctx context.Context) ([]entity.Entry, error) {
	var rows []EntryModel
	if err := r.db.WithContext(ctx).
		Preload("User").
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toEntities(rows)
}

// FindByOwner returns the entries of one user newest first.
func (r *entryGorm) FindByOwner(ctx context.Context, userID string) ([]entity.Entry, error) {
	var rows []EntryModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toEntities(rows)
}

// Replace overwrites the mutable columns of entry id in one UPDATE statement.
func (r *entryGorm) Replace(ctx context.Context, id string, f entity.Fields, updatedAt time.Time) error {
	cols, err := fieldColumns(f, updatedAt)
	if err != nil {
		return err
	}
	result := r.db.WithContext(ctx).
		Model(&EntryModel{}).
		Where("id = ?", id).
		Updates(cols)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return usecase.ErrEntryNotFound
	}
	return nil
}

// Remove deletes entry id permanently.
func (r *entryGorm) Remove(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&EntryModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return usecase.ErrEntryNotFound
	}
	return nil
}

func toEntities(rows []EntryModel) ([]entity.Entry, error) {
	out := make([]entity.Entry, 0, len(rows))
	for i := range rows {
		e, err := rows[i].ToEntity()
		if err != nil {
			return nil, fmt.Errorf("entry %s: %w", rows[i].ID, err)
		}
		out = append(out, *e)
	}
	return out, nil
}
