package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"survey_backend/internal/feature/surveys/domain/entity"
	"survey_backend/internal/feature/surveys/domain/policy"
	"survey_backend/internal/shared/identity"
)

// EntryRepository abstracts persistence of survey entries.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type EntryRepository interface {
	// Insert stores a new entry. Constraint violations are reported as ErrReferentialIntegrity.
	Insert(ctx context.Context, e *entity.Entry) error

	// FindByID returns ErrEntryNotFound when the entry does not exist.
	FindByID(ctx context.Context, id string) (*entity.Entry, error)

	// FindAll returns every entry, newest first, with CreatedByUsername populated.
	FindAll(ctx context.Context) ([]entity.Entry, error)

	// FindByOwner returns the entries owned by userID, newest first.
	FindByOwner(ctx context.Context, userID string) ([]entity.Entry, error)

	// Replace overwrites the mutable fields of one entry in a single statement.
	// It returns ErrEntryNotFound when no row was affected.
	Replace(ctx context.Context, id string, f entity.Fields, updatedAt time.Time) error

	// Remove deletes one entry. It returns ErrEntryNotFound when no row was affected.
	Remove(ctx context.Context, id string) error
}

// EntryUsecase owns validation, authorization and CRUD orchestration for survey entries.
type EntryUsecase struct {
	repo      EntryRepository
	validator *EntryValidator
	now       func() time.Time
	newID     func() string
}

// NewEntryUsecase creates an EntryUsecase. A nil validator falls back to the default phone region.
func NewEntryUsecase(repo EntryRepository, v *EntryValidator) *EntryUsecase {
	if v == nil {
		v = NewEntryValidator("")
	}
	return &EntryUsecase{
		repo:      repo,
		validator: v,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// ListAll returns every entry. Only admins may call it.
func (u *EntryUsecase) ListAll(ctx context.Context, caller identity.Caller) ([]entity.Entry, error) {
	if !policy.CanListAll(caller.Role) {
		return nil, ErrForbidden
	}
	entries, err := u.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return normalizeAll(entries), nil
}

// ListByUser returns the entries owned by userID; an empty slice when there are none.
func (u *EntryUsecase) ListByUser(ctx context.Context, caller identity.Caller, userID string) ([]entity.Entry, error) {
	if !policy.CanListByUser(caller.Role, caller.ID, userID) {
		return nil, ErrForbidden
	}
	entries, err := u.repo.FindByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list entries of user %s: %w", userID, err)
	}
	return normalizeAll(entries), nil
}

// Get returns one entry. A missing entry is reported before authorization.
func (u *EntryUsecase) Get(ctx context.Context, caller identity.Caller, id string) (*entity.Entry, error) {
	e, err := u.authorize(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	return normalize(e), nil
}

// Validate reports every violation in f without touching storage.
func (u *EntryUsecase) Validate(f entity.Fields) error {
	return u.validator.Validate(f)
}

// Create validates f and stores it as a new entry owned by the caller.
func (u *EntryUsecase) Create(ctx context.Context, caller identity.Caller, f entity.Fields) (*entity.Entry, error) {
	if err := u.validator.Validate(f); err != nil {
		return nil, err
	}

	now := u.now()
	e := &entity.Entry{
		ID:        u.newID(),
		Fields:    prepare(f),
		UserID:    caller.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := u.repo.Insert(ctx, e); err != nil {
		return nil, fmt.Errorf("insert entry: %w", err)
	}
	return u.reload(ctx, e.ID)
}

// Update validates f and overwrites the mutable fields of entry id.
// ID, owner and creation time never change.
func (u *EntryUsecase) Update(ctx context.Context, caller identity.Caller, id string, f entity.Fields) (*entity.Entry, error) {
	if err := u.validator.Validate(f); err != nil {
		return nil, err
	}
	existing, err := u.authorize(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	updatedAt := u.now()
	if updatedAt.Before(existing.UpdatedAt) {
		updatedAt = existing.UpdatedAt
	}
	if err := u.repo.Replace(ctx, id, prepare(f), updatedAt); err != nil {
		return nil, fmt.Errorf("replace entry %s: %w", id, err)
	}
	return u.reload(ctx, id)
}

// Delete permanently removes entry id.
func (u *EntryUsecase) Delete(ctx context.Context, caller identity.Caller, id string) error {
	if _, err := u.authorize(ctx, caller, id); err != nil {
		return err
	}
	if err := u.repo.Remove(ctx, id); err != nil {
		return fmt.Errorf("remove entry %s: %w", id, err)
	}
	return nil
}

// authorize loads entry id and applies the access policy against its owner.
func (u *EntryUsecase) authorize(ctx context.Context, caller identity.Caller, id string) (*entity.Entry, error) {
	e, err := u.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find entry %s: %w", id, err)
	}
	if !policy.CanAccess(caller.Role, caller.ID, e.UserID) {
		return nil, ErrForbidden
	}
	return e, nil
}

func (u *EntryUsecase) reload(ctx context.Context, id string) (*entity.Entry, error) {
	e, err := u.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reload entry %s: %w", id, err)
	}
	return normalize(e), nil
}

// prepare turns validated input into its stored shape.
func prepare(f entity.Fields) entity.Fields {
	f.Latitude = normalizeCoordinate(f.Latitude)
	f.Longitude = normalizeCoordinate(f.Longitude)
	f.Images = f.Images.OrEmpty()
	return f
}

func normalize(e *entity.Entry) *entity.Entry {
	e.Images = e.Images.OrEmpty()
	return e
}

func normalizeAll(entries []entity.Entry) []entity.Entry {
	if entries == nil {
		return []entity.Entry{}
	}
	for i := range entries {
		entries[i].Images = entries[i].Images.OrEmpty()
	}
	return entries
}
