// Package device stores the coop's applications and hardware.
package device

import (
	"context"
	"errors"
	"fmt"

	"coopcontrol/internal/events"
	"coopcontrol/internal/storage"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Repository reads and writes applications and hardware by name. Name
// lookups ignore case.
type Repository struct {
	db       *gorm.DB
	events   events.Publisher
	validate *validator.Validate
	logger   *zap.Logger
}

// NewRepository creates a repository. pub may be nil.
func NewRepository(db *gorm.DB, pub events.Publisher, logger *zap.Logger) *Repository {
	if pub == nil {
		pub = events.NopPublisher{}
	}
	return &Repository{
		db:       db,
		events:   pub,
		validate: validator.New(),
		logger:   logger,
	}
}

// Migrate creates the application and hardware tables
func (r *Repository) Migrate() error {
	return storage.Migrate(r.db, &Application{}, &Hardware{})
}

// GetApplication finds an application by name
func (r *Repository) GetApplication(ctx context.Context, name string) (*Application, error) {
	var app Application
	if err := r.findByName(ctx, &app, name); err != nil {
		return nil, err
	}
	return &app, nil
}

// SetApplicationStatus updates an application's status. With create set the
// application must not exist yet and is inserted; without it the application
// must exist.
func (r *Repository) SetApplicationStatus(ctx context.Context, name string, status AppStatus, create bool) (*Application, bool, error) {
	if name == "" {
		return nil, false, &ValidationError{Field: "name", Reason: "name is required"}
	}
	if !status.Valid() {
		return nil, false, &ValidationError{Field: "status", Reason: fmt.Sprintf("invalid appstatus: %d", int(status))}
	}

	existing, err := r.GetApplication(ctx, name)
	switch {
	case err == nil && create:
		return nil, false, fmt.Errorf("application %s: %w", name, ErrAlreadyExists)
	case errors.Is(err, ErrNotFound) && !create:
		return nil, false, fmt.Errorf("application %s: %w", name, ErrNotFound)
	case err != nil && !errors.Is(err, ErrNotFound):
		return nil, false, err
	}

	if create {
		app := &Application{Name: name, Status: status}
		if err := r.db.WithContext(ctx).Create(app).Error; err != nil {
			if storage.IsDuplicate(err) {
				return nil, false, fmt.Errorf("application %s: %w", name, ErrAlreadyExists)
			}
			return nil, false, fmt.Errorf("failed to create application: %w", err)
		}
		r.logger.Info("Created application", zap.String("name", app.Name), zap.String("status", app.Status.String()))
		r.events.Publish(events.TypeApplicationCreated, app)
		return app, true, nil
	}

	if err := r.db.WithContext(ctx).Model(existing).Update("status", status).Error; err != nil {
		return nil, false, fmt.Errorf("failed to update application: %w", err)
	}
	existing.Status = status
	r.logger.Info("Updated application status", zap.String("name", existing.Name), zap.String("status", status.String()))
	r.events.Publish(events.TypeApplicationStatus, existing)
	return existing, false, nil
}

// GetHardware finds a piece of hardware by name
func (r *Repository) GetHardware(ctx context.Context, name string) (*Hardware, error) {
	var hw Hardware
	if err := r.findByName(ctx, &hw, name); err != nil {
		return nil, err
	}
	return &hw, nil
}

// SaveHardware applies in to the named hardware. Missing hardware is created
// only when create is set. created reports whether a row was inserted.
func (r *Repository) SaveHardware(ctx context.Context, name string, in HardwareInput, create bool) (*Hardware, bool, error) {
	if name == "" {
		return nil, false, &ValidationError{Field: "name", Reason: "name is required"}
	}
	if err := r.validate.Struct(in); err != nil {
		return nil, false, &ValidationError{Reason: err.Error()}
	}

	hw, err := r.GetHardware(ctx, name)
	created := false
	switch {
	case errors.Is(err, ErrNotFound):
		if !create {
			return nil, false, fmt.Errorf("hardware %s: %w", name, ErrNotFound)
		}
		hw = &Hardware{Name: name, Status: HardwareDisabled}
		created = true
	case err != nil:
		return nil, false, err
	}

	if in.AppID != nil {
		hw.AppID = *in.AppID
	}
	if in.BCMPinWrite != nil {
		hw.BCMPinWrite = *in.BCMPinWrite
	}
	if in.BCMPinRead != nil {
		hw.BCMPinRead = *in.BCMPinRead
	}
	if in.Status != nil {
		hw.Status = *in.Status
	}

	if err := r.db.WithContext(ctx).Save(hw).Error; err != nil {
		if storage.IsDuplicate(err) {
			return nil, false, fmt.Errorf("hardware %s: %w", name, ErrAlreadyExists)
		}
		return nil, false, fmt.Errorf("failed to save hardware: %w", err)
	}

	if created {
		r.logger.Info("Created hardware", zap.String("name", hw.Name), zap.Stringer("hardware", hw))
		r.events.Publish(events.TypeHardwareCreated, hw)
	} else {
		r.logger.Info("Updated hardware", zap.String("name", hw.Name), zap.Stringer("hardware", hw))
		r.events.Publish(events.TypeHardwareStatus, hw)
	}
	return hw, created, nil
}

// SetHardwareStatus updates the status of existing hardware
func (r *Repository) SetHardwareStatus(ctx context.Context, name string, status HardwareStatus) (*Hardware, error) {
	if !status.Valid() {
		return nil, &ValidationError{Field: "status", Reason: fmt.Sprintf("invalid hardwarestatus: %d", int(status))}
	}
	hw, _, err := r.SaveHardware(ctx, name, HardwareInput{Status: &status}, false)
	return hw, err
}

func (r *Repository) findByName(ctx context.Context, dest interface{}, name string) error {
	err := r.db.WithContext(ctx).Where("LOWER(name) = LOWER(?)", name).First(dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	return nil
}
