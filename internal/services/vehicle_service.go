package services

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/macworldgithub/westside-backend/internal/models"
	"github.com/macworldgithub/westside-backend/internal/repositories"
	"github.com/macworldgithub/westside-backend/internal/storage"
	"github.com/macworldgithub/westside-backend/internal/validator"
)

type vehicleService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	storage   storage.Storage
}

func NewVehicleService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, store storage.Storage) VehicleService {
	return &vehicleService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		storage:   store,
	}
}

func (s *vehicleService) Create(ctx context.Context, req *CreateVehicleRequest, creatorID uint) (*models.Vehicle, error) {
	s.logger.Info("Registering vehicle", "registration_no", req.RegistrationNo, "creator_id", creatorID)

	if errs := s.validator.GetBusinessValidator().ValidateVehicleCreate(req); len(errs) > 0 {
		return nil, errs
	}

	exists, err := s.repo.Vehicle().ExistsByRegistration(ctx, s.db, req.RegistrationNo, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to check registration: %w", err)
	}
	if exists {
		return nil, NewConflictError("vehicle", "registration number already in use")
	}

	vehicle := &models.Vehicle{
		Model:          req.Model,
		Variant:        req.Variant,
		Year:           req.Year,
		RegistrationNo: req.RegistrationNo,
		VIN:            req.VIN,
		Color:          req.Color,
		CreatedBy:      creatorID,
	}

	if err := s.repo.Vehicle().Create(ctx, s.db, vehicle); err != nil {
		if repositories.IsDuplicateKeyError(err) {
			return nil, NewConflictError("vehicle", "registration number already in use")
		}
		return nil, fmt.Errorf("failed to create vehicle: %w", err)
	}

	s.logger.Info("Vehicle registered", "vehicle_id", vehicle.ID)

	return vehicle, nil
}

func (s *vehicleService) GetByID(ctx context.Context, id uint) (*models.Vehicle, error) {
	vehicle, err := s.repo.Vehicle().GetByID(ctx, s.db, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrVehicleNotFound
		}
		return nil, fmt.Errorf("failed to get vehicle: %w", err)
	}

	s.attachImageURL(ctx, vehicle)

	return vehicle, nil
}

func (s *vehicleService) Update(ctx context.Context, id uint, req *UpdateVehicleRequest, actorID uint) (*models.Vehicle, error) {
	s.logger.Info("Updating vehicle", "vehicle_id", id, "actor_id", actorID)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	vehicle, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.RegistrationNo != nil && *req.RegistrationNo != vehicle.RegistrationNo {
		exists, err := s.repo.Vehicle().ExistsByRegistration(ctx, s.db, *req.RegistrationNo, &id)
		if err != nil {
			return nil, fmt.Errorf("failed to check registration: %w", err)
		}
		if exists {
			return nil, NewConflictError("vehicle", "registration number already in use")
		}
		vehicle.RegistrationNo = *req.RegistrationNo
	}

	if req.Model != nil {
		vehicle.Model = *req.Model
	}
	if req.Variant != nil {
		vehicle.Variant = *req.Variant
	}
	if req.Year != nil {
		vehicle.Year = *req.Year
	}
	if req.VIN != nil {
		vehicle.VIN = req.VIN
	}
	if req.Color != nil {
		vehicle.Color = req.Color
	}

	if err := s.repo.Vehicle().Update(ctx, s.db, vehicle); err != nil {
		return nil, fmt.Errorf("failed to update vehicle: %w", err)
	}

	return vehicle, nil
}

func (s *vehicleService) Delete(ctx context.Context, id uint, actorID uint) error {
	s.logger.Info("Deleting vehicle", "vehicle_id", id, "actor_id", actorID)

	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}

	vehicle, err := s.repo.Vehicle().GetByID(ctx, s.db, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrVehicleNotFound
		}
		return fmt.Errorf("failed to get vehicle: %w", err)
	}

	// Vehicles with work orders stay on record.
	hasOrders, err := s.repo.Vehicle().HasWorkOrders(ctx, s.db, id)
	if err != nil {
		return fmt.Errorf("failed to check vehicle usage: %w", err)
	}
	if hasOrders {
		return NewConflictError("vehicle", "vehicle has work orders and cannot be deleted")
	}

	if err := s.repo.Vehicle().Delete(ctx, s.db, id); err != nil {
		return fmt.Errorf("failed to delete vehicle: %w", err)
	}

	if vehicle.ImageKey != nil && *vehicle.ImageKey != "" {
		if err := s.storage.Delete(ctx, *vehicle.ImageKey); err != nil {
			s.logger.Error("Failed to delete vehicle image", "vehicle_id", id, "key", *vehicle.ImageKey, "error", err)
		}
	}

	return nil
}

func (s *vehicleService) UploadImage(ctx context.Context, id uint, upload *MediaUpload, actorID uint) (*models.Vehicle, error) {
	s.logger.Info("Uploading vehicle image", "vehicle_id", id, "actor_id", actorID)

	vehicle, err := s.repo.Vehicle().GetByID(ctx, s.db, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrVehicleNotFound
		}
		return nil, fmt.Errorf("failed to get vehicle: %w", err)
	}

	key, err := s.storage.Upload(ctx, storage.FolderVehicleImages, upload.Filename, upload.Body, upload.ContentType)
	if err != nil {
		return nil, fmt.Errorf("failed to upload vehicle image: %w", err)
	}

	previous := vehicle.ImageKey
	vehicle.ImageKey = &key
	if err := s.repo.Vehicle().Update(ctx, s.db, vehicle); err != nil {
		return nil, fmt.Errorf("failed to update vehicle: %w", err)
	}

	if previous != nil && *previous != "" && *previous != key {
		if err := s.storage.Delete(ctx, *previous); err != nil {
			s.logger.Error("Failed to delete replaced vehicle image", "vehicle_id", id, "key", *previous, "error", err)
		}
	}

	s.attachImageURL(ctx, vehicle)

	return vehicle, nil
}

func (s *vehicleService) DeleteImage(ctx context.Context, id uint, actorID uint) (*models.Vehicle, error) {
	s.logger.Info("Deleting vehicle image", "vehicle_id", id, "actor_id", actorID)

	vehicle, err := s.repo.Vehicle().GetByID(ctx, s.db, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrVehicleNotFound
		}
		return nil, fmt.Errorf("failed to get vehicle: %w", err)
	}

	if vehicle.ImageKey == nil || *vehicle.ImageKey == "" {
		return nil, NewConflictError("vehicle", "vehicle has no image")
	}

	key := *vehicle.ImageKey
	vehicle.ImageKey = nil
	vehicle.ImageURL = nil
	if err := s.repo.Vehicle().Update(ctx, s.db, vehicle); err != nil {
		return nil, fmt.Errorf("failed to update vehicle: %w", err)
	}

	if err := s.storage.Delete(ctx, key); err != nil {
		s.logger.Error("Failed to delete vehicle image", "vehicle_id", id, "key", key, "error", err)
	}

	return vehicle, nil
}

// attachImageURL resolves the stored key to a signed URL on the way out.
func (s *vehicleService) attachImageURL(ctx context.Context, vehicle *models.Vehicle) {
	if vehicle.ImageKey == nil || *vehicle.ImageKey == "" {
		return
	}

	url, err := s.storage.SignedURL(ctx, *vehicle.ImageKey)
	if err != nil {
		s.logger.Error("Failed to sign vehicle image URL", "vehicle_id", vehicle.ID, "error", err)
		return
	}
	vehicle.ImageURL = &url
}

func (s *vehicleService) List(ctx context.Context, filters repositories.VehicleFilters) (*VehicleListResponse, error) {
	if filters.Limit <= 0 || filters.Limit > 100 {
		filters.Limit = 10
	}
	if filters.Offset < 0 {
		filters.Offset = 0
	}

	vehicles, total, err := s.repo.Vehicle().List(ctx, s.db, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list vehicles: %w", err)
	}

	for _, vehicle := range vehicles {
		s.attachImageURL(ctx, vehicle)
	}

	return &VehicleListResponse{
		Vehicles: vehicles,
		Total:    total,
		Page:     filters.Offset/filters.Limit + 1,
		Size:     filters.Limit,
	}, nil
}
