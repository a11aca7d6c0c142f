package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/macworldgithub/westside-backend/internal/events"
	"github.com/macworldgithub/westside-backend/internal/models"
	"github.com/macworldgithub/westside-backend/internal/repositories"
	"github.com/macworldgithub/westside-backend/internal/storage"
	"github.com/macworldgithub/westside-backend/internal/validator"
)

type repairService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	storage   storage.Storage
	publisher events.EventPublisher
}

func NewRepairService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, store storage.Storage, publisher events.EventPublisher) RepairService {
	return &repairService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		storage:   store,
		publisher: publisher,
	}
}

func (s *repairService) Create(ctx context.Context, req *CreateRepairRequest, actorID uint) (*RepairResponse, error) {
	s.logger.Info("Creating repair", "work_order_id", req.WorkOrderID, "actor_id", actorID)

	if errs := s.validator.GetBusinessValidator().ValidateRepairCreate(req); len(errs) > 0 {
		return nil, errs
	}

	actor, order, err := s.loadActorAndOrder(ctx, req.WorkOrderID, actorID)
	if err != nil {
		return nil, err
	}
	if !CanViewWorkOrder(actor, order) {
		return nil, NewPermissionError(actorID, req.WorkOrderID, "repair", "create", "not assigned to this order")
	}

	repair := &models.Repair{
		WorkOrderID:  req.WorkOrderID,
		PartName:     req.PartName,
		MechanicName: req.MechanicName,
		Price:        req.Price,
		Notes:        req.Notes,
	}

	if repair.MechanicName == "" {
		repair.MechanicName = actor.Name
	}

	if req.FinishDate != nil {
		finish, err := time.Parse(time.RFC3339, *req.FinishDate)
		if err != nil {
			return nil, fmt.Errorf("invalid finish date: %w", err)
		}
		repair.FinishDate = &finish
	}

	if err := s.repo.Repair().Create(ctx, s.db, repair); err != nil {
		return nil, fmt.Errorf("failed to create repair: %w", err)
	}

	s.logger.Info("Repair created", "repair_id", repair.ID)

	return s.buildResponse(ctx, repair), nil
}

func (s *repairService) GetByID(ctx context.Context, id uint, actorID uint) (*RepairResponse, error) {
	repair, err := s.getRepair(ctx, id)
	if err != nil {
		return nil, err
	}

	actor, order, err := s.loadActorAndOrder(ctx, repair.WorkOrderID, actorID)
	if err != nil {
		return nil, err
	}
	if !CanViewWorkOrder(actor, order) {
		return nil, NewPermissionError(actorID, id, "repair", "read", "not assigned to this order")
	}

	return s.buildResponse(ctx, repair), nil
}

func (s *repairService) GetByWorkOrder(ctx context.Context, workOrderID uint, actorID uint) ([]*RepairResponse, error) {
	actor, order, err := s.loadActorAndOrder(ctx, workOrderID, actorID)
	if err != nil {
		return nil, err
	}
	if !CanViewWorkOrder(actor, order) {
		return nil, NewPermissionError(actorID, workOrderID, "repair", "read", "not assigned to this order")
	}

	repairs, err := s.repo.Repair().GetByWorkOrder(ctx, s.db, workOrderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list repairs: %w", err)
	}

	responses := make([]*RepairResponse, 0, len(repairs))
	for _, repair := range repairs {
		responses = append(responses, s.buildResponse(ctx, repair))
	}
	return responses, nil
}

func (s *repairService) Update(ctx context.Context, id uint, req *UpdateRepairRequest, actorID uint) (*RepairResponse, error) {
	s.logger.Info("Updating repair", "repair_id", id, "actor_id", actorID)

	if errs := s.validator.GetBusinessValidator().ValidateRepairUpdate(req); len(errs) > 0 {
		return nil, errs
	}

	repair, err := s.getRepair(ctx, id)
	if err != nil {
		return nil, err
	}

	actor, order, err := s.loadActorAndOrder(ctx, repair.WorkOrderID, actorID)
	if err != nil {
		return nil, err
	}
	if !CanViewWorkOrder(actor, order) {
		return nil, NewPermissionError(actorID, id, "repair", "update", "not assigned to this order")
	}
	if !CanMutateRepair(actor, repair) {
		return nil, NewPermissionError(actorID, id, "repair", "update", "submitted repairs are locked for technicians")
	}

	fields := map[string]interface{}{}
	if req.PartName != nil {
		fields["part_name"] = *req.PartName
	}
	if req.MechanicName != nil {
		fields["mechanic_name"] = *req.MechanicName
	}
	if req.Price != nil {
		fields["price"] = *req.Price
	}
	if req.Notes != nil {
		fields["notes"] = *req.Notes
	}
	if req.FinishDate != nil {
		finish, err := time.Parse(time.RFC3339, *req.FinishDate)
		if err != nil {
			return nil, fmt.Errorf("invalid finish date: %w", err)
		}
		fields["finish_date"] = finish
	}

	// Image fields may arrive as signed URLs; store bare object keys.
	if req.BeforeImage != nil {
		key := storage.ExtractKeyFromSignedURL(*req.BeforeImage)
		s.deleteReplacedImage(ctx, repair.BeforeImageKey, key)
		fields["before_image_key"] = key
	}
	if req.AfterImage != nil {
		key := storage.ExtractKeyFromSignedURL(*req.AfterImage)
		s.deleteReplacedImage(ctx, repair.AfterImageKey, key)
		fields["after_image_key"] = key
	}

	submitted := false
	if req.Submitted != nil && *req.Submitted && !repair.Submitted {
		fields["submitted"] = true
		submitted = true
	}

	if len(fields) > 0 {
		if err := s.repo.Repair().UpdateFields(ctx, s.db, id, fields); err != nil {
			return nil, fmt.Errorf("failed to update repair: %w", err)
		}
	}

	if submitted {
		s.publishEvent(ctx, events.EventRepairSubmitted, map[string]interface{}{
			"repair_id":     id,
			"work_order_id": repair.WorkOrderID,
			"submitted_by":  actorID,
		})
	}

	updated, err := s.getRepair(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.buildResponse(ctx, updated), nil
}

func (s *repairService) Delete(ctx context.Context, id uint, actorID uint) error {
	s.logger.Info("Deleting repair", "repair_id", id, "actor_id", actorID)

	repair, err := s.getRepair(ctx, id)
	if err != nil {
		return err
	}

	actor, order, err := s.loadActorAndOrder(ctx, repair.WorkOrderID, actorID)
	if err != nil {
		return err
	}
	if !CanViewWorkOrder(actor, order) {
		return NewPermissionError(actorID, id, "repair", "delete", "not assigned to this order")
	}
	if !CanMutateRepair(actor, repair) {
		return NewPermissionError(actorID, id, "repair", "delete", "submitted repairs are locked for technicians")
	}

	if err := s.repo.Repair().Delete(ctx, s.db, id); err != nil {
		return fmt.Errorf("failed to delete repair: %w", err)
	}

	// Orphaned photos are removed best-effort.
	if repair.BeforeImageKey != nil {
		if err := s.storage.Delete(ctx, *repair.BeforeImageKey); err != nil {
			s.logger.Error("Failed to delete repair image", "key", *repair.BeforeImageKey, "error", err)
		}
	}
	if repair.AfterImageKey != nil {
		if err := s.storage.Delete(ctx, *repair.AfterImageKey); err != nil {
			s.logger.Error("Failed to delete repair image", "key", *repair.AfterImageKey, "error", err)
		}
	}

	return nil
}

func (s *repairService) UploadImage(ctx context.Context, id uint, kind string, upload *MediaUpload, actorID uint) (*RepairResponse, error) {
	s.logger.Info("Uploading repair image", "repair_id", id, "kind", kind, "actor_id", actorID)

	if kind != "before" && kind != "after" {
		return nil, fmt.Errorf("unknown image kind %q", kind)
	}

	repair, err := s.getRepair(ctx, id)
	if err != nil {
		return nil, err
	}

	actor, order, err := s.loadActorAndOrder(ctx, repair.WorkOrderID, actorID)
	if err != nil {
		return nil, err
	}
	if !CanViewWorkOrder(actor, order) {
		return nil, NewPermissionError(actorID, id, "repair", "update", "not assigned to this order")
	}
	if !CanMutateRepair(actor, repair) {
		return nil, NewPermissionError(actorID, id, "repair", "update", "submitted repairs are locked for technicians")
	}

	key, err := s.storage.Upload(ctx, storage.FolderRepairImages, upload.Filename, upload.Body, upload.ContentType)
	if err != nil {
		return nil, fmt.Errorf("failed to upload image: %w", err)
	}

	field := "before_image_key"
	old := repair.BeforeImageKey
	if kind == "after" {
		field = "after_image_key"
		old = repair.AfterImageKey
	}

	if err := s.repo.Repair().UpdateFields(ctx, s.db, id, map[string]interface{}{field: key}); err != nil {
		return nil, fmt.Errorf("failed to store image key: %w", err)
	}

	s.deleteReplacedImage(ctx, old, key)

	updated, err := s.getRepair(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.buildResponse(ctx, updated), nil
}

// ===== HELPERS =====

func (s *repairService) getRepair(ctx context.Context, id uint) (*models.Repair, error) {
	repair, err := s.repo.Repair().GetByID(ctx, s.db, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrRepairNotFound
		}
		return nil, fmt.Errorf("failed to get repair: %w", err)
	}
	return repair, nil
}

func (s *repairService) loadActorAndOrder(ctx context.Context, workOrderID, actorID uint) (*models.User, *models.WorkOrder, error) {
	actor, err := s.repo.User().GetByID(ctx, s.db, actorID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, fmt.Errorf("failed to get user: %w", err)
	}

	order, err := s.repo.WorkOrder().GetByID(ctx, s.db, workOrderID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, nil, ErrWorkOrderNotFound
		}
		return nil, nil, fmt.Errorf("failed to get work order: %w", err)
	}

	return actor, order, nil
}

func (s *repairService) deleteReplacedImage(ctx context.Context, old *string, newKey string) {
	if old == nil || *old == "" || *old == newKey {
		return
	}
	if err := s.storage.Delete(ctx, *old); err != nil {
		s.logger.Error("Failed to delete replaced image", "key", *old, "error", err)
	}
}

func (s *repairService) buildResponse(ctx context.Context, repair *models.Repair) *RepairResponse {
	resp := &RepairResponse{Repair: repair}
	resp.BeforeImageURL = s.signKey(ctx, repair.BeforeImageKey)
	resp.AfterImageURL = s.signKey(ctx, repair.AfterImageKey)
	return resp
}

func (s *repairService) signKey(ctx context.Context, key *string) *string {
	if key == nil || *key == "" {
		return nil
	}
	url, err := s.storage.SignedURL(ctx, *key)
	if err != nil {
		s.logger.Error("Failed to sign image URL", "key", *key, "error", err)
		return nil
	}
	return &url
}

func (s *repairService) publishEvent(ctx context.Context, eventType string, data interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, events.NewEvent(eventType, data)); err != nil {
		s.logger.Error("Failed to publish event", "event_type", eventType, "error", err)
	}
}
