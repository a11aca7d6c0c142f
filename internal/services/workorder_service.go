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
	"github.com/macworldgithub/westside-backend/internal/validator"
)

type workOrderService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
}

func NewWorkOrderService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher) WorkOrderService {
	return &workOrderService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		publisher: publisher,
	}
}

// ===== CORE CRUD OPERATIONS =====

func (s *workOrderService) Create(ctx context.Context, req *CreateWorkOrderRequest, creatorID uint) (*WorkOrderResponse, error) {
	s.logger.Info("Creating work order", "creator_id", creatorID, "car_id", req.CarID)

	if errs := s.validator.GetBusinessValidator().ValidateWorkOrderCreate(req); len(errs) > 0 {
		return nil, errs
	}

	creator, err := s.getUser(ctx, creatorID)
	if err != nil {
		return nil, err
	}
	if !CanCreateWorkOrder(creator.Role) {
		return nil, NewPermissionError(creatorID, 0, "work_order", "create", "technicians cannot open work orders")
	}

	carExists, err := s.repo.Vehicle().ExistsByID(ctx, s.db, req.CarID)
	if err != nil {
		return nil, fmt.Errorf("failed to check vehicle: %w", err)
	}
	if !carExists {
		return nil, ErrVehicleNotFound
	}

	// Every assigned mechanic must hold the technician role.
	mechanics, err := s.loadMechanics(ctx, req.MechanicIDs)
	if err != nil {
		return nil, err
	}

	startDate := time.Now()
	if req.StartDate != nil {
		startDate = *req.StartDate
	}

	headMechanic := req.HeadMechanic
	if headMechanic == "" && len(mechanics) > 0 {
		headMechanic = mechanics[0].Name
	}

	var order *models.WorkOrder
	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		order = &models.WorkOrder{
			Status:           models.WorkOrderPending,
			OwnerName:        req.OwnerName,
			OwnerEmail:       req.OwnerEmail,
			PhoneNumber:      req.PhoneNumber,
			Address:          req.Address,
			HeadMechanic:     headMechanic,
			OrderCreatorName: creator.Name,
			Notes:            req.Notes,
			StartDate:        startDate,
			CarID:            req.CarID,
			CreatedBy:        creatorID,
		}

		if err := txRepo.WorkOrder().Create(ctx, nil, order); err != nil {
			return fmt.Errorf("failed to create work order: %w", err)
		}

		for _, mechanic := range mechanics {
			if err := txRepo.WorkOrder().AddMechanic(ctx, nil, order.ID, mechanic); err != nil {
				return fmt.Errorf("failed to assign mechanic: %w", err)
			}
		}

		// A shop manager creating an order manages it.
		if creator.Role == models.RoleShopManager {
			if err := txRepo.WorkOrder().AddManager(ctx, nil, order.ID, creator); err != nil {
				return fmt.Errorf("failed to assign manager: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.EventWorkOrderCreated, map[string]interface{}{
		"work_order_id": order.ID,
		"car_id":        order.CarID,
		"created_by":    creatorID,
	})

	s.logger.Info("Work order created successfully", "work_order_id", order.ID)

	return s.GetByIDWithDetails(ctx, order.ID, creatorID)
}

func (s *workOrderService) GetByID(ctx context.Context, id uint, userID uint) (*WorkOrderResponse, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	order, err := s.repo.WorkOrder().GetByID(ctx, s.db, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrWorkOrderNotFound
		}
		return nil, fmt.Errorf("failed to get work order: %w", err)
	}

	if !CanViewWorkOrder(user, order) {
		return nil, NewPermissionError(userID, id, "work_order", "read", "not assigned to this order")
	}

	return s.buildResponse(order, user), nil
}

func (s *workOrderService) GetByIDWithDetails(ctx context.Context, id uint, userID uint) (*WorkOrderResponse, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	order, err := s.repo.WorkOrder().GetByIDWithDetails(ctx, s.db, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrWorkOrderNotFound
		}
		return nil, fmt.Errorf("failed to get work order: %w", err)
	}

	if !CanViewWorkOrder(user, order) {
		return nil, NewPermissionError(userID, id, "work_order", "read", "not assigned to this order")
	}

	return s.buildResponse(order, user), nil
}

func (s *workOrderService) Update(ctx context.Context, id uint, req *UpdateWorkOrderRequest, userID uint) (*WorkOrderResponse, error) {
	s.logger.Info("Updating work order", "work_order_id", id, "user_id", userID)

	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	order, err := s.repo.WorkOrder().GetByID(ctx, s.db, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrWorkOrderNotFound
		}
		return nil, fmt.Errorf("failed to get work order: %w", err)
	}

	if !s.canEdit(user, order) {
		return nil, NewPermissionError(userID, id, "work_order", "update", "only managers on the order may edit it")
	}

	if errs := s.validator.GetBusinessValidator().ValidateWorkOrderUpdate(req, order); len(errs) > 0 {
		return nil, errs
	}

	updates := map[string]interface{}{}
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if req.OwnerName != nil {
		updates["owner_name"] = *req.OwnerName
	}
	if req.OwnerEmail != nil {
		updates["owner_email"] = *req.OwnerEmail
	}
	if req.PhoneNumber != nil {
		updates["phone_number"] = *req.PhoneNumber
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.HeadMechanic != nil {
		updates["head_mechanic"] = *req.HeadMechanic
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}
	if req.StartDate != nil {
		updates["start_date"] = *req.StartDate
	}
	if req.EndDate != nil {
		updates["end_date"] = *req.EndDate
	}

	// Completing an order stamps the end date when none was supplied.
	if req.Status != nil && *req.Status == models.WorkOrderCompleted && req.EndDate == nil && order.EndDate == nil {
		updates["end_date"] = time.Now()
	}

	if len(updates) > 0 {
		order.ID = id
		if err := s.applyUpdates(ctx, order, updates); err != nil {
			return nil, err
		}
	}

	s.publishEvent(ctx, events.EventWorkOrderUpdated, map[string]interface{}{
		"work_order_id": id,
		"updated_by":    userID,
	})

	return s.GetByIDWithDetails(ctx, id, userID)
}

func (s *workOrderService) applyUpdates(ctx context.Context, order *models.WorkOrder, updates map[string]interface{}) error {
	for field, value := range updates {
		switch field {
		case "status":
			order.Status = value.(models.WorkOrderStatus)
		case "owner_name":
			order.OwnerName = value.(string)
		case "owner_email":
			order.OwnerEmail = value.(string)
		case "phone_number":
			order.PhoneNumber = value.(string)
		case "address":
			addr := value.(string)
			order.Address = &addr
		case "head_mechanic":
			order.HeadMechanic = value.(string)
		case "notes":
			notes := value.(string)
			order.Notes = &notes
		case "start_date":
			order.StartDate = value.(time.Time)
		case "end_date":
			end := value.(time.Time)
			order.EndDate = &end
		}
	}

	if err := s.repo.WorkOrder().Update(ctx, s.db, order); err != nil {
		return fmt.Errorf("failed to update work order: %w", err)
	}
	return nil
}

func (s *workOrderService) Delete(ctx context.Context, id uint, userID uint) error {
	s.logger.Info("Deleting work order", "work_order_id", id, "user_id", userID)

	user, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}

	order, err := s.repo.WorkOrder().GetByID(ctx, s.db, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrWorkOrderNotFound
		}
		return fmt.Errorf("failed to get work order: %w", err)
	}

	if !user.IsAdmin() && order.CreatedBy != userID {
		return NewPermissionError(userID, id, "work_order", "delete", "only the creator or an administrator may delete an order")
	}

	if err := s.repo.WorkOrder().Delete(ctx, s.db, id); err != nil {
		return fmt.Errorf("failed to delete work order: %w", err)
	}

	return nil
}

func (s *workOrderService) List(ctx context.Context, filters repositories.WorkOrderFilters, userID uint) (*WorkOrderListResponse, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if filters.Limit <= 0 || filters.Limit > 100 {
		filters.Limit = 10
	}
	if filters.Offset < 0 {
		filters.Offset = 0
	}

	// Non-administrators only see orders they are staffed on or created.
	if !user.IsAdmin() {
		filters.ScopeUserID = &userID
	}

	orders, total, err := s.repo.WorkOrder().List(ctx, s.db, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list work orders: %w", err)
	}

	responses := make([]*WorkOrderResponse, 0, len(orders))
	for _, order := range orders {
		responses = append(responses, s.buildResponse(order, user))
	}

	return &WorkOrderListResponse{
		WorkOrders: responses,
		Total:      total,
		Page:       filters.Offset/filters.Limit + 1,
		Size:       filters.Limit,
	}, nil
}

// ===== STAFFING =====

func (s *workOrderService) AddMechanic(ctx context.Context, orderID, userID, actorID uint) error {
	s.logger.Info("Assigning mechanic", "work_order_id", orderID, "user_id", userID, "actor_id", actorID)

	if err := s.checkStaffingActor(ctx, orderID, actorID); err != nil {
		return err
	}

	mechanic, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}
	if mechanic.Role != models.RoleTechnician {
		return NewConflictError("work_order", "only technicians can be assigned as mechanics")
	}

	assigned, err := s.repo.WorkOrder().IsMechanic(ctx, s.db, orderID, userID)
	if err != nil {
		return fmt.Errorf("failed to check assignment: %w", err)
	}
	if assigned {
		return NewConflictError("work_order", "mechanic already assigned to this order")
	}

	if err := s.repo.WorkOrder().AddMechanic(ctx, s.db, orderID, mechanic); err != nil {
		return fmt.Errorf("failed to add mechanic: %w", err)
	}

	s.syncRoomParticipant(ctx, orderID, mechanic, true)
	s.publishEvent(ctx, events.EventStaffAssigned, map[string]interface{}{
		"work_order_id": orderID,
		"user_id":       userID,
		"role":          string(models.RoleTechnician),
	})

	return nil
}

func (s *workOrderService) RemoveMechanic(ctx context.Context, orderID, userID, actorID uint) error {
	s.logger.Info("Detaching mechanic", "work_order_id", orderID, "user_id", userID, "actor_id", actorID)

	if err := s.checkStaffingActor(ctx, orderID, actorID); err != nil {
		return err
	}

	mechanic, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}

	assigned, err := s.repo.WorkOrder().IsMechanic(ctx, s.db, orderID, userID)
	if err != nil {
		return fmt.Errorf("failed to check assignment: %w", err)
	}
	if !assigned {
		return NewConflictError("work_order", "mechanic is not assigned to this order")
	}

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		order, err := txRepo.WorkOrder().GetByID(ctx, nil, orderID)
		if err != nil {
			return err
		}
		if !hasSnapshotFor(order.MechanicHistory, mechanic.Email) {
			snapshot := models.StaffSnapshot{
				Name:      mechanic.Name,
				Email:     mechanic.Email,
				Phone:     mechanic.Mobile,
				DeletedAt: time.Now().UTC(),
			}
			if err := txRepo.WorkOrder().AppendMechanicHistory(ctx, nil, orderID, snapshot); err != nil {
				return err
			}
		}
		return txRepo.WorkOrder().RemoveMechanic(ctx, nil, orderID, userID)
	})
	if err != nil {
		return fmt.Errorf("failed to remove mechanic: %w", err)
	}

	s.syncRoomParticipant(ctx, orderID, mechanic, false)
	s.publishEvent(ctx, events.EventStaffDetached, map[string]interface{}{
		"work_order_id": orderID,
		"user_id":       userID,
		"role":          string(models.RoleTechnician),
	})

	return nil
}

func (s *workOrderService) AddManager(ctx context.Context, orderID, userID, actorID uint) error {
	s.logger.Info("Assigning manager", "work_order_id", orderID, "user_id", userID, "actor_id", actorID)

	if err := s.checkStaffingActor(ctx, orderID, actorID); err != nil {
		return err
	}

	manager, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}
	if manager.Role != models.RoleShopManager {
		return NewConflictError("work_order", "only shop managers can manage an order")
	}

	assigned, err := s.repo.WorkOrder().IsManager(ctx, s.db, orderID, userID)
	if err != nil {
		return fmt.Errorf("failed to check assignment: %w", err)
	}
	if assigned {
		return NewConflictError("work_order", "manager already assigned to this order")
	}

	if err := s.repo.WorkOrder().AddManager(ctx, s.db, orderID, manager); err != nil {
		return fmt.Errorf("failed to add manager: %w", err)
	}

	s.syncRoomParticipant(ctx, orderID, manager, true)
	s.publishEvent(ctx, events.EventStaffAssigned, map[string]interface{}{
		"work_order_id": orderID,
		"user_id":       userID,
		"role":          string(models.RoleShopManager),
	})

	return nil
}

func (s *workOrderService) RemoveManager(ctx context.Context, orderID, userID, actorID uint) error {
	s.logger.Info("Detaching manager", "work_order_id", orderID, "user_id", userID, "actor_id", actorID)

	if err := s.checkStaffingActor(ctx, orderID, actorID); err != nil {
		return err
	}

	manager, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}

	assigned, err := s.repo.WorkOrder().IsManager(ctx, s.db, orderID, userID)
	if err != nil {
		return fmt.Errorf("failed to check assignment: %w", err)
	}
	if !assigned {
		return NewConflictError("work_order", "manager is not assigned to this order")
	}

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		order, err := txRepo.WorkOrder().GetByID(ctx, nil, orderID)
		if err != nil {
			return err
		}
		if !hasSnapshotFor(order.ManagerHistory, manager.Email) {
			snapshot := models.StaffSnapshot{
				Name:      manager.Name,
				Email:     manager.Email,
				Phone:     manager.Mobile,
				DeletedAt: time.Now().UTC(),
			}
			if err := txRepo.WorkOrder().AppendManagerHistory(ctx, nil, orderID, snapshot); err != nil {
				return err
			}
		}
		return txRepo.WorkOrder().RemoveManager(ctx, nil, orderID, userID)
	})
	if err != nil {
		return fmt.Errorf("failed to remove manager: %w", err)
	}

	s.syncRoomParticipant(ctx, orderID, manager, false)
	s.publishEvent(ctx, events.EventStaffDetached, map[string]interface{}{
		"work_order_id": orderID,
		"user_id":       userID,
		"role":          string(models.RoleShopManager),
	})

	return nil
}

// ===== HELPERS =====

func (s *workOrderService) getUser(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.repo.User().GetByID(ctx, s.db, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *workOrderService) loadMechanics(ctx context.Context, ids []uint) ([]*models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	users, err := s.repo.User().GetByIDs(ctx, s.db, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load mechanics: %w", err)
	}
	if len(users) != len(ids) {
		return nil, ErrUserNotFound
	}
	for _, user := range users {
		if user.Role != models.RoleTechnician {
			return nil, NewConflictError("work_order", "only technicians can be assigned as mechanics")
		}
	}
	return users, nil
}

func (s *workOrderService) checkStaffingActor(ctx context.Context, orderID uint, actorID uint) error {
	actor, err := s.getUser(ctx, actorID)
	if err != nil {
		return err
	}
	if !CanManageStaffing(actor.Role) {
		return NewPermissionError(actorID, orderID, "work_order", "staff", "technicians cannot change staffing")
	}

	exists, err := s.repo.WorkOrder().ExistsByID(ctx, s.db, orderID)
	if err != nil {
		return fmt.Errorf("failed to check work order: %w", err)
	}
	if !exists {
		return ErrWorkOrderNotFound
	}
	return nil
}

func (s *workOrderService) canEdit(user *models.User, order *models.WorkOrder) bool {
	if user.IsAdmin() || order.CreatedBy == user.ID {
		return true
	}
	return order.HasManager(user.ID)
}

func (s *workOrderService) buildResponse(order *models.WorkOrder, user *models.User) *WorkOrderResponse {
	return &WorkOrderResponse{
		WorkOrder: order,
		CanEdit:   s.canEdit(user, order),
		CanDelete: user.IsAdmin() || order.CreatedBy == user.ID,
	}
}

// syncRoomParticipant mirrors a staffing change into the order's chat
// room, if one exists. Room sync failures are logged, not fatal.
func (s *workOrderService) syncRoomParticipant(ctx context.Context, orderID uint, user *models.User, add bool) {
	room, err := s.repo.ChatRoom().GetByWorkOrder(ctx, s.db, orderID)
	if err != nil {
		if !repositories.IsNotFoundError(err) {
			s.logger.Error("Failed to load chat room for staffing sync", "work_order_id", orderID, "error", err)
		}
		return
	}

	if add {
		err = s.repo.ChatRoom().AddParticipant(ctx, s.db, room.ID, user)
	} else {
		err = s.repo.ChatRoom().RemoveParticipant(ctx, s.db, room.ID, user.ID)
	}
	if err != nil {
		s.logger.Error("Failed to sync chat room participant", "work_order_id", orderID, "user_id", user.ID, "error", err)
	}
}

func (s *workOrderService) publishEvent(ctx context.Context, eventType string, data interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, events.NewEvent(eventType, data)); err != nil {
		s.logger.Error("Failed to publish event", "event_type", eventType, "error", err)
	}
}
