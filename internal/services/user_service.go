package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/macworldgithub/westside-backend/internal/events"
	"github.com/macworldgithub/westside-backend/internal/models"
	"github.com/macworldgithub/westside-backend/internal/repositories"
	"github.com/macworldgithub/westside-backend/internal/validator"
)

const (
	bcryptCost    = 10
	tokenLifetime = 24 * time.Hour
)

type userService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
	jwtSecret string
}

func NewUserService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher, jwtSecret string) UserService {
	return &userService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		publisher: publisher,
		jwtSecret: jwtSecret,
	}
}

// ===== ACCOUNT CREATION =====

func (s *userService) CreateTechnician(ctx context.Context, req *CreateUserRequest) (*models.User, error) {
	return s.createUser(ctx, req, models.RoleTechnician)
}

func (s *userService) CreateShopManager(ctx context.Context, req *CreateUserRequest) (*models.User, error) {
	return s.createUser(ctx, req, models.RoleShopManager)
}

func (s *userService) CreateSystemAdmin(ctx context.Context, req *CreateUserRequest) (*models.User, error) {
	return s.createUser(ctx, req, models.RoleSystemAdmin)
}

func (s *userService) createUser(ctx context.Context, req *CreateUserRequest, role models.UserRole) (*models.User, error) {
	s.logger.Info("Creating user", "email", req.Email, "role", role)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	exists, err := s.repo.User().ExistsByEmail(ctx, s.db, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing email: %w", err)
	}
	if exists {
		return nil, NewConflictError("user", "email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         role,
		Mobile:       req.Mobile,
		Address:      req.Address,
	}

	if err := s.repo.User().Create(ctx, s.db, user); err != nil {
		if repositories.IsDuplicateKeyError(err) {
			return nil, NewConflictError("user", "email already registered")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("User created successfully", "user_id", user.ID, "role", role)

	return user, nil
}

// ===== AUTHENTICATION =====

func (s *userService) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.repo.User().GetByEmail(ctx, s.db, req.Email)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.logger.Info("User logged in", "user_id", user.ID)

	return &LoginResponse{Token: token, User: user}, nil
}

func (s *userService) issueToken(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    string(user.Role),
		"iat":     now.Unix(),
		"exp":     now.Add(tokenLifetime).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

// ===== READ OPERATIONS =====

func (s *userService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.repo.User().GetByID(ctx, s.db, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *userService) List(ctx context.Context, filters repositories.UserFilters) (*UserListResponse, error) {
	if filters.Limit <= 0 || filters.Limit > 100 {
		filters.Limit = 10
	}
	if filters.Offset < 0 {
		filters.Offset = 0
	}

	users, total, err := s.repo.User().List(ctx, s.db, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	return &UserListResponse{
		Users: users,
		Total: total,
		Page:  filters.Offset/filters.Limit + 1,
		Size:  filters.Limit,
	}, nil
}

// ===== MUTATIONS =====

func (s *userService) Update(ctx context.Context, id uint, req *UpdateUserRequest, actorID uint) (*models.User, error) {
	s.logger.Info("Updating user", "user_id", id, "actor_id", actorID)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	actor, err := s.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if actor.ID != id && !actor.IsAdmin() {
		return nil, NewPermissionError(actorID, id, "user", "update", "only administrators may edit other accounts")
	}

	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Password changes require the current password unless an
	// administrator is acting on someone else's account.
	if req.Password != nil {
		if !actor.IsAdmin() || actor.ID == id {
			if req.CurrentPassword == nil {
				return nil, NewPermissionError(actorID, id, "user", "update", "current password required")
			}
			if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(*req.CurrentPassword)); err != nil {
				return nil, ErrInvalidCredentials
			}
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = string(hash)
	}

	if req.Role != nil && *req.Role != user.Role {
		if !actor.IsAdmin() {
			return nil, NewPermissionError(actorID, id, "user", "update", "only administrators may change roles")
		}
		user.Role = *req.Role
	}

	if req.Email != nil && *req.Email != user.Email {
		exists, err := s.repo.User().ExistsByEmail(ctx, s.db, *req.Email)
		if err != nil {
			return nil, fmt.Errorf("failed to check existing email: %w", err)
		}
		if exists {
			return nil, NewConflictError("user", "email already registered")
		}
		user.Email = *req.Email
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Mobile != nil {
		user.Mobile = req.Mobile
	}
	if req.Address != nil {
		user.Address = req.Address
	}

	if err := s.repo.User().Update(ctx, s.db, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}

// Remove detaches the user from every work order and chat room in a
// single transaction, preserving their identity in the order staffing
// history, then deletes the account.
func (s *userService) Remove(ctx context.Context, id uint, actorID uint) error {
	s.logger.Info("Removing user", "user_id", id, "actor_id", actorID)

	actor, err := s.GetByID(ctx, actorID)
	if err != nil {
		return err
	}
	if !CanManageUsers(actor.Role) {
		return NewPermissionError(actorID, id, "user", "delete", "only administrators may remove accounts")
	}

	user, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		snapshot := models.StaffSnapshot{
			Name:      user.Name,
			Email:     user.Email,
			Phone:     user.Mobile,
			DeletedAt: time.Now().UTC(),
		}

		orders, err := txRepo.WorkOrder().GetByAssignedUser(ctx, nil, id)
		if err != nil {
			return err
		}

		for _, order := range orders {
			if order.HasMechanic(id) {
				if !hasSnapshotFor(order.MechanicHistory, user.Email) {
					if err := txRepo.WorkOrder().AppendMechanicHistory(ctx, nil, order.ID, snapshot); err != nil {
						return err
					}
				}
				if err := txRepo.WorkOrder().RemoveMechanic(ctx, nil, order.ID, id); err != nil {
					return err
				}
			}
			if order.HasManager(id) {
				if !hasSnapshotFor(order.ManagerHistory, user.Email) {
					if err := txRepo.WorkOrder().AppendManagerHistory(ctx, nil, order.ID, snapshot); err != nil {
						return err
					}
				}
				if err := txRepo.WorkOrder().RemoveManager(ctx, nil, order.ID, id); err != nil {
					return err
				}
			}
		}

		rooms, err := txRepo.ChatRoom().ListForUser(ctx, nil, id)
		if err != nil {
			return err
		}
		for _, room := range rooms {
			if err := txRepo.ChatRoom().RemoveParticipant(ctx, nil, room.ID, id); err != nil {
				return err
			}
		}

		return txRepo.User().Delete(ctx, nil, id)
	})
	if err != nil {
		return fmt.Errorf("failed to remove user: %w", err)
	}

	s.publishEvent(ctx, events.EventUserRemoved, map[string]interface{}{
		"user_id": id,
		"email":   user.Email,
		"role":    string(user.Role),
	})

	s.logger.Info("User removed successfully", "user_id", id)

	return nil
}

func hasSnapshotFor(history []models.StaffSnapshot, email string) bool {
	for i := range history {
		if history[i].Email == email {
			return true
		}
	}
	return false
}

func (s *userService) publishEvent(ctx context.Context, eventType string, data interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, events.NewEvent(eventType, data)); err != nil {
		s.logger.Error("Failed to publish event", "event_type", eventType, "error", err)
	}
}
