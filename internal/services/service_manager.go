package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/macworldgithub/westside-backend/internal/config"
	"github.com/macworldgithub/westside-backend/internal/events"
	"github.com/macworldgithub/westside-backend/internal/repositories"
	"github.com/macworldgithub/westside-backend/internal/storage"
	"github.com/macworldgithub/westside-backend/internal/validator"
)

// ServiceManagerConfig holds configuration for the service manager
type ServiceManagerConfig struct {
	// Logging configuration
	EnableDebugLogging bool
	LogLevel           slog.Level

	// Service-specific configurations
	User      ServiceConfig
	Vehicle   ServiceConfig
	WorkOrder ServiceConfig
	Repair    ServiceConfig
	Chat      ServiceConfig
	Report    ServiceConfig

	// Global settings
	DefaultTimeout time.Duration
}

type ServiceConfig struct {
	Enabled      bool
	CacheEnabled bool
	CacheTTL     time.Duration
}

// ServiceDependencies bundles everything the individual services need.
type ServiceDependencies struct {
	DB        *gorm.DB
	Repo      repositories.Repository
	Logger    *slog.Logger
	Validator *validator.Validator
	Storage   storage.Storage
	Publisher events.EventPublisher
	JWTSecret string
	SMTP      config.SMTPConfig
}

// serviceManager implements ServiceManager interface
type serviceManager struct {
	deps   ServiceDependencies
	config ServiceManagerConfig

	// Service instances
	userService      UserService
	vehicleService   VehicleService
	workOrderService WorkOrderService
	repairService    RepairService
	chatService      ChatService
	reportService    ReportService

	// Lifecycle management
	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager creates a new service manager with all dependencies
func NewServiceManager(deps ServiceDependencies, cfg ServiceManagerConfig) ServiceManager {
	return &serviceManager{
		deps:   deps,
		config: cfg,
	}
}

// NewDefaultServiceManager creates a service manager with default configuration
func NewDefaultServiceManager(deps ServiceDependencies) ServiceManager {
	cfg := ServiceManagerConfig{
		EnableDebugLogging: false,
		LogLevel:           slog.LevelInfo,

		User:      ServiceConfig{Enabled: true, CacheEnabled: true, CacheTTL: 5 * time.Minute},
		Vehicle:   ServiceConfig{Enabled: true, CacheEnabled: true, CacheTTL: 10 * time.Minute},
		WorkOrder: ServiceConfig{Enabled: true, CacheEnabled: true, CacheTTL: 5 * time.Minute},
		Repair:    ServiceConfig{Enabled: true, CacheEnabled: false},
		Chat:      ServiceConfig{Enabled: true, CacheEnabled: false},
		Report:    ServiceConfig{Enabled: true, CacheEnabled: false},

		DefaultTimeout: 30 * time.Second,
	}

	return NewServiceManager(deps, cfg)
}

// Initialize sets up all services and their dependencies
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	logger := sm.deps.Logger
	logger.Info("Initializing service manager")

	if sm.config.User.Enabled {
		sm.userService = NewUserService(sm.deps.Repo, sm.deps.DB, logger, sm.deps.Validator, sm.deps.Publisher, sm.deps.JWTSecret)
		logger.Info("User service initialized")
	}

	if sm.config.Vehicle.Enabled {
		sm.vehicleService = NewVehicleService(sm.deps.Repo, sm.deps.DB, logger, sm.deps.Validator, sm.deps.Storage)
		logger.Info("Vehicle service initialized")
	}

	if sm.config.WorkOrder.Enabled {
		sm.workOrderService = NewWorkOrderService(sm.deps.Repo, sm.deps.DB, logger, sm.deps.Validator, sm.deps.Publisher)
		logger.Info("Work order service initialized")
	}

	if sm.config.Repair.Enabled {
		sm.repairService = NewRepairService(sm.deps.Repo, sm.deps.DB, logger, sm.deps.Validator, sm.deps.Storage, sm.deps.Publisher)
		logger.Info("Repair service initialized")
	}

	if sm.config.Chat.Enabled {
		sm.chatService = NewChatService(sm.deps.Repo, sm.deps.DB, logger, sm.deps.Validator, sm.deps.Storage, sm.deps.Publisher)
		logger.Info("Chat service initialized")
	}

	if sm.config.Report.Enabled {
		sm.reportService = NewReportService(sm.deps.Repo, sm.deps.DB, logger, sm.deps.Storage, sm.deps.Publisher, sm.deps.SMTP)
		logger.Info("Report service initialized")
	}

	sm.initialized = true
	logger.Info("Service manager initialized successfully")

	return nil
}

// Service getters
func (sm *serviceManager) User() UserService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	if sm.userService == nil {
		panic("user service not enabled or not initialized")
	}
	return sm.userService
}

func (sm *serviceManager) Vehicle() VehicleService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	if sm.vehicleService == nil {
		panic("vehicle service not enabled or not initialized")
	}
	return sm.vehicleService
}

func (sm *serviceManager) WorkOrder() WorkOrderService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	if sm.workOrderService == nil {
		panic("work order service not enabled or not initialized")
	}
	return sm.workOrderService
}

func (sm *serviceManager) Repair() RepairService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	if sm.repairService == nil {
		panic("repair service not enabled or not initialized")
	}
	return sm.repairService
}

func (sm *serviceManager) Chat() ChatService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	if sm.chatService == nil {
		panic("chat service not enabled or not initialized")
	}
	return sm.chatService
}

func (sm *serviceManager) Report() ReportService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	if sm.reportService == nil {
		panic("report service not enabled or not initialized")
	}
	return sm.reportService
}

// Health and lifecycle
func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}
	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}

	if err := sm.deps.Repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}

	return nil
}

func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.deps.Logger.Info("Shutting down service manager")

	if sm.deps.Publisher != nil {
		if err := sm.deps.Publisher.Close(); err != nil {
			sm.deps.Logger.Error("Failed to close event publisher", "error", err)
		}
	}

	if err := sm.deps.Repo.Close(); err != nil {
		sm.deps.Logger.Error("Failed to close repository", "error", err)
	}

	sm.shutdown = true
	sm.deps.Logger.Info("Service manager shut down completed")

	return nil
}

// ===== UTILITY METHODS =====

// GetConfig returns the service manager configuration
func (sm *serviceManager) GetConfig() ServiceManagerConfig {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.config
}

// IsInitialized returns whether the service manager has been initialized
func (sm *serviceManager) IsInitialized() bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.initialized
}

// WithTimeout creates a context with the default timeout
func (sm *serviceManager) WithTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, sm.config.DefaultTimeout)
}
