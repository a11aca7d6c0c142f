package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/macworldgithub/westside-backend/internal/models"
	"github.com/macworldgithub/westside-backend/internal/services"
	"github.com/macworldgithub/westside-backend/internal/utils"
)

type HandlerManager struct {
	userHandler      *UserHandler
	vehicleHandler   *VehicleHandler
	workOrderHandler *WorkOrderHandler
	repairHandler    *RepairHandler
	chatHandler      *ChatHandler
	reportHandler    *ReportHandler
	jwtSecret        string
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	logger utils.Logger,
	jwtSecret string,
) *HandlerManager {
	return &HandlerManager{
		userHandler:      NewUserHandler(serviceManager.User(), logger),
		vehicleHandler:   NewVehicleHandler(serviceManager.Vehicle(), logger),
		workOrderHandler: NewWorkOrderHandler(serviceManager.WorkOrder(), logger),
		repairHandler:    NewRepairHandler(serviceManager.Repair(), logger),
		chatHandler:      NewChatHandler(serviceManager.Chat(), logger),
		reportHandler:    NewReportHandler(serviceManager.Report(), logger),
		jwtSecret:        jwtSecret,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// Public routes
	public := router.Group("/api/v1")
	{
		public.POST("/auth/login", hm.userHandler.Login)
	}

	// API v1 routes with authentication
	v1 := router.Group("/api/v1")
	v1.Use(AuthMiddleware(hm.jwtSecret))
	{
		// User routes
		users := v1.Group("/users")
		{
			// Account creation and removal - Admins only
			users.POST("/technicians", RequireRoleMiddleware(), hm.userHandler.CreateTechnician)
			users.POST("/shop-managers", RequireRoleMiddleware(), hm.userHandler.CreateShopManager)
			users.POST("/system-admins", RequireRoleMiddleware(), hm.userHandler.CreateSystemAdmin)
			users.DELETE("/:id", RequireRoleMiddleware(), hm.userHandler.RemoveUser)

			// All authenticated users
			users.GET("", hm.userHandler.ListUsers)
			users.GET("/me", hm.userHandler.GetMe)
			users.GET("/:id", hm.userHandler.GetUser)
			users.PUT("/:id", hm.userHandler.UpdateUser)
		}

		// Vehicle routes
		vehicles := v1.Group("/vehicles")
		{
			vehicles.GET("", hm.vehicleHandler.ListVehicles)
			vehicles.GET("/:id", hm.vehicleHandler.GetVehicle)

			// Registry changes - Managers and Admins only
			vehicles.POST("", RequireRoleMiddleware(models.RoleShopManager), hm.vehicleHandler.CreateVehicle)
			vehicles.PUT("/:id", RequireRoleMiddleware(models.RoleShopManager), hm.vehicleHandler.UpdateVehicle)
			vehicles.DELETE("/:id", RequireRoleMiddleware(models.RoleShopManager), hm.vehicleHandler.DeleteVehicle)
			vehicles.POST("/:id/image", RequireRoleMiddleware(models.RoleShopManager), hm.vehicleHandler.UploadVehicleImage)
			vehicles.DELETE("/:id/image", RequireRoleMiddleware(models.RoleShopManager), hm.vehicleHandler.DeleteVehicleImage)
		}

		// Work order routes
		workOrders := v1.Group("/work-orders")
		{
			// Creation - Managers and Admins only
			workOrders.POST("", RequireRoleMiddleware(models.RoleShopManager), hm.workOrderHandler.CreateWorkOrder)

			// Visibility scoping happens in the service layer
			workOrders.GET("", hm.workOrderHandler.ListWorkOrders)
			workOrders.GET("/:id", hm.workOrderHandler.GetWorkOrder)
			workOrders.PUT("/:id", hm.workOrderHandler.UpdateWorkOrder)
			workOrders.DELETE("/:id", hm.workOrderHandler.DeleteWorkOrder)

			// Staffing - Managers and Admins only
			workOrders.POST("/:id/mechanics/:userId", RequireRoleMiddleware(models.RoleShopManager), hm.workOrderHandler.AddMechanic)
			workOrders.DELETE("/:id/mechanics/:userId", RequireRoleMiddleware(models.RoleShopManager), hm.workOrderHandler.RemoveMechanic)
			workOrders.POST("/:id/managers/:userId", RequireRoleMiddleware(models.RoleShopManager), hm.workOrderHandler.AddManager)
			workOrders.DELETE("/:id/managers/:userId", RequireRoleMiddleware(models.RoleShopManager), hm.workOrderHandler.RemoveManager)

			// Repairs scoped to an order
			workOrders.GET("/:id/repairs", hm.repairHandler.ListRepairs)

			// Chat room per order
			workOrders.GET("/:id/chat", hm.chatHandler.GetOrCreateRoom)

			// Reports
			workOrders.POST("/:id/report/email", hm.reportHandler.SendReport)
			workOrders.GET("/:id/report/pdf", hm.reportHandler.DownloadReportPDF)
			workOrders.GET("/:id/report/xlsx", hm.reportHandler.DownloadReportXLSX)
		}

		// Repair routes
		repairs := v1.Group("/repairs")
		{
			repairs.POST("", hm.repairHandler.CreateRepair)
			repairs.GET("/:id", hm.repairHandler.GetRepair)
			repairs.PUT("/:id", hm.repairHandler.UpdateRepair)
			repairs.DELETE("/:id", hm.repairHandler.DeleteRepair)
			repairs.POST("/:id/images/:kind", hm.repairHandler.UploadRepairImage)
		}

		// Chat routes
		chat := v1.Group("/chat")
		{
			chat.GET("/rooms", hm.chatHandler.ListRooms)
			chat.POST("/rooms/:id/messages", hm.chatHandler.SendMessage)
			chat.GET("/rooms/:id/messages", hm.chatHandler.GetWeekMessages)
			chat.PUT("/messages/:id", hm.chatHandler.EditMessage)
			chat.DELETE("/messages/:id", hm.chatHandler.DeleteMessage)
		}
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "westside-backend",
		})
	})
}
