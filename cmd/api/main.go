package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"go-almoxarifado/internal/handler"
	"go-almoxarifado/internal/middleware"
	"go-almoxarifado/internal/model"
	"go-almoxarifado/internal/repository"
	"go-almoxarifado/internal/service"
	"go-almoxarifado/internal/ws"
	"go-almoxarifado/pkg/database"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

func main() {
	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	// 2. Setup Database
	db := database.ConnectDB()
	// Auto Migrate (Hati-hati di production, sebaiknya pakai tools migrasi terpisah)
	db.AutoMigrate(
		&model.Category{}, &model.Supplier{}, &model.Technician{}, &model.User{},
		&model.AuditLog{}, &model.Movement{}, &model.Reservation{},
		&model.Kit{}, &model.KitComponent{},
		&model.PurchaseOrder{}, &model.PurchaseOrderLine{},
		&model.PickingList{}, &model.PickingListLine{},
		&model.CountSession{}, &model.CountLine{},
	)
	// The item struct backs two tables, so the pools migrate by name.
	db.Table("items").AutoMigrate(&model.Item{})
	db.Table("red_shelf_items").AutoMigrate(&model.Item{})

	// 3. Seed the default category and admin user
	seedDefaults(db)

	// 4. Setup WebSocket Hub
	wsHub := ws.NewHub()
	go wsHub.Run()

	// 5. Dependency Injection (Wiring Layers)
	itemRepo := repository.NewItemRepo(db)
	movementRepo := repository.NewMovementRepo(db)
	auditRepo := repository.NewAuditRepo(db)
	categoryRepo := repository.NewCategoryRepo(db)
	supplierRepo := repository.NewSupplierRepo(db)
	technicianRepo := repository.NewTechnicianRepo(db)
	userRepo := repository.NewUserRepo(db)
	kitRepo := repository.NewKitRepo(db)
	reservationRepo := repository.NewReservationRepo(db)
	purchaseRepo := repository.NewPurchaseOrderRepo(db)
	pickingRepo := repository.NewPickingListRepo(db)
	countRepo := repository.NewCountSessionRepo(db)
	ledgerStore := repository.NewLedgerStore(db)
	snapshotStore := repository.NewSnapshotStore(db)

	ledgerService := service.NewLedgerService(ledgerStore, movementRepo, wsHub)
	invService := service.NewInventoryService(itemRepo, categoryRepo, reservationRepo, purchaseRepo, pickingRepo, auditRepo, wsHub)
	kitService := service.NewKitService(kitRepo, itemRepo, reservationRepo, auditRepo)
	resService := service.NewReservationService(reservationRepo, itemRepo, kitRepo, ledgerStore, auditRepo, wsHub)
	countService := service.NewCycleCountService(countRepo, itemRepo, movementRepo, ledgerStore, auditRepo, nil, wsHub)
	snapService := service.NewSnapshotService(snapshotStore, auditRepo, wsHub)
	workflowService := service.NewWorkflowService(purchaseRepo, pickingRepo, reservationRepo, ledgerStore, auditRepo, wsHub)
	dashService := service.NewDashboardService(itemRepo, movementRepo)
	authService := service.NewAuthService(userRepo, auditRepo)
	userService := service.NewUserService(userRepo, auditRepo)
	registryService := service.NewRegistryService(supplierRepo, technicianRepo, auditRepo)

	ledgerHandler := handler.NewLedgerHandler(ledgerService)
	invHandler := handler.NewInventoryHandler(invService)
	resHandler := handler.NewReservationHandler(resService, kitService)
	countHandler := handler.NewCycleCountHandler(countService)
	snapHandler := handler.NewSnapshotHandler(snapService)
	workflowHandler := handler.NewWorkflowHandler(workflowService)
	dashHandler := handler.NewDashboardHandler(dashService)
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	registryHandler := handler.NewRegistryHandler(registryService)

	// 6. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: "Almoxarifado v1.0",
	})

	// Middleware
	app.Use(logger.New())  // Logging request
	app.Use(recover.New()) // Panic recovery
	app.Use(cors.New())    // CORS

	// 7. Routes
	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", middleware.RequireAuth(userRepo))
	write := middleware.RequireRole(model.RoleAdmin, model.RoleOperator)
	admin := middleware.RequireRole(model.RoleAdmin)

	// Dashboard
	protected.Get("/dashboard/stats", dashHandler.GetStats)
	protected.Get("/dashboard/stock-movement", dashHandler.GetStockMovement)

	// Items (both pools, selected via ?pool=red_shelf)
	protected.Get("/items", invHandler.GetItems)
	protected.Get("/items/:id", invHandler.GetItem)
	protected.Get("/items/:id/history", ledgerHandler.GetItemHistory)
	protected.Get("/items/:id/availability", resHandler.GetItemAvailability)
	protected.Post("/items", write, invHandler.CreateItem)
	protected.Post("/items/batch", write, invHandler.CreateItems)
	protected.Put("/items/:id", write, invHandler.UpdateItem)
	protected.Put("/items/:id/quantity", write, ledgerHandler.AdjustQuantity)
	protected.Delete("/items/:id", write, invHandler.DeleteItem)

	// Categories
	protected.Get("/categories", invHandler.GetCategories)
	protected.Post("/categories", write, invHandler.CreateCategory)
	protected.Delete("/categories/:name", write, invHandler.DeleteCategory)

	// Movements
	protected.Get("/movements", ledgerHandler.GetMovements)
	protected.Post("/movements", write, ledgerHandler.RecordMovement)

	// Reservations
	protected.Get("/reservations", resHandler.GetReservations)
	protected.Post("/reservations", write, resHandler.ReserveItem)
	protected.Post("/reservations/kit", write, resHandler.ReserveKit)
	protected.Post("/reservations/:id/release", write, resHandler.Release)
	protected.Post("/reservations/:id/fulfill", write, resHandler.Fulfill)

	// Kits
	protected.Get("/kits", resHandler.GetKits)
	protected.Get("/kits/:id", resHandler.GetKit)
	protected.Get("/kits/:id/availability", resHandler.GetKitAvailability)
	protected.Post("/kits", write, resHandler.CreateKit)
	protected.Put("/kits/:id", write, resHandler.UpdateKit)
	protected.Delete("/kits/:id", write, resHandler.DeleteKit)

	// Cycle counts
	protected.Get("/cycle-counts", countHandler.GetSessions)
	protected.Get("/cycle-counts/:id", countHandler.GetSession)
	protected.Post("/cycle-counts", write, countHandler.Start)
	protected.Post("/cycle-counts/:id/counts", write, countHandler.SubmitCounts)
	protected.Post("/cycle-counts/:id/lines/:lineId/recount", write, countHandler.Recount)
	protected.Post("/cycle-counts/:id/commit", write, countHandler.Commit)
	protected.Post("/cycle-counts/:id/cancel", write, countHandler.Cancel)

	// Purchase orders
	protected.Get("/purchase-orders", workflowHandler.GetPurchaseOrders)
	protected.Get("/purchase-orders/:id", workflowHandler.GetPurchaseOrder)
	protected.Post("/purchase-orders", write, workflowHandler.CreatePurchaseOrder)
	protected.Post("/purchase-orders/:id/submit", write, workflowHandler.SubmitPurchaseOrder)
	protected.Post("/purchase-orders/:id/receive", write, workflowHandler.ReceivePurchaseOrder)
	protected.Post("/purchase-orders/:id/cancel", write, workflowHandler.CancelPurchaseOrder)

	// Picking lists
	protected.Get("/picking-lists", workflowHandler.GetPickingLists)
	protected.Get("/picking-lists/:id", workflowHandler.GetPickingList)
	protected.Post("/picking-lists", write, workflowHandler.CreatePickingList)
	protected.Post("/picking-lists/:id/start", write, workflowHandler.StartPickingList)
	protected.Post("/picking-lists/:id/complete", write, workflowHandler.CompletePickingList)

	// Registries
	protected.Get("/suppliers", registryHandler.GetSuppliers)
	protected.Post("/suppliers", write, registryHandler.CreateSupplier)
	protected.Put("/suppliers/:id", write, registryHandler.UpdateSupplier)
	protected.Delete("/suppliers/:id", write, registryHandler.DeleteSupplier)
	protected.Get("/technicians", registryHandler.GetTechnicians)
	protected.Post("/technicians", write, registryHandler.CreateTechnician)
	protected.Put("/technicians/:id", write, registryHandler.UpdateTechnician)
	protected.Delete("/technicians/:id", write, registryHandler.DeleteTechnician)

	// Audit trail (read only)
	protected.Get("/audit-logs", registryHandler.GetAuditLogs)

	// Snapshots (destructive import is admin only)
	protected.Get("/snapshot/export", admin, snapHandler.Export)
	protected.Post("/snapshot/import", admin, snapHandler.Import)

	// User management
	protected.Get("/users", userHandler.GetUsers)
	protected.Get("/users/:id", userHandler.GetUser)
	protected.Post("/users", admin, userHandler.CreateUser)
	protected.Put("/users/:id", admin, userHandler.UpdateUser)
	protected.Delete("/users/:id", admin, userHandler.DeleteUser)
	protected.Post("/users/:id/reset-password", admin, authHandler.ResetPassword)

	// WebSocket Route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		wsHub.Register <- c
		defer func() { wsHub.Unregister <- c }()

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 8. Graceful Shutdown
	go func() {
		port := os.Getenv("PORT")
		if port == "" {
			port = "3000"
		}
		if err := app.Listen(":" + port); err != nil {
			log.Panic(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}

// seedDefaults creates the catch-all category and an initial admin user if
// they don't exist yet.
func seedDefaults(db *gorm.DB) {
	categoryRepo := repository.NewCategoryRepo(db)
	if err := categoryRepo.AddMany([]string{model.DefaultCategory}); err != nil {
		log.Printf("Warning: Failed to seed default category: %v", err)
	}

	userRepo := repository.NewUserRepo(db)
	email := os.Getenv("ADMIN_EMAIL")
	if email == "" {
		email = "admin@almoxarifado.local"
	}
	if _, err := userRepo.FindByEmail(email); err == nil {
		return
	}

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "admin12345"
		log.Println("Warning: ADMIN_PASSWORD not set, using default credentials")
	}

	admin := &model.User{
		Email:    email,
		FullName: "Administrator",
		Role:     model.RoleAdmin,
		IsActive: true,
	}
	admin.EnsureBase()
	if err := admin.SetPassword(password); err != nil {
		log.Printf("Warning: Failed to hash admin password: %v", err)
		return
	}
	if err := userRepo.Create(admin); err != nil {
		log.Printf("Warning: Failed to seed admin user: %v", err)
		return
	}
	log.Println("Seeded admin user:", email)
}
