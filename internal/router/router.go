package router

import (
	"time"

	"packhouse/internal/config"
	"packhouse/internal/handler"
	"packhouse/internal/infra"
	"packhouse/internal/middleware"
	"packhouse/internal/repository"
	"packhouse/internal/service"
	"packhouse/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, catalog *infra.CatalogClient, orders *infra.OrderServiceClient) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	txManager := repository.NewTxManager(db)
	warehouseRepo := repository.NewWarehouseRepository(db)
	inventoryRepo := repository.NewInventoryRepository(db)
	movementRepo := repository.NewMovementRepository(db)
	pickPackRepo := repository.NewPickPackRepository(db)

	// Worker dispatcher — injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	// ── Services ─────────────────────────────────────────────────────────────
	warehouseSvc := service.NewWarehouseService(warehouseRepo, inventoryRepo)
	inventorySvc := service.NewInventoryService(txManager, inventoryRepo, movementRepo, warehouseRepo, dispatcher)
	transferSvc := service.NewTransferService(txManager, inventoryRepo, movementRepo, warehouseRepo, catalog)
	movementSvc := service.NewMovementService(movementRepo)
	pickPackSvc := service.NewPickPackService(txManager, pickPackRepo, warehouseRepo, orders, dispatcher,
		infra.GeneratePackingSlip, cfg.SlipStoragePath)

	// ── Handlers ─────────────────────────────────────────────────────────────
	warehouseH := handler.NewWarehouseHandler(warehouseSvc)
	inventoryH := handler.NewInventoryHandler(inventorySvc, transferSvc, movementSvc)
	pickPackH := handler.NewPickPackHandler(pickPackSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	r.GET("/health", handler.Health(db, rdb))

	v1 := r.Group("/v1")
	{
		wh := v1.Group("/warehouses")
		{
			wh.POST("", warehouseH.Create)
			wh.GET("", warehouseH.List)
			wh.GET("/:id", warehouseH.GetByID)
			wh.GET("/code/:code", warehouseH.GetByCode)
			wh.PUT("/:id", warehouseH.Update)
			wh.DELETE("/:id", warehouseH.Delete)
			wh.PATCH("/:id/activate", warehouseH.Activate)
			wh.PATCH("/:id/deactivate", warehouseH.Deactivate)
		}

		inv := v1.Group("/inventory")
		{
			inv.GET("/:product_id/:warehouse_id", inventoryH.Get)
			inv.POST("/adjust", inventoryH.Adjust)
			inv.POST("/reserve", inventoryH.Reserve)
			inv.POST("/release", inventoryH.Release)
			inv.POST("/count", inventoryH.RecordCount)
			inv.POST("/transfer", inventoryH.Transfer)
			inv.GET("/low-stock", inventoryH.LowStock)
		}

		// Read-only stock movement ledger
		mv := v1.Group("/movements")
		{
			mv.GET("", inventoryH.Movements)
			mv.GET("/inventory/:id", inventoryH.MovementsByInventory)
		}

		pp := v1.Group("/pickpacks")
		{
			pp.POST("", pickPackH.Create)
			pp.GET("", pickPackH.List)
			pp.GET("/stats", pickPackH.Stats)
			pp.GET("/number/:pack_number", pickPackH.GetByPackNumber)
			pp.GET("/order/:order_id", pickPackH.GetByOrder)
			pp.GET("/:id", pickPackH.GetByID)
			pp.POST("/:id/start-picking", pickPackH.StartPicking)
			pp.POST("/:id/complete-picking", pickPackH.CompletePicking)
			pp.POST("/:id/start-packing", pickPackH.StartPacking)
			pp.POST("/:id/complete-packing", pickPackH.CompletePacking)
			pp.POST("/:id/ship", pickPackH.Ship)
			pp.POST("/:id/cancel", pickPackH.Cancel)
			pp.PATCH("/:id/items/:item_id", pickPackH.UpdateItem)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
