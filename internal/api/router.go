package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"swappy/backend/internal/api/handlers"
	"swappy/backend/internal/api/middleware"
	"swappy/backend/internal/cache"
	"swappy/backend/internal/config"
	"swappy/backend/internal/events"
)

// SetupRouter configures and returns the main Gin engine. Closing stop ends
// the rate limiter's cleanup loop.
func SetupRouter(cfg *config.Config, deps *Dependencies, stop <-chan struct{}) *gin.Engine {
	r := gin.Default()

	rateLimiter := middleware.NewRateLimiterMiddleware(cfg, deps.Resolver)
	go rateLimiter.RunCleanup(10*time.Minute, stop)

	// Apply global middleware first (order matters)
	r.Use(middleware.CORSMiddleware())
	r.Use(rateLimiter.Limit())

	authHandler := handlers.NewAuthHandler(deps.Users, deps.Resolver)
	userHandler := handlers.NewUserHandler(deps.Users)
	productHandler := handlers.NewProductHandler(deps.Products)
	swapHandler := handlers.NewSwapHandler(deps.Swaps)
	imageHandler := handlers.NewImageHandler(deps.Storage, deps.Images, cfg.UploadMaxSizeMB)

	authRequired := middleware.AuthMiddleware(deps.Resolver)

	r.GET("/v1/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	apiGroup := r.Group("/api")
	{
		apiGroup.POST("/auth", authHandler.Login)
		apiGroup.POST("/auth/validate", authHandler.Validate)

		users := apiGroup.Group("/users")
		{
			users.POST("", userHandler.Register)
			users.GET("/me", authRequired, userHandler.GetMe)
			users.PATCH("/me", authRequired, userHandler.UpdateMe)
			users.DELETE("/me", authRequired, userHandler.DeleteMe)
			users.GET("/:id", userHandler.GetUserByID)
		}

		products := apiGroup.Group("/products")
		{
			products.GET("", productHandler.ListAll)
			products.GET("/own", authRequired, productHandler.ListOwn)
			products.GET("/search", productHandler.Search)
			products.GET("/:id", productHandler.GetByID)
			products.POST("", authRequired, productHandler.Create)
			products.PATCH("/:id", authRequired, productHandler.Edit)
			products.DELETE("/:id", authRequired, productHandler.Delete)
		}

		swaps := apiGroup.Group("/swaps", authRequired)
		{
			swaps.POST("", swapHandler.Propose)
			swaps.GET("/seller", swapHandler.ListAsSeller)
			swaps.GET("/buyer", swapHandler.ListAsBuyer)
			swaps.GET("/product/:id", swapHandler.ListByProduct)
			swaps.GET("/:id", swapHandler.GetByID)
			swaps.PATCH("/:id", swapHandler.UpdateStatus)
		}

		apiGroup.POST("/images/upload", authRequired, imageHandler.Upload)
	}

	return r
}

// SetupServiceRouter configures the internal service Gin engine. It is bound
// to a separate port and is not exposed publicly.
func SetupServiceRouter(cfg *config.Config, deps *Dependencies, redisPinger cache.Pinger, shutdownChan chan<- struct{}) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if redisPinger != nil {
			if err := cache.Ping(ctx, redisPinger); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "result": cfg.AppName})
	})

	r.POST("/api", func(c *gin.Context) {
		var req struct {
			Method    string          `json:"method"`
			Arguments json.RawMessage `json:"arguments"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request format"})
			return
		}

		switch req.Method {
		case "shutdown":
			fmt.Println("Received shutdown command via Service API")
			c.JSON(http.StatusOK, gin.H{"success": true, "result": "Shutdown initiated"})
			select {
			case shutdownChan <- struct{}{}:
				fmt.Println("Shutdown signal sent successfully.")
			default:
				fmt.Println("Shutdown channel already signaled or blocked.")
			}

		case "reindexProducts":
			products, err := deps.ProductStore.ListAll(c.Request.Context())
			if err != nil {
				log.Printf("Service API: failed to list products for reindex: %v", err)
				c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to list products"})
				return
			}
			queued := 0
			for _, p := range products {
				if err := deps.Syncer.ProductUpserted(c.Request.Context(), p.ID); err != nil {
					log.Printf("Service API: failed to enqueue reindex of product %s: %v", p.ID.Hex(), err)
					continue
				}
				queued++
			}
			c.JSON(http.StatusOK, gin.H{"success": true, "result": gin.H{"queued": queued, "total": len(products)}})

		case "recentSwapEvents":
			count := int64(20)
			if len(req.Arguments) > 0 {
				var args []int64 // Expect [count]
				if err := json.Unmarshal(req.Arguments, &args); err != nil || len(args) != 1 || args[0] <= 0 {
					c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid arguments: expected JSON array [count]"})
					return
				}
				count = args[0]
			}
			recent, err := events.Recent(c.Request.Context(), deps.Events, events.SwapEventsStream, count)
			if err != nil {
				log.Printf("Service API: %v", err)
				c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Redis error"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"success": true, "data": recent})

		default:
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": fmt.Sprintf("Unknown service method: %s", req.Method)})
		}
	})
	return r
}
