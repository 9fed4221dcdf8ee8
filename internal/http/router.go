package http

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/roadsafe/billing-service/internal/model"
	"github.com/roadsafe/billing-service/internal/repository"
)

type Stores struct {
	Clients  *repository.Store[model.Client]
	Workers  *repository.Store[model.Worker]
	Vehicles *repository.Store[model.Vehicle]
	Carts    *repository.Store[model.Cart]
}

func NewRouter(handler *Handler, stores Stores, authMiddleware gin.HandlerFunc, environment string, log zerolog.Logger) *gin.Engine {
	if environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	protected := router.Group("/")
	protected.Use(authMiddleware)
	handler.Register(protected)

	RegisterCRUD(protected, "/clients", "clients", stores.Clients, log)
	RegisterCRUD(protected, "/workers", "workers", stores.Workers, log)
	RegisterCRUD(protected, "/vehicles", "vehicles", stores.Vehicles, log)
	RegisterCRUD(protected, "/carts", "carts", stores.Carts, log)

	return router
}
