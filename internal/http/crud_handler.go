package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/roadsafe/billing-service/internal/http/middleware"
	"github.com/roadsafe/billing-service/internal/repository"
)

// crudHandler exposes a Store[T] over the standard five routes. The entity
// schema is the model struct itself; gin's JSON binding replaces the old
// per-screen field descriptor lists.
type crudHandler[T any] struct {
	store *repository.Store[T]
	name  string
	log   zerolog.Logger
}

// RegisterCRUD mounts list/get/create/update/delete for one entity type.
func RegisterCRUD[T any](rg *gin.RouterGroup, path, name string, store *repository.Store[T], log zerolog.Logger) {
	h := &crudHandler[T]{store: store, name: name, log: log}
	rg.GET(path, h.list)
	rg.GET(path+"/:id", h.get)
	rg.POST(path, h.create)
	rg.PUT(path+"/:id", h.update)
	rg.DELETE(path+"/:id", h.delete)
}

func (h *crudHandler[T]) list(c *gin.Context) {
	entities, err := h.store.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{h.name: entities})
}

func (h *crudHandler[T]) get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	entity, err := h.store.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, entity)
}

func (h *crudHandler[T]) create(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	if principal.IsViewer() {
		c.JSON(http.StatusForbidden, gin.H{"error": "permission denied"})
		return
	}

	var entity T
	if err := c.ShouldBindJSON(&entity); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.store.Create(c.Request.Context(), &entity); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, entity)
}

func (h *crudHandler[T]) update(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	if principal.IsViewer() {
		c.JSON(http.StatusForbidden, gin.H{"error": "permission denied"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var entity T
	if err := c.ShouldBindJSON(&entity); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.store.Update(c.Request.Context(), id, &entity); err != nil {
		h.fail(c, err)
		return
	}
	updated, err := h.store.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *crudHandler[T]) delete(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	if principal.IsViewer() {
		c.JSON(http.StatusForbidden, gin.H{"error": "permission denied"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := h.store.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *crudHandler[T]) fail(c *gin.Context, err error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	h.log.Error().Err(err).Str("entity", h.name).Msg("crud request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
