package tasks

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"cloudsweep/internal/logging"
)

// NewRouter builds the API engine. An origin of "*" allows any origin.
func NewRouter(store Store, corsOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), cors.New(corsConfig(corsOrigins)))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	Register(r.Group("/todos"), store)
	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", RequestIDHeader},
		ExposeHeaders: []string{RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}

// Handler serves the /todos routes
type Handler struct {
	store Store
}

// Register mounts the task routes on rg
func Register(rg *gin.RouterGroup, store Store) {
	h := &Handler{store: store}

	rg.GET("", h.list)
	rg.POST("", h.create)
	rg.GET("/:id", h.get)
	rg.PUT("/:id", h.update)
	rg.DELETE("/:id", h.delete)
}

type createReq struct {
	Content string  `json:"content"`
	Notes   *string `json:"notes"`
	DueDate *string `json:"due_date"`
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.store.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	t, err := h.store.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *Handler) create(c *gin.Context) {
	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	var due *time.Time
	if req.DueDate != nil {
		var err error
		if due, err = ParseDueDate(*req.DueDate); err != nil {
			h.fail(c, err)
			return
		}
	}

	t, err := h.store.Create(c.Request.Context(), NewTask{Content: req.Content, Notes: req.Notes, DueDate: due})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (h *Handler) update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	patch, err := decodePatch(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	t, err := h.store.Update(c.Request.Context(), id, patch)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *Handler) delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.store.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Deleted"})
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

// decodePatch reads a partial update, keeping track of which keys were sent
// so that "notes": null clears the notes.
func decodePatch(c *gin.Context) (Patch, error) {
	var fields map[string]json.RawMessage
	if err := c.ShouldBindJSON(&fields); err != nil {
		return Patch{}, errors.New("invalid body")
	}

	var patch Patch
	if raw, ok := fields["content"]; ok {
		var content string
		if err := json.Unmarshal(raw, &content); err != nil {
			return Patch{}, errors.New("content must be a string")
		}
		patch.Content = &content
	}
	if raw, ok := fields["completed"]; ok {
		var completed bool
		if err := json.Unmarshal(raw, &completed); err != nil {
			return Patch{}, errors.New("completed must be a boolean")
		}
		patch.Completed = &completed
	}
	if raw, ok := fields["notes"]; ok {
		var notes *string
		if err := json.Unmarshal(raw, &notes); err != nil {
			return Patch{}, errors.New("notes must be a string or null")
		}
		patch.Notes = notes
		patch.NotesSet = true
	}
	return patch, nil
}

func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logging.Error("Task request failed", err, map[string]interface{}{
			"request_id": c.GetString("request_id"),
			"path":       c.FullPath(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
