// Package handlers implements the REST endpoints: recipe ingestion,
// conversational queries, and direct nutrition lookups.
package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mirepoix/v1/internal/ports/inbound"
	"github.com/mirepoix/v1/pkg/errors"
)

// Handlers bundles the API endpoints over the two application services.
type Handlers struct {
	ingestion inbound.IngestionService
	chat      inbound.ChatService
	uploadDir string
	logger    *zap.Logger
}

// NewHandlers creates the API handlers. uploadDir receives per-request
// chat images; the chat service deletes them after the reply.
func NewHandlers(
	ingestion inbound.IngestionService,
	chat inbound.ChatService,
	uploadDir string,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		ingestion: ingestion,
		chat:      chat,
		uploadDir: uploadDir,
		logger:    logger.Named("http"),
	}
}

// CreateRecipe handles POST /api/v1/recipes.
func (h *Handlers) CreateRecipe(c *gin.Context) {
	var sub inbound.RecipeSubmission
	if err := c.ShouldBindJSON(&sub); err != nil {
		h.respondError(c, errors.NewBadRequestError("invalid request body").WithCause(err))
		return
	}
	if sub.AuthorID == uuid.Nil {
		sub.AuthorID = uuid.New()
	}

	dto, err := h.ingestion.IngestRecipe(c.Request.Context(), sub)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto)
}

// GetRecipe handles GET /api/v1/recipes/:id.
func (h *Handlers) GetRecipe(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.respondError(c, errors.NewBadRequestError("invalid recipe id"))
		return
	}

	dto, err := h.ingestion.GetRecipe(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto)
}

// Chat handles POST /api/v1/chat. The endpoint accepts either a JSON
// body with a text field or a multipart form carrying text plus an
// optional image for classification.
func (h *Handlers) Chat(c *gin.Context) {
	query, err := h.bindChatQuery(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	reply, err := h.chat.Respond(c.Request.Context(), query)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reply)
}

// Nutrition handles GET /api/v1/nutrition/:name.
func (h *Handlers) Nutrition(c *gin.Context) {
	reply, err := h.chat.NutritionFor(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reply)
}

// Health handles GET /health.
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handlers) bindChatQuery(c *gin.Context) (inbound.ChatQuery, error) {
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		var query inbound.ChatQuery
		if err := c.ShouldBindJSON(&query); err != nil {
			return inbound.ChatQuery{}, errors.NewBadRequestError("invalid request body").WithCause(err)
		}
		return query, nil
	}

	query := inbound.ChatQuery{Text: c.PostForm("text")}
	file, err := c.FormFile("image")
	if err != nil {
		// no image attached is fine for a multipart text query
		return query, nil
	}

	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		return inbound.ChatQuery{}, errors.NewInternalError("failed to prepare upload directory").WithCause(err)
	}
	path := filepath.Join(h.uploadDir, uuid.New().String()+filepath.Ext(file.Filename))
	if err := c.SaveUploadedFile(file, path); err != nil {
		return inbound.ChatQuery{}, errors.NewInternalError("failed to store uploaded image").WithCause(err)
	}

	query.ImagePath = path
	return query, nil
}

func (h *Handlers) respondError(c *gin.Context, err error) {
	appErr := errors.Wrap(err, "request failed")

	if appErr.StatusCode() >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("path", c.Request.URL.Path),
			zap.Error(appErr))
	}
	c.JSON(appErr.StatusCode(), gin.H{
		"error": appErr.Message,
		"code":  appErr.Code,
	})
}
