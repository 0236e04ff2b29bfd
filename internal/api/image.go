package api

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/mealplanner/backend/internal/middleware"
	"github.com/pageza/mealplanner/backend/internal/service"
)

type ImageHandler struct {
	images  *service.ImageService
	cache   *middleware.ResponseCache
	aiLimit gin.HandlerFunc
	logger  *zap.Logger
}

func NewImageHandler(images *service.ImageService, cache *middleware.ResponseCache, aiLimit gin.HandlerFunc, logger *zap.Logger) *ImageHandler {
	return &ImageHandler{images: images, cache: cache, aiLimit: aiLimit, logger: logger}
}

func (h *ImageHandler) RegisterRoutes(router *gin.RouterGroup) {
	images := router.Group("/images")
	{
		images.POST("/analyze", h.aiLimit, h.cache.Invalidate(scopeInventory), h.Analyze)
	}
}

// Analyze accepts a multipart "image" file and reports the food it shows.
// add_to_inventory=true stores the detected items.
func (h *ImageHandler) Analyze(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, service.MaxImageSize+1<<20)

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		badRequest(c, "image file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, service.MaxImageSize+1))
	if err != nil {
		badRequest(c, "failed to read image")
		return
	}
	addToInventory, _ := strconv.ParseBool(c.PostForm("add_to_inventory"))

	result, err := h.images.Analyze(c.Request.Context(), userID, data, header.Header.Get("Content-Type"), addToInventory)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
