package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/mealplanner/backend/internal/command"
	"github.com/pageza/mealplanner/backend/internal/middleware"
	"github.com/pageza/mealplanner/backend/internal/service"
	"github.com/pageza/mealplanner/backend/internal/types"
)

// CommandHandler runs natural-language commands.
type CommandHandler struct {
	commands *service.CommandService
	cache    *middleware.ResponseCache
	logger   *zap.Logger
}

func NewCommandHandler(commands *service.CommandService, cache *middleware.ResponseCache, logger *zap.Logger) *CommandHandler {
	return &CommandHandler{commands: commands, cache: cache, logger: logger}
}

func (h *CommandHandler) RegisterRoutes(router *gin.RouterGroup) {
	write := h.cache.Invalidate(scopeInventory, scopeRecipes, scopeMealPlans)
	router.POST("/commands", write, h.Run)
	router.POST("/commands/interpret", h.Interpret)
	router.POST("/inventory/command", write, h.Run)
	router.POST("/recipes/command", write, h.Run)
}

func (h *CommandHandler) bind(c *gin.Context) (string, bool) {
	var req types.CommandRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Command) == "" {
		badRequest(c, "command is required")
		return "", false
	}
	return req.Command, true
}

func notRecognized(c *gin.Context, text string) {
	c.JSON(http.StatusBadRequest, types.CommandErrorResponse{
		Error:       "Command not recognized",
		Suggestions: command.Suggestions(text),
	})
}

// Run interprets and executes a command, answering {action, params, result}.
func (h *CommandHandler) Run(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	text, ok := h.bind(c)
	if !ok {
		return
	}

	resp, err := h.commands.Run(c.Request.Context(), userID, text)
	if err != nil {
		if service.IsNotRecognized(err) {
			notRecognized(c, text)
			return
		}
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Interpret reports how a command would be understood without running it.
func (h *CommandHandler) Interpret(c *gin.Context) {
	text, ok := h.bind(c)
	if !ok {
		return
	}
	intent, err := h.commands.Interpret(text)
	if err != nil {
		notRecognized(c, text)
		return
	}
	c.JSON(http.StatusOK, command.Wrap(intent))
}
