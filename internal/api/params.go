package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/mealplanner/backend/internal/middleware"
)

// currentUser returns the authenticated user id or writes a 401.
func currentUser(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	}
	return id, ok
}

// pathID parses the :id parameter or writes a 400.
func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

// queryInt reads an integer query parameter. Missing or malformed values
// yield zero so the services apply their defaults.
func queryInt(c *gin.Context, key string) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0
	}
	return n
}

func queryIntPtr(c *gin.Context, key string) (*int, bool) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return nil, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		badRequest(c, key+" must be an integer")
		return nil, false
	}
	return &n, true
}
