package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pageza/mealplanner/backend/internal/middleware"
	"github.com/pageza/mealplanner/backend/internal/models"
	"github.com/pageza/mealplanner/backend/internal/service"
	"github.com/pageza/mealplanner/backend/internal/types"
)

type MealPlanHandler struct {
	mealPlans *service.MealPlanService
	cache     *middleware.ResponseCache
	aiLimit   gin.HandlerFunc
	logger    *zap.Logger
}

func NewMealPlanHandler(mealPlans *service.MealPlanService, cache *middleware.ResponseCache, aiLimit gin.HandlerFunc, logger *zap.Logger) *MealPlanHandler {
	return &MealPlanHandler{mealPlans: mealPlans, cache: cache, aiLimit: aiLimit, logger: logger}
}

func (h *MealPlanHandler) RegisterRoutes(router *gin.RouterGroup) {
	plans := router.Group("/mealplans")
	read := h.cache.Cache(scopeMealPlans)
	write := h.cache.Invalidate(scopeMealPlans)
	{
		plans.GET("", read, h.List)
		plans.POST("", write, h.Create)
		plans.POST("/autogenerate", h.aiLimit, write, h.AutoGenerate)
		plans.GET("/:id", read, h.Get)
		plans.PUT("/:id", write, h.Update)
		plans.DELETE("/:id", write, h.Delete)
	}
}

func mealPlanFromRequest(req *types.MealPlanRequest) (*models.MealPlan, error) {
	start, err := service.ParseDate(req.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := service.ParseDate(req.EndDate)
	if err != nil {
		return nil, err
	}
	plan := &models.MealPlan{Name: req.Name, StartDate: start, EndDate: end, Meals: models.PlannedMealList{}}
	for _, m := range req.Meals {
		meal := models.PlannedMeal{Name: m.Name, Date: m.Date, Meal: m.Meal}
		if m.RecipeID != "" {
			id, err := uuid.Parse(m.RecipeID)
			if err != nil {
				return nil, &service.ValidationError{Field: "meals", Message: "recipe_id must be a valid id"}
			}
			meal.RecipeID = &id
		}
		plan.Meals = append(plan.Meals, meal)
	}
	return plan, nil
}

func (h *MealPlanHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	filter := service.MealPlanFilter{
		NameContains: c.Query("name"),
		SortBy:       c.Query("sortBy"),
		SortOrder:    c.Query("sortOrder"),
		Page:         queryInt(c, "page"),
		Limit:        queryInt(c, "limit"),
	}
	if raw := c.Query("startDate"); raw != "" {
		start, err := service.ParseDate(raw)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		filter.StartDate = &start
	}

	page, err := h.mealPlans.List(c.Request.Context(), userID, filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *MealPlanHandler) Get(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	plan, err := h.mealPlans.Get(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

func (h *MealPlanHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req types.MealPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "name, start_date and end_date are required")
		return
	}
	plan, err := mealPlanFromRequest(&req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	plan, err = h.mealPlans.Create(c.Request.Context(), userID, plan)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, plan)
}

func (h *MealPlanHandler) Update(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req types.MealPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "name, start_date and end_date are required")
		return
	}
	plan, err := mealPlanFromRequest(&req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	plan, err = h.mealPlans.Update(c.Request.Context(), userID, id, plan)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

func (h *MealPlanHandler) Delete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.mealPlans.Delete(c.Request.Context(), userID, id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Meal plan deleted successfully"})
}

// AutoGenerate builds a plan from the user's inventory. An empty body
// generates a week starting today.
func (h *MealPlanHandler) AutoGenerate(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req types.AutoGenerateRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request body")
			return
		}
	}

	opts := service.AutoGenerateOptions{Name: req.Name}
	if req.StartDate != "" {
		start, err := service.ParseDate(req.StartDate)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		opts.Start = start
	}
	if req.EndDate != "" {
		end, err := service.ParseDate(req.EndDate)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		opts.End = end
	}

	plan, err := h.mealPlans.AutoGenerate(c.Request.Context(), userID, opts)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, plan)
}
