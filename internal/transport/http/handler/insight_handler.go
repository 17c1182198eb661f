package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"heartbeat-insights/internal/domain"
	"heartbeat-insights/internal/service"
	httpez "heartbeat-insights/internal/transport/http/ez"
	mdw "heartbeat-insights/internal/transport/http/middleware"
)

type InsightHandler struct {
	insights *service.InsightService
}

func NewInsightHandler(insights *service.InsightService) *InsightHandler {
	return &InsightHandler{insights: insights}
}

type createInsightIn struct {
	Title       string              `json:"title" binding:"required,max=200"`
	Content     string              `json:"content" binding:"required"`
	Type        domain.InsightType  `json:"type" binding:"omitempty,oneof=action warning info success prevention medical"`
	Priority    domain.Priority     `json:"priority" binding:"omitempty,oneof=low medium high urgent critical"`
	MedicalData *domain.MedicalData `json:"medicalData"`
	ActionItems []domain.ActionItem `json:"actionItems"`
	DashboardID string              `json:"dashboardId"`
}

type updateInsightIn struct {
	Title       *string              `json:"title" binding:"omitempty,min=1,max=200"`
	Content     *string              `json:"content" binding:"omitempty,min=1"`
	Type        *domain.InsightType  `json:"type" binding:"omitempty,oneof=action warning info success prevention medical"`
	Priority    *domain.Priority     `json:"priority" binding:"omitempty,oneof=low medium high urgent critical"`
	MedicalData *domain.MedicalData  `json:"medicalData"`
	ActionItems *[]domain.ActionItem `json:"actionItems"`
	DashboardID *string              `json:"dashboardId"`
	IsActive    *bool                `json:"isActive"`
}

const insightNotFound = "insight not found"

func (h *InsightHandler) Mount(e httpez.EZ) {
	httpez.RegisterAction(e, httpez.Action[createInsightIn, gin.H]{
		Method: http.MethodPost,
		Path:   "/insights",
		Binder: httpez.BindJSON,
		Roles:  adminOnly,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, in *createInsightIn) (gin.H, error) {
			v, err := h.insights.Create(c.Request.Context(), mdw.CurrentUser(c), service.InsightInput{
				Title:       in.Title,
				Content:     in.Content,
				Type:        in.Type,
				Priority:    in.Priority,
				MedicalData: in.MedicalData,
				ActionItems: in.ActionItems,
				DashboardID: in.DashboardID,
			})
			if err != nil {
				return nil, err
			}
			return gin.H{"message": "insight created", "insight": v}, nil
		},
	})

	httpez.RegisterAction(e, httpez.Action[struct{}, gin.H]{
		Method: http.MethodGet,
		Path:   "/insights",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			list, err := h.insights.List(c.Request.Context())
			if err != nil {
				return nil, err
			}
			return gin.H{"message": "insights loaded", "count": len(list), "insights": list}, nil
		},
	})

	httpez.RegisterAction(e, httpez.Action[struct{}, *service.InsightView]{
		Method:   http.MethodGet,
		Path:     "/insights/:id",
		Binder:   httpez.BindNone,
		Auth:     true,
		NotFound: insightNotFound,
		Handler: func(c *gin.Context, _ *struct{}) (*service.InsightView, error) {
			return h.insights.Get(c.Request.Context(), c.Param("id"))
		},
	})

	httpez.RegisterAction(e, httpez.Action[updateInsightIn, gin.H]{
		Method:   http.MethodPut,
		Path:     "/insights/:id",
		Binder:   httpez.BindJSON,
		Roles:    adminOnly,
		NotFound: insightNotFound,
		Handler: func(c *gin.Context, in *updateInsightIn) (gin.H, error) {
			v, err := h.insights.Update(c.Request.Context(), c.Param("id"), service.InsightPatch{
				Title:       in.Title,
				Content:     in.Content,
				Type:        in.Type,
				Priority:    in.Priority,
				MedicalData: in.MedicalData,
				ActionItems: in.ActionItems,
				DashboardID: in.DashboardID,
				IsActive:    in.IsActive,
			})
			if err != nil {
				return nil, err
			}
			return gin.H{"message": "insight updated", "insight": v}, nil
		},
	})

	httpez.RegisterAction(e, httpez.Action[struct{}, gin.H]{
		Method:   http.MethodDelete,
		Path:     "/insights/:id",
		Binder:   httpez.BindNone,
		Roles:    adminOnly,
		NotFound: insightNotFound,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			if err := h.insights.Delete(c.Request.Context(), c.Param("id")); err != nil {
				return nil, err
			}
			return gin.H{"message": "insight removed"}, nil
		},
	})
}
