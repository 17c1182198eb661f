package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"heartbeat-insights/internal/domain"
	"heartbeat-insights/internal/service"
	httpez "heartbeat-insights/internal/transport/http/ez"
	mdw "heartbeat-insights/internal/transport/http/middleware"
)

type DashboardHandler struct {
	dashboards *service.DashboardService
}

func NewDashboardHandler(dashboards *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboards: dashboards}
}

type createDashboardIn struct {
	Title              string                     `json:"title" binding:"required,max=200"`
	Description        string                     `json:"description" binding:"max=2000"`
	Data               json.RawMessage            `json:"data"`
	CardiovascularData *domain.CardiovascularData `json:"cardiovascularData"`
}

type updateDashboardIn struct {
	Title              *string                    `json:"title" binding:"omitempty,min=1,max=200"`
	Description        *string                    `json:"description" binding:"omitempty,max=2000"`
	Data               json.RawMessage            `json:"data"`
	CardiovascularData *domain.CardiovascularData `json:"cardiovascularData"`
	IsActive           *bool                      `json:"isActive"`
}

const dashboardNotFound = "dashboard not found"

func (h *DashboardHandler) Mount(e httpez.EZ) {
	httpez.RegisterAction(e, httpez.Action[createDashboardIn, gin.H]{
		Method: http.MethodPost,
		Path:   "/dashboard",
		Binder: httpez.BindJSON,
		Roles:  adminOnly,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, in *createDashboardIn) (gin.H, error) {
			d, err := h.dashboards.Create(c.Request.Context(), mdw.CurrentUser(c), service.DashboardInput{
				Title:              in.Title,
				Description:        in.Description,
				Data:               in.Data,
				CardiovascularData: in.CardiovascularData,
			})
			if err != nil {
				return nil, err
			}
			return gin.H{"message": "dashboard created", "dashboard": d}, nil
		},
	})

	httpez.RegisterAction(e, httpez.Action[struct{}, gin.H]{
		Method: http.MethodGet,
		Path:   "/dashboard",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			ds, err := h.dashboards.List(c.Request.Context())
			if err != nil {
				return nil, err
			}
			return gin.H{"message": "dashboards loaded", "count": len(ds), "dashboards": ds}, nil
		},
	})

	httpez.RegisterAction(e, httpez.Action[struct{}, *service.DashboardView]{
		Method:   http.MethodGet,
		Path:     "/dashboard/:id",
		Binder:   httpez.BindNone,
		Auth:     true,
		NotFound: dashboardNotFound,
		Handler: func(c *gin.Context, _ *struct{}) (*service.DashboardView, error) {
			return h.dashboards.Get(c.Request.Context(), c.Param("id"))
		},
	})

	httpez.RegisterAction(e, httpez.Action[struct{}, *service.DashboardCharts]{
		Method:   http.MethodGet,
		Path:     "/dashboard/:id/chart",
		Binder:   httpez.BindNone,
		Auth:     true,
		NotFound: dashboardNotFound,
		Handler: func(c *gin.Context, _ *struct{}) (*service.DashboardCharts, error) {
			return h.dashboards.Charts(c.Request.Context(), c.Param("id"))
		},
	})

	httpez.RegisterAction(e, httpez.Action[updateDashboardIn, gin.H]{
		Method:   http.MethodPut,
		Path:     "/dashboard/:id",
		Binder:   httpez.BindJSON,
		Roles:    adminOnly,
		NotFound: dashboardNotFound,
		Handler: func(c *gin.Context, in *updateDashboardIn) (gin.H, error) {
			d, err := h.dashboards.Update(c.Request.Context(), c.Param("id"), service.DashboardPatch{
				Title:              in.Title,
				Description:        in.Description,
				Data:               in.Data,
				CardiovascularData: in.CardiovascularData,
				IsActive:           in.IsActive,
			})
			if err != nil {
				return nil, err
			}
			return gin.H{"message": "dashboard updated", "dashboard": d}, nil
		},
	})

	httpez.RegisterAction(e, httpez.Action[struct{}, gin.H]{
		Method:   http.MethodDelete,
		Path:     "/dashboard/:id",
		Binder:   httpez.BindNone,
		Roles:    adminOnly,
		NotFound: dashboardNotFound,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			if err := h.dashboards.Delete(c.Request.Context(), c.Param("id")); err != nil {
				return nil, err
			}
			return gin.H{"message": "dashboard deleted"}, nil
		},
	})
}
