package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"heartbeat-insights/internal/domain"
	"heartbeat-insights/internal/service"
	httpez "heartbeat-insights/internal/transport/http/ez"
	mdw "heartbeat-insights/internal/transport/http/middleware"
)

// AdminHandler 用户管理（全部需要 admin 角色）
type AdminHandler struct {
	auth *service.AuthService
}

func NewAdminHandler(auth *service.AuthService) *AdminHandler { return &AdminHandler{auth: auth} }

type updateUserIn struct {
	Name     *string      `json:"name" binding:"omitempty,min=1,max=100"`
	Email    *string      `json:"email" binding:"omitempty,email"`
	Role     *domain.Role `json:"role" binding:"omitempty,oneof=user admin"`
	Password *string      `json:"password" binding:"omitempty,min=6,max=72"`
}

var adminOnly = []domain.Role{domain.RoleAdmin}

func (h *AdminHandler) Mount(e httpez.EZ) {
	type listOut struct {
		Message string        `json:"message"`
		Count   int           `json:"count"`
		Users   []domain.User `json:"users"`
	}
	httpez.RegisterAction(e, httpez.Action[struct{}, listOut]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: httpez.BindNone,
		Roles:  adminOnly,
		Handler: func(c *gin.Context, _ *struct{}) (listOut, error) {
			us, err := h.auth.ListUsers(c.Request.Context())
			if err != nil {
				return listOut{}, err
			}
			if us == nil {
				us = []domain.User{}
			}
			return listOut{Message: "users loaded", Count: len(us), Users: us}, nil
		},
	})

	httpez.RegisterAction(e, httpez.Action[updateUserIn, gin.H]{
		Method:   http.MethodPut,
		Path:     "/users/:id",
		Binder:   httpez.BindJSON,
		Roles:    adminOnly,
		NotFound: "user not found",
		Handler: func(c *gin.Context, in *updateUserIn) (gin.H, error) {
			u, err := h.auth.UpdateUser(c.Request.Context(), c.Param("id"), service.UserPatch{
				Name: in.Name, Email: in.Email, Role: in.Role, Password: in.Password,
			})
			if err != nil {
				return nil, err
			}
			return gin.H{"message": "user updated", "user": u}, nil
		},
	})

	httpez.RegisterAction(e, httpez.Action[struct{}, gin.H]{
		Method:   http.MethodDelete,
		Path:     "/users/:id",
		Binder:   httpez.BindNone,
		Roles:    adminOnly,
		NotFound: "user not found",
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			if err := h.auth.DeleteUser(c.Request.Context(), mdw.CurrentUser(c), c.Param("id")); err != nil {
				return nil, err
			}
			return gin.H{"message": "user deleted"}, nil
		},
	})
}
