package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"heartbeat-insights/internal/domain"
	"heartbeat-insights/internal/service"
	httpez "heartbeat-insights/internal/transport/http/ez"
	mdw "heartbeat-insights/internal/transport/http/middleware"
)

type AuthHandler struct {
	auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService) *AuthHandler { return &AuthHandler{auth: auth} }

type registerIn struct {
	Name     string      `json:"name" binding:"required,max=100"`
	Email    string      `json:"email" binding:"required,email"`
	Password string      `json:"password" binding:"required,min=6,max=72"`
	Role     domain.Role `json:"role" binding:"omitempty,oneof=user admin"`
}

// 不加 binding 校验：邮箱缺失或格式不对一律按凭证错误返回 401
type loginIn struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionOut struct {
	Message string       `json:"message"`
	User    *domain.User `json:"user"`
	Token   string       `json:"token"`
}

// loginOut 扁平的用户字段 + token（前端直接存为当前会话）
type loginOut struct {
	*domain.User
	Token string `json:"token"`
}

// Mount 注册 /register、/login、/me
func (h *AuthHandler) Mount(e httpez.EZ) {
	httpez.RegisterAction(e, httpez.Action[registerIn, sessionOut]{
		Method: http.MethodPost,
		Path:   "/register",
		Binder: httpez.BindJSON,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, in *registerIn) (sessionOut, error) {
			u, tok, err := h.auth.Register(c.Request.Context(), service.RegisterInput{
				Name: in.Name, Email: in.Email, Password: in.Password, Role: in.Role,
			})
			if err != nil {
				return sessionOut{}, err
			}
			return sessionOut{Message: "user created", User: u, Token: tok}, nil
		},
	})

	httpez.RegisterAction(e, httpez.Action[loginIn, loginOut]{
		Method: http.MethodPost,
		Path:   "/login",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, in *loginIn) (loginOut, error) {
			u, tok, err := h.auth.Login(c.Request.Context(), in.Email, in.Password)
			if err != nil {
				return loginOut{}, err
			}
			return loginOut{User: u, Token: tok}, nil
		},
	})

	httpez.RegisterAction(e, httpez.Action[struct{}, gin.H]{
		Method: http.MethodGet,
		Path:   "/me",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			return gin.H{"user": mdw.CurrentUser(c)}, nil
		},
	})
}
