package ez

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"heartbeat-insights/internal/domain"
	mdw "heartbeat-insights/internal/transport/http/middleware"
	resp "heartbeat-insights/internal/transport/http/response"
)

// EZ 在路由组上注册强类型 Action
type EZ struct {
	g    *gin.RouterGroup
	log  *zap.Logger
	auth gin.HandlerFunc
}

func New(g *gin.RouterGroup, log *zap.Logger) EZ {
	if log == nil {
		log = zap.NewNop()
	}
	return EZ{g: g, log: log}
}

// WithAuth 设置鉴权中间件（Auth 或 Roles 非空的 Action 前置执行）
func (e EZ) WithAuth(h gin.HandlerFunc) EZ {
	e.auth = h
	return e
}

type Binder string

const (
	BindJSON  Binder = "json"
	BindQuery Binder = "query"
	BindNone  Binder = "none"
)

// 统一错误对象（配合 resp.Abort(c, code, msg)）
type AErr struct {
	Code int
	Msg  string
	Err  error
}

func (e *AErr) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "action error"
}

func (e *AErr) Unwrap() error { return e.Err }

func BadRequest(msg string) error   { return &AErr{Code: http.StatusBadRequest, Msg: msg} }
func Unauthorized(msg string) error { return &AErr{Code: http.StatusUnauthorized, Msg: msg} }
func Forbidden(msg string) error    { return &AErr{Code: http.StatusForbidden, Msg: msg} }
func NotFound(msg string) error     { return &AErr{Code: http.StatusNotFound, Msg: msg} }
func Internal(msg string, err error) error {
	return &AErr{Code: http.StatusInternalServerError, Msg: msg, Err: err}
}

// FromDomain 把 service 层错误映射成 AErr；notFound 为 404 时的提示语
func FromDomain(err error, notFound string) *AErr {
	var ae *AErr
	if errors.As(err, &ae) {
		return ae
	}
	switch {
	case errors.Is(err, domain.ErrNotFound):
		if notFound == "" {
			notFound = "resource not found"
		}
		return &AErr{Code: http.StatusNotFound, Msg: notFound, Err: err}
	case errors.Is(err, domain.ErrEmailTaken):
		return &AErr{Code: http.StatusBadRequest, Msg: "user already exists", Err: err}
	case errors.Is(err, domain.ErrInvalidCredentials):
		return &AErr{Code: http.StatusUnauthorized, Msg: "invalid credentials", Err: err}
	case errors.Is(err, domain.ErrInvalidToken):
		return &AErr{Code: http.StatusUnauthorized, Msg: "invalid token", Err: err}
	case errors.Is(err, domain.ErrForbidden):
		return &AErr{Code: http.StatusForbidden, Msg: "forbidden", Err: err}
	case errors.Is(err, domain.ErrSelfDelete):
		return &AErr{Code: http.StatusBadRequest, Msg: "you cannot delete your own account", Err: err}
	case errors.Is(err, domain.ErrInvalidInput):
		msg := strings.TrimPrefix(err.Error(), domain.ErrInvalidInput.Error()+": ")
		return &AErr{Code: http.StatusBadRequest, Msg: msg, Err: err}
	}
	return &AErr{Code: http.StatusInternalServerError, Msg: resp.MsgFor(http.StatusInternalServerError), Err: err}
}

// Action 一个接口：I 为绑定的入参，O 为响应体
type Action[I any, O any] struct {
	Method   string
	Path     string
	Binder   Binder
	Auth     bool
	Roles    []domain.Role
	Status   int    // 成功状态码，0 则为 200
	NotFound string // domain.ErrNotFound 对应的 404 提示
	Handler  func(c *gin.Context, in *I) (O, error)
}

func RegisterAction[I any, O any](e EZ, a Action[I, O]) {
	h := func(c *gin.Context) {
		if a.Auth && mdw.CurrentUser(c) == nil {
			resp.Abort(c, http.StatusUnauthorized, "")
			return
		}

		var in I
		var bindErr error
		switch a.Binder {
		case BindJSON:
			bindErr = c.ShouldBindJSON(&in)
		case BindQuery:
			bindErr = c.ShouldBindQuery(&in)
		}
		if bindErr != nil {
			writeBindError(c, bindErr)
			return
		}

		out, err := a.Handler(c, &in)
		if err != nil {
			ae := FromDomain(err, a.NotFound)
			if ae.Code >= http.StatusInternalServerError {
				e.log.Error("action failed",
					zap.String("method", a.Method),
					zap.String("path", a.Path),
					zap.String("rid", mdw.RequestIDFrom(c)),
					zap.Error(err),
				)
			}
			_ = c.Error(err)
			resp.Abort(c, ae.Code, ae.Error())
			return
		}
		status := a.Status
		if status == 0 {
			status = http.StatusOK
		}
		c.JSON(status, out)
	}

	var handlers []gin.HandlerFunc
	if (a.Auth || len(a.Roles) > 0) && e.auth != nil {
		handlers = append(handlers, e.auth)
	}
	if len(a.Roles) > 0 {
		handlers = append(handlers, mdw.RequireRole(a.Roles...))
	}
	handlers = append(handlers, h)
	switch strings.ToUpper(a.Method) {
	case http.MethodGet:
		e.g.GET(a.Path, handlers...)
	case http.MethodPut:
		e.g.PUT(a.Path, handlers...)
	case http.MethodPatch:
		e.g.PATCH(a.Path, handlers...)
	case http.MethodDelete:
		e.g.DELETE(a.Path, handlers...)
	default:
		e.g.POST(a.Path, handlers...)
	}
}

func writeBindError(c *gin.Context, err error) {
	var mbe *http.MaxBytesError
	var se *json.SyntaxError
	var te *json.UnmarshalTypeError
	switch {
	case errors.As(err, &mbe):
		resp.Abort(c, http.StatusRequestEntityTooLarge, "")
	case errors.Is(err, io.EOF):
		resp.Abort(c, http.StatusBadRequest, "request body is required")
	case errors.As(err, &se), errors.Is(err, io.ErrUnexpectedEOF):
		resp.Abort(c, http.StatusBadRequest, "malformed JSON body")
	case errors.As(err, &te):
		resp.Abort(c, http.StatusBadRequest, te.Field+" has the wrong type")
	default:
		if v, ok := resp.Validation(err); ok {
			c.AbortWithStatusJSON(http.StatusBadRequest, v)
			return
		}
		resp.Abort(c, http.StatusBadRequest, err.Error())
	}
}
