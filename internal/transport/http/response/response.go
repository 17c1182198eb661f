package response

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// Resp 错误响应体（仅校验失败时带 details）
type Resp struct {
	Message string       `json:"message"`
	Details []FieldError `json:"details,omitempty"`
}

type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message"`
}

// Error 失败响应（msg 为空时用状态码默认提示）
func Error(status int, msg string) Resp {
	if msg == "" {
		msg = MsgFor(status)
	}
	return Resp{Message: msg}
}

func Abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, Error(status, msg))
}

// Validation 把 validator/v10 的绑定错误转成逐字段 details；其他错误 ok=false
func Validation(err error) (Resp, bool) {
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return Resp{}, false
	}
	out := Resp{Message: "validation failed", Details: make([]FieldError, 0, len(ves))}
	for _, fe := range ves {
		out.Details = append(out.Details, FieldError{
			Field:   lowerFirst(fe.Field()),
			Rule:    fe.Tag(),
			Param:   fe.Param(),
			Message: fieldMessage(fe),
		})
	}
	return out, true
}

func fieldMessage(fe validator.FieldError) string {
	name := lowerFirst(fe.Field())
	switch fe.Tag() {
	case "required":
		return name + " is required"
	case "email":
		return name + " must be a valid email"
	case "oneof":
		return name + " must be one of: " + fe.Param()
	case "min":
		return name + " must be at least " + fe.Param()
	case "max":
		return name + " must be at most " + fe.Param()
	}
	return name + " failed " + fe.Tag()
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
