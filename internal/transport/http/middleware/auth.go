package middleware

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"heartbeat-insights/internal/domain"
	resp "heartbeat-insights/internal/transport/http/response"
)

const KeyUser = "user"

// TokenVerifier 把 bearer token 解析为对应用户
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*domain.User, error)
}

func bearer(c *gin.Context) string {
	ah := c.GetHeader("Authorization")
	if len(ah) < 7 || !strings.EqualFold(ah[:7], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(ah[7:])
}

// Auth 校验 Bearer token，并把用户存入 KeyUser
func Auth(v TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok := bearer(c)
		if tok == "" {
			authRejections.WithLabelValues("missing_token").Inc()
			resp.Abort(c, http.StatusUnauthorized, "no token provided")
			return
		}
		u, err := v.VerifyToken(c.Request.Context(), tok)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidToken) {
				authRejections.WithLabelValues("invalid_token").Inc()
				resp.Abort(c, http.StatusUnauthorized, "invalid token")
				return
			}
			_ = c.Error(err)
			resp.Abort(c, http.StatusInternalServerError, "")
			return
		}
		c.Set(KeyUser, u)
		c.Next()
	}
}

// RequireRole 需挂在 Auth 之后；取不到用户时返回 401
func RequireRole(roles ...domain.Role) gin.HandlerFunc {
	msg := "insufficient role"
	if len(roles) == 1 && roles[0] == domain.RoleAdmin {
		msg = "admin access required"
	}
	return func(c *gin.Context) {
		u := CurrentUser(c)
		if u == nil {
			authRejections.WithLabelValues("missing_token").Inc()
			resp.Abort(c, http.StatusUnauthorized, "")
			return
		}
		if !slices.Contains(roles, u.Role) {
			authRejections.WithLabelValues("forbidden").Inc()
			resp.Abort(c, http.StatusForbidden, msg)
			return
		}
		c.Next()
	}
}

func RequireAdmin() gin.HandlerFunc { return RequireRole(domain.RoleAdmin) }

func CurrentUser(c *gin.Context) *domain.User {
	v, ok := c.Get(KeyUser)
	if !ok {
		return nil
	}
	u, _ := v.(*domain.User)
	return u
}
