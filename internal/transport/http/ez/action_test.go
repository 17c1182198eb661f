package ez

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"heartbeat-insights/internal/domain"
	mdw "heartbeat-insights/internal/transport/http/middleware"
)

func init() { gin.SetMode(gin.TestMode) }

func TestFromDomain(t *testing.T) {
	cases := []struct {
		err  error
		code int
		msg  string
	}{
		{domain.ErrNotFound, http.StatusNotFound, "dashboard not found"},
		{fmt.Errorf("find: %w", domain.ErrEmailTaken), http.StatusBadRequest, "user already exists"},
		{domain.ErrInvalidCredentials, http.StatusUnauthorized, "invalid credentials"},
		{domain.ErrSelfDelete, http.StatusBadRequest, "you cannot delete your own account"},
		{fmt.Errorf("%w: title is required", domain.ErrInvalidInput), http.StatusBadRequest, "title is required"},
		{Forbidden("nope"), http.StatusForbidden, "nope"},
		{errors.New("disk on fire"), http.StatusInternalServerError, "internal server error"},
	}
	for _, tc := range cases {
		ae := FromDomain(tc.err, "dashboard not found")
		assert.Equal(t, tc.code, ae.Code, tc.err.Error())
		assert.Equal(t, tc.msg, ae.Error())
	}
}

type echoIn struct {
	Name string `json:"name" binding:"required"`
}

func setup(auth gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	e := New(r.Group("/"), nil).WithAuth(auth)
	RegisterAction(e, Action[echoIn, gin.H]{
		Method: http.MethodPost,
		Path:   "/echo",
		Binder: BindJSON,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, in *echoIn) (gin.H, error) {
			return gin.H{"name": in.Name}, nil
		},
	})
	RegisterAction(e, Action[struct{}, gin.H]{
		Method: http.MethodDelete,
		Path:   "/things/:id",
		Roles:  []domain.Role{domain.RoleAdmin},
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			return nil, domain.ErrNotFound
		},
		NotFound: "thing not found",
	})
	return r
}

func do(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestRegisterActionBinding(t *testing.T) {
	r := setup(nil)

	w := do(r, http.MethodPost, "/echo", `{"name":"x"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"name":"x"}`, w.Body.String())

	w = do(r, http.MethodPost, "/echo", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"message":"validation failed","details":[{"field":"name","rule":"required","message":"name is required"}]}`, w.Body.String())

	w = do(r, http.MethodPost, "/echo", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"message":"malformed JSON body"}`, w.Body.String())

	w = do(r, http.MethodPost, "/echo", ``)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegisterActionRoles(t *testing.T) {
	as := func(role domain.Role) gin.HandlerFunc {
		return func(c *gin.Context) {
			c.Set(mdw.KeyUser, &domain.User{ID: "u", Role: role})
			c.Next()
		}
	}

	w := do(setup(func(c *gin.Context) { c.Next() }), http.MethodDelete, "/things/1", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(setup(as(domain.RoleUser)), http.MethodDelete, "/things/1", "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(setup(as(domain.RoleAdmin)), http.MethodDelete, "/things/1", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"message":"thing not found"}`, w.Body.String())
}
