package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"heartbeat-insights/internal/advice"
	"heartbeat-insights/internal/service"
	httpez "heartbeat-insights/internal/transport/http/ez"
	mdw "heartbeat-insights/internal/transport/http/middleware"
)

// AdviceSource 由 *advice.Client 实现
type AdviceSource interface {
	Get(ctx context.Context) advice.Advice
}

// ExtrasHandler 示例数据生成 + 健康建议透传
type ExtrasHandler struct {
	sample *service.SampleService
	advice AdviceSource
}

func NewExtrasHandler(sample *service.SampleService, adv AdviceSource) *ExtrasHandler {
	return &ExtrasHandler{sample: sample, advice: adv}
}

func (h *ExtrasHandler) Mount(e httpez.EZ) {
	type sampleOut struct {
		Message string `json:"message"`
		*service.SampleResult
	}
	httpez.RegisterAction(e, httpez.Action[struct{}, sampleOut]{
		Method: http.MethodPost,
		Path:   "/generate-sample-dashboard",
		Binder: httpez.BindNone,
		Roles:  adminOnly,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, _ *struct{}) (sampleOut, error) {
			res, err := h.sample.Generate(c.Request.Context(), mdw.CurrentUser(c))
			if err != nil {
				return sampleOut{}, err
			}
			return sampleOut{Message: "cardiovascular dashboard generated", SampleResult: res}, nil
		},
	})

	if h.advice == nil {
		return
	}
	httpez.RegisterAction(e, httpez.Action[struct{}, advice.Advice]{
		Method: http.MethodGet,
		Path:   "/advice",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (advice.Advice, error) {
			return h.advice.Get(c.Request.Context()), nil
		},
	})
}
