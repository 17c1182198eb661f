package router

import (
	"sort"

	"github.com/gin-gonic/gin"
)

// Module 在自己的前缀下挂一组路由
type Module interface {
	Prefix() string
	MountAPI(*gin.RouterGroup)
}

// 数值小的先挂载；未实现时默认 100
type prioritizer interface{ Priority() int }

// MountAll 按优先级把各模块挂到 api 下（每个模块一个前缀分组）
func MountAll(api *gin.RouterGroup, mods ...Module) {
	mods = append([]Module(nil), mods...)
	sort.SliceStable(mods, func(i, j int) bool {
		return priorityOf(mods[i]) < priorityOf(mods[j])
	})
	for _, m := range mods {
		m.MountAPI(api.Group(m.Prefix()))
	}
}

func priorityOf(v any) int {
	if p, ok := v.(prioritizer); ok {
		return p.Priority()
	}
	return 100
}
