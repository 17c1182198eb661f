package response

import "net/http"

// StatusMsgMap 集中管理各 HTTP 状态码的默认提示
var StatusMsgMap = map[int]string{
	http.StatusBadRequest:            "bad request",
	http.StatusUnauthorized:          "unauthorized",
	http.StatusForbidden:             "forbidden",
	http.StatusNotFound:              "not found",
	http.StatusRequestEntityTooLarge: "request body too large",
	http.StatusTooManyRequests:       "too many requests",
	http.StatusInternalServerError:   "internal server error",
	http.StatusServiceUnavailable:    "server busy",
	http.StatusGatewayTimeout:        "request timed out",
}

func MsgFor(status int) string {
	if m, ok := StatusMsgMap[status]; ok {
		return m
	}
	if t := http.StatusText(status); t != "" {
		return t
	}
	return "error"
}
