package errors

import "net/http"

// 业务错误码
const (
	CodeOK               = 0
	CodeInvalidParams    = 40001
	CodeUnAuthorized     = 40002
	CodeForbidden        = 40003
	CodeNotFound         = 40004
	CodeCapacityExceeded = 40009
	// CodeConflict 状态不允许当前操作，如技能点不足、技能已满级
	CodeConflict      = 40010
	CodeRateLimited   = 40029
	CodeInternalError = 50000
	CodeTimeout       = 50004
)

// CodeToStatus 业务错误码映射为 HTTP 状态码
func CodeToStatus(code int) int {
	switch code {
	case CodeOK:
		return http.StatusOK
	case CodeUnAuthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeCapacityExceeded, CodeConflict:
		return http.StatusConflict
	case CodeRateLimited:
		return http.StatusTooManyRequests
	case CodeTimeout:
		return http.StatusGatewayTimeout
	}
	switch {
	case code >= 40000 && code < 50000:
		return http.StatusBadRequest
	case code >= 50000:
		return http.StatusInternalServerError
	default:
		return http.StatusOK
	}
}
