package errors

import (
	"github.com/go-kratos/kratos/v2/errors"
)

// 错误码
const (
	CodeBadRequest      = 400
	CodeForbidden       = 403
	CodeNotFound        = 404
	CodeConflict        = 409
	CodeTooManyRequests = 429
	CodeInternal        = 500
	CodeBadGateway      = 502
	CodeUnavailable     = 503
	CodeGatewayTimeout  = 504
)

// 通用错误
var (
	ErrBadRequest   = errors.BadRequest("BAD_REQUEST", "Bad request")
	ErrAccessDenied = errors.Forbidden("ACCESS_DENIED", "Access denied")
	ErrNotFound     = errors.NotFound("NOT_FOUND", "Resource not found")
	ErrConflict     = errors.Conflict("CONFLICT", "Resource conflict")
	ErrInternal     = errors.InternalServer("INTERNAL", "Internal server error")
)

// NewBadRequest 创建请求参数错误
func NewBadRequest(reason, message string) *errors.Error {
	return errors.BadRequest(reason, message)
}

// NewAccessDenied 创建权限错误
func NewAccessDenied(reason, message string) *errors.Error {
	return errors.Forbidden(reason, message)
}

// NewNotFound 创建未找到错误
func NewNotFound(reason, message string) *errors.Error {
	return errors.NotFound(reason, message)
}

// NewConflict 创建冲突错误
func NewConflict(reason, message string) *errors.Error {
	return errors.Conflict(reason, message)
}

// NewRemoteTransient 创建远端瞬时错误（配额/未就绪，重试耗尽后上抛）
func NewRemoteTransient(reason, message string) *errors.Error {
	return errors.New(CodeUnavailable, reason, message)
}

// NewRemoteTerminal 创建远端永久错误
func NewRemoteTerminal(reason, message string) *errors.Error {
	return errors.New(CodeBadGateway, reason, message)
}

// NewPersistence 创建本地持久化错误
func NewPersistence(reason, message string) *errors.Error {
	return errors.InternalServer(reason, message)
}
