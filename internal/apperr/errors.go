// Package apperr 定义业务错误码，以及错误码到 HTTP 状态码的映射。
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code 错误码，原样返回给前端
type Code string

const (
	ErrValidation      Code = "VALIDATION_ERROR"
	ErrAuth            Code = "AUTH_ERROR"
	ErrExternalService Code = "EXTERNAL_SERVICE_ERROR"
	ErrNotFound        Code = "NOT_FOUND"
	ErrInternal        Code = "INTERNAL_ERROR"
)

// AppError 带错误码的业务错误
type AppError struct {
	Code    Code
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New 创建不带底层错误的 AppError
func New(code Code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Wrap 给底层错误挂上错误码
func Wrap(code Code, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// Is 判断错误链上是否有指定错误码的 AppError
func Is(err error, code Code) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// CodeOf 取错误链上第一个 AppError 的错误码，没有则视为内部错误
func CodeOf(err error) Code {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrInternal
}

// HTTPStatus 错误码对应的 HTTP 状态码
func HTTPStatus(err error) int {
	switch CodeOf(err) {
	case ErrValidation:
		return http.StatusBadRequest
	case ErrAuth:
		return http.StatusUnauthorized
	case ErrNotFound:
		return http.StatusNotFound
	case ErrExternalService:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Message 面向用户的错误信息：AppError 只暴露 Message，其余统一隐藏
func Message(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "internal server error"
}
