// Package apperror 定义关系图核心对外暴露的错误分类。
//
// NotFound 与 Validation 属于调用方错误，不应重试；Storage 为存储层故障，
// 调用方可自行退避重试。
package apperror

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound 未知的关系类型slug、用户等
	ErrNotFound = errors.New("not found")
	// ErrStorage 存储层错误（连接失败、约束冲突以外的写入失败等）
	ErrStorage = errors.New("storage error")
	// ErrValidation 写入前的参数校验失败
	ErrValidation = errors.New("validation error")
	// ErrLoginRequired 关系类型要求登录后才能查看
	ErrLoginRequired = errors.New("login required")
)

// NotFound 构造 NotFound 错误
func NotFound(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// Validation 构造 Validation 错误
func Validation(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Storage 包装存储层错误，保留原始错误链
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsStorage(err) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }

func IsStorage(err error) bool { return errors.Is(err, ErrStorage) }

func IsLoginRequired(err error) bool { return errors.Is(err, ErrLoginRequired) }
