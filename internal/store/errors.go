package store

import "errors"

var (
	// ErrNotFound 记录不存在，或不属于当前用户（两者对调用方不可区分）
	ErrNotFound = errors.New("QR code not found for this user.")
	// ErrDuplicateSlug slug 已被占用
	ErrDuplicateSlug = errors.New("Slug already exists. Please choose another slug.")
	// ErrStatusUnchanged 状态已是目标值
	ErrStatusUnchanged = errors.New("Status is already set to the requested value.")
)
