package utils

import "github.com/google/uuid"

// NewID 生成 UUID 字符串（SQL 存储的主键）
func NewID() string { return uuid.NewString() }
