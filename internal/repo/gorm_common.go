package repo

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"heartbeat-insights/internal/domain"
	"heartbeat-insights/internal/feature/dashboard"
	"heartbeat-insights/internal/feature/insight"
	"heartbeat-insights/internal/feature/user"
)

// AutoMigrate 建表/更新 gorm 仓储用到的全部表
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&user.UserModel{}, &dashboard.DashboardModel{}, &insight.InsightModel{})
}

// isDupKey 按错误信息匹配（gorm.ErrDuplicatedKey 只在开启 TranslateError 且方言支持时才有）
func isDupKey(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation")
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	return err
}

// rowsOrMissing 影响 0 行时再确认一次记录是否存在（MySQL 无变化的 update 也返回 0 行）
func rowsOrMissing(ctx context.Context, db *gorm.DB, res *gorm.DB, model any, id string) error {
	if res.RowsAffected > 0 {
		return nil
	}
	var n int64
	if err := db.WithContext(ctx).Model(model).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
