package importer

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"dinehub/internal/model"
	"dinehub/internal/queue"
)

// ProcessRows 是导入核心算法：顺序逐行尝试落库，单行失败只隔离该行。
// 没有同步等待方：任务行已被删除时静默返回；终态任务收到重复派发时不再改动计数。
func (e *Engine) ProcessRows(ctx context.Context, jobID string, restaurantID uint, rows []Row) error {
	var job model.ImportJob
	err := e.db.Where("job_id = ?", jobID).First(&job).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if job.Status.Terminal() {
		return nil
	}

	// 先落 PROCESSING + 总数，保证处理中的状态读是准确的。
	if err := e.db.Model(&model.ImportJob{}).
		Where("job_id = ?", jobID).
		Updates(map[string]any{
			"status":        model.ImportJobProcessing,
			"total_records": len(rows),
		}).Error; err != nil {
		return err
	}

	success := 0
	failed := 0
	rowErrors := model.RowErrorList{}

	for i, row := range rows {
		index := i + 1 // 错误记录用 1-based 行号
		if err := e.insertRow(restaurantID, row); err != nil {
			failed++
			rowErrors = append(rowErrors, model.RowError{
				Row:   index,
				Error: err.Error(),
				Data:  row.snapshot(),
			})
			continue
		}
		success++
	}

	status := model.ImportJobCompleted
	if failed > 0 {
		status = model.ImportJobFailed
	}
	if err := e.db.Model(&model.ImportJob{}).
		Where("job_id = ?", jobID).
		Updates(map[string]any{
			"status":        status,
			"success_count": success,
			"failed_count":  failed,
			"errors":        rowErrors,
		}).Error; err != nil {
		return err
	}

	e.publishResult(ctx, jobID, restaurantID, status, success, failed)
	return nil
}

// insertRow 一行一个事务：解码失败或约束失败只回滚本行。
func (e *Engine) insertRow(restaurantID uint, row Row) error {
	item, err := decodeRow(row)
	if err != nil {
		return err
	}

	return e.db.Transaction(func(tx *gorm.DB) error {
		// 分类必须属于该餐厅或为全局分类，等价于外键约束的租户安全版本。
		var category model.MenuCategory
		err := tx.Where("id = ? AND (restaurant_id = ? OR is_global = ?)", item.CategoryID, restaurantID, true).
			First(&category).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("category %d not found", item.CategoryID)
			}
			return err
		}

		return tx.Create(&model.MenuItem{
			RestaurantID:           restaurantID,
			CategoryID:             item.CategoryID,
			Name:                   item.Name,
			Description:            item.Description,
			Price:                  item.Price,
			IsAvailable:            item.IsAvailable,
			IsVegetarian:           item.IsVegetarian,
			PreparationTimeMinutes: item.PrepMinutes,
		}).Error
	})
}

// publishResult 终态事件对外广播；发布失败只记日志，不影响任务结果。
func (e *Engine) publishResult(ctx context.Context, jobID string, restaurantID uint, status model.ImportJobStatus, success, failed int) {
	if e.events == nil {
		return
	}
	ev := queue.ImportEvent{
		JobID:        jobID,
		RestaurantID: restaurantID,
		Status:       string(status),
		SuccessCount: success,
		FailedCount:  failed,
	}
	if err := e.events.PublishImportEvent(ctx, ev); err != nil {
		e.log.WithFields(logrus.Fields{
			"job_id": jobID,
		}).WithError(err).Warn("publish import event")
	}
}
