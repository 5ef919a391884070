package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// ImportJobStatus 描述批量导入的异步状态机。
type ImportJobStatus string

const (
	ImportJobPending    ImportJobStatus = "PENDING"    // 已建单、待处理
	ImportJobProcessing ImportJobStatus = "PROCESSING" // 后台逐行写入中
	ImportJobCompleted  ImportJobStatus = "COMPLETED"  // 全部行成功（终态）
	ImportJobFailed     ImportJobStatus = "FAILED"     // 处理完成但存在失败行（终态）
)

// Terminal 判断是否已到终态；终态后计数不再变化。
func (s ImportJobStatus) Terminal() bool {
	return s == ImportJobCompleted || s == ImportJobFailed
}

// RowError 单行失败记录：1-based 行号 + 错误信息 + 原始行数据。
type RowError struct {
	Row   int               `json:"row"`
	Error string            `json:"error"`
	Data  map[string]string `json:"data,omitempty"`
}

// RowErrorList 以 JSON 存储在 errors 列中。
type RowErrorList []RowError

func (l RowErrorList) Value() (driver.Value, error) {
	if l == nil {
		l = RowErrorList{}
	}
	return json.Marshal(l)
}

func (l *RowErrorList) Scan(src any) error {
	if src == nil {
		*l = RowErrorList{}
		return nil
	}
	var b []byte
	switch v := src.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("unsupported errors column type %T", src)
	}
	if len(b) == 0 {
		*l = RowErrorList{}
		return nil
	}
	return json.Unmarshal(b, l)
}

// ImportJob tracks async menu-item import state for queryability.
// JobID 对外暴露（uuid），自增主键仅内部使用；按 restaurant_id 做租户隔离。
type ImportJob struct {
	ID        uint           `gorm:"primarykey" json:"-"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	JobID        string `gorm:"size:64;uniqueIndex;not null" json:"job_id"`
	RestaurantID uint   `gorm:"not null;index" json:"restaurant_id"`

	Status ImportJobStatus `gorm:"size:20;not null;default:PENDING;index" json:"status"`

	TotalRecords int `gorm:"not null;default:0" json:"total_records"`
	SuccessCount int `gorm:"not null;default:0" json:"success_count"`
	FailedCount  int `gorm:"not null;default:0" json:"failed_count"`

	Errors RowErrorList `gorm:"type:json" json:"errors"`
}

func (ImportJob) TableName() string { return "bulk_import_jobs" }
