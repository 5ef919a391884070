package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"dinehub/internal/model"
	"dinehub/internal/queue"
)

var (
	// ErrJobNotFound 该租户下不存在此任务（跨租户读也走这里）。
	ErrJobNotFound = errors.New("import job not found")
	// ErrUnsupportedFormat 仅支持 csv / json。
	ErrUnsupportedFormat = errors.New("unsupported import format")
	// ErrQueueFull 后台队列已满，调用方稍后重试。
	ErrQueueFull = errors.New("import queue is full")
)

// EventPublisher 任务到达终态后对外发事件（可选协作方）。
type EventPublisher interface {
	PublishImportEvent(ctx context.Context, ev queue.ImportEvent) error
}

// task 是入队的一个处理单元：任务号 + 租户 + 已解析的行。
type task struct {
	jobID        string
	restaurantID uint
	rows         []Row
}

// Engine 批量导入引擎：建单、入队、后台逐行落库、状态查询。
// 行处理跑在独立 goroutine 里，用引擎自己的 DB 句柄，不共享请求事务。
type Engine struct {
	db     *gorm.DB
	tasks  chan task
	events EventPublisher // nil 表示不发事件
	log    *logrus.Logger
}

func NewEngine(db *gorm.DB, queueSize int, events EventPublisher, log *logrus.Logger) *Engine {
	return &Engine{
		db:     db,
		tasks:  make(chan task, queueSize),
		events: events,
		log:    log,
	}
}

// Start 启动单个后台 worker。行内有序是契约（错误行号可复现），
// 单 worker 顺序消费即为最简正确实现。
func (e *Engine) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case t := <-e.tasks:
				if err := e.ProcessRows(ctx, t.jobID, t.restaurantID, t.rows); err != nil {
					e.log.WithFields(logrus.Fields{
						"job_id": t.jobID,
					}).WithError(err).Error("process import job")
				}
			}
		}
	}()
}

// CreateJob 建 PENDING 任务，计数全零。
func (e *Engine) CreateJob(restaurantID uint) (*model.ImportJob, error) {
	job := &model.ImportJob{
		JobID:        uuid.New().String(),
		RestaurantID: restaurantID,
		Status:       model.ImportJobPending,
		Errors:       model.RowErrorList{},
	}
	if err := e.db.Create(job).Error; err != nil {
		return nil, err
	}
	return job, nil
}

// Submit 同步解析 payload 并把任务丢进后台队列。
// 顶层形状不对（如 JSON 顶层是对象）在这里直接拒绝，任务保持 PENDING 不被派发；
// 单行的坏数据则留给后台逐行隔离。
func (e *Engine) Submit(jobID string, restaurantID uint, format string, payload []byte) error {
	var (
		rows []Row
		err  error
	)
	switch strings.ToLower(format) {
	case "csv":
		rows, err = ParseCSV(strings.NewReader(string(payload)))
	case "json":
		rows, err = ParseJSON(payload)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return err
	}

	select {
	case e.tasks <- task{jobID: jobID, restaurantID: restaurantID, rows: rows}:
		return nil
	default:
		return ErrQueueFull
	}
}

// GetJob 租户内查询任务快照。纯读，可反复轮询。
func (e *Engine) GetJob(jobID string, restaurantID uint) (*model.ImportJob, error) {
	var job model.ImportJob
	err := e.db.Where("job_id = ? AND restaurant_id = ?", jobID, restaurantID).First(&job).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}
	return &job, nil
}
