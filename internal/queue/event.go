package queue

import "fmt"

// ImportEvent 是导入任务到达终态后写入 Kafka 的通知事件。
type ImportEvent struct {
	JobID        string `json:"job_id"`
	RestaurantID uint   `json:"restaurant_id"`
	Status       string `json:"status"` // COMPLETED / FAILED
	SuccessCount int    `json:"success_count"`
	FailedCount  int    `json:"failed_count"`
}

// Validate 做最小字段校验，防止下游消费脏消息。
func (e ImportEvent) Validate() error {
	if e.JobID == "" {
		return fmt.Errorf("job_id is required")
	}
	if e.RestaurantID == 0 {
		return fmt.Errorf("restaurant_id is required")
	}
	if e.Status == "" {
		return fmt.Errorf("status is required")
	}
	return nil
}
