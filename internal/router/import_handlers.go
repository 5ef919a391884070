package router

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"dinehub/internal/importer"
)

// submitImport 接收菜单批量导入文件：
// 同步解析顶层形状并建单入队，逐行结果走后台，调用方立即拿到 job_id 轮询。
func submitImport(eng *importer.Engine, db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		restaurantID, ok := uintParam(c, "restaurant_id")
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "invalid restaurant id"})
			return
		}
		if !requireRestaurantAccess(c, db, restaurantID) {
			return
		}

		format, payload, err := readImportPayload(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": err.Error()})
			return
		}

		job, err := eng.CreateJob(restaurantID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}

		if err := eng.Submit(job.JobID, restaurantID, format, payload); err != nil {
			if errors.Is(err, importer.ErrQueueFull) {
				c.JSON(http.StatusServiceUnavailable, gin.H{"code": 503, "msg": "import queue is full, try again later"})
				return
			}
			// 顶层 payload 不合法：同步拒绝，任务保持 PENDING。
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": err.Error()})
			return
		}

		c.JSON(http.StatusAccepted, gin.H{"code": 0, "data": gin.H{
			"job_id": job.JobID,
			"status": job.Status,
		}})
	}
}

// readImportPayload 支持 multipart 文件上传与裸 csv/json body 两种提交方式。
func readImportPayload(c *gin.Context) (string, []byte, error) {
	contentType := c.GetHeader("Content-Type")

	if strings.Contains(contentType, "multipart/form-data") {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			return "", nil, errors.New("multipart field \"file\" is required")
		}
		f, err := fileHeader.Open()
		if err != nil {
			return "", nil, err
		}
		defer f.Close()
		payload, err := io.ReadAll(f)
		if err != nil {
			return "", nil, err
		}

		switch strings.ToLower(filepath.Ext(fileHeader.Filename)) {
		case ".csv":
			return "csv", payload, nil
		case ".json":
			return "json", payload, nil
		}
		switch fileHeader.Header.Get("Content-Type") {
		case "text/csv":
			return "csv", payload, nil
		case "application/json":
			return "json", payload, nil
		}
		return "", nil, errors.New("file must be csv or json")
	}

	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return "", nil, err
	}
	switch {
	case strings.Contains(contentType, "application/json"):
		return "json", payload, nil
	case strings.Contains(contentType, "text/csv"):
		return "csv", payload, nil
	default:
		return "", nil, errors.New("content type must be multipart/form-data, application/json or text/csv")
	}
}

// getImportJob 租户内轮询任务快照（status + 计数 + 错误列表），纯读。
func getImportJob(eng *importer.Engine, db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		restaurantID, ok := uintParam(c, "restaurant_id")
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "invalid restaurant id"})
			return
		}
		if !requireRestaurantAccess(c, db, restaurantID) {
			return
		}

		jobID := c.Param("job_id")
		if jobID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "job_id is required"})
			return
		}

		job, err := eng.GetJob(jobID, restaurantID)
		if err != nil {
			if errors.Is(err, importer.ErrJobNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"code": 404, "msg": "import job not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 0, "data": job})
	}
}
