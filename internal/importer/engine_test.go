package importer

import (
	"context"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"dinehub/internal/model"
	"dinehub/internal/queue"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// 内存库绑定单连接，避免连接池各见各的库。
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&model.Restaurant{},
		&model.MenuCategory{},
		&model.MenuItem{},
		&model.ImportJob{},
	))
	return db
}

func seedCategory(t *testing.T, db *gorm.DB, restaurantID uint) uint {
	t.Helper()
	rid := restaurantID
	category := &model.MenuCategory{RestaurantID: &rid, Name: "Mains", IsActive: true}
	require.NoError(t, db.Create(category).Error)
	return category.ID
}

type recordingPublisher struct {
	events []queue.ImportEvent
}

func (p *recordingPublisher) PublishImportEvent(_ context.Context, ev queue.ImportEvent) error {
	p.events = append(p.events, ev)
	return nil
}

func newTestEngine(t *testing.T, db *gorm.DB, events EventPublisher) *Engine {
	t.Helper()
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	return NewEngine(db, 8, events, log)
}

func TestProcessRowsIsolatesBadRow(t *testing.T) {
	db := newTestDB(t)
	seedCategory(t, db, 1)

	eng := newTestEngine(t, db, nil)
	job, err := eng.CreateJob(1)
	require.NoError(t, err)
	require.Equal(t, model.ImportJobPending, job.Status)

	rows, err := ParseCSV(strings.NewReader("name,category_id,price\nBurger,1,9.99\n,2,5.00\nFries,1,3.50\n"))
	require.NoError(t, err)

	require.NoError(t, eng.ProcessRows(context.Background(), job.JobID, 1, rows))

	got, err := eng.GetJob(job.JobID, 1)
	require.NoError(t, err)
	require.Equal(t, model.ImportJobFailed, got.Status)
	require.Equal(t, 3, got.TotalRecords)
	require.Equal(t, 2, got.SuccessCount)
	require.Equal(t, 1, got.FailedCount)
	require.Len(t, got.Errors, 1)
	require.Equal(t, 2, got.Errors[0].Row)
	require.Contains(t, got.Errors[0].Error, "name")
	require.Equal(t, map[string]string{"category_id": "2", "price": "5.00"}, got.Errors[0].Data)

	var count int64
	require.NoError(t, db.Model(&model.MenuItem{}).Count(&count).Error)
	require.EqualValues(t, 2, count)
}

func TestProcessRowsAllValidJSON(t *testing.T) {
	db := newTestDB(t)
	seedCategory(t, db, 1)

	events := &recordingPublisher{}
	eng := newTestEngine(t, db, events)
	job, err := eng.CreateJob(1)
	require.NoError(t, err)

	rows, err := ParseJSON([]byte(`[{"name":"Soda","category_id":1,"price":1.50}]`))
	require.NoError(t, err)
	require.NoError(t, eng.ProcessRows(context.Background(), job.JobID, 1, rows))

	got, err := eng.GetJob(job.JobID, 1)
	require.NoError(t, err)
	require.Equal(t, model.ImportJobCompleted, got.Status)
	require.Equal(t, 1, got.TotalRecords)
	require.Equal(t, 1, got.SuccessCount)
	require.Equal(t, 0, got.FailedCount)
	require.Empty(t, got.Errors)

	require.Len(t, events.events, 1)
	require.Equal(t, job.JobID, events.events[0].JobID)
	require.Equal(t, string(model.ImportJobCompleted), events.events[0].Status)
}

func TestProcessRowsRejectsUnknownCategory(t *testing.T) {
	db := newTestDB(t)
	seedCategory(t, db, 1)

	eng := newTestEngine(t, db, nil)
	job, err := eng.CreateJob(1)
	require.NoError(t, err)

	rows, err := ParseJSON([]byte(`[{"name":"Ghost","category_id":99,"price":2}]`))
	require.NoError(t, err)
	require.NoError(t, eng.ProcessRows(context.Background(), job.JobID, 1, rows))

	got, err := eng.GetJob(job.JobID, 1)
	require.NoError(t, err)
	require.Equal(t, model.ImportJobFailed, got.Status)
	require.Equal(t, 1, got.FailedCount)
	require.Contains(t, got.Errors[0].Error, "category 99 not found")
}

func TestProcessRowsTerminalJobUnchanged(t *testing.T) {
	db := newTestDB(t)
	seedCategory(t, db, 1)

	eng := newTestEngine(t, db, nil)
	job, err := eng.CreateJob(1)
	require.NoError(t, err)

	rows, err := ParseJSON([]byte(`[{"name":"Soda","category_id":1,"price":1.50}]`))
	require.NoError(t, err)
	require.NoError(t, eng.ProcessRows(context.Background(), job.JobID, 1, rows))

	first, err := eng.GetJob(job.JobID, 1)
	require.NoError(t, err)
	require.True(t, first.Status.Terminal())

	// 重复派发：终态任务不再变化。
	require.NoError(t, eng.ProcessRows(context.Background(), job.JobID, 1, rows))
	second, err := eng.GetJob(job.JobID, 1)
	require.NoError(t, err)
	require.Equal(t, first.Status, second.Status)
	require.Equal(t, first.SuccessCount, second.SuccessCount)
	require.Equal(t, first.TotalRecords, second.TotalRecords)

	var count int64
	require.NoError(t, db.Model(&model.MenuItem{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestProcessRowsVanishedJobSilentlyAborts(t *testing.T) {
	db := newTestDB(t)
	eng := newTestEngine(t, db, nil)

	rows, err := ParseJSON([]byte(`[{"name":"Soda","category_id":1,"price":1.50}]`))
	require.NoError(t, err)
	require.NoError(t, eng.ProcessRows(context.Background(), "no-such-job", 1, rows))
}

func TestGetJobTenantScoped(t *testing.T) {
	db := newTestDB(t)
	eng := newTestEngine(t, db, nil)

	job, err := eng.CreateJob(1)
	require.NoError(t, err)

	_, err = eng.GetJob(job.JobID, 2)
	require.ErrorIs(t, err, ErrJobNotFound)

	_, err = eng.GetJob("unknown", 1)
	require.ErrorIs(t, err, ErrJobNotFound)
}

func TestGetJobIdempotentRead(t *testing.T) {
	db := newTestDB(t)
	eng := newTestEngine(t, db, nil)

	job, err := eng.CreateJob(1)
	require.NoError(t, err)

	a, err := eng.GetJob(job.JobID, 1)
	require.NoError(t, err)
	b, err := eng.GetJob(job.JobID, 1)
	require.NoError(t, err)
	require.Equal(t, a.Status, b.Status)
	require.Equal(t, a.TotalRecords, b.TotalRecords)
	require.Equal(t, a.SuccessCount, b.SuccessCount)
	require.Equal(t, a.FailedCount, b.FailedCount)
	require.Equal(t, a.Errors, b.Errors)
}

func TestSubmitRejectsMalformedPayloadSynchronously(t *testing.T) {
	db := newTestDB(t)
	eng := newTestEngine(t, db, nil)

	job, err := eng.CreateJob(1)
	require.NoError(t, err)

	err = eng.Submit(job.JobID, 1, "json", []byte(`{"name":"x"}`))
	require.Error(t, err)

	got, err := eng.GetJob(job.JobID, 1)
	require.NoError(t, err)
	require.Equal(t, model.ImportJobPending, got.Status)
}

func TestSubmitUnsupportedFormat(t *testing.T) {
	db := newTestDB(t)
	eng := newTestEngine(t, db, nil)

	job, err := eng.CreateJob(1)
	require.NoError(t, err)

	err = eng.Submit(job.JobID, 1, "xml", []byte(`<items/>`))
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}
