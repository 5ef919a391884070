package otp

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"dinehub/internal/auth"
	"dinehub/internal/model"
	rediskey "dinehub/pkg/redis"
)

// fakeStore 按 Redis 版语义实现挑战存储：
// 过期视同不存在；上限检查先于比对；命中即删除；不匹配才计数。
type fakeStore struct {
	now      time.Time
	digest   string
	attempts int
	expires  time.Time
	active   bool
}

func (s *fakeStore) Replace(_ context.Context, _ string, digest string, ttl time.Duration) error {
	s.digest = digest
	s.attempts = 0
	s.expires = s.now.Add(ttl)
	s.active = true
	return nil
}

func (s *fakeStore) Verify(_ context.Context, _ string, digest string, maxAttempts int) (rediskey.VerifyOutcome, error) {
	if !s.active || s.now.After(s.expires) {
		return rediskey.VerifyNotFound, nil
	}
	if s.attempts >= maxAttempts {
		return rediskey.VerifyLocked, nil
	}
	if s.digest == digest {
		s.active = false
		return rediskey.VerifyOK, nil
	}
	s.attempts++
	return rediskey.VerifyMismatch, nil
}

type captureSender struct {
	lastPhone   string
	lastMessage string
}

func (s *captureSender) Deliver(phone, message string) {
	s.lastPhone = phone
	s.lastMessage = message
}

var codePattern = regexp.MustCompile(`\d{6}`)

func newTestService(t *testing.T) (*Service, *fakeStore, *captureSender, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&model.Customer{}))

	store := &fakeStore{now: time.Now()}
	sender := &captureSender{}
	issuer := auth.NewTokenIssuer("test-secret", time.Hour)
	svc := NewService(store, db, sender, issuer, 5*time.Minute, 3)
	return svc, store, sender, db
}

func sentCode(t *testing.T, sender *captureSender) string {
	t.Helper()
	code := codePattern.FindString(sender.lastMessage)
	require.Len(t, code, 6)
	return code
}

func TestRequestRejectsInvalidPhone(t *testing.T) {
	svc, store, _, _ := newTestService(t)

	for _, phone := range []string{"", "12345", "1234567890", "98765432100", "98765abc10"} {
		err := svc.Request(context.Background(), phone)
		require.ErrorIs(t, err, ErrInvalidPhone, "phone %q", phone)
	}
	require.False(t, store.active, "no challenge may be stored for invalid phones")
}

func TestVerifyHappyPathCreatesCustomer(t *testing.T) {
	svc, _, sender, db := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Request(ctx, "9876543210"))
	require.Equal(t, "9876543210", sender.lastPhone)
	code := sentCode(t, sender)

	token, customer, err := svc.Verify(ctx, "9876543210", code)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.Equal(t, "9876543210", customer.Phone)

	issuer := auth.NewTokenIssuer("test-secret", time.Hour)
	p, err := issuer.Parse(token)
	require.NoError(t, err)
	require.Equal(t, auth.PrincipalCustomer, p.Type)
	require.Equal(t, customer.ID, p.SubjectID)

	var count int64
	require.NoError(t, db.Model(&model.Customer{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestVerifyExistingCustomerReused(t *testing.T) {
	svc, _, sender, db := newTestService(t)
	ctx := context.Background()

	existing := &model.Customer{Phone: "9876543210", Name: "Repeat Guest", IsActive: true}
	require.NoError(t, db.Create(existing).Error)

	require.NoError(t, svc.Request(ctx, "9876543210"))
	_, customer, err := svc.Verify(ctx, "9876543210", sentCode(t, sender))
	require.NoError(t, err)
	require.Equal(t, existing.ID, customer.ID)

	var count int64
	require.NoError(t, db.Model(&model.Customer{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestVerifyWithoutChallenge(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, _, err := svc.Verify(context.Background(), "9876543210", "123456")
	require.ErrorIs(t, err, ErrExpiredOrNotFound)
}

func TestVerifyExpiredChallenge(t *testing.T) {
	svc, store, sender, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Request(ctx, "9876543210"))
	code := sentCode(t, sender)

	store.now = store.now.Add(6 * time.Minute)
	_, _, err := svc.Verify(ctx, "9876543210", code)
	require.ErrorIs(t, err, ErrExpiredOrNotFound)
}

func TestSecondRequestInvalidatesFirstCode(t *testing.T) {
	svc, _, sender, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Request(ctx, "9876543210"))
	first := sentCode(t, sender)

	require.NoError(t, svc.Request(ctx, "9876543210"))
	second := sentCode(t, sender)

	if first != second {
		_, _, err := svc.Verify(ctx, "9876543210", first)
		require.Error(t, err)
	}
	_, _, err := svc.Verify(ctx, "9876543210", second)
	require.NoError(t, err)
}

func TestAttemptCeilingBlocksCorrectCode(t *testing.T) {
	svc, store, sender, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Request(ctx, "9876543210"))
	code := sentCode(t, sender)

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	for i := 0; i < 3; i++ {
		_, _, err := svc.Verify(ctx, "9876543210", wrong)
		require.ErrorIs(t, err, ErrInvalidCode)
	}
	require.Equal(t, 3, store.attempts)

	// 次数用尽后，正确码也被拒绝。
	_, _, err := svc.Verify(ctx, "9876543210", code)
	require.ErrorIs(t, err, ErrTooManyAttempts)

	// 新挑战重置计数。
	require.NoError(t, svc.Request(ctx, "9876543210"))
	require.Equal(t, 0, store.attempts)
	_, _, err = svc.Verify(ctx, "9876543210", sentCode(t, sender))
	require.NoError(t, err)
}

func TestSuccessConsumesChallenge(t *testing.T) {
	svc, _, sender, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Request(ctx, "9876543210"))
	code := sentCode(t, sender)

	_, _, err := svc.Verify(ctx, "9876543210", code)
	require.NoError(t, err)

	// 同一 phone+code 重放失败：挑战已消费。
	_, _, err = svc.Verify(ctx, "9876543210", code)
	require.ErrorIs(t, err, ErrExpiredOrNotFound)
}

func TestGenerateCodeRange(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := generateCode()
		require.NoError(t, err)
		require.Len(t, code, 6)
		require.GreaterOrEqual(t, code, "100000")
		require.LessOrEqual(t, code, "999999")
	}
}
