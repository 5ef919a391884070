package otp

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"time"

	"gorm.io/gorm"

	"dinehub/internal/auth"
	"dinehub/internal/model"
	"dinehub/internal/sms"
	rediskey "dinehub/pkg/redis"
)

// 每种失败模式一个可区分错误，路由层据此映射状态码与提示语。
var (
	ErrInvalidPhone      = errors.New("invalid phone number")
	ErrExpiredOrNotFound = errors.New("otp expired or not found")
	ErrTooManyAttempts   = errors.New("too many attempts, request a new otp")
	ErrInvalidCode       = errors.New("invalid otp")
)

// ChallengeStore 是挑战状态的过期存储抽象。
// Verify 必须原子完成「存在性 → 次数上限 → 比对 → 删除/计数」，
// 避免并发验证同时越过上限。
type ChallengeStore interface {
	Replace(ctx context.Context, phone, digest string, ttl time.Duration) error
	Verify(ctx context.Context, phone, digest string, maxAttempts int) (rediskey.VerifyOutcome, error)
}

// Service 实现 OTP 登录状态机：请求挑战、验证挑战、签发顾客凭证。
type Service struct {
	store  ChallengeStore
	db     *gorm.DB
	sender sms.Sender
	issuer *auth.TokenIssuer

	ttl         time.Duration
	maxAttempts int
}

func NewService(store ChallengeStore, db *gorm.DB, sender sms.Sender, issuer *auth.TokenIssuer, ttl time.Duration, maxAttempts int) *Service {
	return &Service{
		store:       store,
		db:          db,
		sender:      sender,
		issuer:      issuer,
		ttl:         ttl,
		maxAttempts: maxAttempts,
	}
}

// Request 为手机号签发新挑战：
// 同号码旧挑战作废（单活跃挑战），attempts 归零，验证码只走短信通道，不回给调用方。
func (s *Service) Request(ctx context.Context, phone string) error {
	if !ValidPhone(phone) {
		return ErrInvalidPhone
	}

	code, err := generateCode()
	if err != nil {
		return fmt.Errorf("generate otp: %w", err)
	}

	if err := s.store.Replace(ctx, phone, digest(code), s.ttl); err != nil {
		return fmt.Errorf("store challenge: %w", err)
	}

	// 短信投递 fire-and-forget，无回执进入状态机。
	s.sender.Deliver(phone, fmt.Sprintf("Your login code is %s. Valid for %d minutes.", code, int(s.ttl.Minutes())))
	return nil
}

// Verify 校验提交码；成功则消费挑战、按手机号取或建顾客、签发 customer 凭证。
func (s *Service) Verify(ctx context.Context, phone, code string) (string, *model.Customer, error) {
	if !ValidPhone(phone) {
		return "", nil, ErrInvalidPhone
	}

	outcome, err := s.store.Verify(ctx, phone, digest(code), s.maxAttempts)
	if err != nil {
		return "", nil, err
	}
	switch outcome {
	case rediskey.VerifyNotFound:
		return "", nil, ErrExpiredOrNotFound
	case rediskey.VerifyLocked:
		return "", nil, ErrTooManyAttempts
	case rediskey.VerifyMismatch:
		return "", nil, ErrInvalidCode
	}

	customer, err := s.findOrCreateCustomer(phone)
	if err != nil {
		return "", nil, err
	}

	token, err := s.issuer.Issue(customer.ID, auth.PrincipalCustomer, "")
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}
	return token, customer, nil
}

// findOrCreateCustomer 首次验证成功时懒创建顾客记录。
// 并发创建撞唯一索引时回读一次即可。
func (s *Service) findOrCreateCustomer(phone string) (*model.Customer, error) {
	var customer model.Customer
	err := s.db.Where("phone = ?", phone).First(&customer).Error
	if err == nil {
		return &customer, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	customer = model.Customer{Phone: phone, IsActive: true}
	if createErr := s.db.Create(&customer).Error; createErr != nil {
		if readErr := s.db.Where("phone = ?", phone).First(&customer).Error; readErr != nil {
			return nil, createErr
		}
	}
	return &customer, nil
}

// generateCode 在 [100000, 999999] 上均匀取 6 位码，首位不为 0。
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// digest 只存验证码摘要，比对走摘要而非明文。
func digest(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}
