package redis

import "fmt"

// ChallengeKey 统一约定 OTP 挑战键名，按手机号隔离。
func ChallengeKey(phone string) string {
	return fmt.Sprintf("dinehub:otp:challenge:%s", phone)
}

// RateLimitPhoneKey 按手机号限流 request-otp 接口。
func RateLimitPhoneKey(phone string) string {
	return fmt.Sprintf("rate_limit:otp:phone:%s", phone)
}

// RateLimitIPKey 手机号解析失败时的降级限流键。
func RateLimitIPKey(ip string) string {
	return fmt.Sprintf("rate_limit:otp:ip:%s", ip)
}
