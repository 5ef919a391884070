package redis

import (
	"context"
	"fmt"
	"time"

	rd "github.com/redis/go-redis/v9"
)

// VerifyOutcome 是一次原子验证的结果码。
type VerifyOutcome int

const (
	VerifyOK       VerifyOutcome = iota // 摘要匹配，挑战已删除
	VerifyNotFound                      // 无活跃挑战（从未请求或已过期）
	VerifyLocked                        // 尝试次数已达上限
	VerifyMismatch                      // 摘要不匹配，attempts 已 +1
)

// luaVerifyChallenge：Redis 内原子「存在性 → 次数上限 → 比对 → 删除/计数」。
// 上限判断先于比对：次数用尽后即使提交正确码也拒绝。
// KEYS[1]=挑战key，ARGV[1]=提交码摘要，ARGV[2]=次数上限
// 返回：0=匹配成功，-1=不存在，-2=已锁定，>0=不匹配后的累计次数
const luaVerifyChallenge = `
local key = KEYS[1]
local submitted = ARGV[1]
local ceiling = tonumber(ARGV[2])
if redis.call('EXISTS', key) == 0 then
  return -1
end
local attempts = tonumber(redis.call('HGET', key, 'attempts') or '0')
if attempts >= ceiling then
  return -2
end
if redis.call('HGET', key, 'digest') == submitted then
  redis.call('DEL', key)
  return 0
end
return redis.call('HINCRBY', key, 'attempts', 1)
`

// ChallengeStore 以 Redis hash 保存 OTP 挑战：digest + attempts，TTL 到期自然失效。
type ChallengeStore struct {
	rdb *rd.Client
}

func NewChallengeStore(rdb *rd.Client) *ChallengeStore {
	return &ChallengeStore{rdb: rdb}
}

// Replace 写入新挑战并作废同号码的旧挑战（先删后建，attempts 归零）。
func (s *ChallengeStore) Replace(ctx context.Context, phone, digest string, ttl time.Duration) error {
	key := ChallengeKey(phone)
	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key,
		"digest", digest,
		"attempts", 0,
	)
	pipe.Expire(ctx, key, ttl)
	_, err := pipe.Exec(ctx)
	return err
}

// Verify 对一次提交做原子验证。并发验证同一号码时，
// 次数检查与计数在脚本内完成，不会双双越过上限。
func (s *ChallengeStore) Verify(ctx context.Context, phone, digest string, maxAttempts int) (VerifyOutcome, error) {
	key := ChallengeKey(phone)
	n, err := s.rdb.Eval(ctx, luaVerifyChallenge, []string{key}, digest, maxAttempts).Int()
	if err != nil {
		return VerifyMismatch, fmt.Errorf("verify challenge: %w", err)
	}
	switch {
	case n == 0:
		return VerifyOK, nil
	case n == -1:
		return VerifyNotFound, nil
	case n == -2:
		return VerifyLocked, nil
	default:
		return VerifyMismatch, nil
	}
}

// Delete 显式作废挑战（管理用途；正常消费由 Verify 原子删除）。
func (s *ChallengeStore) Delete(ctx context.Context, phone string) error {
	return s.rdb.Del(ctx, ChallengeKey(phone)).Err()
}
