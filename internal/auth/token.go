package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"dinehub/internal/model"
)

// PrincipalType 区分凭证主体：员工（密码登录）与顾客（OTP 登录）。
type PrincipalType string

const (
	PrincipalStaff    PrincipalType = "staff"
	PrincipalCustomer PrincipalType = "customer"
)

// Principal 是从会话凭证还原出的调用方身份。
type Principal struct {
	SubjectID uint
	Type      PrincipalType
	// Role 仅员工凭证携带
	Role model.UserRole
}

// ErrInvalidToken 凭证缺失、过期或签名不合法。
var ErrInvalidToken = errors.New("invalid token")

type sessionClaims struct {
	jwt.RegisteredClaims
	Type PrincipalType  `json:"typ"`
	Role model.UserRole `json:"role,omitempty"`
}

// TokenIssuer 签发与解析 HS256 会话凭证。
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl}
}

// Issue 为主体签发一个带 TTL 的凭证。
func (i *TokenIssuer) Issue(subjectID uint, ptype PrincipalType, role model.UserRole) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(subjectID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
		Type: ptype,
		Role: role,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

// Parse 校验凭证并还原 Principal。
func (i *TokenIssuer) Parse(token string) (Principal, error) {
	var claims sessionClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil || !parsed.Valid {
		return Principal{}, ErrInvalidToken
	}
	if claims.Type != PrincipalStaff && claims.Type != PrincipalCustomer {
		return Principal{}, ErrInvalidToken
	}
	id, err := strconv.ParseUint(claims.Subject, 10, 32)
	if err != nil {
		return Principal{}, ErrInvalidToken
	}
	return Principal{SubjectID: uint(id), Type: claims.Type, Role: claims.Role}, nil
}
