package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/moebelhaus/shop-backend/apperr"
)

// Claims session token 內容，jti 用於登出後撤銷
type Claims struct {
	OpenID string `json:"openId"`
	Name   string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// 剩餘有效時間，撤銷 token 時作為黑名單的 TTL
func (c *Claims) RemainingTTL(now time.Time) time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	return c.ExpiresAt.Sub(now)
}

// 生成JWT Token
func GenerateToken(secret []byte, openID, name string, ttl time.Duration) (string, *Claims, error) {
	if len(secret) == 0 {
		return "", nil, errors.New("jwt secret 未設定")
	}
	if openID == "" {
		return "", nil, apperr.Validation("缺少 openId")
	}
	now := time.Now()
	claims := &Claims{
		OpenID: openID,
		Name:   name,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", nil, err
	}
	return tokenString, claims, nil
}

// 驗證JWT Token並回傳內容
func VerifyToken(secret []byte, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnauthenticated, err, "無效的登入憑證")
	}
	if !token.Valid {
		return nil, apperr.New(apperr.KindUnauthenticated, "無效的登入憑證")
	}
	if claims.OpenID == "" || claims.ExpiresAt == nil {
		return nil, apperr.New(apperr.KindUnauthenticated, "登入憑證缺少必要欄位")
	}
	return claims, nil
}
