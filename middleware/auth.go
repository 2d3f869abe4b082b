package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/moebelhaus/shop-backend/config"
	"github.com/moebelhaus/shop-backend/jwt"
	"github.com/moebelhaus/shop-backend/models"
	"github.com/moebelhaus/shop-backend/repository"
	"go.uber.org/zap"
)

const (
	ContextUser   = "User"
	ContextClaims = "Claims"
	ContextToken  = "Token"
)

type UserStore interface {
	UpsertUser(ctx context.Context, identity repository.Identity, ownerOpenID string) (*models.User, error)
}

type RevocationList interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// 先讀 Authorization header，沒有再讀 session cookie
func tokenFromRequest(c *gin.Context, cookieName string) string {
	if authHeader := c.GetHeader("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	if cookieName == "" {
		return ""
	}
	token, err := c.Cookie(cookieName)
	if err != nil {
		return ""
	}
	return token
}

// AuthMiddleware 驗證 token 並將使用者放入 context。
// 驗證失敗時以訪客身分繼續，由後面的 middleware 決定是否中止。
func AuthMiddleware(cfg config.AuthConfig, users UserStore, revoked RevocationList, log *zap.Logger) gin.HandlerFunc {
	log = log.Named("auth")
	secret := []byte(cfg.JWTSecret)

	return func(c *gin.Context) {
		token := tokenFromRequest(c, cfg.CookieName)
		if token == "" {
			c.Next()
			return
		}

		//如Token不合法或錯誤則視為未登入
		claims, err := jwt.VerifyToken(secret, token)
		if err != nil {
			log.Debug("無法驗證Token", zap.Error(err))
			c.Next()
			return
		}

		if revoked != nil {
			isRevoked, err := revoked.IsRevoked(c.Request.Context(), claims.ID)
			if err != nil {
				log.Warn("無法檢查Token黑名單", zap.Error(err))
			}
			if isRevoked {
				c.Next()
				return
			}
		}

		identity := repository.Identity{OpenID: claims.OpenID}
		if claims.Name != "" {
			identity.Name = &claims.Name
		}
		user, err := users.UpsertUser(c.Request.Context(), identity, cfg.OwnerOpenID)
		if err != nil {
			log.Error("無法讀取使用者", zap.String("openId", claims.OpenID), zap.Error(err))
			c.Next()
			return
		}

		c.Set(ContextToken, token)
		c.Set(ContextClaims, claims)
		c.Set(ContextUser, user)
		c.Next()
	}
}

func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(ContextUser); ok {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}

func CurrentClaims(c *gin.Context) *jwt.Claims {
	if v, ok := c.Get(ContextClaims); ok {
		if claims, ok := v.(*jwt.Claims); ok {
			return claims
		}
	}
	return nil
}
