package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/xdooria-arena/pkg/logger"
	"github.com/lk2023060901/xdooria-arena/pkg/security"
	codes "github.com/lk2023060901/xdooria-arena/pkg/web/errors"
)

const (
	// ClaimsKey gin.Context 中存储 Claims 的 key
	ClaimsKey = "jwt_claims"
	// PlayerIDKey gin.Context 中存储玩家 ID 的 key
	PlayerIDKey = "player_id"
)

// AuthConfig 认证配置
type AuthConfig struct {
	JWTManager *security.JWTManager
	// PlayerIDKey 载荷中玩家 ID 的 key，默认 "uid"
	PlayerIDKey string
	SkipPaths   []string
}

// Auth JWT 认证，成功后把玩家 ID 写入 gin.Context 与 request context
func Auth(cfg *AuthConfig) gin.HandlerFunc {
	idKey := cfg.PlayerIDKey
	if idKey == "" {
		idKey = "uid"
	}
	header := cfg.JWTManager.Config().HeaderName
	skipPaths := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skipPaths[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, skip := skipPaths[c.Request.URL.Path]; skip {
			c.Next()
			return
		}

		claims, err := cfg.JWTManager.ValidateToken(c.GetHeader(header))
		if err != nil {
			abortUnauthorized(c, err)
			return
		}

		var playerID int64
		if err := claims.UnmarshalKey(idKey, &playerID); err != nil || playerID <= 0 {
			abortUnauthorized(c, security.ErrTokenInvalid)
			return
		}

		c.Set(ClaimsKey, claims)
		c.Set(PlayerIDKey, playerID)
		c.Request = c.Request.WithContext(logger.WithPlayerID(c.Request.Context(), playerID))
		c.Next()
	}
}

// GetClaims 读取认证后的 Claims
func GetClaims(c *gin.Context) (*security.Claims, bool) {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*security.Claims)
	return claims, ok
}

// GetPlayerID 读取认证后的玩家 ID
func GetPlayerID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(PlayerIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

func abortUnauthorized(c *gin.Context, err error) {
	msg := "unauthorized"
	switch {
	case errors.Is(err, security.ErrTokenMissing):
		msg = "token is missing"
	case errors.Is(err, security.ErrTokenExpired):
		msg = "token has expired"
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"code":    codes.CodeUnAuthorized,
		"message": msg,
		"data":    nil,
	})
}
