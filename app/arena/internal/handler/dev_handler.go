package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/xdooria-arena/pkg/security"
	"github.com/lk2023060901/xdooria-arena/pkg/web"
	codes "github.com/lk2023060901/xdooria-arena/pkg/web/errors"
)

type devTokenRequest struct {
	PlayerID int64  `json:"player_id" binding:"required,gt=0"`
	Username string `json:"username" binding:"omitempty,max=64"`
}

// DevToken POST /dev/token 为指定玩家签发 Token
func (h *Handler) DevToken(jwt *security.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req devTokenRequest
		if !web.BindAndValidate(c, &req) {
			return
		}
		payload := map[string]any{"uid": req.PlayerID}
		if req.Username != "" {
			payload["name"] = req.Username
		}
		token, err := jwt.GenerateToken(payload)
		if err != nil {
			h.logger.Error("failed to issue dev token", "player_id", req.PlayerID, "error", err)
			web.Error(c, codes.CodeInternalError, "internal error")
			return
		}
		web.Success(c, gin.H{"token": token})
	}
}
