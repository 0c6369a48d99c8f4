package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/xdooria-arena/pkg/web"
)

type battleRequest struct {
	MonsterA int64  `json:"monster_a" binding:"required,gt=0"`
	MonsterB int64  `json:"monster_b" binding:"required,gt=0"`
	Seed     *int64 `json:"seed"`
}

type rumbleRequest struct {
	// MonsterIDs 为空时从自己的名单中随机选取
	MonsterIDs []int64 `json:"monster_ids" binding:"omitempty,dive,gt=0"`
	Seed       *int64  `json:"seed"`
}

// Battle POST /battles
func (h *Handler) Battle(c *gin.Context) {
	var req battleRequest
	if !web.BindAndValidate(c, &req) {
		return
	}
	rec, err := h.battles.Battle(c.Request.Context(), playerID(c), req.MonsterA, req.MonsterB, req.Seed)
	if err != nil {
		h.fail(c, err)
		return
	}
	web.Success(c, rec)
}

// GetBattle GET /battles/:id
func (h *Handler) GetBattle(c *gin.Context) {
	id, ok := web.ParamInt64(c, "id")
	if !ok {
		return
	}
	rec, err := h.battles.GetBattle(c.Request.Context(), playerID(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	web.Success(c, rec)
}

// Rumble POST /rumbles
func (h *Handler) Rumble(c *gin.Context) {
	var req rumbleRequest
	if !bindOptional(c, &req) {
		return
	}
	rec, err := h.battles.Rumble(c.Request.Context(), playerID(c), req.MonsterIDs, req.Seed)
	if err != nil {
		h.fail(c, err)
		return
	}
	web.Success(c, rec)
}

// MonsterBattles GET /monsters/:id/battles?limit=N
func (h *Handler) MonsterBattles(c *gin.Context) {
	id, ok := web.ParamInt64(c, "id")
	if !ok {
		return
	}
	recs, err := h.battles.MonsterBattles(c.Request.Context(), playerID(c), id, web.QueryInt(c, "limit", 0))
	if err != nil {
		h.fail(c, err)
		return
	}
	web.Success(c, recs)
}

// GetRumble GET /rumbles/:id
func (h *Handler) GetRumble(c *gin.Context) {
	id, ok := web.ParamInt64(c, "id")
	if !ok {
		return
	}
	rec, err := h.battles.GetRumble(c.Request.Context(), playerID(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	web.Success(c, rec)
}
