package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/xdooria-arena/pkg/web"
)

type experienceRequest struct {
	Amount int `json:"amount" binding:"gte=0"`
}

type levelResponse struct {
	LevelsGained int `json:"levels_gained"`
	Entity       any `json:"entity"`
}

// Me GET /players/me
func (h *Handler) Me(c *gin.Context) {
	p, err := h.players.Get(c.Request.Context(), playerID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	web.Success(c, p)
}

// Monsters GET /players/me/monsters
func (h *Handler) Monsters(c *gin.Context) {
	ms, err := h.players.Monsters(c.Request.Context(), playerID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	web.Success(c, ms)
}

// History GET /players/me/history?limit=N
func (h *Handler) History(c *gin.Context) {
	hist, err := h.players.History(c.Request.Context(), playerID(c), web.QueryInt(c, "limit", 0))
	if err != nil {
		h.fail(c, err)
		return
	}
	web.Success(c, hist)
}

// GrantPlayerExperience POST /players/me/experience
func (h *Handler) GrantPlayerExperience(c *gin.Context) {
	var req experienceRequest
	if !web.BindAndValidate(c, &req) {
		return
	}
	p, levels, err := h.players.GrantPlayerExperience(c.Request.Context(), playerID(c), req.Amount)
	if err != nil {
		h.fail(c, err)
		return
	}
	web.Success(c, levelResponse{LevelsGained: levels, Entity: p})
}

// Monster GET /monsters/:id
func (h *Handler) Monster(c *gin.Context) {
	id, ok := web.ParamInt64(c, "id")
	if !ok {
		return
	}
	m, err := h.players.Monster(c.Request.Context(), playerID(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	web.Success(c, m)
}

// GrantMonsterExperience POST /monsters/:id/experience
func (h *Handler) GrantMonsterExperience(c *gin.Context) {
	id, ok := web.ParamInt64(c, "id")
	if !ok {
		return
	}
	var req experienceRequest
	if !web.BindAndValidate(c, &req) {
		return
	}
	m, levels, err := h.players.GrantMonsterExperience(c.Request.Context(), playerID(c), id, req.Amount)
	if err != nil {
		h.fail(c, err)
		return
	}
	web.Success(c, levelResponse{LevelsGained: levels, Entity: m})
}

// UpgradeSkill POST /monsters/:id/skills/:slot/upgrade
func (h *Handler) UpgradeSkill(c *gin.Context) {
	id, ok := web.ParamInt64(c, "id")
	if !ok {
		return
	}
	slot, ok := web.ParamInt64(c, "slot")
	if !ok {
		return
	}
	m, err := h.players.UpgradeSkill(c.Request.Context(), playerID(c), id, int(slot))
	if err != nil {
		h.fail(c, err)
		return
	}
	web.Success(c, m)
}
