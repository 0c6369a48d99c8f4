package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/xdooria-arena/app/arena/internal/model"
	"github.com/lk2023060901/xdooria-arena/pkg/web"
)

type summonRequest struct {
	Seed *int64 `json:"seed"`
}

type batchSummonRequest struct {
	Count int    `json:"count" binding:"required,gt=0"`
	Seed  *int64 `json:"seed"`
}

type batchSummonResponse struct {
	Requested int              `json:"requested"`
	Summoned  int              `json:"summoned"`
	Monsters  []*model.Monster `json:"monsters"`
}

// SummonOne POST /summons
func (h *Handler) SummonOne(c *gin.Context) {
	var req summonRequest
	if !bindOptional(c, &req) {
		return
	}
	m, err := h.summons.SummonOne(c.Request.Context(), playerID(c), req.Seed)
	if err != nil {
		h.fail(c, err)
		return
	}
	web.Success(c, m)
}

// SummonMany POST /summons/batch，空位不足时只返回召唤成功的部分
func (h *Handler) SummonMany(c *gin.Context) {
	var req batchSummonRequest
	if !web.BindAndValidate(c, &req) {
		return
	}
	ms, err := h.summons.SummonMany(c.Request.Context(), playerID(c), req.Count, req.Seed)
	if err != nil {
		h.fail(c, err)
		return
	}
	web.Success(c, batchSummonResponse{
		Requested: req.Count,
		Summoned:  len(ms),
		Monsters:  ms,
	})
}

// Templates GET /templates
func (h *Handler) Templates(c *gin.Context) {
	pool, err := h.catalog.Templates(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	web.Success(c, pool)
}
