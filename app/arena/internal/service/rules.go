package service

import (
	"sync/atomic"

	"github.com/lk2023060901/xdooria-arena/app/arena/internal/model"
	"github.com/lk2023060901/xdooria-arena/pkg/config"
	"github.com/lk2023060901/xdooria-arena/pkg/logger"
)

// RuleSet 当前生效的规则，配置热更新时整体替换
type RuleSet struct {
	v atomic.Pointer[model.Rules]
}

// NewRuleSet 合并默认规则后创建
func NewRuleSet(r *model.Rules) (*RuleSet, error) {
	merged, err := config.MergeConfig(model.DefaultRules(), r)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(merged); err != nil {
		return nil, err
	}
	rs := &RuleSet{}
	rs.v.Store(merged)
	return rs, nil
}

// Load 返回当前规则，调用方不得修改
func (rs *RuleSet) Load() *model.Rules {
	return rs.v.Load()
}

// Update 校验并替换规则，校验失败时保留旧规则
func (rs *RuleSet) Update(r *model.Rules) error {
	merged, err := config.MergeConfig(model.DefaultRules(), r)
	if err != nil {
		return err
	}
	if err := config.Validate(merged); err != nil {
		return err
	}
	rs.v.Store(merged)
	return nil
}

// WatchRules 配置文件变化时重新读取 rules 段
func WatchRules(mgr config.Manager, rs *RuleSet, l logger.Logger) error {
	log := l.Named("service.rules")
	return mgr.Watch(func() {
		// 在当前规则的副本上解码，文件中缺失的键保持原值
		r := *rs.Load()
		if err := mgr.UnmarshalKey("rules", &r); err != nil {
			log.Error("failed to decode rules", "error", err)
			return
		}
		if err := rs.Update(&r); err != nil {
			log.Error("rejected rules update", "error", err)
			return
		}
		log.Info("rules reloaded", "max_rounds", rs.Load().MaxRounds, "max_batch", rs.Load().MaxBatch)
	})
}
