package repository

import (
	"context"
	"time"

	"github.com/lk2023060901/xdooria-arena/app/arena/internal/model"
)

// RosterRepository 玩家、怪物与历史记录的存储
// 返回的对象都是副本，修改后需显式保存
// 同一实体的并发修改由上层的 LockManager 串行化
type RosterRepository interface {
	// EnsurePlayer 玩家不存在时以 p 创建，返回存储中的玩家
	EnsurePlayer(ctx context.Context, p *model.Player) (*model.Player, error)
	// GetPlayer 只读，可能来自缓存，不能作为写回的依据
	GetPlayer(ctx context.Context, id int64) (*model.Player, error)
	// GetPlayerForWrite 绕过缓存读取最新状态，供持锁的写路径做决策
	GetPlayerForWrite(ctx context.Context, id int64) (*model.Player, error)
	// UpdatePlayer 读取存储中的最新状态交给 fn 修改后写回等级与容量，fn 出错时不写入
	UpdatePlayer(ctx context.Context, id int64, fn func(p *model.Player) error) (*model.Player, error)

	// GetMonster 只读，可能来自缓存
	GetMonster(ctx context.Context, id int64) (*model.Monster, error)
	// GetMonsters 按 ids 顺序返回，任一不存在时返回 ErrNotFound
	GetMonsters(ctx context.Context, ids []int64) ([]*model.Monster, error)
	// ListMonsters 按获得顺序列出
	ListMonsters(ctx context.Context, playerID int64) ([]*model.Monster, error)
	// UpdateMonster 同 UpdatePlayer，读取绕过缓存
	UpdateMonster(ctx context.Context, id int64, fn func(m *model.Monster) error) (*model.Monster, error)

	// AddMonsters 原子地加入新怪物与召唤日志，超出容量时整体失败并返回 ErrCapacityExceeded
	AddMonsters(ctx context.Context, playerID int64, monsters []*model.Monster, summons []*model.SummonRecord) error
	// CommitBattle 原子地写入对战记录与成长后的怪物
	CommitBattle(ctx context.Context, rec *model.BattleRecord, monsters ...*model.Monster) error
	CommitRumble(ctx context.Context, rec *model.RumbleRecord, monsters ...*model.Monster) error

	GetBattle(ctx context.Context, id int64) (*model.BattleRecord, error)
	GetRumble(ctx context.Context, id int64) (*model.RumbleRecord, error)
	// History 各类记录最近 limit 条，新的在前
	History(ctx context.Context, playerID int64, limit int) (*model.History, error)
	// ListMonsterBattles 怪物作为任一方参与的最近 limit 场对战，新的在前
	ListMonsterBattles(ctx context.Context, monsterID int64, limit int) ([]*model.BattleRecord, error)

	// ListUnprocessedSummons 早于 before 且未投递的召唤日志
	ListUnprocessedSummons(ctx context.Context, before time.Time, limit int) ([]*model.SummonRecord, error)
	MarkSummonsProcessed(ctx context.Context, ids []int64) error
}
