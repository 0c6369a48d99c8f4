package repository

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/xdooria-arena/app/arena/internal/model"
)

var _ RosterRepository = (*MemoryRepository)(nil)

// MemoryRepository 进程内存储，用于单机部署与测试
type MemoryRepository struct {
	mu       sync.RWMutex
	players  map[int64]*model.Player
	monsters map[int64]*model.Monster
	battles  []*model.BattleRecord
	rumbles  []*model.RumbleRecord
	summons  []*model.SummonRecord
}

// NewMemoryRepository 创建内存存储
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		players:  make(map[int64]*model.Player),
		monsters: make(map[int64]*model.Monster),
	}
}

func (r *MemoryRepository) EnsurePlayer(_ context.Context, p *model.Player) (*model.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.players[p.ID]; ok {
		return existing.Clone(), nil
	}
	stored := p.Clone()
	stored.MonsterIDs = nil
	r.players[p.ID] = stored
	return stored.Clone(), nil
}

func (r *MemoryRepository) GetPlayer(_ context.Context, id int64) (*model.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.players[id]
	if !ok {
		return nil, errors.Wrapf(model.ErrNotFound, "player %d", id)
	}
	return p.Clone(), nil
}

func (r *MemoryRepository) GetPlayerForWrite(ctx context.Context, id int64) (*model.Player, error) {
	return r.GetPlayer(ctx, id)
}

func (r *MemoryRepository) UpdatePlayer(_ context.Context, id int64, fn func(p *model.Player) error) (*model.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.players[id]
	if !ok {
		return nil, errors.Wrapf(model.ErrNotFound, "player %d", id)
	}
	p := stored.Clone()
	if err := fn(p); err != nil {
		return nil, err
	}
	stored.Progress = p.Progress
	stored.MaxMonsters = p.MaxMonsters
	stored.UpdatedAt = p.UpdatedAt
	return stored.Clone(), nil
}

func (r *MemoryRepository) GetMonster(_ context.Context, id int64) (*model.Monster, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.monsters[id]
	if !ok {
		return nil, errors.Wrapf(model.ErrNotFound, "monster %d", id)
	}
	return m.Clone(), nil
}

func (r *MemoryRepository) GetMonsters(_ context.Context, ids []int64) ([]*model.Monster, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*model.Monster, 0, len(ids))
	for _, id := range ids {
		m, ok := r.monsters[id]
		if !ok {
			return nil, errors.Wrapf(model.ErrNotFound, "monster %d", id)
		}
		out = append(out, m.Clone())
	}
	return out, nil
}

func (r *MemoryRepository) ListMonsters(_ context.Context, playerID int64) ([]*model.Monster, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.players[playerID]
	if !ok {
		return nil, errors.Wrapf(model.ErrNotFound, "player %d", playerID)
	}
	out := make([]*model.Monster, 0, len(p.MonsterIDs))
	for _, id := range p.MonsterIDs {
		out = append(out, r.monsters[id].Clone())
	}
	return out, nil
}

func (r *MemoryRepository) UpdateMonster(_ context.Context, id int64, fn func(m *model.Monster) error) (*model.Monster, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.monsters[id]
	if !ok {
		return nil, errors.Wrapf(model.ErrNotFound, "monster %d", id)
	}
	m := stored.Clone()
	if err := fn(m); err != nil {
		return nil, err
	}
	r.monsters[id] = m.Clone()
	return m, nil
}

func (r *MemoryRepository) saveMonsterLocked(m *model.Monster) error {
	if _, ok := r.monsters[m.ID]; !ok {
		return errors.Wrapf(model.ErrNotFound, "monster %d", m.ID)
	}
	r.monsters[m.ID] = m.Clone()
	return nil
}

func (r *MemoryRepository) AddMonsters(_ context.Context, playerID int64, monsters []*model.Monster, summons []*model.SummonRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.players[playerID]
	if !ok {
		return errors.Wrapf(model.ErrNotFound, "player %d", playerID)
	}
	if len(monsters) > p.Available() {
		return errors.Wrapf(model.ErrCapacityExceeded, "player %d has %d free slots, adding %d", playerID, p.Available(), len(monsters))
	}
	for _, m := range monsters {
		if _, dup := r.monsters[m.ID]; dup {
			return errors.Newf("monster %d already exists", m.ID)
		}
	}

	for _, m := range monsters {
		r.monsters[m.ID] = m.Clone()
		p.MonsterIDs = append(p.MonsterIDs, m.ID)
	}
	for _, s := range summons {
		c := *s
		r.summons = append(r.summons, &c)
	}
	return nil
}

// checkMonstersLocked 提交前确认所有怪物存在，保证提交要么全部成功要么不修改
func (r *MemoryRepository) checkMonstersLocked(monsters []*model.Monster) error {
	for _, m := range monsters {
		if _, ok := r.monsters[m.ID]; !ok {
			return errors.Wrapf(model.ErrNotFound, "monster %d", m.ID)
		}
	}
	return nil
}

func (r *MemoryRepository) CommitBattle(_ context.Context, rec *model.BattleRecord, monsters ...*model.Monster) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkMonstersLocked(monsters); err != nil {
		return err
	}
	for _, m := range monsters {
		_ = r.saveMonsterLocked(m)
	}
	c := *rec
	r.battles = append(r.battles, &c)
	return nil
}

func (r *MemoryRepository) CommitRumble(_ context.Context, rec *model.RumbleRecord, monsters ...*model.Monster) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkMonstersLocked(monsters); err != nil {
		return err
	}
	for _, m := range monsters {
		_ = r.saveMonsterLocked(m)
	}
	c := *rec
	r.rumbles = append(r.rumbles, &c)
	return nil
}

func (r *MemoryRepository) GetBattle(_ context.Context, id int64) (*model.BattleRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, b := range r.battles {
		if b.ID == id {
			c := *b
			return &c, nil
		}
	}
	return nil, errors.Wrapf(model.ErrNotFound, "battle %d", id)
}

func (r *MemoryRepository) GetRumble(_ context.Context, id int64) (*model.RumbleRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rr := range r.rumbles {
		if rr.ID == id {
			c := *rr
			return &c, nil
		}
	}
	return nil, errors.Wrapf(model.ErrNotFound, "rumble %d", id)
}

// newest 倒序取属于 playerID 的最近 limit 条
func newest[T any](items []*T, playerID int64, limit int, owner func(*T) int64) []*T {
	out := []*T{}
	for i := len(items) - 1; i >= 0 && len(out) < limit; i-- {
		if owner(items[i]) == playerID {
			c := *items[i]
			out = append(out, &c)
		}
	}
	return out
}

func (r *MemoryRepository) History(_ context.Context, playerID int64, limit int) (*model.History, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.players[playerID]; !ok {
		return nil, errors.Wrapf(model.ErrNotFound, "player %d", playerID)
	}
	return &model.History{
		Battles: newest(r.battles, playerID, limit, func(b *model.BattleRecord) int64 { return b.PlayerID }),
		Rumbles: newest(r.rumbles, playerID, limit, func(b *model.RumbleRecord) int64 { return b.PlayerID }),
		Summons: newest(r.summons, playerID, limit, func(s *model.SummonRecord) int64 { return s.PlayerID }),
	}, nil
}

func (r *MemoryRepository) ListMonsterBattles(_ context.Context, monsterID int64, limit int) ([]*model.BattleRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*model.BattleRecord{}
	for i := len(r.battles) - 1; i >= 0 && len(out) < limit; i-- {
		b := r.battles[i]
		if b.MonsterA == monsterID || b.MonsterB == monsterID {
			c := *b
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *MemoryRepository) ListUnprocessedSummons(_ context.Context, before time.Time, limit int) ([]*model.SummonRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*model.SummonRecord{}
	for _, s := range r.summons {
		if len(out) >= limit {
			break
		}
		if !s.Processed && s.CreatedAt.Before(before) {
			c := *s
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *MemoryRepository) MarkSummonsProcessed(_ context.Context, ids []int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.summons {
		if slices.Contains(ids, s.ID) {
			s.Processed = true
		}
	}
	return nil
}
