package battle

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/xdooria-arena/app/arena/internal/model"
)

// Random 结算使用的随机源，Seed 记录到结果中用于回放
type Random interface {
	Intn(n int) int
	Seed() int64
}

// Resolver 对战与混战结算，无共享状态，可并发使用
// 参数只读，结算在克隆上进行；ID 与时间由调用方在持久化前填充
type Resolver struct {
	rules model.Rules
}

// NewResolver 创建结算器
func NewResolver(rules *model.Rules) *Resolver {
	if rules == nil {
		rules = model.DefaultRules()
	}
	return &Resolver{rules: *rules}
}

// ResolveBattle 1v1 对战，双方每回合各出手一次，1v1 不消耗随机数
func (r *Resolver) ResolveBattle(a, b *model.Monster, rnd Random) (*model.BattleRecord, error) {
	if a == nil || b == nil {
		return nil, errors.Wrap(model.ErrInvalidPairing, "missing combatant")
	}
	if a.ID == b.ID {
		return nil, errors.Wrapf(model.ErrInvalidPairing, "monster %d cannot fight itself", a.ID)
	}

	ca, cb := newCombatant(a), newCombatant(b)
	order := actingOrder([]*combatant{ca, cb})

	rec := &model.BattleRecord{
		MonsterA: a.ID,
		MonsterB: b.ID,
		ElementA: a.Element,
		ElementB: b.Element,
		Seed:     rnd.Seed(),
	}

	var winner, loser *combatant
	for round := 1; round <= r.rules.MaxRounds && winner == nil; round++ {
		rec.Rounds = round
		for _, actor := range order {
			target := ca
			if actor == ca {
				target = cb
			}
			action := actor.attack(target)
			rec.Actions = append(rec.Actions, action)
			rec.Log = append(rec.Log, actionLine(action, actor.m, target.m))
			if !target.alive() {
				winner, loser = actor, target
				rec.Decision = model.DecisionKnockout
				break
			}
		}
	}

	if winner == nil {
		winner, loser = ca, cb
		if hpFractionLess(ca, cb) || (hpFractionEqual(ca, cb) && cb.m.ID < ca.m.ID) {
			winner, loser = cb, ca
		}
		rec.Decision = model.DecisionHPFraction
	}

	rec.WinnerID = winner.m.ID
	rec.LoserID = loser.m.ID
	rec.Experience = r.rules.BattleBaseExp + loser.m.Level*r.rules.BattleLevelExp
	return rec, nil
}

// ResolveRumble 混战，每个存活者随机选择一个其他存活者攻击，直到只剩一个
func (r *Resolver) ResolveRumble(participants []*model.Monster, rnd Random) (*model.RumbleRecord, error) {
	minN := r.rules.MinRumbleParticipants
	if minN < 3 {
		minN = 3
	}
	if len(participants) < minN {
		return nil, errors.Wrapf(model.ErrInsufficientParticipants, "got %d participants, need at least %d", len(participants), minN)
	}
	seen := make(map[int64]struct{}, len(participants))
	for _, p := range participants {
		if p == nil {
			return nil, errors.Wrap(model.ErrInsufficientParticipants, "nil participant")
		}
		if _, dup := seen[p.ID]; dup {
			return nil, errors.Wrapf(model.ErrInsufficientParticipants, "duplicate participant %d", p.ID)
		}
		seen[p.ID] = struct{}{}
	}

	all := make([]*combatant, len(participants))
	rec := &model.RumbleRecord{
		ParticipantIDs: make([]int64, len(participants)),
		Participants:   make([]model.Snapshot, len(participants)),
		Seed:           rnd.Seed(),
	}
	for i, p := range participants {
		all[i] = newCombatant(p)
		rec.ParticipantIDs[i] = p.ID
		rec.Participants[i] = p.Snapshot()
	}

	alive := byID(all)
	for round := 1; round <= r.rules.MaxRounds && len(alive) > 1; round++ {
		rr := model.RumbleRound{Number: round}
		rec.Log = append(rec.Log, fmt.Sprintf("Round %d begins, remaining monsters: %s", round, labels(alive)))

		for _, actor := range actingOrder(alive) {
			if !actor.alive() {
				continue
			}
			targets := others(alive, actor)
			if len(targets) == 0 {
				break
			}
			target := targets[rnd.Intn(len(targets))]

			action := actor.attack(target)
			rr.Actions = append(rr.Actions, action)
			rec.Log = append(rec.Log, actionLine(action, actor.m, target.m))

			if !target.alive() {
				alive = remove(alive, target)
				rec.Log = append(rec.Log, fmt.Sprintf("%s has been defeated!", target.m.Label()))
			}
		}

		rr.RemainingMonsterIDs = ids(alive)
		rec.Rounds = append(rec.Rounds, rr)
		rec.Log = append(rec.Log, fmt.Sprintf("Round %d ends, remaining monsters: %d", round, len(alive)))
	}

	winner := alive[0]
	rec.Decision = model.DecisionKnockout
	if len(alive) > 1 {
		rec.Decision = model.DecisionHPFraction
		for _, c := range alive[1:] {
			if rumbleBetter(c, winner) {
				winner = c
			}
		}
	}

	rec.WinnerID = winner.m.ID
	rec.Experience = r.rules.RumbleBaseExp * len(participants)
	rec.Log = append(rec.Log, fmt.Sprintf("%s is the final victor!", winner.m.Label()))
	return rec, nil
}

// rumbleBetter 回合上限时的比较：剩余血量高者胜，其次血量比例，再次 ID 小者
func rumbleBetter(c, best *combatant) bool {
	if c.hp != best.hp {
		return c.hp > best.hp
	}
	if !hpFractionEqual(c, best) {
		return hpFractionLess(best, c)
	}
	return c.m.ID < best.m.ID
}

func byID(cs []*combatant) []*combatant {
	out := make([]*combatant, len(cs))
	copy(out, cs)
	sort.Slice(out, func(i, j int) bool { return out[i].m.ID < out[j].m.ID })
	return out
}

// others alive 已按 ID 升序，结果保持该顺序
func others(alive []*combatant, self *combatant) []*combatant {
	out := make([]*combatant, 0, len(alive)-1)
	for _, c := range alive {
		if c != self {
			out = append(out, c)
		}
	}
	return out
}

func remove(alive []*combatant, dead *combatant) []*combatant {
	out := alive[:0:0]
	for _, c := range alive {
		if c != dead {
			out = append(out, c)
		}
	}
	return out
}

func ids(cs []*combatant) []int64 {
	out := make([]int64, len(cs))
	for i, c := range cs {
		out[i] = c.m.ID
	}
	return out
}

func labels(cs []*combatant) string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = c.m.Label()
	}
	return strings.Join(parts, ", ")
}
