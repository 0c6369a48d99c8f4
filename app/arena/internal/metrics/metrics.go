package metrics

import (
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/lk2023060901/xdooria-arena/pkg/prometheus"
)

// ArenaMetrics 竞技场服务指标
// 所有 Record 方法允许 nil 接收者，测试与未开启指标时直接传 nil
type ArenaMetrics struct {
	// 结算指标
	BattleTotal    *prometheus.CounterVec   // 1v1 对战总数（按判定方式）
	BattleRounds   *prometheus.HistogramVec // 对战回合数
	RumbleTotal    *prometheus.CounterVec   // 混战总数（按判定方式）
	ResolveLatency *prometheus.HistogramVec // 结算耗时（按类型）

	// 召唤与成长
	SummonTotal  *prometheus.CounterVec // 召唤数（按模板、结果）
	LevelUpTotal *prometheus.CounterVec // 升级次数（按实体类型）

	// 数据库指标
	DBQueryTotal    *prometheus.CounterVec
	DBQueryDuration *prometheus.HistogramVec

	// 缓存指标
	CacheHitTotal  *prometheus.CounterVec
	CacheMissTotal *prometheus.CounterVec

	LockWait    *prometheus.HistogramVec // 获取实体锁等待时间
	EventsTotal *prometheus.CounterVec   // 历史事件发布（按主题、结果）

	// 资源占用，scope 为 process 或 host
	CPUPercent    *prometheus.GaugeVec
	MemoryPercent *prometheus.GaugeVec

	// 内部统计
	resolved atomic.Int64
}

// New 在 client 上注册全部指标
func New(client *prometheus.Client) (m *ArenaMetrics, err error) {
	defer func() {
		if r := recover(); r != nil {
			m, err = nil, fmt.Errorf("failed to register arena metrics: %v", r)
		}
	}()

	roundBuckets := []float64{1, 2, 3, 5, 8, 13, 21, 34, 55, 100}
	return &ArenaMetrics{
		BattleTotal:    client.MustNewCounter("battles_total", "1v1 对战总数", []string{"decision"}),
		BattleRounds:   client.MustNewHistogram("battle_rounds", "对战回合数", []string{"kind"}, roundBuckets),
		RumbleTotal:    client.MustNewCounter("rumbles_total", "混战总数", []string{"decision"}),
		ResolveLatency: client.MustNewHistogram("resolve_duration_seconds", "结算耗时", []string{"kind"}, nil),

		SummonTotal:  client.MustNewCounter("summons_total", "召唤总数", []string{"template_id", "result"}),
		LevelUpTotal: client.MustNewCounter("level_ups_total", "升级次数", []string{"entity"}),

		DBQueryTotal:    client.MustNewCounter("db_queries_total", "数据库查询总数", []string{"operation", "result"}),
		DBQueryDuration: client.MustNewHistogram("db_query_duration_seconds", "数据库查询延迟", []string{"operation"}, nil),

		CacheHitTotal:  client.MustNewCounter("cache_hits_total", "缓存命中", []string{"cache"}),
		CacheMissTotal: client.MustNewCounter("cache_misses_total", "缓存未命中", []string{"cache"}),

		LockWait:    client.MustNewHistogram("lock_wait_seconds", "实体锁等待时间", []string{"mode"}, nil),
		EventsTotal: client.MustNewCounter("events_total", "历史事件发布", []string{"topic", "result"}),

		CPUPercent:    client.MustNewGauge("cpu_percent", "CPU 使用率", []string{"scope"}),
		MemoryPercent: client.MustNewGauge("memory_percent", "内存使用率", []string{"scope"}),
	}, nil
}

func result(success bool) string {
	if success {
		return "success"
	}
	return "failed"
}

// RecordBattle 记录一次 1v1 结算
func (m *ArenaMetrics) RecordBattle(decision string, rounds int, duration float64) {
	if m == nil {
		return
	}
	m.resolved.Add(1)
	m.BattleTotal.WithLabelValues(decision).Inc()
	m.BattleRounds.WithLabelValues("battle").Observe(float64(rounds))
	m.ResolveLatency.WithLabelValues("battle").Observe(duration)
}

// RecordRumble 记录一次混战结算
func (m *ArenaMetrics) RecordRumble(decision string, rounds int, duration float64) {
	if m == nil {
		return
	}
	m.resolved.Add(1)
	m.RumbleTotal.WithLabelValues(decision).Inc()
	m.BattleRounds.WithLabelValues("rumble").Observe(float64(rounds))
	m.ResolveLatency.WithLabelValues("rumble").Observe(duration)
}

// RecordSummon 记录召唤结果，失败时 templateID 为 0
func (m *ArenaMetrics) RecordSummon(templateID int64, success bool) {
	if m == nil {
		return
	}
	m.SummonTotal.WithLabelValues(strconv.FormatInt(templateID, 10), result(success)).Inc()
}

// RecordLevelUp 记录升级
func (m *ArenaMetrics) RecordLevelUp(entity string, levels int) {
	if m == nil || levels <= 0 {
		return
	}
	m.LevelUpTotal.WithLabelValues(entity).Add(float64(levels))
}

// RecordDBQuery 记录数据库查询
func (m *ArenaMetrics) RecordDBQuery(operation string, success bool, duration float64) {
	if m == nil {
		return
	}
	m.DBQueryTotal.WithLabelValues(operation, result(success)).Inc()
	m.DBQueryDuration.WithLabelValues(operation).Observe(duration)
}

// RecordCacheHit 记录缓存命中
func (m *ArenaMetrics) RecordCacheHit(cache string) {
	if m == nil {
		return
	}
	m.CacheHitTotal.WithLabelValues(cache).Inc()
}

// RecordCacheMiss 记录缓存未命中
func (m *ArenaMetrics) RecordCacheMiss(cache string) {
	if m == nil {
		return
	}
	m.CacheMissTotal.WithLabelValues(cache).Inc()
}

// RecordLockWait 记录锁等待
func (m *ArenaMetrics) RecordLockWait(mode string, duration float64) {
	if m == nil {
		return
	}
	m.LockWait.WithLabelValues(mode).Observe(duration)
}

// RecordEvent 记录事件发布
func (m *ArenaMetrics) RecordEvent(topic string, success bool) {
	if m == nil {
		return
	}
	m.EventsTotal.WithLabelValues(topic, result(success)).Inc()
}

// RecordSystem 记录资源采样
func (m *ArenaMetrics) RecordSystem(processCPU, processMem, hostCPU, hostMem float64) {
	if m == nil {
		return
	}
	m.CPUPercent.WithLabelValues("process").Set(processCPU)
	m.CPUPercent.WithLabelValues("host").Set(hostCPU)
	m.MemoryPercent.WithLabelValues("process").Set(processMem)
	m.MemoryPercent.WithLabelValues("host").Set(hostMem)
}

// Resolved 已完成的结算次数
func (m *ArenaMetrics) Resolved() int64 {
	if m == nil {
		return 0
	}
	return m.resolved.Load()
}
