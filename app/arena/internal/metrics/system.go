package metrics

import (
	"context"

	"github.com/lk2023060901/xdooria-arena/pkg/logger"
	"github.com/lk2023060901/xdooria-arena/pkg/metrics/system"
)

// SystemReporter 把资源采样写入 gauge，由定时任务驱动
type SystemReporter struct {
	collector *system.Collector
	metrics   *ArenaMetrics
	logger    logger.Logger
}

// NewSystemReporter 创建资源上报器
func NewSystemReporter(m *ArenaMetrics, l logger.Logger) (*SystemReporter, error) {
	c, err := system.New()
	if err != nil {
		return nil, err
	}
	return &SystemReporter{
		collector: c,
		metrics:   m,
		logger:    l.Named("metrics.system"),
	}, nil
}

// Sample 采样一次
func (r *SystemReporter) Sample(ctx context.Context) error {
	stats, err := r.collector.Sample(ctx)
	if err != nil {
		return err
	}
	r.metrics.RecordSystem(stats.CPUPercent, stats.MemoryPercent, stats.HostCPUPercent, stats.HostMemoryPercent)
	r.logger.Debug("system sampled",
		"cpu_percent", stats.CPUPercent,
		"memory_bytes", stats.MemoryBytes,
		"goroutines", stats.Goroutines,
	)
	return nil
}

// Last 最近一次采样
func (r *SystemReporter) Last() system.Stats {
	return r.collector.Last()
}
