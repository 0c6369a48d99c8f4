package system

import (
	"context"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// Stats 一次采样结果
type Stats struct {
	// 进程 CPU 使用率，距上次采样的区间值 (0-100*核数)
	CPUPercent float64 `json:"cpu_percent"`
	// 进程 RSS 占物理内存比例 (0-100)
	MemoryPercent float64 `json:"memory_percent"`
	MemoryBytes   uint64  `json:"memory_bytes"`
	// 主机整体
	HostCPUPercent    float64   `json:"host_cpu_percent"`
	HostMemoryPercent float64   `json:"host_memory_percent"`
	Goroutines        int       `json:"goroutines"`
	SampledAt         time.Time `json:"sampled_at"`
}

// Collector 进程与主机资源采样器，由调用方决定采样节奏
type Collector struct {
	proc *process.Process

	mu   sync.RWMutex
	last Stats
}

// New 创建当前进程的采样器
func New() (*Collector, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, err
	}
	return &Collector{proc: proc}, nil
}

// Sample 采样一次并缓存结果
// 单项指标读取失败时保留零值，只有全部失败才返回错误
func (c *Collector) Sample(ctx context.Context) (Stats, error) {
	var (
		stats   Stats
		lastErr error
		ok      bool
	)

	if v, err := c.proc.CPUPercentWithContext(ctx); err == nil {
		stats.CPUPercent = v
		ok = true
	} else {
		lastErr = err
	}

	vm, vmErr := mem.VirtualMemoryWithContext(ctx)
	if vmErr == nil {
		stats.HostMemoryPercent = vm.UsedPercent
		ok = true
	} else {
		lastErr = vmErr
	}

	if info, err := c.proc.MemoryInfoWithContext(ctx); err == nil {
		stats.MemoryBytes = info.RSS
		if vmErr == nil && vm.Total > 0 {
			stats.MemoryPercent = float64(info.RSS) / float64(vm.Total) * 100
		}
		ok = true
	} else {
		lastErr = err
	}

	if p, err := cpu.PercentWithContext(ctx, 0, false); err == nil && len(p) > 0 {
		stats.HostCPUPercent = p[0]
		ok = true
	} else if err != nil {
		lastErr = err
	}

	stats.Goroutines = runtime.NumGoroutine()
	stats.SampledAt = time.Now()

	if !ok {
		return stats, lastErr
	}

	c.mu.Lock()
	c.last = stats
	c.mu.Unlock()
	return stats, nil
}

// Last 最近一次成功的采样
func (c *Collector) Last() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.last
}
