package telemetry

import (
	"context"
	"fmt"
	"log"
	"math"
	"strconv"
	"time"

	"smartai-dashboard/internal/models"
)

const (
	// AlertNormal значение при нормальной загрузке
	AlertNormal = "✅ Normal"

	cpuThreshold    = 85.0
	memoryThreshold = 90.0
	diskThreshold   = 90.0

	timeLayout = "2006-01-02 15:04:05"
)

// Provider источник метрик ОС
type Provider interface {
	CPUPercent(ctx context.Context, interval time.Duration) (float64, error)
	MemoryPercent(ctx context.Context) (float64, error)
	DiskPercent(ctx context.Context, path string) (float64, error)
	OSDescription(ctx context.Context) (string, error)
	BootTime(ctx context.Context) (time.Time, error)
	ProcessCount(ctx context.Context) (int, error)
	NetCounters(ctx context.Context) (sent, recv uint64, err error)
}

// Collector собирает срез телеметрии
type Collector struct {
	provider    Provider
	cpuInterval time.Duration
	diskPath    string
	now         func() time.Time
}

// NewCollector создает новый сборщик
func NewCollector(provider Provider) *Collector {
	return &Collector{
		provider:    provider,
		cpuInterval: 500 * time.Millisecond,
		diskPath:    "/",
		now:         time.Now,
	}
}

// Snapshot возвращает срез метрик.
// Каждое поле деградирует к нейтральному значению независимо от остальных.
func (c *Collector) Snapshot(ctx context.Context) models.Snapshot {
	now := c.now()

	cpu, err := c.provider.CPUPercent(ctx, c.cpuInterval)
	if err != nil {
		log.Printf("telemetry: cpu: %v", err)
		cpu = 0
	}
	memory, err := c.provider.MemoryPercent(ctx)
	if err != nil {
		log.Printf("telemetry: memory: %v", err)
		memory = 0
	}
	disk, err := c.provider.DiskPercent(ctx, c.diskPath)
	if err != nil {
		log.Printf("telemetry: disk: %v", err)
		disk = 0
	}

	osName, err := c.provider.OSDescription(ctx)
	if err != nil {
		osName = "unknown"
	}

	uptime := "N/A"
	if boot, err := c.provider.BootTime(ctx); err == nil {
		uptime = FormatUptime(now.Sub(boot))
	}

	processes, err := c.provider.ProcessCount(ctx)
	if err != nil {
		processes = 0
	}

	var sentMB, recvMB float64
	if sent, recv, err := c.provider.NetCounters(ctx); err == nil {
		sentMB = toMB(sent)
		recvMB = toMB(recv)
	}

	cpu, memory, disk = round(cpu, 1), round(memory, 1), round(disk, 1)

	return models.Snapshot{
		Time:       now.Format(timeLayout),
		CPUPercent: cpu,
		Memory:     memory,
		Disk:       disk,
		OS:         osName,
		Uptime:     uptime,
		Processes:  processes,
		NetSent:    sentMB,
		NetRecv:    recvMB,
		Alert:      DeriveAlert(cpu, memory, disk),
	}
}

// CPUPercent текущая загрузка CPU без ожидания интервала
func (c *Collector) CPUPercent(ctx context.Context) (float64, error) {
	v, err := c.provider.CPUPercent(ctx, 0)
	if err != nil {
		return 0, err
	}
	return round(v, 1), nil
}

// DeriveAlert классифицирует загрузку, первое совпадение побеждает
func DeriveAlert(cpu, memory, disk float64) string {
	switch {
	case cpu > cpuThreshold:
		return fmt.Sprintf("⚠️ High CPU usage: %s%%", FormatPercent(cpu))
	case memory > memoryThreshold:
		return fmt.Sprintf("⚠️ High Memory usage: %s%%", FormatPercent(memory))
	case disk > diskThreshold:
		return fmt.Sprintf("⚠️ Low Disk Space: %s%% used", FormatPercent(disk))
	default:
		return AlertNormal
	}
}

// FormatUptime форматирует как "{d}d hh:mm:ss"
func FormatUptime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	days := total / 86400
	hrs := (total % 86400) / 3600
	mins := (total % 3600) / 60
	secs := total % 60
	return fmt.Sprintf("%dd %02d:%02d:%02d", days, hrs, mins, secs)
}

// FormatPercent печатает процент с одним знаком после запятой
func FormatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func toMB(bytes uint64) float64 {
	return round(float64(bytes)/(1024*1024), 2)
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
