package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/net"
	"github.com/shirou/gopsutil/v4/process"
)

// HostProvider метрики текущего хоста через gopsutil
type HostProvider struct{}

// NewHostProvider создает провайдер хоста
func NewHostProvider() *HostProvider {
	return &HostProvider{}
}

// CPUPercent загрузка CPU за interval, 0 означает с прошлого вызова
func (HostProvider) CPUPercent(ctx context.Context, interval time.Duration) (float64, error) {
	percentages, err := cpu.PercentWithContext(ctx, interval, false)
	if err != nil {
		return 0, err
	}
	if len(percentages) == 0 {
		return 0, errors.New("no cpu samples")
	}
	return percentages[0], nil
}

// MemoryPercent занятая память в процентах
func (HostProvider) MemoryPercent(ctx context.Context) (float64, error) {
	v, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return 0, err
	}
	return v.UsedPercent, nil
}

// DiskPercent занятое место на разделе path
func (HostProvider) DiskPercent(ctx context.Context, path string) (float64, error) {
	d, err := disk.UsageWithContext(ctx, path)
	if err != nil {
		return 0, err
	}
	return d.UsedPercent, nil
}

// OSDescription название и версия ОС
func (HostProvider) OSDescription(ctx context.Context) (string, error) {
	info, err := host.InfoWithContext(ctx)
	if err != nil {
		return "", err
	}
	desc := fmt.Sprintf("%s-%s-%s", info.OS, info.KernelVersion, info.KernelArch)
	if info.Platform != "" {
		desc += fmt.Sprintf(" (%s %s)", info.Platform, info.PlatformVersion)
	}
	return desc, nil
}

// BootTime время загрузки хоста
func (HostProvider) BootTime(ctx context.Context) (time.Time, error) {
	boot, err := host.BootTimeWithContext(ctx)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(int64(boot), 0), nil
}

// ProcessCount число процессов
func (HostProvider) ProcessCount(ctx context.Context) (int, error) {
	pids, err := process.PidsWithContext(ctx)
	if err != nil {
		return 0, err
	}
	return len(pids), nil
}

// NetCounters отправлено и получено байт по всем интерфейсам
func (HostProvider) NetCounters(ctx context.Context) (uint64, uint64, error) {
	counters, err := net.IOCountersWithContext(ctx, false)
	if err != nil {
		return 0, 0, err
	}
	if len(counters) == 0 {
		return 0, 0, errors.New("no network counters")
	}
	return counters[0].BytesSent, counters[0].BytesRecv, nil
}
