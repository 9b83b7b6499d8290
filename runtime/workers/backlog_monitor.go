package workers

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"
)

// Gauge names something whose length the monitor samples.
type Gauge struct {
	Name string
	Len  func() int
}

type Backlog struct {
	Name   string
	Length int
	Over   bool
}

// BacklogMonitor periodically samples queue lengths and the memory of the
// client process. Reading a queue length takes its lock only briefly, so
// sampling never interferes with the pumps.
type BacklogMonitor struct {
	log       *slog.Logger
	gauges    []Gauge
	interval  time.Duration
	threshold int
	process   *process.Process
}

func NewBacklogMonitor(log *slog.Logger, gauges []Gauge, interval time.Duration, threshold int) *BacklogMonitor {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		log.Debug("Process stats unavailable", "error", err)
		p = nil
	}
	return &BacklogMonitor{log: log, gauges: gauges, interval: interval, threshold: threshold, process: p}
}

func (w *BacklogMonitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping backlog monitor")
			return nil
		case <-ticker.C:
			for _, backlog := range w.Sample() {
				if backlog.Over {
					w.log.Warn("Backlog above threshold", "name", backlog.Name, "length", backlog.Length, "threshold", w.threshold)
					continue
				}
				w.log.Debug("Backlog", "name", backlog.Name, "length", backlog.Length)
			}
			w.logProcessStats()
		}
	}
}

// Sample reads every gauge once.
func (w *BacklogMonitor) Sample() []Backlog {
	backlogs := make([]Backlog, 0, len(w.gauges))
	for _, gauge := range w.gauges {
		length := gauge.Len()
		backlogs = append(backlogs, Backlog{
			Name:   gauge.Name,
			Length: length,
			Over:   w.threshold > 0 && length >= w.threshold,
		})
	}
	return backlogs
}

func (w *BacklogMonitor) logProcessStats() {
	if w.process == nil {
		return
	}
	memInfo, err := w.process.MemoryInfo()
	if err != nil {
		w.log.Debug("Failed to collect self stats", "error", err)
		return
	}
	cpuPercent, err := w.process.CPUPercent()
	if err != nil {
		w.log.Debug("Failed to collect self stats", "error", err)
		return
	}
	w.log.Debug("Client stats", "rss_bytes", memInfo.RSS, "cpu_percent", cpuPercent)
}
