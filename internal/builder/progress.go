package builder

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Build phases reported through Progress.
const (
	PhaseRead  = "read"
	PhaseShard = "shard"
	PhaseDone  = "done"
)

// Progress tracks build progress.
type Progress struct {
	Phase          string
	RecordsRead    int64
	RecordsWritten int64
	ShardsCreated  int
	ShardsTotal    int
	StartTime      time.Time
}

// ProgressFunc is called periodically with progress updates.
// It may be called from several goroutines at once.
type ProgressFunc func(Progress)

// LogProgress returns a ProgressFunc that logs every update at debug level
// and the final summary at info level.
func LogProgress(logger *zap.Logger) ProgressFunc {
	return func(p Progress) {
		fields := []zap.Field{
			zap.String("phase", p.Phase),
			zap.Int64("read", p.RecordsRead),
			zap.Int64("written", p.RecordsWritten),
			zap.Int("shards", p.ShardsCreated),
			zap.String("elapsed", FormatDuration(time.Since(p.StartTime))),
		}
		if p.Phase == PhaseDone {
			logger.Info("build progress", fields...)
			return
		}
		logger.Debug("build progress", fields...)
	}
}

// FormatDuration formats d as "42s", "3m 5s" or "2h 10m".
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.0fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
}
