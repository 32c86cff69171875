package service

import (
	"context"
	"runtime"

	"github.com/Ritik-JS/alumni-careerpath/internal/domain/inference"
	"github.com/Ritik-JS/alumni-careerpath/pkg/logger"
	"github.com/Ritik-JS/alumni-careerpath/pkg/metrics"
)

// Model returns the loaded classifier's description.
func (s *Service) Model() inference.ModelInfo {
	if s.engine == nil {
		return inference.ModelInfo{}
	}
	return s.engine.Current().Info()
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) map[string]any {
	s.mu.RLock()
	stats := map[string]any{
		"started":    s.started,
		"queueSize":  s.queueSize,
		"dedupeSize": s.dedupeSize,
		"cache":      s.cache != nil,
		"jobs":       len(s.jobs),
	}
	if s.started {
		stats["queueLength"] = s.jobQueue.Len(ctx)
		stats["pendingJobs"] = s.deduper.Size()
		metrics.UpdateJobQueue(s.jobQueue.Len(ctx), s.jobQueue.Capacity())
	}
	s.mu.RUnlock()

	info := s.Model()
	stats["modelLoaded"] = info.Loaded
	if info.Loaded {
		stats["modelVersion"] = info.Version
	}

	if s.stats != nil {
		c, err := s.stats.Counts(ctx)
		if err != nil {
			s.logger.Warn(ctx, "stats counts unavailable", logger.Error(err))
			stats["datasource"] = "unavailable"
		} else {
			stats["profiles"] = c.Profiles
			stats["transitions"] = c.Transitions
			stats["matrixEntries"] = c.MatrixEntries
			stats["predictions"] = c.Predictions
			stats["matrixVersion"] = c.MatrixVersion
		}
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
	return stats
}
