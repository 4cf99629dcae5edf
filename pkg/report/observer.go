package report

import (
	"context"

	"github.com/XiaoConstantine/mosa-go/pkg/core"
	"github.com/XiaoConstantine/mosa-go/pkg/logging"
	"github.com/XiaoConstantine/mosa-go/pkg/metrics"
)

// LogObserver writes one structured log line per generation: the coverage
// headline numbers, the way DynaMOSA-style searches are usually followed
// from a terminal.
type LogObserver struct {
	logger *logging.Logger
}

// NewLogObserver creates a LogObserver on the global logger.
func NewLogObserver() *LogObserver {
	return &LogObserver{logger: logging.GetLogger()}
}

func (o *LogObserver) OnGeneration(ctx context.Context, snap *core.GenerationSnapshot) {
	stats := metrics.Summarize(snap)
	o.logger.Info(ctx, "generation %d: coverage %.1f%% (covered=%d current=%d uncovered=%d) population=%d archive=%d",
		stats.Generation, stats.Coverage*100, stats.Covered, stats.Current,
		stats.Uncovered, stats.PopulationSize, stats.ArchiveSize)
}
