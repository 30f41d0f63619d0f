package search

import "log/slog"

// RankMonitor provides hooks to observe a ranking request.
// Implement this interface to trace the stages of a semantic query.
type RankMonitor interface {
	Start(query string, threshold float32, limit Limit)
	AfterQueryEmbedding(dimension int)
	AfterScoring(scored, aboveThreshold int)
	Finish(returned int)
}

// noopMonitor is a no-op implementation of RankMonitor
type noopMonitor struct{}

var _ RankMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string, _ float32, _ Limit) {}
func (n *noopMonitor) AfterQueryEmbedding(_ int)          {}
func (n *noopMonitor) AfterScoring(_, _ int)              {}
func (n *noopMonitor) Finish(_ int)                       {}

// LogMonitor reports every stage to a logger at debug level.
type LogMonitor struct {
	Logger *slog.Logger
}

var _ RankMonitor = (*LogMonitor)(nil)

func (m *LogMonitor) logger() *slog.Logger {
	if m.Logger == nil {
		return slog.Default()
	}
	return m.Logger
}

func (m *LogMonitor) Start(query string, threshold float32, limit Limit) {
	m.logger().Debug("rank started", "query", query, "threshold", threshold, "limit", limit.String())
}

func (m *LogMonitor) AfterQueryEmbedding(dimension int) {
	m.logger().Debug("query embedded", "dimension", dimension)
}

func (m *LogMonitor) AfterScoring(scored, aboveThreshold int) {
	m.logger().Debug("candidates scored", "scored", scored, "above_threshold", aboveThreshold)
}

func (m *LogMonitor) Finish(returned int) {
	m.logger().Debug("rank finished", "returned", returned)
}
