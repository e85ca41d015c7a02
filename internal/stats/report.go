package stats

import (
	"context"

	"github.com/verte-zerg/memverse/internal/model"
	"github.com/verte-zerg/memverse/internal/store"
)

// Report contains precomputed data for stats rendering.
type Report struct {
	Sessions []model.SessionAggregate
	Window   []model.SessionAggregate
	Passages []model.PassageAggregate
	Summary  Summary
}

// BuildReport loads and prepares data for stats rendering.
func BuildReport(ctx context.Context, st *store.Store, cfg model.StatsConfig) (Report, error) {
	sessions, err := st.ListSessions(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	if cfg.Last > 0 && len(sessions) > cfg.Last {
		sessions = sessions[len(sessions)-cfg.Last:]
	}
	window := sessions
	if cfg.CurveWindow > 0 && len(sessions) > cfg.CurveWindow {
		window = sessions[len(sessions)-cfg.CurveWindow:]
	}
	return Report{
		Sessions: sessions,
		Window:   window,
		Passages: AggregatePassages(sessions),
		Summary:  Summarize(sessions),
	}, nil
}
