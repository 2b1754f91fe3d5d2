package analysis

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// DefaultWindow is the trailing span of events considered for one report.
const DefaultWindow = 7 * 24 * time.Hour

// collaboratorTimeout bounds each blocking call to the event store and
// the results sink so a run surfaces a retryable failure instead of
// hanging.
const collaboratorTimeout = 30 * time.Second

// EventSource reads all listening events at or after the given cutoff.
// An empty window is an empty slice, not an error.
type EventSource interface {
	EventsSince(ctx context.Context, user string, since time.Time) ([]ListeningEvent, error)
}

// ReportSink persists an assembled report keyed by user and week ending.
// The write must be all-or-nothing; retry policy belongs to the caller.
type ReportSink interface {
	SaveReport(ctx context.Context, user string, weekEnding time.Time, report *WeeklyReport) error
}

// Engine assembles weekly reports. Zero values for Clusters, Limit,
// Window and Now select the defaults; Sink may be nil for dry runs.
type Engine struct {
	Events  EventSource
	Similar SimilaritySource
	Popular PopularitySource
	Sink    ReportSink

	Clusters int
	Limit    int
	Window   time.Duration
	Now      func() time.Time
}

// ProduceWeeklyReport fetches the user's trailing window of events, runs
// the analytic steps, and hands the assembled report to the sink. An
// empty window produces an explicit no-data report and skips the sink
// write. Analytic steps degrade to empty results rather than failing the
// run; only event store and sink failures are escalated. All derived data
// is recomputed from the fetched snapshot, so a re-run over the same
// window is idempotent.
func (e *Engine) ProduceWeeklyReport(ctx context.Context, user string) (*WeeklyReport, error) {
	now := time.Now()
	if e.Now != nil {
		now = e.Now()
	}
	window := e.Window
	if window <= 0 {
		window = DefaultWindow
	}

	fetchCtx, cancel := context.WithTimeout(ctx, collaboratorTimeout)
	events, err := e.Events.EventsSince(fetchCtx, user, now.Add(-window))
	cancel()
	if err != nil {
		return nil, fmt.Errorf("fetching events for %q: %w", user, err)
	}
	events = dropMalformed(events)

	report := &WeeklyReport{User: user, WeekEnding: now}
	if len(events) == 0 {
		report.NoData = true
		return report, nil
	}

	report.Patterns = AnalyzePatterns(events)
	report.Moods = ClusterByMood(events, e.Clusters)
	report.Insights = GenerateInsights(events)

	recommender := &Recommender{Similar: e.Similar, Popular: e.Popular, Limit: e.Limit}
	recCtx, cancel := context.WithTimeout(ctx, collaboratorTimeout)
	recs, err := recommender.Recommend(recCtx, topTrackIDs(events, maxSeedTracks))
	cancel()
	if err != nil {
		fmt.Printf("Recommendations unavailable for %q: %v\n", user, err)
	} else {
		report.Recommendations = recs
	}

	// Abandoned runs must not produce a partial write.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if e.Sink != nil {
		saveCtx, cancel := context.WithTimeout(ctx, collaboratorTimeout)
		err := e.Sink.SaveReport(saveCtx, user, now, report)
		cancel()
		if err != nil {
			return report, fmt.Errorf("saving report for %q: %w", user, err)
		}
	}

	return report, nil
}

// dropMalformed skips events missing required identity fields. A single
// bad event never aborts the run.
func dropMalformed(events []ListeningEvent) []ListeningEvent {
	kept := events[:0:0]
	for _, e := range events {
		if e.TrackID == "" || e.TrackName == "" {
			continue
		}
		kept = append(kept, e)
	}
	return kept
}

// topTrackIDs returns up to n track ids ordered by play count descending,
// ties to the lower id.
func topTrackIDs(events []ListeningEvent, n int) []string {
	counts := make(map[string]int)
	for _, e := range events {
		counts[e.TrackID]++
	}

	ids := make([]string, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if counts[ids[i]] != counts[ids[j]] {
			return counts[ids[i]] > counts[ids[j]]
		}
		return ids[i] < ids[j]
	})

	if len(ids) > n {
		ids = ids[:n]
	}
	return ids
}
