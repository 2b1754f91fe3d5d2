package analysis

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeEventSource struct {
	events []ListeningEvent
	err    error
	since  time.Time
}

func (f *fakeEventSource) EventsSince(ctx context.Context, user string, since time.Time) ([]ListeningEvent, error) {
	f.since = since
	if f.err != nil {
		return nil, f.err
	}
	return f.events, nil
}

type captureSink struct {
	calls      int
	user       string
	weekEnding time.Time
	report     *WeeklyReport
	err        error
}

func (c *captureSink) SaveReport(ctx context.Context, user string, weekEnding time.Time, report *WeeklyReport) error {
	c.calls++
	c.user = user
	c.weekEnding = weekEnding
	c.report = report
	return c.err
}

func testEngine(events *fakeEventSource, sink *captureSink) *Engine {
	return &Engine{
		Events:  events,
		Similar: &fakeSimilarity{records: map[string][]ScoredTrack{}},
		Popular: &fakePopularity{tracks: []Track{{ID: "p1"}, {ID: "p2"}}},
		Sink:    sink,
		Now: func() time.Time {
			return time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)
		},
	}
}

func weekEvents() []ListeningEvent {
	base := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)
	feats := &AudioFeatures{Valence: 0.8, Energy: 0.7, Danceability: 0.6, Tempo: 120}
	var events []ListeningEvent
	for i := 0; i < 6; i++ {
		events = append(events, ListeningEvent{
			User:       "testuser",
			TrackID:    "t1",
			TrackName:  "Track 1",
			ArtistName: "Artist A",
			PlayedAt:   base.Add(time.Duration(i) * time.Hour),
			DurationMS: 200000,
			Features:   feats,
		})
	}
	events = append(events, ListeningEvent{
		User:       "testuser",
		TrackID:    "t2",
		TrackName:  "Track 2",
		ArtistName: "Artist B",
		PlayedAt:   base.Add(30 * time.Hour),
		DurationMS: 180000,
	})
	return events
}

func TestProduceWeeklyReport(t *testing.T) {
	events := &fakeEventSource{events: weekEvents()}
	sink := &captureSink{}
	e := testEngine(events, sink)

	report, err := e.ProduceWeeklyReport(context.Background(), "testuser")
	if err != nil {
		t.Fatalf("ProduceWeeklyReport failed: %v", err)
	}

	if report.NoData {
		t.Error("unexpected no-data report")
	}
	if len(report.Patterns.Hourly) == 0 {
		t.Error("expected hourly patterns")
	}
	if len(report.Moods.Clusters) == 0 {
		t.Error("expected mood clusters")
	}
	if len(report.Insights) == 0 {
		t.Error("expected insights")
	}
	if len(report.Recommendations) == 0 {
		t.Error("expected recommendations via popularity fallback")
	}

	wantWindow := e.Now().Add(-DefaultWindow)
	if !events.since.Equal(wantWindow) {
		t.Errorf("fetch cutoff = %v, want %v", events.since, wantWindow)
	}

	if sink.calls != 1 {
		t.Fatalf("expected 1 sink write, got %d", sink.calls)
	}
	if sink.user != "testuser" || !sink.weekEnding.Equal(e.Now()) {
		t.Errorf("sink keyed by (%q, %v), want (%q, %v)", sink.user, sink.weekEnding, "testuser", e.Now())
	}
}

func TestProduceWeeklyReportEmptyWindow(t *testing.T) {
	events := &fakeEventSource{}
	sink := &captureSink{}
	e := testEngine(events, sink)

	report, err := e.ProduceWeeklyReport(context.Background(), "testuser")
	if err != nil {
		t.Fatalf("ProduceWeeklyReport failed: %v", err)
	}

	if !report.NoData {
		t.Error("expected no-data report for empty window")
	}
	if sink.calls != 0 {
		t.Errorf("expected sink write to be skipped, got %d calls", sink.calls)
	}
}

func TestProduceWeeklyReportFetchError(t *testing.T) {
	events := &fakeEventSource{err: errors.New("store unreachable")}
	e := testEngine(events, &captureSink{})

	if _, err := e.ProduceWeeklyReport(context.Background(), "testuser"); err == nil {
		t.Error("expected error when event fetch fails")
	}
}

func TestProduceWeeklyReportSinkError(t *testing.T) {
	events := &fakeEventSource{events: weekEvents()}
	sink := &captureSink{err: errors.New("write failed")}
	e := testEngine(events, sink)

	report, err := e.ProduceWeeklyReport(context.Background(), "testuser")
	if err == nil {
		t.Error("expected error when sink write fails")
	}
	if report == nil {
		t.Error("expected assembled report alongside sink error")
	}
}

func TestProduceWeeklyReportSkipsMalformedEvents(t *testing.T) {
	evs := weekEvents()
	evs = append(evs, ListeningEvent{User: "testuser", TrackID: "", TrackName: ""})
	events := &fakeEventSource{events: evs}
	sink := &captureSink{}
	e := testEngine(events, sink)

	report, err := e.ProduceWeeklyReport(context.Background(), "testuser")
	if err != nil {
		t.Fatalf("ProduceWeeklyReport failed: %v", err)
	}

	total := 0
	for _, h := range report.Patterns.Hourly {
		total += h.Count
	}
	if total != len(evs)-1 {
		t.Errorf("expected malformed event to be skipped: %d buckets counted, want %d", total, len(evs)-1)
	}
}

func TestProduceWeeklyReportRecommendationDegrades(t *testing.T) {
	events := &fakeEventSource{events: weekEvents()}
	sink := &captureSink{}
	e := testEngine(events, sink)
	e.Similar = &fakeSimilarity{err: errors.New("similarity store down")}

	report, err := e.ProduceWeeklyReport(context.Background(), "testuser")
	if err != nil {
		t.Fatalf("expected recommendation failure to degrade, got %v", err)
	}
	if len(report.Recommendations) != 0 {
		t.Errorf("expected no recommendations, got %v", report.Recommendations)
	}
	if sink.calls != 1 {
		t.Errorf("expected report still persisted, got %d sink calls", sink.calls)
	}
}

func TestProduceWeeklyReportCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	events := &fakeEventSource{events: weekEvents()}
	sink := &captureSink{}
	e := testEngine(events, sink)

	if _, err := e.ProduceWeeklyReport(ctx, "testuser"); err == nil {
		t.Error("expected error for cancelled run")
	}
	if sink.calls != 0 {
		t.Errorf("cancelled run must not write, got %d sink calls", sink.calls)
	}
}

func TestTopTrackIDs(t *testing.T) {
	var events []ListeningEvent
	add := func(id string, n int) {
		for i := 0; i < n; i++ {
			events = append(events, ListeningEvent{TrackID: id, TrackName: "T"})
		}
	}
	add("c", 5)
	add("a", 3)
	add("b", 3)
	add("d", 1)

	got := topTrackIDs(events, 3)
	want := []string{"c", "a", "b"}
	if len(got) != len(want) {
		t.Fatalf("topTrackIDs = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("topTrackIDs = %v, want %v", got, want)
			break
		}
	}
}
