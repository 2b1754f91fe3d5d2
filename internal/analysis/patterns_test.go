package analysis

import (
	"testing"
	"time"
)

func eventAt(t time.Time) ListeningEvent {
	return ListeningEvent{
		User:       "testuser",
		TrackID:    "t1",
		TrackName:  "Track 1",
		ArtistName: "Artist A",
		PlayedAt:   t,
		DurationMS: 200000,
	}
}

func TestAnalyzePatternsEmpty(t *testing.T) {
	lp := AnalyzePatterns(nil)
	if len(lp.Hourly) != 0 || len(lp.Daily) != 0 || len(lp.PeakHours) != 0 {
		t.Errorf("expected empty patterns, got %+v", lp)
	}
}

func TestAnalyzePatternsBucketSums(t *testing.T) {
	// Monday 2026-08-24.
	base := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)

	var events []ListeningEvent
	// 3 plays at 09:00 Monday, 2 at 21:00 Tuesday, 1 at 09:00 Wednesday.
	for i := 0; i < 3; i++ {
		events = append(events, eventAt(base.Add(9*time.Hour)))
	}
	for i := 0; i < 2; i++ {
		events = append(events, eventAt(base.AddDate(0, 0, 1).Add(21*time.Hour)))
	}
	events = append(events, eventAt(base.AddDate(0, 0, 2).Add(9*time.Hour)))

	lp := AnalyzePatterns(events)

	hourlySum := 0
	for _, h := range lp.Hourly {
		hourlySum += h.Count
	}
	if hourlySum != len(events) {
		t.Errorf("hourly buckets sum to %d, want %d", hourlySum, len(events))
	}

	dailySum := 0
	for _, d := range lp.Daily {
		dailySum += d.Count
	}
	if dailySum != len(events) {
		t.Errorf("daily buckets sum to %d, want %d", dailySum, len(events))
	}

	for i := 1; i < len(lp.Hourly); i++ {
		if lp.Hourly[i].Hour <= lp.Hourly[i-1].Hour {
			t.Errorf("hourly buckets not ascending: %+v", lp.Hourly)
		}
	}

	if len(lp.Daily) != 3 || lp.Daily[0].Day != "Monday" || lp.Daily[1].Day != "Tuesday" || lp.Daily[2].Day != "Wednesday" {
		t.Errorf("unexpected daily buckets: %+v", lp.Daily)
	}
}

func TestAnalyzePatternsPeakHours(t *testing.T) {
	base := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)

	var events []ListeningEvent
	// Hours 1 and 2 tie with 3 plays each, hour 5 has 1, hour 7 has 2.
	for i := 0; i < 3; i++ {
		events = append(events, eventAt(base.Add(1*time.Hour)))
		events = append(events, eventAt(base.Add(2*time.Hour)))
	}
	events = append(events, eventAt(base.Add(5*time.Hour)))
	events = append(events, eventAt(base.Add(7*time.Hour)), eventAt(base.Add(7*time.Hour)))

	lp := AnalyzePatterns(events)

	want := []int{1, 2, 7}
	if len(lp.PeakHours) != len(want) {
		t.Fatalf("expected %d peak hours, got %v", len(want), lp.PeakHours)
	}
	for i, h := range want {
		if lp.PeakHours[i] != h {
			t.Errorf("peak hours = %v, want %v", lp.PeakHours, want)
			break
		}
	}

	// Peaks must be a subset of the non-zero hourly buckets.
	buckets := make(map[int]bool)
	for _, h := range lp.Hourly {
		buckets[h.Hour] = true
	}
	for _, p := range lp.PeakHours {
		if !buckets[p] {
			t.Errorf("peak hour %d not present in hourly buckets %+v", p, lp.Hourly)
		}
	}
}

func TestAnalyzePatternsFewerThanThreeHours(t *testing.T) {
	base := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	events := []ListeningEvent{eventAt(base.Add(13 * time.Hour))}

	lp := AnalyzePatterns(events)
	if len(lp.PeakHours) != 1 || lp.PeakHours[0] != 13 {
		t.Errorf("expected peak hours [13], got %v", lp.PeakHours)
	}
}
