package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/mbenders/weekly-listens/internal/analysis"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seedTracks(t *testing.T, s *Store) {
	t.Helper()
	genreRock := "rock"
	err := s.UpsertTracks([]TrackInfo{
		{
			ID: "t1", Name: "First Track", Artist: "Artist A",
			Genre: genreRock, Popularity: 80, DurationMS: 200000,
			Features: &analysis.AudioFeatures{Danceability: 0.5, Energy: 0.7, Valence: 0.8, Tempo: 120, Acousticness: 0.1},
		},
		{ID: "t2", Name: "Second Track", Artist: "Artist B", Popularity: 60, DurationMS: 180000},
		{ID: "t3", Name: "Third Track", Artist: "Artist C", Popularity: 95, DurationMS: 210000},
	})
	if err != nil {
		t.Fatalf("UpsertTracks failed: %v", err)
	}
}

func TestCreateUserUpdatesToken(t *testing.T) {
	s := newTestStore(t)

	if err := s.CreateUser("alice", "token-1"); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	token, err := s.GetRefreshToken("alice")
	if err != nil {
		t.Fatalf("GetRefreshToken failed: %v", err)
	}
	if token != "token-1" {
		t.Errorf("token = %q, want %q", token, "token-1")
	}

	if err := s.CreateUser("alice", "token-2"); err != nil {
		t.Fatalf("CreateUser on existing user failed: %v", err)
	}
	token, err = s.GetRefreshToken("alice")
	if err != nil {
		t.Fatalf("GetRefreshToken failed: %v", err)
	}
	if token != "token-2" {
		t.Errorf("token = %q, want %q", token, "token-2")
	}

	users, err := s.ListUsers()
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}
	if len(users) != 1 || users[0] != "alice" {
		t.Errorf("users = %v, want [alice]", users)
	}
}

func TestGetRefreshTokenMissingUser(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.GetRefreshToken("nobody"); err == nil {
		t.Error("expected error for unknown user")
	}
}

func TestLastUpdated(t *testing.T) {
	s := newTestStore(t)
	if err := s.CreateUser("alice", "token"); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	updated, err := s.GetLastUpdated("alice")
	if err != nil {
		t.Fatalf("GetLastUpdated failed: %v", err)
	}
	if !updated.IsZero() {
		t.Errorf("expected zero last_updated for new user, got %v", updated)
	}

	want := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	if err := s.SetLastUpdated("alice", want); err != nil {
		t.Fatalf("SetLastUpdated failed: %v", err)
	}
	updated, err = s.GetLastUpdated("alice")
	if err != nil {
		t.Fatalf("GetLastUpdated failed: %v", err)
	}
	if !updated.Equal(want) {
		t.Errorf("last_updated = %v, want %v", updated, want)
	}
}

func TestAddListensIdempotent(t *testing.T) {
	s := newTestStore(t)
	seedTracks(t, s)
	if err := s.CreateUser("alice", "token"); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	playedAt := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)
	listens := []ListenImport{
		{TrackID: "t1", PlayedAt: playedAt, FirstListened: true},
		{TrackID: "t2", PlayedAt: playedAt.Add(time.Hour)},
	}
	for i := 0; i < 2; i++ {
		if err := s.AddListens("alice", listens); err != nil {
			t.Fatalf("AddListens failed: %v", err)
		}
	}

	events, err := s.EventsSince(context.Background(), "alice", playedAt.Add(-time.Hour))
	if err != nil {
		t.Fatalf("EventsSince failed: %v", err)
	}
	if len(events) != 2 {
		t.Errorf("expected 2 events after duplicate import, got %d", len(events))
	}
}

func TestEventsSince(t *testing.T) {
	s := newTestStore(t)
	seedTracks(t, s)
	if err := s.CreateUser("alice", "token"); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	cutoff := time.Date(2026, 8, 22, 0, 0, 0, 0, time.UTC)
	err := s.AddListens("alice", []ListenImport{
		{TrackID: "t1", PlayedAt: cutoff.Add(-time.Hour)}, // before the window
		{TrackID: "t1", PlayedAt: cutoff.Add(2 * time.Hour), FirstListened: true},
		{TrackID: "t2", PlayedAt: cutoff.Add(3 * time.Hour)},
	})
	if err != nil {
		t.Fatalf("AddListens failed: %v", err)
	}

	events, err := s.EventsSince(context.Background(), "alice", cutoff)
	if err != nil {
		t.Fatalf("EventsSince failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events in window, got %d", len(events))
	}

	first := events[0]
	if first.TrackID != "t1" || first.TrackName != "First Track" || first.ArtistName != "Artist A" {
		t.Errorf("unexpected event metadata: %+v", first)
	}
	if first.Genre == nil || *first.Genre != "rock" {
		t.Errorf("expected genre rock, got %v", first.Genre)
	}
	if first.Features == nil || first.Features.Valence != 0.8 {
		t.Errorf("expected audio features on t1, got %+v", first.Features)
	}
	if first.FirstListened == nil || !*first.FirstListened {
		t.Errorf("expected first_listened on t1, got %v", first.FirstListened)
	}

	second := events[1]
	if second.Genre != nil {
		t.Errorf("expected no genre on t2, got %q", *second.Genre)
	}
	if second.Features != nil {
		t.Errorf("expected no features on t2, got %+v", second.Features)
	}
}

func TestUpsertTracksKeepsFeatures(t *testing.T) {
	s := newTestStore(t)
	seedTracks(t, s)

	// Re-ingest t1 without a feature record.
	err := s.UpsertTracks([]TrackInfo{
		{ID: "t1", Name: "First Track", Artist: "Artist A", Popularity: 81, DurationMS: 200000},
	})
	if err != nil {
		t.Fatalf("UpsertTracks failed: %v", err)
	}

	if err := s.CreateUser("alice", "token"); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	playedAt := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)
	if err := s.AddListens("alice", []ListenImport{{TrackID: "t1", PlayedAt: playedAt}}); err != nil {
		t.Fatalf("AddListens failed: %v", err)
	}

	events, err := s.EventsSince(context.Background(), "alice", playedAt.Add(-time.Hour))
	if err != nil {
		t.Fatalf("EventsSince failed: %v", err)
	}
	if len(events) != 1 || events[0].Features == nil {
		t.Fatalf("expected features to survive metadata refresh, got %+v", events)
	}
	if events[0].Features.Energy != 0.7 {
		t.Errorf("energy = %v, want 0.7", events[0].Features.Energy)
	}
}

func TestHasListened(t *testing.T) {
	s := newTestStore(t)
	seedTracks(t, s)
	if err := s.CreateUser("alice", "token"); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	known, err := s.HasListened("alice", "t1")
	if err != nil {
		t.Fatalf("HasListened failed: %v", err)
	}
	if known {
		t.Error("expected t1 to be unknown before any listen")
	}

	err = s.AddListens("alice", []ListenImport{{TrackID: "t1", PlayedAt: time.Now()}})
	if err != nil {
		t.Fatalf("AddListens failed: %v", err)
	}
	known, err = s.HasListened("alice", "t1")
	if err != nil {
		t.Fatalf("HasListened failed: %v", err)
	}
	if !known {
		t.Error("expected t1 to be known after a listen")
	}
}

func TestSimilarTracks(t *testing.T) {
	s := newTestStore(t)
	seedTracks(t, s)

	if err := s.AddTrackSimilarity("t1", "t2", 0.6); err != nil {
		t.Fatalf("AddTrackSimilarity failed: %v", err)
	}
	if err := s.AddTrackSimilarity("t1", "t3", 0.9); err != nil {
		t.Fatalf("AddTrackSimilarity failed: %v", err)
	}

	tracks, err := s.SimilarTracks(context.Background(), "t1")
	if err != nil {
		t.Fatalf("SimilarTracks failed: %v", err)
	}
	if len(tracks) != 2 {
		t.Fatalf("expected 2 similar tracks, got %d", len(tracks))
	}
	if tracks[0].Track.ID != "t3" || tracks[0].Score != 0.9 {
		t.Errorf("expected t3 first with score 0.9, got %+v", tracks[0])
	}

	none, err := s.SimilarTracks(context.Background(), "unknown")
	if err != nil {
		t.Fatalf("SimilarTracks for unknown track failed: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("expected no results for unknown track, got %v", none)
	}
}

func TestPopularTracks(t *testing.T) {
	s := newTestStore(t)
	seedTracks(t, s)

	tracks, err := s.PopularTracks(context.Background(), 2)
	if err != nil {
		t.Fatalf("PopularTracks failed: %v", err)
	}
	if len(tracks) != 2 {
		t.Fatalf("expected 2 tracks, got %d", len(tracks))
	}
	if tracks[0].ID != "t3" || tracks[1].ID != "t1" {
		t.Errorf("expected popularity ordering [t3 t1], got %v", tracks)
	}
}

func TestReportRoundTrip(t *testing.T) {
	s := newTestStore(t)
	if err := s.CreateUser("alice", "token"); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	weekEnding := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	report := &analysis.WeeklyReport{
		User:       "alice",
		WeekEnding: weekEnding,
		Insights:   []string{"Your top artist this week was A."},
	}
	if err := s.SaveReport(context.Background(), "alice", weekEnding, report); err != nil {
		t.Fatalf("SaveReport failed: %v", err)
	}

	got, err := s.GetReport("alice", weekEnding)
	if err != nil {
		t.Fatalf("GetReport failed: %v", err)
	}
	if got.User != "alice" || len(got.Insights) != 1 {
		t.Errorf("unexpected report: %+v", got)
	}

	// Saving again replaces rather than duplicating.
	report.Insights = append(report.Insights, "You found 5 new tracks this week.")
	if err := s.SaveReport(context.Background(), "alice", weekEnding, report); err != nil {
		t.Fatalf("SaveReport failed: %v", err)
	}
	summaries, err := s.ListReports("alice")
	if err != nil {
		t.Fatalf("ListReports failed: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("expected 1 report after re-save, got %d", len(summaries))
	}
	got, err = s.GetReport("alice", weekEnding)
	if err != nil {
		t.Fatalf("GetReport failed: %v", err)
	}
	if len(got.Insights) != 2 {
		t.Errorf("expected updated report, got %+v", got)
	}
}

func TestLatestReport(t *testing.T) {
	s := newTestStore(t)
	if err := s.CreateUser("alice", "token"); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	older := time.Date(2026, 8, 21, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	for _, weekEnding := range []time.Time{older, newer} {
		report := &analysis.WeeklyReport{User: "alice", WeekEnding: weekEnding}
		if err := s.SaveReport(context.Background(), "alice", weekEnding, report); err != nil {
			t.Fatalf("SaveReport failed: %v", err)
		}
	}

	got, err := s.LatestReport("alice")
	if err != nil {
		t.Fatalf("LatestReport failed: %v", err)
	}
	if !got.WeekEnding.Equal(newer) {
		t.Errorf("latest report week ending = %v, want %v", got.WeekEnding, newer)
	}

	if _, err := s.LatestReport("nobody"); err == nil {
		t.Error("expected error for user with no reports")
	}
}

func TestDeleteReport(t *testing.T) {
	s := newTestStore(t)
	weekEnding := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	report := &analysis.WeeklyReport{User: "alice", WeekEnding: weekEnding}
	if err := s.SaveReport(context.Background(), "alice", weekEnding, report); err != nil {
		t.Fatalf("SaveReport failed: %v", err)
	}

	deleted, err := s.DeleteReport("alice", weekEnding)
	if err != nil {
		t.Fatalf("DeleteReport failed: %v", err)
	}
	if !deleted {
		t.Error("expected DeleteReport to report a deletion")
	}

	deleted, err = s.DeleteReport("alice", weekEnding)
	if err != nil {
		t.Fatalf("DeleteReport failed: %v", err)
	}
	if deleted {
		t.Error("expected no deletion the second time")
	}
}
