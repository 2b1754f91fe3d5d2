package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mbenders/weekly-listens/internal/analysis"
)

func (s *Store) GetRefreshToken(user string) (string, error) {
	row := s.db.QueryRow("SELECT refresh_token FROM User WHERE name = ?", user)
	var token string
	if err := row.Scan(&token); err != nil {
		if err == sql.ErrNoRows {
			return "", fmt.Errorf("user %q not found", user)
		}
		return "", fmt.Errorf("reading token for %q: %w", user, err)
	}
	return token, nil
}

func (s *Store) GetLastUpdated(user string) (time.Time, error) {
	row := s.db.QueryRow("SELECT last_updated FROM User WHERE name = ?", user)
	var updated sql.NullTime
	if err := row.Scan(&updated); err != nil {
		if err == sql.ErrNoRows {
			return time.Time{}, fmt.Errorf("user %q not found", user)
		}
		return time.Time{}, fmt.Errorf("reading last_updated for %q: %w", user, err)
	}
	if !updated.Valid {
		return time.Time{}, nil
	}
	return updated.Time, nil
}

func (s *Store) ListUsers() ([]string, error) {
	rows, err := s.db.Query("SELECT name FROM User ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		users = append(users, name)
	}
	return users, rows.Err()
}

// HasListened reports whether the user has any recorded play of the
// track, used to mark first listens during ingestion.
func (s *Store) HasListened(user, trackID string) (bool, error) {
	row := s.db.QueryRow("SELECT COUNT(*) FROM Listen WHERE user = ? AND track = ?", user, trackID)
	var count int
	if err := row.Scan(&count); err != nil {
		return false, fmt.Errorf("counting listens for %q/%q: %w", user, trackID, err)
	}
	return count > 0, nil
}

// EventsSince returns the user's plays at or after the cutoff, joined
// with track metadata, oldest first.
func (s *Store) EventsSince(ctx context.Context, user string, since time.Time) ([]analysis.ListeningEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT Listen.track, Track.name, Track.artist, Listen.played_at, Track.duration_ms,
			Track.genre, Track.popularity, Listen.first_listened, Track.has_features,
			Track.danceability, Track.energy, Track.valence, Track.tempo, Track.acousticness
		FROM Listen
		JOIN Track ON Listen.track = Track.id
		WHERE Listen.user = ? AND Listen.played_at >= ?
		ORDER BY Listen.played_at`,
		user, since.Unix())
	if err != nil {
		return nil, fmt.Errorf("querying listens for %q: %w", user, err)
	}
	defer rows.Close()

	var events []analysis.ListeningEvent
	for rows.Next() {
		var (
			e             analysis.ListeningEvent
			playedAt      int64
			genre         sql.NullString
			popularity    int
			firstListened bool
			hasFeatures   bool
			// Feature columns stay NULL for tracks ingested without features.
			danceability, energy, valence, tempo, acousticness sql.NullFloat64
		)
		err := rows.Scan(&e.TrackID, &e.TrackName, &e.ArtistName, &playedAt, &e.DurationMS,
			&genre, &popularity, &firstListened, &hasFeatures,
			&danceability, &energy, &valence, &tempo, &acousticness)
		if err != nil {
			return nil, fmt.Errorf("scanning listen: %w", err)
		}

		e.User = user
		e.PlayedAt = time.Unix(playedAt, 0).UTC()
		if genre.Valid && genre.String != "" {
			g := genre.String
			e.Genre = &g
		}
		if hasFeatures {
			e.Features = &analysis.AudioFeatures{
				Danceability: danceability.Float64,
				Energy:       energy.Float64,
				Valence:      valence.Float64,
				Tempo:        tempo.Float64,
				Acousticness: acousticness.Float64,
			}
		}
		fl := firstListened
		e.FirstListened = &fl

		events = append(events, e)
	}
	return events, rows.Err()
}

// SimilarTracks returns tracks recorded as similar to trackID, with
// their similarity scores. Unknown tracks yield an empty result, not an
// error.
func (s *Store) SimilarTracks(ctx context.Context, trackID string) ([]analysis.ScoredTrack, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT Track.id, Track.name, Track.artist, Track.popularity, TrackSimilarity.score
		FROM TrackSimilarity
		JOIN Track ON TrackSimilarity.related = Track.id
		WHERE TrackSimilarity.track = ?
		ORDER BY TrackSimilarity.score DESC`,
		trackID)
	if err != nil {
		return nil, fmt.Errorf("querying similar tracks for %q: %w", trackID, err)
	}
	defer rows.Close()

	var tracks []analysis.ScoredTrack
	for rows.Next() {
		var t analysis.ScoredTrack
		if err := rows.Scan(&t.Track.ID, &t.Track.Name, &t.Track.Artist, &t.Track.Popularity, &t.Score); err != nil {
			return nil, fmt.Errorf("scanning similar track: %w", err)
		}
		tracks = append(tracks, t)
	}
	return tracks, rows.Err()
}

// PopularTracks returns up to limit tracks ordered by popularity.
func (s *Store) PopularTracks(ctx context.Context, limit int) ([]analysis.Track, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, artist, popularity
		FROM Track
		ORDER BY popularity DESC, id
		LIMIT ?`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("querying popular tracks: %w", err)
	}
	defer rows.Close()

	var tracks []analysis.Track
	for rows.Next() {
		var t analysis.Track
		if err := rows.Scan(&t.ID, &t.Name, &t.Artist, &t.Popularity); err != nil {
			return nil, fmt.Errorf("scanning popular track: %w", err)
		}
		tracks = append(tracks, t)
	}
	return tracks, rows.Err()
}
