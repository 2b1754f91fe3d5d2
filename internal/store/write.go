package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mbenders/weekly-listens/internal/analysis"
)

// TrackInfo is the metadata captured for a track during ingestion.
// Features is nil when Spotify returned no audio features for the track.
type TrackInfo struct {
	ID         string
	Name       string
	Artist     string
	Genre      string
	Popularity int
	DurationMS int64
	Features   *analysis.AudioFeatures
}

// ListenImport is one play to record for a user.
type ListenImport struct {
	TrackID       string
	PlayedAt      time.Time
	FirstListened bool
}

// CreateUser registers a user with their Spotify refresh token. Calling
// it again updates the stored token.
func (s *Store) CreateUser(user, refreshToken string) error {
	row := s.db.QueryRow("SELECT name FROM User WHERE name = ?", user)
	var name string
	err := row.Scan(&name)
	if err == sql.ErrNoRows {
		_, err := s.db.Exec("INSERT INTO User (name, refresh_token) VALUES (?, ?)", user, refreshToken)
		if err != nil {
			return fmt.Errorf("inserting user %q: %w", user, err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("checking user %q: %w", user, err)
	}

	_, err = s.db.Exec("UPDATE User SET refresh_token = ? WHERE name = ?", refreshToken, user)
	if err != nil {
		return fmt.Errorf("updating token for %q: %w", user, err)
	}
	return nil
}

func (s *Store) SetLastUpdated(user string, updated time.Time) error {
	_, err := s.db.Exec("UPDATE User SET last_updated = ? WHERE name = ?", updated, user)
	if err != nil {
		return fmt.Errorf("updating last_updated for %q: %w", user, err)
	}
	return nil
}

// UpsertTracks inserts or refreshes track metadata transactionally.
// Feature columns are only written when a feature record is present, so
// a later fetch without features cannot erase earlier data.
func (s *Store) UpsertTracks(tracks []TrackInfo) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, t := range tracks {
		_, err := tx.Exec(`
			INSERT INTO Track (id, name, artist, genre, popularity, duration_ms)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				name = excluded.name,
				artist = excluded.artist,
				genre = excluded.genre,
				popularity = excluded.popularity,
				duration_ms = excluded.duration_ms`,
			t.ID, t.Name, t.Artist, t.Genre, t.Popularity, t.DurationMS)
		if err != nil {
			return fmt.Errorf("upserting track %q: %w", t.ID, err)
		}

		if t.Features != nil {
			f := t.Features
			_, err := tx.Exec(`
				UPDATE Track
				SET danceability = ?, energy = ?, valence = ?, tempo = ?, acousticness = ?, has_features = 1
				WHERE id = ?`,
				f.Danceability, f.Energy, f.Valence, f.Tempo, f.Acousticness, t.ID)
			if err != nil {
				return fmt.Errorf("saving features for track %q: %w", t.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// AddListens records a batch of plays transactionally. Replays of the
// same (user, track, played_at) are ignored, so ingestion is idempotent.
func (s *Store) AddListens(user string, listens []ListenImport) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, l := range listens {
		_, err := tx.Exec(`
			INSERT OR IGNORE INTO Listen (user, track, played_at, first_listened)
			VALUES (?, ?, ?, ?)`,
			user, l.TrackID, l.PlayedAt.Unix(), l.FirstListened)
		if err != nil {
			return fmt.Errorf("inserting listen for track %q: %w", l.TrackID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// AddTrackSimilarity records a similarity edge used by the
// recommendation resolver. Scores are computed externally and loaded
// through the add-similarity command.
func (s *Store) AddTrackSimilarity(trackID, relatedID string, score float64) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO TrackSimilarity (track, related, score)
		VALUES (?, ?, ?)`, trackID, relatedID, score)
	if err != nil {
		return fmt.Errorf("inserting similarity %q -> %q: %w", trackID, relatedID, err)
	}
	return nil
}
