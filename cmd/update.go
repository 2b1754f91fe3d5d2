/*
Copyright 2026 Google LLC

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/mbenders/weekly-listens/internal/analysis"
	"github.com/mbenders/weekly-listens/internal/store"
)

const recentlyPlayedLimit = 50

type UpdateConfig struct {
	DbPath       string
	User         string
	ClientID     string
	ClientSecret string
	Force        bool
}

// updateCmd represents the update command
var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Fetches recently played tracks from Spotify",
	Long: `Stores listening data in a local SQLite database: plays, track
metadata, audio features, and artist genres.`,
	Run: func(cmd *cobra.Command, args []string) {
		config := UpdateConfig{
			DbPath:       viper.GetString("database"),
			User:         viper.GetString("user"),
			ClientID:     viper.GetString("client_id"),
			ClientSecret: viper.GetString("client_secret"),
			Force:        viper.GetBool("force"),
		}

		err := updateDatabase(config)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(updateCmd)

	var force bool
	updateCmd.Flags().BoolVarP(&force, "force", "f", false, "Fetch even if data was updated recently (idempotent)")
	viper.BindPFlag("force", updateCmd.Flags().Lookup("force"))
}

func updateDatabase(config UpdateConfig) error {
	user := strings.ToLower(config.User)
	if user == "" {
		return fmt.Errorf("required flag \"user\" not set")
	}
	if config.ClientID == "" || config.ClientSecret == "" {
		return fmt.Errorf("client_id and client_secret must be set in order to fetch data")
	}

	db, err := store.New(config.DbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	refreshToken, err := db.GetRefreshToken(user)
	if err != nil {
		return err
	}
	if refreshToken == "" {
		return fmt.Errorf("no refresh token for %q, run add-user first", user)
	}

	lastUpdated, err := db.GetLastUpdated(user)
	if err != nil {
		return err
	}
	now := time.Now()
	if !lastUpdated.IsZero() && now.Sub(lastUpdated).Hours() < 24 && !config.Force {
		fmt.Printf("User data was already updated in the past 24 hours\n")
		return nil
	}
	fmt.Printf("User data was last updated: %s\n", lastUpdated.Format("2006-01-02"))

	ctx := context.Background()
	auth := spotifyauth.New(
		spotifyauth.WithClientID(config.ClientID),
		spotifyauth.WithClientSecret(config.ClientSecret),
	)
	client := spotify.New(auth.Client(ctx, &oauth2.Token{RefreshToken: refreshToken}))
	limiter := rate.NewLimiter(rate.Every(1*time.Second), 1)

	fmt.Printf("Updating database for %q\n", user)
	options := &spotify.RecentlyPlayedOptions{Limit: recentlyPlayedLimit}
	if !lastUpdated.IsZero() {
		options.AfterEpochMs = lastUpdated.UnixMilli()
	}

	var recent []spotify.RecentlyPlayedItem
	err = retry.Do(
		func() error {
			limiter.Wait(ctx)
			var err error
			recent, err = client.PlayerRecentlyPlayedOpt(ctx, options)
			return err
		},
		retry.RetryIf(isRetryableSpotifyError),
	)
	if err != nil {
		return fmt.Errorf("fetching recently played: %w", err)
	}

	fmt.Printf("Fetched %d plays\n", len(recent))
	if len(recent) == 0 {
		return db.SetLastUpdated(user, now)
	}

	tracks, err := fetchTrackMetadata(ctx, client, limiter, recent)
	if err != nil {
		return err
	}
	if err := db.UpsertTracks(tracks); err != nil {
		return fmt.Errorf("saving tracks: %w", err)
	}

	listens, err := buildListens(db, user, recent)
	if err != nil {
		return err
	}
	if err := db.AddListens(user, listens); err != nil {
		return fmt.Errorf("saving listens: %w", err)
	}

	return db.SetLastUpdated(user, now)
}

// fetchTrackMetadata resolves the distinct tracks in the batch to full
// metadata: popularity and duration, audio features, and the primary
// artist's first genre. A track missing from the features response is
// kept without features rather than dropped.
func fetchTrackMetadata(ctx context.Context, client *spotify.Client, limiter *rate.Limiter, recent []spotify.RecentlyPlayedItem) ([]store.TrackInfo, error) {
	var trackIDs []spotify.ID
	seen := make(map[spotify.ID]bool)
	for _, item := range recent {
		if !seen[item.Track.ID] {
			seen[item.Track.ID] = true
			trackIDs = append(trackIDs, item.Track.ID)
		}
	}

	var fullTracks []*spotify.FullTrack
	err := retry.Do(
		func() error {
			limiter.Wait(ctx)
			var err error
			fullTracks, err = client.GetTracks(ctx, trackIDs)
			return err
		},
		retry.RetryIf(isRetryableSpotifyError),
	)
	if err != nil {
		return nil, fmt.Errorf("fetching track metadata: %w", err)
	}

	var features []*spotify.AudioFeatures
	err = retry.Do(
		func() error {
			limiter.Wait(ctx)
			var err error
			features, err = client.GetAudioFeatures(ctx, trackIDs...)
			return err
		},
		retry.RetryIf(isRetryableSpotifyError),
	)
	if err != nil {
		return nil, fmt.Errorf("fetching audio features: %w", err)
	}
	featuresByTrack := make(map[spotify.ID]*spotify.AudioFeatures)
	for _, f := range features {
		if f != nil {
			featuresByTrack[f.ID] = f
		}
	}

	var artistIDs []spotify.ID
	seenArtists := make(map[spotify.ID]bool)
	for _, t := range fullTracks {
		if t == nil || len(t.Artists) == 0 {
			continue
		}
		id := t.Artists[0].ID
		if !seenArtists[id] {
			seenArtists[id] = true
			artistIDs = append(artistIDs, id)
		}
	}
	genreByArtist := make(map[spotify.ID]string)
	if len(artistIDs) > 0 {
		var artists []*spotify.FullArtist
		err = retry.Do(
			func() error {
				limiter.Wait(ctx)
				var err error
				artists, err = client.GetArtists(ctx, artistIDs...)
				return err
			},
			retry.RetryIf(isRetryableSpotifyError),
		)
		if err != nil {
			return nil, fmt.Errorf("fetching artists: %w", err)
		}
		for _, a := range artists {
			if a != nil && len(a.Genres) > 0 {
				genreByArtist[a.ID] = a.Genres[0]
			}
		}
	}

	var tracks []store.TrackInfo
	for _, t := range fullTracks {
		if t == nil {
			continue
		}
		info := store.TrackInfo{
			ID:         string(t.ID),
			Name:       t.Name,
			Popularity: int(t.Popularity),
			DurationMS: int64(t.Duration),
		}
		if len(t.Artists) > 0 {
			info.Artist = t.Artists[0].Name
			info.Genre = genreByArtist[t.Artists[0].ID]
		}
		if f := featuresByTrack[t.ID]; f != nil {
			info.Features = &analysis.AudioFeatures{
				Danceability: float64(f.Danceability),
				Energy:       float64(f.Energy),
				Valence:      float64(f.Valence),
				Tempo:        float64(f.Tempo),
				Acousticness: float64(f.Acousticness),
			}
		}
		tracks = append(tracks, info)
	}
	return tracks, nil
}

// buildListens converts the batch to listen imports, marking the first
// play of a track the user has never listened to before. Items arrive
// newest first, so the batch is walked backwards.
func buildListens(db *store.Store, user string, recent []spotify.RecentlyPlayedItem) ([]store.ListenImport, error) {
	var listens []store.ListenImport
	seen := make(map[spotify.ID]bool)
	for i := len(recent) - 1; i >= 0; i-- {
		item := recent[i]
		first := false
		if !seen[item.Track.ID] {
			seen[item.Track.ID] = true
			known, err := db.HasListened(user, string(item.Track.ID))
			if err != nil {
				return nil, err
			}
			first = !known
		}
		listens = append(listens, store.ListenImport{
			TrackID:       string(item.Track.ID),
			PlayedAt:      item.PlayedAt,
			FirstListened: first,
		})
	}
	return listens, nil
}

func isRetryableSpotifyError(err error) bool {
	var serr spotify.Error
	if errors.As(err, &serr) {
		return serr.Status == http.StatusTooManyRequests || serr.Status/100 == 5
	}
	return false
}
