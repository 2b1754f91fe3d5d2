package analysis

import "time"

// AudioFeatures holds the numeric Spotify audio features used for mood
// clustering. A zero component means the feature was absent upstream.
type AudioFeatures struct {
	Danceability float64 `yaml:"danceability" json:"danceability"`
	Energy       float64 `yaml:"energy" json:"energy"`
	Valence      float64 `yaml:"valence" json:"valence"`
	Tempo        float64 `yaml:"tempo" json:"tempo"`
	Acousticness float64 `yaml:"acousticness" json:"acousticness"`
}

// ListeningEvent is one play from the event store. Optional facets are
// pointers: nil means the data was never captured, as opposed to zero.
type ListeningEvent struct {
	User          string
	TrackID       string
	TrackName     string
	ArtistName    string
	PlayedAt      time.Time
	DurationMS    int64
	Genre         *string
	Features      *AudioFeatures
	FirstListened *bool
}

type HourlyPattern struct {
	Hour  int `yaml:"hour" json:"hour"`
	Count int `yaml:"count" json:"count"`
}

type DailyPattern struct {
	Day   string `yaml:"day" json:"day"`
	Count int    `yaml:"count" json:"count"`
}

type ListeningPatterns struct {
	Hourly    []HourlyPattern `yaml:"hourly_patterns" json:"hourly_patterns"`
	Daily     []DailyPattern  `yaml:"daily_patterns" json:"daily_patterns"`
	PeakHours []int           `yaml:"peak_listening_hours" json:"peak_listening_hours"`
}

// TrackRef identifies a clustered track without carrying the full event.
type TrackRef struct {
	TrackID    string `yaml:"track_id" json:"track_id"`
	TrackName  string `yaml:"track_name" json:"track_name"`
	ArtistName string `yaml:"artist_name" json:"artist_name"`
}

// MoodCluster is one k-means partition. Labels come from a fixed
// vocabulary and may repeat across clusters with different centroids.
type MoodCluster struct {
	Label    string     `yaml:"label" json:"label"`
	Centroid []float64  `yaml:"centroid" json:"centroid"`
	Tracks   []TrackRef `yaml:"tracks" json:"tracks"`
}

// MoodAnalysis keeps the raw partitions alongside label-keyed views.
// Clusters that resolve to the same label stay separate in Clusters but
// merge in Playlists and Distribution.
type MoodAnalysis struct {
	Clusters     []MoodCluster         `yaml:"clusters" json:"clusters"`
	Playlists    map[string][]TrackRef `yaml:"mood_playlists" json:"mood_playlists"`
	Distribution map[string]int        `yaml:"mood_distribution" json:"mood_distribution"`
}

// Track is a recommendation result record.
type Track struct {
	ID         string `yaml:"id" json:"id"`
	Name       string `yaml:"name" json:"name"`
	Artist     string `yaml:"artist" json:"artist"`
	Popularity int    `yaml:"popularity" json:"popularity"`
}

// ScoredTrack is a similarity lookup result. A missing score is 0.
type ScoredTrack struct {
	Track Track   `yaml:"track" json:"track"`
	Score float64 `yaml:"score" json:"score"`
}

// WeeklyReport is the assembled result of one engine run. It has no
// identity beyond the (user, week ending) pair it is persisted under.
type WeeklyReport struct {
	User            string            `yaml:"user" json:"user"`
	WeekEnding      time.Time         `yaml:"week_ending" json:"week_ending"`
	NoData          bool              `yaml:"no_data,omitempty" json:"no_data,omitempty"`
	Patterns        ListeningPatterns `yaml:"listening_patterns" json:"listening_patterns"`
	Moods           MoodAnalysis      `yaml:"mood_analysis" json:"mood_analysis"`
	Insights        []string          `yaml:"insights" json:"insights"`
	Recommendations []Track           `yaml:"recommendations" json:"recommendations"`
}
