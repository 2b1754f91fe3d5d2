package analysis

import (
	"fmt"
	"math"
	"sort"
)

// Thresholds for insight phrasing.
const (
	dominantArtistShare = 50.0 // percent of plays
	favoriteArtistShare = 30.0

	longListeningMinutes     = 600
	moderateListeningMinutes = 300

	diverseGenreCount = 10
	variedGenreCount  = 5

	explorerDiscoveryCount = 10
)

// GenerateInsights derives natural-language observations from the event
// window. Rules are independent and appended in fixed order: top artist,
// listening volume, genre diversity, new discoveries. Empty input yields
// no insights. The output is deterministic for a given event set.
func GenerateInsights(events []ListeningEvent) []string {
	if len(events) == 0 {
		return nil
	}

	var insights []string

	if s := topArtistInsight(events); s != "" {
		insights = append(insights, s)
	}
	insights = append(insights, listeningTimeInsight(events))
	if s := genreDiversityInsight(events); s != "" {
		insights = append(insights, s)
	}
	if s := discoveryInsight(events); s != "" {
		insights = append(insights, s)
	}

	return insights
}

func topArtistInsight(events []ListeningEvent) string {
	counts := make(map[string]int)
	for _, e := range events {
		counts[e.ArtistName]++
	}

	// Highest count wins; ties go to the lexicographically smaller name.
	var top string
	topCount := -1
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if counts[name] > topCount {
			top = name
			topCount = counts[name]
		}
	}

	share := float64(topCount) / float64(len(events)) * 100

	switch {
	case share > dominantArtistShare:
		return fmt.Sprintf("You're really into %s this week! They made up %.1f%% of your listening.", top, share)
	case share > favoriteArtistShare:
		return fmt.Sprintf("%s was your favorite artist this week, making up %.1f%% of your listening.", top, share)
	default:
		return fmt.Sprintf("Your top artist this week was %s.", top)
	}
}

func listeningTimeInsight(events []ListeningEvent) string {
	var totalMS int64
	for _, e := range events {
		totalMS += e.DurationMS
	}
	minutes := int(math.Round(float64(totalMS) / 60000))

	switch {
	case minutes > longListeningMinutes:
		return fmt.Sprintf("Wow! You listened to %d minutes of music this week. That's a lot of tunes!", minutes)
	case minutes > moderateListeningMinutes:
		return fmt.Sprintf("You enjoyed %d minutes of music this week. Nice listening session!", minutes)
	default:
		return fmt.Sprintf("You listened to %d minutes of music this week.", minutes)
	}
}

func genreDiversityInsight(events []ListeningEvent) string {
	genres := make(map[string]bool)
	for _, e := range events {
		if e.Genre != nil && *e.Genre != "" {
			genres[*e.Genre] = true
		}
	}
	if len(genres) == 0 {
		return ""
	}

	switch n := len(genres); {
	case n > diverseGenreCount:
		return fmt.Sprintf("Your music taste was super diverse this week with %d different genres!", n)
	case n > variedGenreCount:
		return fmt.Sprintf("You explored %d different genres this week. Nice variety!", n)
	default:
		return fmt.Sprintf("You stuck to %d genres this week. You know what you like!", n)
	}
}

func discoveryInsight(events []ListeningEvent) string {
	flagged := false
	discoveries := 0
	for _, e := range events {
		if e.FirstListened == nil {
			continue
		}
		flagged = true
		if *e.FirstListened {
			discoveries++
		}
	}
	if !flagged || discoveries == 0 {
		return ""
	}

	if discoveries > explorerDiscoveryCount {
		return fmt.Sprintf("You discovered %d new tracks this week! You're quite the explorer.", discoveries)
	}
	return fmt.Sprintf("You found %d new tracks this week.", discoveries)
}
