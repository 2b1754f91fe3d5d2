package analysis

import "sort"

// peakHourCount is how many of the busiest hours a report surfaces.
const peakHourCount = 3

var weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// AnalyzePatterns buckets plays by hour of day and day of week and picks
// the peak listening hours. Empty buckets are omitted. Peak hours are
// ordered by play count, ties going to the earlier hour.
func AnalyzePatterns(events []ListeningEvent) ListeningPatterns {
	var lp ListeningPatterns
	if len(events) == 0 {
		return lp
	}

	var hourCounts [24]int
	dayCounts := make(map[string]int)
	for _, e := range events {
		hourCounts[e.PlayedAt.Hour()]++
		dayCounts[e.PlayedAt.Weekday().String()]++
	}

	for hour, count := range hourCounts {
		if count > 0 {
			lp.Hourly = append(lp.Hourly, HourlyPattern{Hour: hour, Count: count})
		}
	}

	for _, day := range weekdays {
		if count := dayCounts[day]; count > 0 {
			lp.Daily = append(lp.Daily, DailyPattern{Day: day, Count: count})
		}
	}

	peaks := make([]HourlyPattern, len(lp.Hourly))
	copy(peaks, lp.Hourly)
	sort.Slice(peaks, func(i, j int) bool {
		if peaks[i].Count != peaks[j].Count {
			return peaks[i].Count > peaks[j].Count
		}
		return peaks[i].Hour < peaks[j].Hour
	})
	for i := 0; i < len(peaks) && i < peakHourCount; i++ {
		lp.PeakHours = append(lp.PeakHours, peaks[i].Hour)
	}

	return lp
}
