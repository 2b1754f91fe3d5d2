package analysis

// Mood labels assigned to cluster centroids. The vocabulary is smaller
// than the possible cluster count, so labels can repeat.
const (
	MoodHappyEnergetic   = "Happy & Energetic"
	MoodSadCalm          = "Sad & Calm"
	MoodPositiveAcoustic = "Positive & Acoustic"
	MoodIntense          = "Intense"
	MoodAcousticRelaxed  = "Acoustic & Relaxed"
	MoodBalanced         = "Balanced"
)

// DefaultClusters is the number of mood clusters unless overridden.
const DefaultClusters = 3

// tempoScale normalizes tempo (BPM) into roughly the same 0-1 range as
// the other features.
const tempoScale = 200

const maxKMeansIterations = 100

type moodRule struct {
	label string
	match func(danceability, energy, valence, tempo, acousticness float64) bool
}

// moodRules is evaluated in order; the first match wins.
var moodRules = []moodRule{
	{MoodHappyEnergetic, func(_, energy, valence, _, _ float64) bool {
		return valence > 0.6 && energy > 0.6
	}},
	{MoodSadCalm, func(_, energy, valence, _, _ float64) bool {
		return valence < 0.4 && energy < 0.4
	}},
	{MoodPositiveAcoustic, func(_, _, valence, _, acousticness float64) bool {
		return valence > 0.5 && acousticness > 0.5
	}},
	{MoodIntense, func(_, energy, _, _, _ float64) bool {
		return energy > 0.7
	}},
	{MoodAcousticRelaxed, func(_, _, _, _, acousticness float64) bool {
		return acousticness > 0.7
	}},
}

func labelForCentroid(c []float64) string {
	for _, rule := range moodRules {
		if rule.match(c[0], c[1], c[2], c[3], c[4]) {
			return rule.label
		}
	}
	return MoodBalanced
}

func featureVector(f *AudioFeatures) []float64 {
	return []float64{
		f.Danceability,
		f.Energy,
		f.Valence,
		f.Tempo / tempoScale,
		f.Acousticness,
	}
}

// ClusterByMood partitions events into k mood clusters by audio features.
// Events without a feature record are excluded entirely rather than
// treated as zero vectors; if no event has features, the result is empty.
// k falls back to DefaultClusters when non-positive and is capped at the
// number of usable events. Every usable event lands in exactly one
// cluster.
func ClusterByMood(events []ListeningEvent, k int) MoodAnalysis {
	var vectors [][]float64
	var refs []TrackRef
	for _, e := range events {
		if e.Features == nil {
			continue
		}
		vectors = append(vectors, featureVector(e.Features))
		refs = append(refs, TrackRef{TrackID: e.TrackID, TrackName: e.TrackName, ArtistName: e.ArtistName})
	}

	if len(vectors) == 0 {
		return MoodAnalysis{}
	}

	if k <= 0 {
		k = DefaultClusters
	}
	if k > len(vectors) {
		k = len(vectors)
	}

	centroids, assignments := kMeans(vectors, k)

	ma := MoodAnalysis{
		Playlists:    make(map[string][]TrackRef),
		Distribution: make(map[string]int),
	}
	for i, centroid := range centroids {
		cluster := MoodCluster{
			Label:    labelForCentroid(centroid),
			Centroid: centroid,
		}
		for j, assigned := range assignments {
			if assigned == i {
				cluster.Tracks = append(cluster.Tracks, refs[j])
			}
		}
		if len(cluster.Tracks) == 0 {
			continue
		}
		ma.Clusters = append(ma.Clusters, cluster)
		ma.Playlists[cluster.Label] = append(ma.Playlists[cluster.Label], cluster.Tracks...)
		ma.Distribution[cluster.Label] += len(cluster.Tracks)
	}

	return ma
}

// kMeans runs Lloyd's relocation with deterministic farthest-point
// initialization: the first centroid is the first point, each subsequent
// one is the point farthest from all chosen so far (ties to the lower
// index). Identical input always yields identical partitions.
func kMeans(points [][]float64, k int) (centroids [][]float64, assignments []int) {
	dims := len(points[0])

	centroids = make([][]float64, 0, k)
	centroids = append(centroids, append([]float64(nil), points[0]...))
	for len(centroids) < k {
		best := -1
		bestDist := -1.0
		for i, p := range points {
			d := minDistance(p, centroids)
			if d > bestDist {
				bestDist = d
				best = i
			}
		}
		centroids = append(centroids, append([]float64(nil), points[best]...))
	}

	assignments = make([]int, len(points))
	for iter := 0; iter < maxKMeansIterations; iter++ {
		changed := false
		for i, p := range points {
			nearest := nearestCentroid(p, centroids)
			if assignments[i] != nearest {
				assignments[i] = nearest
				changed = true
			}
		}
		if !changed && iter > 0 {
			break
		}

		sums := make([][]float64, k)
		counts := make([]int, k)
		for c := range sums {
			sums[c] = make([]float64, dims)
		}
		for i, p := range points {
			c := assignments[i]
			counts[c]++
			for d, v := range p {
				sums[c][d] += v
			}
		}
		for c := range centroids {
			if counts[c] == 0 {
				// Empty cluster keeps its previous centroid.
				continue
			}
			for d := range centroids[c] {
				centroids[c][d] = sums[c][d] / float64(counts[c])
			}
		}
	}

	return centroids, assignments
}

func nearestCentroid(p []float64, centroids [][]float64) int {
	best := 0
	bestDist := squaredDistance(p, centroids[0])
	for c := 1; c < len(centroids); c++ {
		if d := squaredDistance(p, centroids[c]); d < bestDist {
			bestDist = d
			best = c
		}
	}
	return best
}

func minDistance(p []float64, centroids [][]float64) float64 {
	min := squaredDistance(p, centroids[0])
	for c := 1; c < len(centroids); c++ {
		if d := squaredDistance(p, centroids[c]); d < min {
			min = d
		}
	}
	return min
}

func squaredDistance(a, b []float64) float64 {
	var sum float64
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}
	return sum
}
