package analytics

import (
	"sort"

	"github.com/ridgeline-systems/ridewatch/internal/telemetry"
)

// UsageVector is one user's 3-dimensional usage profile.
type UsageVector struct {
	UserID     string
	Uploads    float64
	Views      float64
	Recomputes float64
}

// Segment is one behavioural cluster. "power" is the cluster whose centroid
// has the higher uploads coordinate; the other is "casual".
type Segment struct {
	Label         string  `json:"label"`
	Users         int     `json:"users"`
	AvgUploads    float64 `json:"avg_uploads"`
	AvgViews      float64 `json:"avg_views"`
	AvgRecomputes float64 `json:"avg_recomputes"`
}

// SegmentLabels, in output order.
const (
	SegmentPower  = "power"
	SegmentCasual = "casual"
)

// usageVectors builds per-user counts of uploads, views, and recomputes,
// returned in ascending user-id order so the segmenter's seeding is
// deterministic.
func usageVectors(events []telemetry.Event) []UsageVector {
	byUser := make(map[string]*UsageVector)
	for _, e := range events {
		if e.UserID == "" {
			continue
		}
		v := byUser[e.UserID]
		if v == nil {
			v = &UsageVector{UserID: e.UserID}
			byUser[e.UserID] = v
		}
		switch e.Type {
		case telemetry.EventUpload:
			v.Uploads++
		case telemetry.EventView:
			v.Views++
		case telemetry.EventRecompute:
			v.Recomputes++
		}
	}

	vectors := make([]UsageVector, 0, len(byUser))
	for _, v := range byUser {
		vectors = append(vectors, *v)
	}
	sort.Slice(vectors, func(i, j int) bool { return vectors[i].UserID < vectors[j].UserID })
	return vectors
}

// SegmentUsers splits the usage vectors into two clusters with a fixed
// number of assignment/recentering rounds. This is a bounded-iteration
// heuristic: centroids seed from the first and last vectors in input order,
// ties go to the first cluster, and an empty cluster keeps its previous
// centroid. It is not k-means and carries no convergence guarantee.
func SegmentUsers(vectors []UsageVector, rounds int) []Segment {
	if len(vectors) == 0 {
		return nil
	}
	if len(vectors) == 1 {
		v := vectors[0]
		return []Segment{{
			Label:         SegmentPower,
			Users:         1,
			AvgUploads:    v.Uploads,
			AvgViews:      v.Views,
			AvgRecomputes: v.Recomputes,
		}}
	}

	coords := func(v UsageVector) [3]float64 {
		return [3]float64{v.Uploads, v.Views, v.Recomputes}
	}
	centroids := [2][3]float64{coords(vectors[0]), coords(vectors[len(vectors)-1])}
	assignment := make([]int, len(vectors))

	for round := 0; round < rounds; round++ {
		for i, v := range vectors {
			p := coords(v)
			if sqDist(p, centroids[0]) <= sqDist(p, centroids[1]) {
				assignment[i] = 0
			} else {
				assignment[i] = 1
			}
		}

		for c := 0; c < 2; c++ {
			var sum [3]float64
			n := 0
			for i, v := range vectors {
				if assignment[i] != c {
					continue
				}
				p := coords(v)
				for k := 0; k < 3; k++ {
					sum[k] += p[k]
				}
				n++
			}
			if n == 0 {
				continue
			}
			for k := 0; k < 3; k++ {
				centroids[c][k] = sum[k] / float64(n)
			}
		}
	}

	sizes := [2]int{}
	for _, c := range assignment {
		sizes[c]++
	}

	powerIdx := 0
	if centroids[1][0] > centroids[0][0] {
		powerIdx = 1
	}

	segments := make([]Segment, 0, 2)
	for _, c := range []int{powerIdx, 1 - powerIdx} {
		label := SegmentCasual
		if c == powerIdx {
			label = SegmentPower
		}
		segments = append(segments, Segment{
			Label:         label,
			Users:         sizes[c],
			AvgUploads:    round1(centroids[c][0]),
			AvgViews:      round1(centroids[c][1]),
			AvgRecomputes: round1(centroids[c][2]),
		})
	}
	return segments
}

func sqDist(a, b [3]float64) float64 {
	var total float64
	for k := 0; k < 3; k++ {
		d := a[k] - b[k]
		total += d * d
	}
	return total
}
