package analytics

import (
	"fmt"
	"testing"

	"github.com/ridgeline-systems/ridewatch/internal/telemetry"
)

func TestSegmentUsers_PartitionsEveryPoint(t *testing.T) {
	for _, n := range []int{2, 3, 7, 25} {
		vectors := make([]UsageVector, n)
		for i := range vectors {
			vectors[i] = UsageVector{
				UserID:  fmt.Sprintf("u%02d", i),
				Uploads: float64(i % 4),
				Views:   float64(i % 7),
			}
		}

		segments := SegmentUsers(vectors, 6)
		if len(segments) != 2 {
			t.Fatalf("n=%d: got %d segments, want 2", n, len(segments))
		}
		if total := segments[0].Users + segments[1].Users; total != n {
			t.Errorf("n=%d: segments cover %d users, want exactly %d", n, total, n)
		}
	}
}

func TestSegmentUsers_SinglePoint(t *testing.T) {
	segments := SegmentUsers([]UsageVector{{UserID: "u1", Uploads: 3, Views: 1}}, 6)
	if len(segments) != 1 {
		t.Fatalf("got %d segments, want exactly 1 for a single point", len(segments))
	}
	if segments[0].Users != 1 {
		t.Errorf("segment size = %d, want 1", segments[0].Users)
	}
}

func TestSegmentUsers_Empty(t *testing.T) {
	if segments := SegmentUsers(nil, 6); segments != nil {
		t.Errorf("got %v, want nil for empty input", segments)
	}
}

func TestSegmentUsers_PowerLabelFollowsUploads(t *testing.T) {
	// Two well-separated groups: heavy uploaders and viewers.
	var vectors []UsageVector
	for i := 0; i < 5; i++ {
		vectors = append(vectors, UsageVector{UserID: fmt.Sprintf("heavy%d", i), Uploads: 20, Views: 2})
	}
	for i := 0; i < 5; i++ {
		vectors = append(vectors, UsageVector{UserID: fmt.Sprintf("light%d", i), Uploads: 1, Views: 15})
	}

	segments := SegmentUsers(vectors, 6)
	if segments[0].Label != SegmentPower {
		t.Fatalf("first segment label = %q, want the power segment first", segments[0].Label)
	}
	if segments[0].AvgUploads <= segments[1].AvgUploads {
		t.Errorf("power centroid uploads %v not above casual %v",
			segments[0].AvgUploads, segments[1].AvgUploads)
	}
	if segments[0].Users != 5 || segments[1].Users != 5 {
		t.Errorf("segment sizes = %d/%d, want 5/5", segments[0].Users, segments[1].Users)
	}
}

func TestSegmentUsers_IdenticalPointsTieToFirstCluster(t *testing.T) {
	vectors := []UsageVector{
		{UserID: "u1", Uploads: 2, Views: 2},
		{UserID: "u2", Uploads: 2, Views: 2},
		{UserID: "u3", Uploads: 2, Views: 2},
	}

	segments := SegmentUsers(vectors, 6)
	if segments[0].Users+segments[1].Users != 3 {
		t.Fatalf("partition lost points: %v", segments)
	}
	// Equidistant points all land in the first cluster; the second keeps its
	// seed centroid and stays empty.
	var sizes []int
	for _, s := range segments {
		sizes = append(sizes, s.Users)
	}
	if sizes[0] != 3 && sizes[1] != 3 {
		t.Errorf("ties did not collapse into one cluster: sizes %v", sizes)
	}
}

func TestUsageVectors_SortedAndCounted(t *testing.T) {
	events := []telemetry.Event{
		{Type: telemetry.EventView, UserID: "zeta"},
		{Type: telemetry.EventUpload, UserID: "alpha"},
		{Type: telemetry.EventUpload, UserID: "alpha"},
		{Type: telemetry.EventRecompute, UserID: "zeta"},
		{Type: telemetry.EventExport, UserID: "alpha"}, // not a vector dimension
		{Type: telemetry.EventUpload, UserID: ""},      // anonymous, dropped
	}

	vectors := usageVectors(events)
	if len(vectors) != 2 {
		t.Fatalf("got %d vectors, want 2", len(vectors))
	}
	if vectors[0].UserID != "alpha" || vectors[1].UserID != "zeta" {
		t.Errorf("vectors not in ascending user-id order: %v", vectors)
	}
	if vectors[0].Uploads != 2 || vectors[1].Views != 1 || vectors[1].Recomputes != 1 {
		t.Errorf("counts wrong: %+v", vectors)
	}
}
