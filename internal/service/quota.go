package service

import (
	"math"
	"sort"

	"github.com/moyeo-lab/cohort-api/internal/models"
)

// DefaultQuotaPerTrack is the contracted number of sessions per enrollment.
// A track with fewer scheduled meetings still counts for the full quota; a
// track with more only ever counts the first nine.
const DefaultQuotaPerTrack = 9

// distinctTracks returns the unique, valid (region, level) pairs of an
// enrollment set in first-seen order. Pairs with an empty component are
// dropped before counting.
func distinctTracks(enrollments []models.Enrollment) []models.TrackKey {
	seen := make(map[models.TrackKey]struct{}, len(enrollments))
	tracks := make([]models.TrackKey, 0, len(enrollments))
	for _, e := range enrollments {
		key := e.Track()
		if !key.Valid() {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		tracks = append(tracks, key)
	}
	return tracks
}

// ResolveQuota computes the fixed rate denominator: perTrack sessions for
// every distinct enrolled track, regardless of how many meetings exist.
func ResolveQuota(enrollments []models.Enrollment, perTrack int) int {
	if perTrack <= 0 {
		perTrack = DefaultQuotaPerTrack
	}
	return perTrack * len(distinctTracks(enrollments))
}

// SelectInScope picks the meetings that count toward a student's rates: for
// each enrolled track, the first perTrack meetings ordered by sequence
// number. The union is deduplicated by meeting ID so a meeting never counts
// twice.
func SelectInScope(meetings []models.Meeting, enrollments []models.Enrollment, perTrack int) []models.Meeting {
	if perTrack <= 0 {
		perTrack = DefaultQuotaPerTrack
	}
	byTrack := make(map[models.TrackKey][]models.Meeting)
	for _, m := range meetings {
		key := m.Track()
		byTrack[key] = append(byTrack[key], m)
	}

	seen := make(map[string]struct{})
	var inScope []models.Meeting
	for _, track := range distinctTracks(enrollments) {
		candidates := byTrack[track]
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].SequenceNo < candidates[j].SequenceNo
		})
		count := 0
		for _, m := range candidates {
			if count >= perTrack {
				break
			}
			if _, ok := seen[m.ID]; ok {
				continue
			}
			seen[m.ID] = struct{}{}
			inScope = append(inScope, m)
			count++
		}
	}
	return inScope
}

// ratePercent computes round-half-up(numerator/denominator*100), with 0 for
// an empty denominator.
func ratePercent(numerator, denominator int) int {
	if denominator <= 0 {
		return 0
	}
	return int(math.Floor(float64(numerator)/float64(denominator)*100 + 0.5))
}
