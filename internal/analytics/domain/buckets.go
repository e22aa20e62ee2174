package domain

import "fmt"

// ScoreBucket is one fixed lead-score range with the feedback that fell in it.
type ScoreBucket struct {
	Min           int
	Max           int
	Count         int
	RatingSum     int
	AverageRating float64
}

// Label renders the bucket range, e.g. "21-40".
func (b ScoreBucket) Label() string {
	return fmt.Sprintf("%d-%d", b.Min, b.Max)
}

var bucketBounds = [...][2]int{{0, 20}, {21, 40}, {41, 60}, {61, 80}, {81, 100}}

// EmptyBuckets returns the five score buckets in ascending order, all zeroed.
func EmptyBuckets() []ScoreBucket {
	buckets := make([]ScoreBucket, len(bucketBounds))
	for i, b := range bucketBounds {
		buckets[i] = ScoreBucket{Min: b[0], Max: b[1]}
	}
	return buckets
}

// BucketIndex returns the bucket a score belongs to. Out-of-range scores land
// in the nearest end bucket.
func BucketIndex(score int) int {
	switch {
	case score <= 20:
		return 0
	case score <= 40:
		return 1
	case score <= 60:
		return 2
	case score <= 80:
		return 3
	default:
		return 4
	}
}

// ScoreGroup is the count and rating sum of feedback rows sharing one lead score.
type ScoreGroup struct {
	Score     int
	Count     int
	RatingSum int
}

// Bucketize folds per-score groups into the five buckets and computes each
// bucket's mean rating. Empty buckets keep a mean of 0.
func Bucketize(groups []ScoreGroup) []ScoreBucket {
	buckets := EmptyBuckets()
	for _, g := range groups {
		b := &buckets[BucketIndex(g.Score)]
		b.Count += g.Count
		b.RatingSum += g.RatingSum
	}
	for i := range buckets {
		if buckets[i].Count > 0 {
			buckets[i].AverageRating = float64(buckets[i].RatingSum) / float64(buckets[i].Count)
		}
	}
	return buckets
}

// RatingValues lists the possible ratings in ascending order.
var RatingValues = [...]int{1, 2, 3, 4, 5}

// ZeroFillRatings returns a count for every rating 1..5, using 0 for ratings
// missing from counts.
func ZeroFillRatings(counts map[int]int) map[int]int {
	out := make(map[int]int, len(RatingValues))
	for _, r := range RatingValues {
		out[r] = counts[r]
	}
	return out
}
