// Package pool orders the news backlog so the feed never dwells on one topic.
package pool

import "github.com/zappabad/stocky/internal/news"

const (
	// BucketCap is the maximum number of records kept per topic.
	BucketCap = 20
	// InitialActiveSize is the number of records visible before the first release.
	InitialActiveSize = 4
)

// PreferredTopics are the companies shown first in a fresh feed.
var PreferredTopics = []string{"삼송전자", "마이크로하드", "예진캐피탈", "진호랩"}

// Rand is the random source used to pick topics. *math/rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
}

type bucket struct {
	topic   string
	records []news.Record
}

// Build buckets records by topic and interleaves them so that no two adjacent
// entries share a topic unless only one topic is left. Duplicate titles within a
// topic and records beyond bucketCap are dropped.
func Build(records []news.Record, rng Rand, bucketCap int) []news.Record {
	if bucketCap <= 0 {
		bucketCap = BucketCap
	}

	var buckets []*bucket
	index := make(map[string]*bucket)
	seen := make(map[string]map[string]bool)
	total := 0

	for _, r := range records {
		topic := r.Topic()
		b, ok := index[topic]
		if !ok {
			b = &bucket{topic: topic}
			index[topic] = b
			buckets = append(buckets, b)
			seen[topic] = make(map[string]bool)
		}
		if seen[topic][r.Title] || len(b.records) >= bucketCap {
			continue
		}
		seen[topic][r.Title] = true
		b.records = append(b.records, r)
		total++
	}

	out := make([]news.Record, 0, total)
	last := ""
	candidates := make([]*bucket, 0, len(buckets))

	for len(out) < total {
		candidates = candidates[:0]
		for _, b := range buckets {
			if len(b.records) > 0 && b.topic != last {
				candidates = append(candidates, b)
			}
		}
		if len(candidates) == 0 {
			// only the previous topic has records left
			candidates = append(candidates, index[last])
		}

		b := candidates[rng.Intn(len(candidates))]
		out = append(out, b.records[0])
		b.records = b.records[1:]
		last = b.topic
	}

	return out
}

// SelectInitial picks up to size records for a fresh feed: first one record
// for each distinct preferred topic in pool order, then the earliest remaining
// records. Picked records are stamped with displayDate. The remainder keeps
// its pool order.
func SelectInitial(pool []news.Record, preferred []string, size int, displayDate string) (active, rest []news.Record) {
	if size <= 0 {
		size = InitialActiveSize
	}

	allowed := make(map[string]bool, len(preferred))
	for _, p := range preferred {
		allowed[p] = true
	}

	used := make(map[string]bool)
	active = make([]news.Record, 0, size)
	rest = make([]news.Record, 0, len(pool))

	for _, r := range pool {
		topic := r.Topic()
		if len(active) < size && allowed[topic] && !used[topic] {
			used[topic] = true
			r.DisplayDate = displayDate
			active = append(active, r)
			continue
		}
		rest = append(rest, r)
	}

	for len(active) < size && len(rest) > 0 {
		r := rest[0]
		rest = rest[1:]
		r.DisplayDate = displayDate
		active = append(active, r)
	}

	return active, rest
}
