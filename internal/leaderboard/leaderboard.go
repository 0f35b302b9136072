// Package leaderboard ranks Grill the Grid quiz attempts. Users may play a
// grid several times; only their best attempt counts.
package leaderboard

import (
	"sort"
	"time"
)

const (
	// DefaultLimit is the leaderboard length when none is requested.
	DefaultLimit = 50
	// MaxLimit caps the leaderboard length.
	MaxLimit = 100
)

// Attempt is one completed play of a grid.
type Attempt struct {
	UserID      string
	Username    string
	Score       int
	TimeTaken   int // seconds
	CompletedAt time.Time
}

// Entry is a leaderboard row.
type Entry struct {
	Rank        int       `json:"rank"`
	UserID      string    `json:"user_id"`
	Username    string    `json:"username"`
	Score       int       `json:"score"`
	TimeTaken   int       `json:"time_taken"`
	CompletedAt time.Time `json:"completed_at"`
	Attempts    int       `json:"attempts"`
}

// better reports whether a beats b: higher score, then faster, then earlier.
func better(a, b Attempt) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if a.TimeTaken != b.TimeTaken {
		return a.TimeTaken < b.TimeTaken
	}
	return a.CompletedAt.Before(b.CompletedAt)
}

// ClampLimit maps a requested length onto [1, MaxLimit], using DefaultLimit
// for non-positive values.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// Build keeps each user's best attempt, orders users best first and assigns
// ranks. Users tied on both score and time share a rank. Attempts without a
// user or with negative score or time are ignored.
func Build(attempts []Attempt, limit int) []Entry {
	limit = ClampLimit(limit)

	best := make(map[string]Attempt)
	plays := make(map[string]int)
	for _, a := range attempts {
		if a.UserID == "" || a.Score < 0 || a.TimeTaken < 0 {
			continue
		}
		plays[a.UserID]++
		if cur, ok := best[a.UserID]; !ok || better(a, cur) {
			best[a.UserID] = a
		}
	}

	ranked := make([]Attempt, 0, len(best))
	for _, a := range best {
		ranked = append(ranked, a)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if better(ranked[i], ranked[j]) {
			return true
		}
		if better(ranked[j], ranked[i]) {
			return false
		}
		return ranked[i].UserID < ranked[j].UserID
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	entries := make([]Entry, len(ranked))
	for i, a := range ranked {
		rank := i + 1
		if i > 0 {
			prev := ranked[i-1]
			if prev.Score == a.Score && prev.TimeTaken == a.TimeTaken {
				rank = entries[i-1].Rank
			}
		}
		entries[i] = Entry{
			Rank:        rank,
			UserID:      a.UserID,
			Username:    a.Username,
			Score:       a.Score,
			TimeTaken:   a.TimeTaken,
			CompletedAt: a.CompletedAt,
			Attempts:    plays[a.UserID],
		}
	}
	return entries
}
