package leaderboard

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day = time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)

func attempt(user string, score, secs int, minute int) Attempt {
	return Attempt{
		UserID:      user,
		Username:    "@" + user,
		Score:       score,
		TimeTaken:   secs,
		CompletedAt: day.Add(time.Duration(minute) * time.Minute),
	}
}

func TestBuild_KeepsBestAttemptPerUser(t *testing.T) {
	attempts := []Attempt{
		attempt("alice", 6, 90, 1),
		attempt("alice", 9, 120, 2),
		attempt("alice", 9, 100, 3),
		attempt("bob", 8, 60, 1),
		attempt("carol", 9, 100, 0),
	}

	got := Build(attempts, 10)

	require.Len(t, got, 3)
	assert.Equal(t, "carol", got[0].UserID, "same score and time, earlier completion wins")
	assert.Equal(t, "alice", got[1].UserID)
	assert.Equal(t, 100, got[1].TimeTaken)
	assert.Equal(t, 3, got[1].Attempts)
	assert.Equal(t, "bob", got[2].UserID)
}

func TestBuild_Ranks(t *testing.T) {
	attempts := []Attempt{
		attempt("a", 9, 50, 0),
		attempt("b", 9, 50, 5),
		attempt("c", 9, 70, 0),
		attempt("d", 3, 10, 0),
	}

	got := Build(attempts, 10)

	ranks := make([]int, len(got))
	for i, e := range got {
		ranks[i] = e.Rank
	}
	assert.Equal(t, []int{1, 1, 3, 4}, ranks)
}

func TestBuild_SkipsInvalidAttempts(t *testing.T) {
	attempts := []Attempt{
		attempt("", 9, 10, 0),
		attempt("x", -1, 10, 0),
		attempt("y", 5, -3, 0),
		attempt("z", 0, 0, 0),
	}

	got := Build(attempts, 10)

	require.Len(t, got, 1)
	assert.Equal(t, "z", got[0].UserID)
}

func TestBuild_Limit(t *testing.T) {
	var attempts []Attempt
	for i := 0; i < 150; i++ {
		attempts = append(attempts, attempt(fmt.Sprintf("u%03d", i), i%10, i, 0))
	}

	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{"default", 0, DefaultLimit},
		{"explicit", 5, 5},
		{"capped", 1000, MaxLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, Build(attempts, tt.limit), tt.want)
		})
	}
}

func TestBuild_Empty(t *testing.T) {
	assert.Empty(t, Build(nil, 10))
}
