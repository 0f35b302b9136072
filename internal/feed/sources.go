package feed

import (
	"context"

	"github.com/boxboxd/boxboxd/internal/db"
	"github.com/boxboxd/boxboxd/internal/models"
)

// ReviewSource serves feed candidates from the review table.
type ReviewSource struct {
	reviews *db.ReviewRepository
}

// NewReviewSource creates a PostSource over reviews.
func NewReviewSource(reviews *db.ReviewRepository) *ReviewSource {
	return &ReviewSource{reviews: reviews}
}

// ListFeedCandidates implements PostSource.
func (s *ReviewSource) ListFeedCandidates(ctx context.Context, limit int) ([]Post, error) {
	reviews, err := s.reviews.ListFeedCandidates(ctx, limit)
	if err != nil {
		return nil, err
	}
	posts := make([]Post, 0, len(reviews))
	for _, r := range reviews {
		posts = append(posts, PostFromReview(r))
	}
	return posts, nil
}

// PostFromReview converts a stored review. Missing rating, like count or
// creation time come through as zero values; the ranker repairs them.
func PostFromReview(r *models.Review) Post {
	p := Post{
		ID:       r.ID,
		AuthorID: r.UserID,
		Username: r.Username,
		RaceName: r.RaceName,
		Body:     r.Body,
	}
	if r.Rating.Valid {
		p.Rating = int(r.Rating.Int16)
	}
	if r.LikeCount.Valid {
		p.LikeCount = int(r.LikeCount.Int64)
	}
	if r.CreatedAt.Valid {
		p.CreatedAt = r.CreatedAt.Time
	}
	return p
}

// ProfileNames serves display names from the profile table.
type ProfileNames struct {
	profiles *db.ProfileRepository
}

// NewProfileNames creates a ProfileSource over profiles.
func NewProfileNames(profiles *db.ProfileRepository) *ProfileNames {
	return &ProfileNames{profiles: profiles}
}

// DisplayName implements ProfileSource. Profiles without a display name
// resolve to an empty string, which the resolver leaves out.
func (s *ProfileNames) DisplayName(ctx context.Context, userID string) (string, error) {
	profile, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	return profile.DisplayName.String, nil
}
