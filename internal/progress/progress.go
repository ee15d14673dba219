// Package progress records watched videos and viewed roadmaps and keeps the
// coin balances they earn.
package progress

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Coder-vibhi/baua-lms/internal/metrics"
	"github.com/Coder-vibhi/baua-lms/internal/models"
)

var ErrProfileNotFound = errors.New("profile not found")

// Coin rewards. Completing the last unwatched video of a chapter earns the
// chapter bonus on top of the per-video coin.
const (
	videoReward        = 1
	chapterBonusReward = 10
	roadmapReward      = 1
)

// dsaCourseID is the course whose completion percentage the dashboard
// shows.
const dsaCourseID = 1

type Service struct {
	db  *sql.DB
	log zerolog.Logger
}

func NewService(db *sql.DB, logger zerolog.Logger) *Service {
	return &Service{db: db, log: logger}
}

// MarkVideoComplete records a watched video and credits coins. Watching the
// same video twice is detected and credited nothing. The progress insert
// and the coin credit commit together.
func (s *Service) MarkVideoComplete(ctx context.Context, userID uuid.UUID, videoID, chapterID int64) (*models.CompletionResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	err = tx.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM video_progress WHERE user_id = $1 AND video_id = $2)",
		userID, videoID,
	).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check video progress: %w", err)
	}
	if exists {
		return &models.CompletionResult{Message: "Already watched", CoinsAdded: 0}, nil
	}

	if err := ensureProfile(ctx, tx, userID); err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO video_progress (user_id, video_id) VALUES ($1, $2)",
		userID, videoID,
	); err != nil {
		return nil, fmt.Errorf("failed to record video progress: %w", err)
	}

	coins := int64(videoReward)
	message := "Video Completed! +1 Coin"

	// Chapter bonus: awarded when this video was the last unwatched one in
	// its chapter.
	var totalVideos, watchedVideos int
	err = tx.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM videos WHERE chapter_id = $1),
			(SELECT COUNT(*) FROM video_progress vp
				JOIN videos v ON v.id = vp.video_id
				WHERE v.chapter_id = $1 AND vp.user_id = $2)
	`, chapterID, userID).Scan(&totalVideos, &watchedVideos)
	if err != nil {
		return nil, fmt.Errorf("failed to count chapter progress: %w", err)
	}
	if totalVideos > 0 && watchedVideos == totalVideos {
		coins += chapterBonusReward
		message = fmt.Sprintf("Chapter Completed! +%d Coins", coins)
	}

	newBalance, err := creditCoins(ctx, tx, userID, coins)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit video completion: %w", err)
	}

	metrics.VideosCompleted.Inc()
	metrics.CoinsAwarded.WithLabelValues("video").Add(float64(videoReward))
	if coins > videoReward {
		metrics.CoinsAwarded.WithLabelValues("chapter_bonus").Add(float64(chapterBonusReward))
	}
	s.log.Info().Str("user", userID.String()).Int64("video", videoID).Int64("coins", coins).Msg("video completed")

	return &models.CompletionResult{Message: message, CoinsAdded: coins, NewBalance: newBalance}, nil
}

// MarkRoadmapViewed credits the one-time coin for opening a chapter
// roadmap.
func (s *Service) MarkRoadmapViewed(ctx context.Context, userID uuid.UUID, chapterID int64) (*models.CompletionResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	err = tx.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM chapter_progress WHERE user_id = $1 AND chapter_id = $2)",
		userID, chapterID,
	).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check chapter progress: %w", err)
	}
	if exists {
		return &models.CompletionResult{Message: "Already viewed", CoinsAdded: 0}, nil
	}

	if err := ensureProfile(ctx, tx, userID); err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO chapter_progress (user_id, chapter_id) VALUES ($1, $2)",
		userID, chapterID,
	); err != nil {
		return nil, fmt.Errorf("failed to record chapter progress: %w", err)
	}

	newBalance, err := creditCoins(ctx, tx, userID, roadmapReward)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit roadmap view: %w", err)
	}

	metrics.CoinsAwarded.WithLabelValues("roadmap").Add(float64(roadmapReward))
	s.log.Info().Str("user", userID.String()).Int64("chapter", chapterID).Msg("roadmap viewed")

	return &models.CompletionResult{Message: "Roadmap Unlocked! +1 Coin", CoinsAdded: roadmapReward, NewBalance: newBalance}, nil
}

// GetUserProfile returns the learner's profile with the completion
// percentage for the DSA course, counting only progress on videos that
// actually belong to it.
func (s *Service) GetUserProfile(ctx context.Context, userID uuid.UUID) (*models.UserProgress, error) {
	var up models.UserProgress
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, email, coins FROM profiles WHERE id = $1",
		userID,
	).Scan(&up.ID, &up.Name, &up.Email, &up.Coins)
	if err == sql.ErrNoRows {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	var totalVideos, completed int
	err = s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM videos v
				JOIN chapters c ON c.id = v.chapter_id
				WHERE c.course_id = $1),
			(SELECT COUNT(*) FROM video_progress vp
				JOIN videos v ON v.id = vp.video_id
				JOIN chapters c ON c.id = v.chapter_id
				WHERE c.course_id = $1 AND vp.user_id = $2)
	`, dsaCourseID, userID).Scan(&totalVideos, &completed)
	if err != nil {
		return nil, fmt.Errorf("failed to compute progress: %w", err)
	}

	up.CompletedCount = completed
	if totalVideos > 0 {
		up.Progress = int(float64(completed)/float64(totalVideos)*100 + 0.5)
	}

	return &up, nil
}

// ensureProfile creates the learner's profile row if the identity provider
// has not synced it yet; progress rows reference it.
func ensureProfile(ctx context.Context, tx *sql.Tx, userID uuid.UUID) error {
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO profiles (id) VALUES ($1) ON CONFLICT (id) DO NOTHING",
		userID,
	); err != nil {
		return fmt.Errorf("failed to ensure profile: %w", err)
	}
	return nil
}

// creditCoins atomically adds coins to the profile balance and returns the
// new balance.
func creditCoins(ctx context.Context, tx *sql.Tx, userID uuid.UUID, coins int64) (int64, error) {
	var balance int64
	err := tx.QueryRowContext(ctx,
		"UPDATE profiles SET coins = coins + $2 WHERE id = $1 RETURNING coins",
		userID, coins,
	).Scan(&balance)
	if err != nil {
		return 0, fmt.Errorf("failed to credit coins: %w", err)
	}
	return balance, nil
}
