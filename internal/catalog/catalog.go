// Package catalog serves the course content tree (courses, chapters,
// videos) and the admin write paths that maintain it.
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Coder-vibhi/baua-lms/internal/models"
)

var ErrCourseNotFound = errors.New("course not found")

const (
	cacheTTL          = time.Minute
	courseListKey     = "catalog:courses"
	courseDetailsKeyF = "catalog:course:%d"
)

type Service struct {
	db    *sql.DB
	redis *redis.Client
	log   zerolog.Logger
}

func NewService(db *sql.DB, rdb *redis.Client, logger zerolog.Logger) *Service {
	return &Service{db: db, redis: rdb, log: logger}
}

// ListCourses returns all courses ordered by id, served from cache when the
// entry is warm.
func (s *Service) ListCourses(ctx context.Context) ([]models.Course, error) {
	var cached []models.Course
	if s.cacheGet(ctx, courseListKey, &cached) {
		return cached, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, description, image_url, playlist_url, created_at
		FROM courses
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	defer rows.Close()

	courses := []models.Course{}
	for rows.Next() {
		var c models.Course
		if err := rows.Scan(&c.ID, &c.Title, &c.Description, &c.ImageURL, &c.PlaylistURL, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan course: %w", err)
		}
		courses = append(courses, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read courses: %w", err)
	}

	s.cacheSet(ctx, courseListKey, courses)
	return courses, nil
}

// GetCourse returns one course with its chapters ordered by id.
func (s *Service) GetCourse(ctx context.Context, id int64) (*models.CourseDetails, error) {
	key := fmt.Sprintf(courseDetailsKeyF, id)
	var cached models.CourseDetails
	if s.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	var details models.CourseDetails
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, description, image_url, playlist_url, created_at
		FROM courses
		WHERE id = $1
	`, id).Scan(&details.ID, &details.Title, &details.Description, &details.ImageURL, &details.PlaylistURL, &details.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrCourseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get course %d: %w", id, err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, course_id, title, description, roadmap_image_url, created_at
		FROM chapters
		WHERE course_id = $1
		ORDER BY id ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list chapters for course %d: %w", id, err)
	}
	defer rows.Close()

	details.Chapters = []models.Chapter{}
	for rows.Next() {
		var ch models.Chapter
		if err := rows.Scan(&ch.ID, &ch.CourseID, &ch.Title, &ch.Description, &ch.RoadmapImageURL, &ch.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan chapter: %w", err)
		}
		details.Chapters = append(details.Chapters, ch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read chapters: %w", err)
	}

	s.cacheSet(ctx, key, details)
	return &details, nil
}

// ListChapterVideos returns a chapter's videos in playback order.
func (s *Service) ListChapterVideos(ctx context.Context, chapterID int64) ([]models.Video, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, chapter_id, title, video_url, sequence_number, created_at
		FROM videos
		WHERE chapter_id = $1
		ORDER BY sequence_number ASC
	`, chapterID)
	if err != nil {
		return nil, fmt.Errorf("failed to list videos for chapter %d: %w", chapterID, err)
	}
	defer rows.Close()

	videos := []models.Video{}
	for rows.Next() {
		var v models.Video
		if err := rows.Scan(&v.ID, &v.ChapterID, &v.Title, &v.VideoURL, &v.SequenceNumber, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan video: %w", err)
		}
		videos = append(videos, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read videos: %w", err)
	}

	return videos, nil
}

// CreateCourse inserts a course and returns the stored row.
func (s *Service) CreateCourse(ctx context.Context, title, description string, imageURL, playlistURL *string) (*models.Course, error) {
	var c models.Course
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO courses (title, description, image_url, playlist_url)
		VALUES ($1, $2, $3, $4)
		RETURNING id, title, description, image_url, playlist_url, created_at
	`, title, description, imageURL, playlistURL).
		Scan(&c.ID, &c.Title, &c.Description, &c.ImageURL, &c.PlaylistURL, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create course: %w", err)
	}

	s.invalidate(ctx, courseListKey)
	return &c, nil
}

// CreateChapter inserts a chapter and returns the stored row.
func (s *Service) CreateChapter(ctx context.Context, courseID int64, title, description string, roadmapImageURL *string) (*models.Chapter, error) {
	var ch models.Chapter
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO chapters (course_id, title, description, roadmap_image_url)
		VALUES ($1, $2, $3, $4)
		RETURNING id, course_id, title, description, roadmap_image_url, created_at
	`, courseID, title, description, roadmapImageURL).
		Scan(&ch.ID, &ch.CourseID, &ch.Title, &ch.Description, &ch.RoadmapImageURL, &ch.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create chapter: %w", err)
	}

	s.invalidate(ctx, courseListKey, fmt.Sprintf(courseDetailsKeyF, courseID))
	return &ch, nil
}

// CreateVideo inserts a video and returns the stored row.
func (s *Service) CreateVideo(ctx context.Context, chapterID int64, title, videoURL string, sequenceNumber int) (*models.Video, error) {
	var v models.Video
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO videos (chapter_id, title, video_url, sequence_number)
		VALUES ($1, $2, $3, $4)
		RETURNING id, chapter_id, title, video_url, sequence_number, created_at
	`, chapterID, title, videoURL, sequenceNumber).
		Scan(&v.ID, &v.ChapterID, &v.Title, &v.VideoURL, &v.SequenceNumber, &v.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create video: %w", err)
	}

	return &v, nil
}

// cacheGet loads a cached JSON value. Any redis failure is treated as a
// miss; the database remains the source of truth.
func (s *Service) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	if s.redis == nil {
		return false
	}
	data, err := s.redis.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.log.Warn().Err(err).Str("key", key).Msg("cache read failed")
		}
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("cache entry corrupt, ignoring")
		return false
	}
	return true
}

func (s *Service) cacheSet(ctx context.Context, key string, value interface{}) {
	if s.redis == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, key, data, cacheTTL).Err(); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}

func (s *Service) invalidate(ctx context.Context, keys ...string) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, keys...).Err(); err != nil {
		s.log.Warn().Err(err).Msg("cache invalidation failed")
	}
}
