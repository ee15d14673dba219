// Package models defines the persisted entities of the learning platform.
// JSON field names match what the web client already consumes.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Course represents a published course (DSA, System Design, ...).
type Course struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ImageURL    *string   `json:"image_url,omitempty"`
	PlaylistURL *string   `json:"playlist_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// CourseDetails is a course together with its chapters, as served by
// GET /courses/{id}.
type CourseDetails struct {
	Course
	Chapters []Chapter `json:"chapters"`
}

// Chapter represents a pattern/topic inside a course, optionally with a
// roadmap image shown before its videos.
type Chapter struct {
	ID              int64     `json:"id"`
	CourseID        int64     `json:"course_id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	RoadmapImageURL *string   `json:"roadmap_image_url,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// Video represents one lesson video within a chapter.
type Video struct {
	ID             int64     `json:"id"`
	ChapterID      int64     `json:"chapter_id"`
	Title          string    `json:"title"`
	VideoURL       string    `json:"video_url"`
	SequenceNumber int       `json:"sequence_number"`
	CreatedAt      time.Time `json:"created_at"`
}

// Profile represents a learner's profile row. The identity provider owns
// the account; this row carries display data and the coin balance.
type Profile struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email *string   `json:"email,omitempty"`
	Coins int64     `json:"coins"`
}

// UserProgress is a profile enriched with completion data, as served by
// GET /user-profile/{userId}.
type UserProgress struct {
	Profile
	Progress       int `json:"progress"` // percentage, 0-100
	CompletedCount int `json:"completedCount"`
}

// CompletionResult reports the outcome of a mark-complete or
// mark-roadmap-viewed call.
type CompletionResult struct {
	Message    string `json:"message"`
	CoinsAdded int64  `json:"coinsAdded"`
	NewBalance int64  `json:"newBalance,omitempty"`
}

// ContactMessage is a submission from the contact page.
type ContactMessage struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Body      string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
