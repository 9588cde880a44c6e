package services

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lessonlab/lessonlab-be/internal/models"
	"github.com/rs/zerolog/log"
)

// LessonServiceProvider defines the interface for lesson services.
type LessonServiceProvider interface {
	GetAllLessons(viewerID string) ([]models.Lesson, error)
	GetLessonByID(id string) (models.Lesson, error)
	CreateLesson(authorID string, draft models.LessonCreate) (models.Lesson, error)
	UpdateLesson(callerID, lessonID string, patch models.LessonPatch) (bool, error)
}

// LessonService provides business logic for lesson management.
type LessonService struct {
	db *sql.DB
}

// NewLessonService creates a new LessonService.
func NewLessonService(db *sql.DB) *LessonService {
	return &LessonService{db: db}
}

const lessonColumns = "id, title, subtitle, grade, subject, is_draft, creation_date, last_modified_date, publication_date, bookmark_count, author_id, category_ids_json, comment_ids_json, file_name, file_url, file_mime_type"

// GetAllLessons lists lessons visible to the given viewer: every published
// lesson, plus the viewer's own drafts. An empty viewerID means an anonymous
// caller.
func (s *LessonService) GetAllLessons(viewerID string) ([]models.Lesson, error) {
	query := "SELECT " + lessonColumns + " FROM lessons WHERE is_draft = 0"
	args := []any{}
	if viewerID != "" {
		query += " OR author_id = ?"
		args = append(args, viewerID)
	}
	query += " ORDER BY creation_date DESC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lessons := []models.Lesson{}
	for rows.Next() {
		lesson, err := scanLesson(rows)
		if err != nil {
			return nil, err
		}
		lessons = append(lessons, lesson)
	}
	return lessons, rows.Err()
}

// GetLessonByID retrieves a single lesson by its id.
func (s *LessonService) GetLessonByID(id string) (models.Lesson, error) {
	row := s.db.QueryRow("SELECT "+lessonColumns+" FROM lessons WHERE id = ?", id)
	lesson, err := scanLesson(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.Lesson{}, ErrNotFound
		}
		return models.Lesson{}, err
	}
	return lesson, nil
}

// CreateLesson persists a new lesson owned by authorID. Lessons start as
// drafts unless the payload says otherwise; publishing stamps the
// publication date.
func (s *LessonService) CreateLesson(authorID string, draft models.LessonCreate) (models.Lesson, error) {
	if draft.Title == "" {
		return models.Lesson{}, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if !models.ValidGrade(draft.Grade) {
		return models.Lesson{}, fmt.Errorf("%w: unknown grade %q", ErrValidation, draft.Grade)
	}
	if !models.ValidSubject(draft.Subject) {
		return models.Lesson{}, fmt.Errorf("%w: unknown subject %q", ErrValidation, draft.Subject)
	}

	now := time.Now().UTC()
	lesson := models.Lesson{
		ID:               uuid.New().String(),
		Title:            draft.Title,
		Subtitle:         draft.Subtitle,
		Grade:            draft.Grade,
		Subject:          draft.Subject,
		IsDraft:          true,
		CreationDate:     now,
		LastModifiedDate: now,
		AuthorID:         authorID,
		CategoryIDs:      []string{},
		CommentIDs:       []string{},
		File:             draft.File,
	}
	if draft.IsDraft != nil && !*draft.IsDraft {
		lesson.IsDraft = false
		lesson.PublicationDate = &now
	}

	var publicationDate any
	if lesson.PublicationDate != nil {
		publicationDate = *lesson.PublicationDate
	}
	_, err := s.db.Exec(
		"INSERT INTO lessons ("+lessonColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		lesson.ID, lesson.Title, lesson.Subtitle, lesson.Grade, lesson.Subject, lesson.IsDraft,
		lesson.CreationDate, lesson.LastModifiedDate, publicationDate, lesson.BookmarkCount,
		lesson.AuthorID, marshalList(lesson.CategoryIDs), marshalList(lesson.CommentIDs),
		lesson.File.Name, lesson.File.URL, lesson.File.MimeType,
	)
	if err != nil {
		return models.Lesson{}, fmt.Errorf("inserting lesson: %w", err)
	}

	log.Info().Str("lesson_id", lesson.ID).Str("author_id", authorID).Bool("draft", lesson.IsDraft).Msg("Created lesson")
	return lesson, nil
}

// UpdateLesson applies a patch to an existing lesson. Only the author may
// change it; the author reference itself is immutable. Publishing a draft
// stamps the publication date if it was never set.
func (s *LessonService) UpdateLesson(callerID, lessonID string, patch models.LessonPatch) (bool, error) {
	lesson, err := s.GetLessonByID(lessonID)
	if err != nil {
		return false, err
	}
	if lesson.AuthorID != callerID {
		return false, ErrForbidden
	}

	if patch.Title != nil {
		if *patch.Title == "" {
			return false, fmt.Errorf("%w: title is required", ErrValidation)
		}
		lesson.Title = *patch.Title
	}
	if patch.Subtitle != nil {
		lesson.Subtitle = *patch.Subtitle
	}
	if patch.Grade != nil {
		if !models.ValidGrade(*patch.Grade) {
			return false, fmt.Errorf("%w: unknown grade %q", ErrValidation, *patch.Grade)
		}
		lesson.Grade = *patch.Grade
	}
	if patch.Subject != nil {
		if !models.ValidSubject(*patch.Subject) {
			return false, fmt.Errorf("%w: unknown subject %q", ErrValidation, *patch.Subject)
		}
		lesson.Subject = *patch.Subject
	}
	if patch.File != nil {
		lesson.File = *patch.File
	}
	now := time.Now().UTC()
	if patch.IsDraft != nil {
		lesson.IsDraft = *patch.IsDraft
		if !lesson.IsDraft && lesson.PublicationDate == nil {
			lesson.PublicationDate = &now
		}
	}
	lesson.LastModifiedDate = now

	var publicationDate any
	if lesson.PublicationDate != nil {
		publicationDate = *lesson.PublicationDate
	}
	res, err := s.db.Exec(
		`UPDATE lessons SET title = ?, subtitle = ?, grade = ?, subject = ?, is_draft = ?,
			last_modified_date = ?, publication_date = ?, file_name = ?, file_url = ?, file_mime_type = ?
		WHERE id = ?`,
		lesson.Title, lesson.Subtitle, lesson.Grade, lesson.Subject, lesson.IsDraft,
		lesson.LastModifiedDate, publicationDate, lesson.File.Name, lesson.File.URL, lesson.File.MimeType,
		lesson.ID,
	)
	if err != nil {
		return false, fmt.Errorf("updating lesson: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func scanLesson(row rowScanner) (models.Lesson, error) {
	var lesson models.Lesson
	var publicationDate sql.NullTime
	var categoriesJSON, commentsJSON string
	err := row.Scan(&lesson.ID, &lesson.Title, &lesson.Subtitle, &lesson.Grade, &lesson.Subject,
		&lesson.IsDraft, &lesson.CreationDate, &lesson.LastModifiedDate, &publicationDate,
		&lesson.BookmarkCount, &lesson.AuthorID, &categoriesJSON, &commentsJSON,
		&lesson.File.Name, &lesson.File.URL, &lesson.File.MimeType)
	if err != nil {
		return models.Lesson{}, err
	}
	if publicationDate.Valid {
		t := publicationDate.Time
		lesson.PublicationDate = &t
	}
	lesson.CategoryIDs = unmarshalList(categoriesJSON)
	lesson.CommentIDs = unmarshalList(commentsJSON)
	return lesson, nil
}
