package services

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/tripscribe-be/internal/models"
	"github.com/rs/zerolog/log"
)

// StoryInput carries the client-supplied fields for creating or updating a
// travel story. VisitedDate is an epoch-millisecond value.
type StoryInput struct {
	Title            string   `json:"title"`
	Story            string   `json:"story"`
	VisitedLocations []string `json:"visitedLocations"`
	ImageURL         string   `json:"imageUrl"`
	VisitedDate      int64    `json:"visitedDate"`
}

// StoryServiceProvider defines the interface for travel story services.
// Every operation is scoped to the owner id resolved from the caller's
// token; a client-supplied id is only ever a lookup target.
type StoryServiceProvider interface {
	Create(owner string, in StoryInput) (models.TravelStory, error)
	ListByOwner(owner string) ([]models.TravelStory, error)
	Update(owner, id string, in StoryInput) (models.TravelStory, error)
	Delete(owner, id string) error
	SetFavourite(owner, id string, favourite bool) (models.TravelStory, error)
	Search(owner, query string) ([]models.TravelStory, error)
	FilterByDateRange(owner, start, end string) ([]models.TravelStory, error)
}

// StoryService provides ownership-scoped persistence for travel stories and
// orchestrates the associated image assets.
type StoryService struct {
	db     *sql.DB
	assets AssetServiceProvider
}

// NewStoryService creates a new StoryService.
func NewStoryService(db *sql.DB, assets AssetServiceProvider) *StoryService {
	return &StoryService{db: db, assets: assets}
}

const storyColumns = "id, user_id, title, story, visited_locations_json, image_url, visited_date, is_favourite, created_at"

// Create validates and persists a new story for owner. An empty image
// reference falls back to the placeholder.
func (s *StoryService) Create(owner string, in StoryInput) (models.TravelStory, error) {
	if err := validateStoryInput(in); err != nil {
		return models.TravelStory{}, err
	}
	if in.ImageURL == "" {
		in.ImageURL = PlaceholderPath
	}

	story := models.TravelStory{
		ID:               uuid.New().String(),
		UserID:           owner,
		Title:            in.Title,
		Story:            in.Story,
		VisitedLocations: in.VisitedLocations,
		ImageURL:         in.ImageURL,
		VisitedDate:      time.UnixMilli(in.VisitedDate),
		CreatedAt:        time.Now(),
	}

	locations, err := json.Marshal(story.VisitedLocations)
	if err != nil {
		return models.TravelStory{}, err
	}

	_, err = s.db.Exec(
		"INSERT INTO travel_stories("+storyColumns+") VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)",
		story.ID, story.UserID, story.Title, story.Story, string(locations),
		story.ImageURL, story.VisitedDate.UnixMilli(), story.IsFavourite, story.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return models.TravelStory{}, err
	}
	return story, nil
}

// ListByOwner returns all stories of owner, most recent visit first.
func (s *StoryService) ListByOwner(owner string) ([]models.TravelStory, error) {
	return s.queryStories(
		"SELECT "+storyColumns+" FROM travel_stories WHERE user_id = ? ORDER BY visited_date DESC", owner)
}

// Update mutates a story in a single conditional statement filtered by
// {id, owner}, so a story that is absent and a story that belongs to someone
// else produce the same ErrNotFound. The previous image is reclaimed only
// after the update committed, and only when it was actually replaced.
func (s *StoryService) Update(owner, id string, in StoryInput) (models.TravelStory, error) {
	if err := validateStoryInput(in); err != nil {
		return models.TravelStory{}, err
	}
	if in.ImageURL == "" {
		in.ImageURL = PlaceholderPath
	}

	var previousImage string
	err := s.db.QueryRow(
		"SELECT image_url FROM travel_stories WHERE id = ? AND user_id = ?", id, owner,
	).Scan(&previousImage)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.TravelStory{}, fmt.Errorf("%w: travel story %s", ErrNotFound, id)
		}
		return models.TravelStory{}, err
	}

	locations, err := json.Marshal(in.VisitedLocations)
	if err != nil {
		return models.TravelStory{}, err
	}

	res, err := s.db.Exec(
		`UPDATE travel_stories
		 SET title = ?, story = ?, visited_locations_json = ?, image_url = ?, visited_date = ?
		 WHERE id = ? AND user_id = ?`,
		in.Title, in.Story, string(locations), in.ImageURL, in.VisitedDate, id, owner,
	)
	if err != nil {
		return models.TravelStory{}, err
	}
	if affected, err := res.RowsAffected(); err != nil {
		return models.TravelStory{}, err
	} else if affected == 0 {
		return models.TravelStory{}, fmt.Errorf("%w: travel story %s", ErrNotFound, id)
	}

	if previousImage != in.ImageURL && !IsPlaceholder(previousImage) {
		s.reclaimAsset(id, previousImage)
	}

	return s.getByID(owner, id)
}

// Delete removes a story in a single conditional statement and then
// reclaims its image best-effort. The record deletion is authoritative; a
// failed asset removal is logged and never surfaced.
func (s *StoryService) Delete(owner, id string) error {
	var imageURL string
	err := s.db.QueryRow(
		"DELETE FROM travel_stories WHERE id = ? AND user_id = ? RETURNING image_url", id, owner,
	).Scan(&imageURL)
	if err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("%w: travel story %s", ErrNotFound, id)
		}
		return err
	}

	if !IsPlaceholder(imageURL) {
		s.reclaimAsset(id, imageURL)
	}
	return nil
}

// SetFavourite flips the favourite flag, leaving every other field alone.
func (s *StoryService) SetFavourite(owner, id string, favourite bool) (models.TravelStory, error) {
	res, err := s.db.Exec(
		"UPDATE travel_stories SET is_favourite = ? WHERE id = ? AND user_id = ?",
		favourite, id, owner,
	)
	if err != nil {
		return models.TravelStory{}, err
	}
	if affected, err := res.RowsAffected(); err != nil {
		return models.TravelStory{}, err
	} else if affected == 0 {
		return models.TravelStory{}, fmt.Errorf("%w: travel story %s", ErrNotFound, id)
	}
	return s.getByID(owner, id)
}

// Search returns owner's stories whose title, body, or any location tag
// contains query, case-insensitively. No match is an empty result, not an
// error.
func (s *StoryService) Search(owner, query string) ([]models.TravelStory, error) {
	if query == "" {
		return nil, fmt.Errorf("%w: search query is required", ErrValidation)
	}

	stories, err := s.ListByOwner(owner)
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(query)
	matched := make([]models.TravelStory, 0, len(stories))
	for _, story := range stories {
		if storyMatches(story, q) {
			matched = append(matched, story)
		}
	}
	return matched, nil
}

func storyMatches(story models.TravelStory, q string) bool {
	if strings.Contains(strings.ToLower(story.Title), q) ||
		strings.Contains(strings.ToLower(story.Story), q) {
		return true
	}
	for _, location := range story.VisitedLocations {
		if strings.Contains(strings.ToLower(location), q) {
			return true
		}
	}
	return false
}

// FilterByDateRange returns owner's stories visited within [start, end],
// both epoch-millisecond strings. The end bound is stretched to the last
// instant of its calendar day so a date-only picker behaves inclusively.
func (s *StoryService) FilterByDateRange(owner, start, end string) ([]models.TravelStory, error) {
	startMs, err := strconv.ParseInt(start, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid start date", ErrValidation)
	}
	endMs, err := strconv.ParseInt(end, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid end date", ErrValidation)
	}

	endOfDay := endOfCalendarDay(time.UnixMilli(endMs))

	return s.queryStories(
		`SELECT `+storyColumns+` FROM travel_stories
		 WHERE user_id = ? AND visited_date BETWEEN ? AND ?
		 ORDER BY visited_date DESC`,
		owner, startMs, endOfDay.UnixMilli(),
	)
}

func endOfCalendarDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(999*time.Millisecond), t.Location())
}

func validateStoryInput(in StoryInput) error {
	if in.Title == "" || in.Story == "" || in.VisitedDate == 0 || len(in.VisitedLocations) == 0 {
		return fmt.Errorf("%w: title, story, visited date and locations are required", ErrValidation)
	}
	return nil
}

// reclaimAsset removes a no-longer-referenced image. The owning record
// change already committed, so failure here is logged, never propagated.
func (s *StoryService) reclaimAsset(storyID, imageURL string) {
	if err := s.assets.Remove(AssetNameFromURL(imageURL)); err != nil {
		log.Warn().Err(err).
			Str("story_id", storyID).
			Str("image_url", imageURL).
			Msg("Could not remove story image")
	}
}

func (s *StoryService) getByID(owner, id string) (models.TravelStory, error) {
	row := s.db.QueryRow(
		"SELECT "+storyColumns+" FROM travel_stories WHERE id = ? AND user_id = ?", id, owner)
	story, err := scanStory(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.TravelStory{}, fmt.Errorf("%w: travel story %s", ErrNotFound, id)
		}
		return models.TravelStory{}, err
	}
	return story, nil
}

func (s *StoryService) queryStories(query string, args ...interface{}) ([]models.TravelStory, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stories := []models.TravelStory{}
	for rows.Next() {
		story, err := scanStory(rows)
		if err != nil {
			return nil, err
		}
		stories = append(stories, story)
	}
	return stories, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanStory(row rowScanner) (models.TravelStory, error) {
	var story models.TravelStory
	var locationsJSON string
	var visitedDate, createdAt int64

	err := row.Scan(&story.ID, &story.UserID, &story.Title, &story.Story,
		&locationsJSON, &story.ImageURL, &visitedDate, &story.IsFavourite, &createdAt)
	if err != nil {
		return models.TravelStory{}, err
	}

	if err := json.Unmarshal([]byte(locationsJSON), &story.VisitedLocations); err != nil {
		return models.TravelStory{}, fmt.Errorf("corrupt visited locations for story %s: %w", story.ID, err)
	}
	story.VisitedDate = time.UnixMilli(visitedDate)
	story.CreatedAt = time.UnixMilli(createdAt)
	return story, nil
}
