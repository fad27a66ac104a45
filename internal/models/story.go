package models

import "time"

// TravelStory represents a single journal entry. Every story belongs to
// exactly one user and is only ever visible to that user.
type TravelStory struct {
	ID               string    `json:"id"`
	UserID           string    `json:"userId"`
	Title            string    `json:"title"`
	Story            string    `json:"story"`
	VisitedLocations []string  `json:"visitedLocations"`
	ImageURL         string    `json:"imageUrl"`
	VisitedDate      time.Time `json:"visitedDate"`
	IsFavourite      bool      `json:"isFavourite"`
	CreatedAt        time.Time `json:"createdAt"`
}
