package domain

import (
	"context"
	"time"
)

// OrganizationRating is the categorical rating of how an event was organized.
type OrganizationRating string

const (
	OrganizationExcellent OrganizationRating = "Excellent"
	OrganizationGood      OrganizationRating = "Good"
	OrganizationAverage   OrganizationRating = "Average"
	OrganizationPoor      OrganizationRating = "Poor"
)

// OrganizationRatings lists the accepted organization ratings in display order.
var OrganizationRatings = []OrganizationRating{
	OrganizationExcellent,
	OrganizationGood,
	OrganizationAverage,
	OrganizationPoor,
}

// Valid reports whether r is one of the accepted ratings.
func (r OrganizationRating) Valid() bool {
	for _, v := range OrganizationRatings {
		if r == v {
			return true
		}
	}
	return false
}

// Feedback is a user's single feedback entry for an event.
// swagger:model Feedback
type Feedback struct {
	ID                 string             `json:"id"`
	EventID            string             `json:"event_id"`
	UserID             string             `json:"user_id"`
	UserName           string             `json:"user_name,omitempty"`
	OverallRating      int                `json:"overall_rating"`
	WasInformative     bool               `json:"was_informative"`
	OrganizationRating OrganizationRating `json:"organization_rating"`
	AdditionalComments *string            `json:"additional_comments,omitempty"`
	CreatedAt          time.Time          `json:"created_at"`
}

// FeedbackSummary aggregates the feedback of one or more events.
// swagger:model FeedbackSummary
type FeedbackSummary struct {
	Total              int                        `json:"total"`
	AverageRating      float64                    `json:"average_rating"`
	InformativeCount   int                        `json:"informative_count"`
	OrganizationCounts map[OrganizationRating]int `json:"organization_counts"`
	RatingCounts       map[int]int                `json:"rating_counts"`
	Comments           []string                   `json:"comments"`
}

// SummarizeFeedback computes the aggregate view over the given entries.
func SummarizeFeedback(entries []*Feedback) *FeedbackSummary {
	s := &FeedbackSummary{
		OrganizationCounts: make(map[OrganizationRating]int, len(OrganizationRatings)),
		RatingCounts:       make(map[int]int, 5),
		Comments:           []string{},
	}
	for _, r := range OrganizationRatings {
		s.OrganizationCounts[r] = 0
	}
	for i := 1; i <= 5; i++ {
		s.RatingCounts[i] = 0
	}
	sum := 0
	for _, f := range entries {
		s.Total++
		sum += f.OverallRating
		s.RatingCounts[f.OverallRating]++
		s.OrganizationCounts[f.OrganizationRating]++
		if f.WasInformative {
			s.InformativeCount++
		}
		if f.AdditionalComments != nil && *f.AdditionalComments != "" {
			s.Comments = append(s.Comments, *f.AdditionalComments)
		}
	}
	if s.Total > 0 {
		s.AverageRating = float64(sum) / float64(s.Total)
	}
	return s
}

// FeedbackRepository defines storage for feedback entries.
type FeedbackRepository interface {
	// Upsert inserts or replaces the entry for (EventID, UserID).
	Upsert(ctx context.Context, f *Feedback) error
	GetByEventAndUser(ctx context.Context, eventID, userID string) (*Feedback, error)
	ListByEventID(ctx context.Context, eventID string) ([]*Feedback, error)
	ListAll(ctx context.Context) ([]*Feedback, error)
	CountByUserID(ctx context.Context, userID string) (int, error)
}

// FeedbackInput is the user-submitted part of a feedback entry.
type FeedbackInput struct {
	OverallRating      int
	WasInformative     bool
	OrganizationRating OrganizationRating
	AdditionalComments *string
}

// FeedbackService defines feedback submission and reporting.
type FeedbackService interface {
	Submit(ctx context.Context, eventID, userID string, input FeedbackInput) (*Feedback, error)
	Mine(ctx context.Context, eventID, userID string) (*Feedback, error)
	ListForEvent(ctx context.Context, eventID string) ([]*Feedback, *FeedbackSummary, error)
	ListAll(ctx context.Context, eventID string) ([]*Feedback, *FeedbackSummary, error)
}
