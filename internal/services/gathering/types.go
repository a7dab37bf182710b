package gathering

import (
	"context"
	"time"

	"github.com/seungho-m/jikgwan/internal/api"
	"github.com/seungho-m/jikgwan/internal/common/clock"
	"github.com/seungho-m/jikgwan/internal/models"
	"github.com/seungho-m/jikgwan/internal/repositories/viewcache"
)

// GatheringAPI is the slice of the HTTP client the gathering service
// drives. *api.Client satisfies it.
type GatheringAPI interface {
	ListGatherings(ctx context.Context, input *api.ListGatheringsInput) (*api.GatheringPage, error)
	GetGathering(ctx context.Context, id int64) (*models.Gathering, error)
	CreateGathering(ctx context.Context, input *api.CreateGatheringInput) (*models.Gathering, error)
	ConfirmParticipant(ctx context.Context, gatheringID, userID int64) error
	CancelParticipant(ctx context.Context, gatheringID, userID int64) error
	Participants(ctx context.Context, gatheringID int64) ([]models.ConfirmedParticipant, error)
	MyParticipating(ctx context.Context) ([]models.Gathering, error)
	MyMeetings(ctx context.Context) ([]models.Gathering, error)
	MyApplications(ctx context.Context) ([]models.Gathering, error)
}

// Config holds configuration for the gathering service
type Config struct {
	// API is the HTTP client for gathering calls
	API GatheringAPI

	// ViewCache holds rendered screen views between round trips
	ViewCache viewcache.Repository

	// Clock provides time abstraction for game date validation
	Clock clock.Clock
}

// ListInput contains the list query
type ListInput struct {
	Page int
	Size int
	Sort string

	// Team filters by KBO team code; empty means all teams
	Team string
}

// ListOutput contains one page of the gathering list
type ListOutput struct {
	Page *api.GatheringPage

	// FromCache is true when the page was served from the view cache
	FromCache bool
}

// GetInput identifies the gathering to fetch
type GetInput struct {
	ID int64
}

// GetOutput contains one gathering's detail
type GetOutput struct {
	Gathering *models.Gathering

	// FromCache is true when the detail was served from the view cache
	FromCache bool
}

// CreateInput contains the fields of a new gathering
type CreateInput struct {
	GameDateTime    time.Time
	HomeTeam        string
	AwayTeam        string
	Stadium         string
	MeetingPlace    string
	MaxParticipants int
	Description     string
}

// CreateOutput contains the created gathering
type CreateOutput struct {
	Gathering *models.Gathering
}

// ConfirmInput identifies the applicant to accept
type ConfirmInput struct {
	GatheringID       int64
	ParticipantUserID int64
}

// CancelInput identifies the participant to remove
type CancelInput struct {
	GatheringID       int64
	ParticipantUserID int64
}

// ParticipantsInput identifies the gathering whose roster to fetch
type ParticipantsInput struct {
	GatheringID int64
}

// ParticipantsOutput contains the confirmed participants
type ParticipantsOutput struct {
	Participants []models.ConfirmedParticipant
}

// GatheringsOutput contains a plain list of gatherings
type GatheringsOutput struct {
	Gatherings []models.Gathering

	// FromCache is true when the list was served from the view cache
	FromCache bool
}
