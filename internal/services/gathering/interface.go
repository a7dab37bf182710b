package gathering

import (
	"context"
)

//go:generate mockgen -package=mocks -destination=mocks/mock_service.go github.com/seungho-m/jikgwan/internal/services/gathering Service

// Service handles gathering discovery, creation and the host's
// confirm/cancel decisions, keeping the cached screen views coherent
// across mutations.
type Service interface {
	// List fetches one page of gatherings, served from the view cache
	// when fresh
	List(ctx context.Context, input *ListInput) (*ListOutput, error)

	// Get fetches one gathering's detail, served from the view cache
	// when fresh
	Get(ctx context.Context, input *GetInput) (*GetOutput, error)

	// Create posts a new gathering
	Create(ctx context.Context, input *CreateInput) (*CreateOutput, error)

	// Confirm accepts an applicant into the gathering
	Confirm(ctx context.Context, input *ConfirmInput) error

	// Cancel removes a confirmed participant from the gathering
	Cancel(ctx context.Context, input *CancelInput) error

	// Participants lists the confirmed participants of a gathering
	Participants(ctx context.Context, input *ParticipantsInput) (*ParticipantsOutput, error)

	// MyParticipating lists the gatherings the user is confirmed in
	MyParticipating(ctx context.Context) (*GatheringsOutput, error)

	// MyMeetings lists the gatherings the user hosts
	MyMeetings(ctx context.Context) (*GatheringsOutput, error)

	// MyApplications lists the gatherings the user has applied to
	MyApplications(ctx context.Context) (*GatheringsOutput, error)
}
