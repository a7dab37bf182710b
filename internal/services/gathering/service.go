package gathering

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/seungho-m/jikgwan/internal/api"
	"github.com/seungho-m/jikgwan/internal/common/clock"
	"github.com/seungho-m/jikgwan/internal/models"
	"github.com/seungho-m/jikgwan/internal/repositories/viewcache"
)

type service struct {
	api   GatheringAPI
	cache viewcache.Repository
	clock clock.Clock
}

// New creates a new gathering service
func New(cfg *Config) (*service, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if cfg.API == nil {
		return nil, errors.New("API client cannot be nil")
	}
	if cfg.ViewCache == nil {
		return nil, errors.New("view cache cannot be nil")
	}

	svc := &service{
		api:   cfg.API,
		cache: cfg.ViewCache,
		clock: cfg.Clock,
	}
	if svc.clock == nil {
		svc.clock = clock.New()
	}
	return svc, nil
}

// List serves a page of gatherings, reading through the view cache
func (s *service) List(ctx context.Context, input *ListInput) (*ListOutput, error) {
	if input == nil {
		input = &ListInput{}
	}
	if input.Team != "" && !models.ValidTeamCode(input.Team) {
		return nil, ErrUnknownTeam
	}

	key := viewcache.GatheringsListKey(input.Team, input.Page, input.Size)

	var cached api.GatheringPage
	err := s.cache.Get(ctx, &viewcache.GetInput{Key: key}, &cached)
	if err == nil {
		return &ListOutput{Page: &cached, FromCache: true}, nil
	}
	if !errors.Is(err, viewcache.ErrMiss) {
		log.Printf("gathering: view cache read failed for %s: %v", key, err)
	}

	page, err := s.api.ListGatherings(ctx, &api.ListGatheringsInput{
		Page: input.Page,
		Size: input.Size,
		Sort: input.Sort,
		Team: input.Team,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list gatherings: %w", err)
	}

	if err := s.cache.Put(ctx, &viewcache.PutInput{Key: key, Value: page}); err != nil {
		log.Printf("gathering: view cache write failed for %s: %v", key, err)
	}

	return &ListOutput{Page: page}, nil
}

// Get serves one gathering's detail, reading through the view cache
func (s *service) Get(ctx context.Context, input *GetInput) (*GetOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	key := viewcache.GatheringDetailKey(input.ID)

	var cached models.Gathering
	err := s.cache.Get(ctx, &viewcache.GetInput{Key: key}, &cached)
	if err == nil {
		return &GetOutput{Gathering: &cached, FromCache: true}, nil
	}
	if !errors.Is(err, viewcache.ErrMiss) {
		log.Printf("gathering: view cache read failed for %s: %v", key, err)
	}

	gathering, err := s.api.GetGathering(ctx, input.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get gathering %d: %w", input.ID, err)
	}

	if err := s.cache.Put(ctx, &viewcache.PutInput{Key: key, Value: gathering}); err != nil {
		log.Printf("gathering: view cache write failed for %s: %v", key, err)
	}

	return &GetOutput{Gathering: gathering}, nil
}

// Create posts a new gathering after client-side validation, then drops
// the cached list pages so the new gathering shows up.
func (s *service) Create(ctx context.Context, input *CreateInput) (*CreateOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}
	if !models.ValidTeamCode(input.HomeTeam) || !models.ValidTeamCode(input.AwayTeam) {
		return nil, ErrUnknownTeam
	}
	if !models.ValidStadiumCode(input.Stadium) {
		return nil, ErrUnknownStadium
	}
	if input.MaxParticipants < 2 || input.MaxParticipants > 10 {
		return nil, ErrInvalidCapacity
	}
	if !input.GameDateTime.After(s.clock.Now()) {
		return nil, ErrPastGame
	}

	gathering, err := s.api.CreateGathering(ctx, &api.CreateGatheringInput{
		GameDateTime:    input.GameDateTime,
		HomeTeam:        input.HomeTeam,
		AwayTeam:        input.AwayTeam,
		Stadium:         input.Stadium,
		MeetingPlace:    input.MeetingPlace,
		MaxParticipants: input.MaxParticipants,
		Description:     input.Description,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gathering: %w", err)
	}

	s.invalidate(ctx, viewcache.GatheringsListPrefix())

	return &CreateOutput{Gathering: gathering}, nil
}

// Confirm accepts an applicant. Every view that shows participation state
// is dropped: the list pages, this gathering's detail and the viewer's
// participating list.
func (s *service) Confirm(ctx context.Context, input *ConfirmInput) error {
	if input == nil {
		return errors.New("input cannot be nil")
	}

	if err := s.api.ConfirmParticipant(ctx, input.GatheringID, input.ParticipantUserID); err != nil {
		return fmt.Errorf("failed to confirm participant %d in gathering %d: %w",
			input.ParticipantUserID, input.GatheringID, err)
	}

	s.invalidate(ctx,
		viewcache.GatheringsListPrefix(),
		viewcache.GatheringDetailKeyPrefix(input.GatheringID),
		viewcache.MyParticipatingKey(),
	)
	return nil
}

// Cancel removes a confirmed participant, sweeping the same views as
// Confirm.
func (s *service) Cancel(ctx context.Context, input *CancelInput) error {
	if input == nil {
		return errors.New("input cannot be nil")
	}

	if err := s.api.CancelParticipant(ctx, input.GatheringID, input.ParticipantUserID); err != nil {
		return fmt.Errorf("failed to cancel participant %d in gathering %d: %w",
			input.ParticipantUserID, input.GatheringID, err)
	}

	s.invalidate(ctx,
		viewcache.GatheringsListPrefix(),
		viewcache.GatheringDetailKeyPrefix(input.GatheringID),
		viewcache.MyParticipatingKey(),
	)
	return nil
}

// Participants lists the confirmed roster of one gathering
func (s *service) Participants(ctx context.Context, input *ParticipantsInput) (*ParticipantsOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	participants, err := s.api.Participants(ctx, input.GatheringID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants of gathering %d: %w", input.GatheringID, err)
	}
	return &ParticipantsOutput{Participants: participants}, nil
}

// MyParticipating serves the viewer's confirmed gatherings, reading
// through the view cache.
func (s *service) MyParticipating(ctx context.Context) (*GatheringsOutput, error) {
	key := viewcache.MyParticipatingKey()

	var cached []models.Gathering
	err := s.cache.Get(ctx, &viewcache.GetInput{Key: key}, &cached)
	if err == nil {
		return &GatheringsOutput{Gatherings: cached, FromCache: true}, nil
	}
	if !errors.Is(err, viewcache.ErrMiss) {
		log.Printf("gathering: view cache read failed for %s: %v", key, err)
	}

	gatherings, err := s.api.MyParticipating(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list participating gatherings: %w", err)
	}

	if err := s.cache.Put(ctx, &viewcache.PutInput{Key: key, Value: gatherings}); err != nil {
		log.Printf("gathering: view cache write failed for %s: %v", key, err)
	}

	return &GatheringsOutput{Gatherings: gatherings}, nil
}

// MyMeetings lists the gatherings the viewer hosts
func (s *service) MyMeetings(ctx context.Context) (*GatheringsOutput, error) {
	gatherings, err := s.api.MyMeetings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list hosted gatherings: %w", err)
	}
	return &GatheringsOutput{Gatherings: gatherings}, nil
}

// MyApplications lists the gatherings the viewer has applied to
func (s *service) MyApplications(ctx context.Context) (*GatheringsOutput, error) {
	gatherings, err := s.api.MyApplications(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	return &GatheringsOutput{Gatherings: gatherings}, nil
}

// invalidate sweeps view prefixes; a failed sweep never fails the
// mutation that triggered it, the views just go stale until their TTL.
func (s *service) invalidate(ctx context.Context, prefixes ...string) {
	if err := s.cache.Invalidate(ctx, &viewcache.InvalidateInput{Prefixes: prefixes}); err != nil {
		log.Printf("gathering: view invalidation failed for %v: %v", prefixes, err)
	}
}
