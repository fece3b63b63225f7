package service

import (
	"context"
	"fmt"

	"github.com/wedlockhq/wedlock-api/internal/domain"
	"github.com/wedlockhq/wedlock-api/internal/repository"
)

var ErrEventNotFound = repository.ErrEventNotFound

type EventRepository interface {
	Create(ctx context.Context, event domain.WeddingEvent) (domain.WeddingEvent, error)
	FindByID(ctx context.Context, id uint) (domain.WeddingEvent, error)
	FindByCoupleID(ctx context.Context, coupleID uint) ([]domain.WeddingEvent, error)
}

type EventService struct {
	repo EventRepository
}

func NewEventService(repo EventRepository) *EventService {
	return &EventService{
		repo: repo,
	}
}

func (s *EventService) CreateEvent(ctx context.Context, event domain.WeddingEvent) (domain.WeddingEvent, error) {
	created, err := s.repo.Create(ctx, event)
	if err != nil {
		return domain.WeddingEvent{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

func (s *EventService) GetEvent(ctx context.Context, id uint) (domain.WeddingEvent, error) {
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.WeddingEvent{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return event, nil
}

func (s *EventService) GetEventsByCouple(ctx context.Context, coupleID uint) ([]domain.WeddingEvent, error) {
	events, err := s.repo.FindByCoupleID(ctx, coupleID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindByCoupleID -> %w", err)
	}

	return events, nil
}
