package repository

import (
	"context"
	"fmt"

	"github.com/wedlockhq/wedlock-api/internal/domain"
	"github.com/wedlockhq/wedlock-api/internal/repository/dao"
)

var ErrEventNotFound = dao.ErrEventNotFound

type EventDAO interface {
	Insert(ctx context.Context, event dao.WeddingEvent) (dao.WeddingEvent, error)
	FindByID(ctx context.Context, id uint) (dao.WeddingEvent, error)
	FindByCoupleID(ctx context.Context, coupleID uint) ([]dao.WeddingEvent, error)
}

type EventRepository struct {
	dao EventDAO
}

func NewEventRepository(dao EventDAO) *EventRepository {
	return &EventRepository{
		dao: dao,
	}
}

func (r *EventRepository) Create(ctx context.Context, event domain.WeddingEvent) (domain.WeddingEvent, error) {
	created, err := r.dao.Insert(ctx, dao.WeddingEvent{
		CoupleID:    event.CoupleID,
		Name:        event.Name,
		Date:        event.Date,
		Location:    event.Location,
		Description: event.Description,
	})
	if err != nil {
		return domain.WeddingEvent{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *EventRepository) FindByID(ctx context.Context, id uint) (domain.WeddingEvent, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.WeddingEvent{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *EventRepository) FindByCoupleID(ctx context.Context, coupleID uint) ([]domain.WeddingEvent, error) {
	found, err := r.dao.FindByCoupleID(ctx, coupleID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByCoupleID -> %w", err)
	}

	events := make([]domain.WeddingEvent, 0, len(found))
	for _, e := range found {
		events = append(events, r.daoToDomain(e))
	}

	return events, nil
}

func (r *EventRepository) daoToDomain(e dao.WeddingEvent) domain.WeddingEvent {
	return domain.WeddingEvent{
		ID:          e.ID,
		CoupleID:    e.CoupleID,
		Name:        e.Name,
		Date:        e.Date,
		Location:    e.Location,
		Description: e.Description,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}
