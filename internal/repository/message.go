package repository

import (
	"context"
	"fmt"

	"github.com/wedlockhq/wedlock-api/internal/domain"
	"github.com/wedlockhq/wedlock-api/internal/repository/dao"
)

var ErrMessageNotFound = dao.ErrMessageNotFound

type MessageDAO interface {
	Insert(ctx context.Context, message dao.Message) (dao.Message, error)
	FindByID(ctx context.Context, id uint) (dao.Message, error)
	FindByRoom(ctx context.Context, roomID string, limit, offset int) ([]dao.Message, error)
	UpdateProposalStatus(ctx context.Context, id uint, status string) error
}

type MessageRepository struct {
	dao MessageDAO
}

func NewMessageRepository(dao MessageDAO) *MessageRepository {
	return &MessageRepository{
		dao: dao,
	}
}

func (r *MessageRepository) Create(ctx context.Context, message domain.Message) (domain.Message, error) {
	daoMessage := dao.Message{
		ClientID:   message.ClientID,
		RoomID:     message.RoomID,
		SenderID:   message.SenderID,
		SenderName: message.SenderName,
		Type:       message.Type,
		Content:    message.Content,
		CreatedAt:  message.CreatedAt,
	}
	if message.Proposal != nil {
		daoMessage.Proposal = dao.Proposal{
			EventID:       message.Proposal.EventID,
			EventName:     message.Proposal.EventName,
			Price:         message.Proposal.Price,
			OfficiantID:   message.Proposal.OfficiantID,
			OfficiantName: message.Proposal.OfficiantName,
			CoupleID:      message.Proposal.CoupleID,
			CoupleName:    message.Proposal.CoupleName,
			Status:        message.Proposal.Status,
		}
	}

	created, err := r.dao.Insert(ctx, daoMessage)
	if err != nil {
		return domain.Message{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *MessageRepository) FindByID(ctx context.Context, id uint) (domain.Message, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Message{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *MessageRepository) FindByRoom(ctx context.Context, roomID string, limit, offset int) ([]domain.Message, error) {
	found, err := r.dao.FindByRoom(ctx, roomID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByRoom -> %w", err)
	}

	messages := make([]domain.Message, 0, len(found))
	for _, m := range found {
		messages = append(messages, r.daoToDomain(m))
	}

	return messages, nil
}

func (r *MessageRepository) UpdateProposalStatus(ctx context.Context, id uint, status string) error {
	if err := r.dao.UpdateProposalStatus(ctx, id, status); err != nil {
		return fmt.Errorf("r.dao.UpdateProposalStatus -> %w", err)
	}

	return nil
}

func (r *MessageRepository) daoToDomain(m dao.Message) domain.Message {
	message := domain.Message{
		ID:         m.ID,
		ClientID:   m.ClientID,
		RoomID:     m.RoomID,
		SenderID:   m.SenderID,
		SenderName: m.SenderName,
		Type:       m.Type,
		Content:    m.Content,
		CreatedAt:  m.CreatedAt,
	}
	if m.Type == domain.MessageTypeProposal {
		message.Proposal = &domain.BookingProposal{
			EventID:       m.Proposal.EventID,
			EventName:     m.Proposal.EventName,
			Price:         m.Proposal.Price,
			OfficiantID:   m.Proposal.OfficiantID,
			OfficiantName: m.Proposal.OfficiantName,
			CoupleID:      m.Proposal.CoupleID,
			CoupleName:    m.Proposal.CoupleName,
			Status:        m.Proposal.Status,
		}
	}

	return message
}
