package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wedlockhq/wedlock-api/internal/domain"
	"github.com/wedlockhq/wedlock-api/internal/repository"
	"github.com/wedlockhq/wedlock-api/pkg/chatwire"
)

var (
	ErrMessageNotFound      = repository.ErrMessageNotFound
	ErrInvalidMessageType   = errors.New("invalid message type")
	ErrNotRoomMember        = errors.New("user is not a member of the room")
	ErrNotProposal          = errors.New("message is not a booking proposal")
	ErrNotProposalRecipient = errors.New("only the couple the proposal was sent to may respond")
	ErrProposalNotAllowed   = errors.New("only officiants may send booking proposals")
)

type ChatMessageRepository interface {
	Create(ctx context.Context, message domain.Message) (domain.Message, error)
	FindByID(ctx context.Context, id uint) (domain.Message, error)
	FindByRoom(ctx context.Context, roomID string, limit, offset int) ([]domain.Message, error)
	UpdateProposalStatus(ctx context.Context, id uint, status string) error
}

type ChatEventRepository interface {
	FindByID(ctx context.Context, id uint) (domain.WeddingEvent, error)
}

type ChatUserRepository interface {
	FindByID(ctx context.Context, id uint) (domain.User, error)
}

type ChatService struct {
	repo      ChatMessageRepository
	eventRepo ChatEventRepository
	userRepo  ChatUserRepository
}

func NewChatService(repo ChatMessageRepository, eventRepo ChatEventRepository, userRepo ChatUserRepository) *ChatService {
	return &ChatService{
		repo:      repo,
		eventRepo: eventRepo,
		userRepo:  userRepo,
	}
}

// SaveMessage persists an inbound message on behalf of sender. The
// sender identity always comes from the authenticated connection, never
// from the payload. ClientID is kept as sent so the sender's optimistic
// copy can be reconciled against the echo.
func (s *ChatService) SaveMessage(ctx context.Context, message domain.Message, sender domain.User) (domain.Message, error) {
	if !domain.ValidMessageType(message.Type) {
		return domain.Message{}, ErrInvalidMessageType
	}
	if !chatwire.IsRoomMember(message.RoomID, sender.ID) {
		return domain.Message{}, ErrNotRoomMember
	}

	message.SenderID = sender.ID
	message.SenderName = sender.Name
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}

	if message.Type == domain.MessageTypeProposal {
		proposal, err := s.buildProposal(ctx, message, sender)
		if err != nil {
			return domain.Message{}, err
		}
		message.Proposal = proposal
	} else {
		message.Proposal = nil
	}

	created, err := s.repo.Create(ctx, message)
	if err != nil {
		return domain.Message{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

func (s *ChatService) GetRoomMessages(ctx context.Context, roomID string, limit, offset int) ([]domain.Message, error) {
	messages, err := s.repo.FindByRoom(ctx, roomID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindByRoom -> %w", err)
	}

	return messages, nil
}

// RespondToProposal applies an accept/decline to an existing proposal
// message. The status change mutates the stored message so every
// participant's view converges on one final state. A response to an
// already-resolved proposal is a no-op: the stored message is returned
// with changed=false so callers can still re-broadcast the settled
// status.
func (s *ChatService) RespondToProposal(ctx context.Context, messageID uint, responder domain.User, accept bool) (domain.Message, bool, error) {
	message, err := s.repo.FindByID(ctx, messageID)
	if err != nil {
		return domain.Message{}, false, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if message.Type != domain.MessageTypeProposal || message.Proposal == nil {
		return domain.Message{}, false, ErrNotProposal
	}
	if message.Proposal.CoupleID != responder.ID {
		return domain.Message{}, false, ErrNotProposalRecipient
	}

	if message.Proposal.Status != domain.ProposalStatusPending {
		return message, false, nil
	}

	status := domain.ProposalStatusDeclined
	if accept {
		status = domain.ProposalStatusAccepted
	}

	if err = s.repo.UpdateProposalStatus(ctx, messageID, status); err != nil {
		return domain.Message{}, false, fmt.Errorf("s.repo.UpdateProposalStatus -> %w", err)
	}
	message.Proposal.Status = status

	return message, true, nil
}

func (s *ChatService) buildProposal(ctx context.Context, message domain.Message, sender domain.User) (*domain.BookingProposal, error) {
	if sender.Role != domain.RoleOfficiant {
		return nil, ErrProposalNotAllowed
	}
	if message.Proposal == nil {
		return nil, ErrNotProposal
	}

	event, err := s.eventRepo.FindByID(ctx, message.Proposal.EventID)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}

		return nil, fmt.Errorf("s.eventRepo.FindByID -> %w", err)
	}

	lo, hi, err := chatwire.ParseRoomID(message.RoomID)
	if err != nil {
		return nil, fmt.Errorf("chatwire.ParseRoomID -> %w", err)
	}
	coupleID := lo
	if coupleID == sender.ID {
		coupleID = hi
	}
	if event.CoupleID != coupleID {
		return nil, ErrEventNotFound
	}

	couple, err := s.userRepo.FindByID(ctx, coupleID)
	if err != nil {
		return nil, fmt.Errorf("s.userRepo.FindByID -> %w", err)
	}

	return &domain.BookingProposal{
		EventID:       event.ID,
		EventName:     event.Name,
		Price:         message.Proposal.Price,
		OfficiantID:   sender.ID,
		OfficiantName: sender.Name,
		CoupleID:      couple.ID,
		CoupleName:    couple.Name,
		Status:        domain.ProposalStatusPending,
	}, nil
}
