package service

import (
	"context"
	"errors"
	"fmt"

	stripe "github.com/stripe/stripe-go/v72"
	stripeclient "github.com/stripe/stripe-go/v72/client"

	"github.com/wedlockhq/wedlock-api/internal/config"
	"github.com/wedlockhq/wedlock-api/internal/domain"
)

var (
	ErrProposalNotAccepted = errors.New("proposal has not been accepted")
	ErrNotProposalPayer    = errors.New("only the couple on the proposal may pay")
)

// PaymentService hands an accepted booking proposal off to Stripe
// Checkout. Everything sensitive happens on Stripe's side; we only
// create the session.
type PaymentService struct {
	conf *config.StripeConfig
	repo ChatMessageRepository
	sc   *stripeclient.API
}

func NewPaymentService(conf *config.StripeConfig, repo ChatMessageRepository) *PaymentService {
	sc := &stripeclient.API{}
	sc.Init(conf.SecretKey, nil)

	return &PaymentService{
		conf: conf,
		repo: repo,
		sc:   sc,
	}
}

// CreateProposalCheckout creates a Stripe Checkout session for the
// accepted proposal carried by messageID and returns its redirect URL.
func (s *PaymentService) CreateProposalCheckout(ctx context.Context, messageID uint, payer domain.User) (string, error) {
	message, err := s.repo.FindByID(ctx, messageID)
	if err != nil {
		return "", fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if message.Type != domain.MessageTypeProposal || message.Proposal == nil {
		return "", ErrNotProposal
	}
	if message.Proposal.CoupleID != payer.ID {
		return "", ErrNotProposalPayer
	}
	if message.Proposal.Status != domain.ProposalStatusAccepted {
		return "", ErrProposalNotAccepted
	}

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(s.conf.SuccessURL),
		CancelURL:  stripe.String(s.conf.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(string(stripe.CurrencyUSD)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(fmt.Sprintf("Officiant booking: %v", message.Proposal.EventName)),
					},
					UnitAmount: stripe.Int64(int64(message.Proposal.Price * 100)),
				},
				Quantity: stripe.Int64(1),
			},
		},
		ClientReferenceID: stripe.String(fmt.Sprintf("proposal-%d", messageID)),
	}
	params.Context = ctx

	session, err := s.sc.CheckoutSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("s.sc.CheckoutSessions.New -> %w", err)
	}

	return session.URL, nil
}
