package chatclient

import "github.com/wedlockhq/wedlock-api/pkg/chatwire"

// CanRespond reports whether the viewer is allowed to accept or decline
// a booking proposal message. Only the couple the proposal was sent to
// may respond, and only while it is still pending. Views use this to
// decide whether to render the accept/decline controls at all.
func CanRespond(message chatwire.Message, viewerID uint) bool {
	if message.Type != chatwire.TypeProposal || message.Proposal == nil {
		return false
	}
	if message.Proposal.Status != chatwire.StatusPending {
		return false
	}

	return message.Proposal.CoupleID == viewerID
}
