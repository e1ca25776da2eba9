package netbird

import (
	"context"
)

// PeersService manages enrolled devices. Peers enroll through setup keys or
// user login, never through this API, so there is no create operation.
type PeersService struct {
	transport *Transport
}

// List returns all peers in the account.
func (s *PeersService) List(ctx context.Context) ([]Peer, error) {
	var peers []Peer
	if err := s.transport.Get(ctx, "/peers", nil, &peers); err != nil {
		return nil, err
	}
	return peers, nil
}

// Get returns one peer by id.
func (s *PeersService) Get(ctx context.Context, peerID string) (*Peer, error) {
	if peerID == "" {
		return nil, newValidationError("peer id is required")
	}

	var peer Peer
	if err := s.transport.Get(ctx, "/peers/"+peerID, nil, &peer); err != nil {
		return nil, err
	}
	return &peer, nil
}

// Update applies a partial mutation to a peer. Only the fields set on update
// are sent; everything else is left untouched server-side.
func (s *PeersService) Update(ctx context.Context, peerID string, update PeerUpdate) (*Peer, error) {
	if peerID == "" {
		return nil, newValidationError("peer id is required")
	}

	var peer Peer
	if err := s.transport.Put(ctx, "/peers/"+peerID, update, &peer); err != nil {
		return nil, err
	}
	return &peer, nil
}

// Delete removes a peer from the account.
func (s *PeersService) Delete(ctx context.Context, peerID string) error {
	if peerID == "" {
		return newValidationError("peer id is required")
	}
	return s.transport.Delete(ctx, "/peers/"+peerID)
}
