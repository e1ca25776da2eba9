package netbird

import (
	"context"
)

// GroupsService manages named peer sets and their membership.
type GroupsService struct {
	transport *Transport
}

// List returns all groups in the account.
func (s *GroupsService) List(ctx context.Context) ([]Group, error) {
	var groups []Group
	if err := s.transport.Get(ctx, "/groups", nil, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// Get returns one group by id, including its member references.
func (s *GroupsService) Get(ctx context.Context, groupID string) (*Group, error) {
	if groupID == "" {
		return nil, newValidationError("group id is required")
	}

	var group Group
	if err := s.transport.Get(ctx, "/groups/"+groupID, nil, &group); err != nil {
		return nil, err
	}
	return &group, nil
}

// GetByName returns the group with the given name, or a not-found error when
// no group carries it. Names are matched exactly; the API has no server-side
// name filter, so this lists and scans.
func (s *GroupsService) GetByName(ctx context.Context, name string) (*Group, error) {
	if name == "" {
		return nil, newValidationError("group name is required")
	}

	groups, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	for i := range groups {
		if groups[i].Name == name {
			return &groups[i], nil
		}
	}

	return nil, &Error{
		Kind:    KindNotFound,
		Message: "group not found: " + name,
	}
}

// Create creates a new group.
func (s *GroupsService) Create(ctx context.Context, create GroupCreate) (*Group, error) {
	if create.Name == "" {
		return nil, newValidationError("group name is required")
	}
	if create.Peers == nil {
		create.Peers = []string{}
	}

	var group Group
	if err := s.transport.Post(ctx, "/groups", create, &group); err != nil {
		return nil, err
	}
	return &group, nil
}

// CreateOrGet returns the group with the given name, creating it when
// absent. Makes "ensure the group exists" idempotent for callers.
func (s *GroupsService) CreateOrGet(ctx context.Context, name string) (*Group, error) {
	group, err := s.GetByName(ctx, name)
	if err == nil {
		return group, nil
	}
	if !IsNotFound(err) {
		return nil, err
	}

	return s.Create(ctx, GroupCreate{Name: name})
}

// Update applies a partial mutation to a group. Setting Peers replaces the
// full membership; use AddPeers/RemovePeers for incremental changes.
func (s *GroupsService) Update(ctx context.Context, groupID string, update GroupUpdate) (*Group, error) {
	if groupID == "" {
		return nil, newValidationError("group id is required")
	}

	var group Group
	if err := s.transport.Put(ctx, "/groups/"+groupID, update, &group); err != nil {
		return nil, err
	}
	return &group, nil
}

// Delete removes a group. The distinguished "All" group is never deletable;
// that is enforced client-side as well since the server error for it is not
// distinguishable from other validation failures.
func (s *GroupsService) Delete(ctx context.Context, groupID string) error {
	if groupID == "" {
		return newValidationError("group id is required")
	}

	group, err := s.Get(ctx, groupID)
	if err != nil {
		return err
	}
	if group.IsAllGroup() {
		return newValidationError("the default group %q cannot be deleted", group.Name)
	}

	return s.transport.Delete(ctx, "/groups/"+groupID)
}

// AddPeers adds the given peers to the group membership. The new membership
// is the deduplicated union of current and requested ids, preserving order
// of first occurrence, submitted as the full set. Re-adding a present peer
// is a no-op: the submitted membership is unchanged.
func (s *GroupsService) AddPeers(ctx context.Context, groupID string, peerIDs ...string) (*Group, error) {
	group, err := s.Get(ctx, groupID)
	if err != nil {
		return nil, err
	}

	merged := unionIDs(group.PeerIDs(), peerIDs)
	return s.submitMembership(ctx, group, merged)
}

// RemovePeers removes the given peers from the group membership. Removing an
// id that is not a member is a no-op, not an error.
func (s *GroupsService) RemovePeers(ctx context.Context, groupID string, peerIDs ...string) (*Group, error) {
	group, err := s.Get(ctx, groupID)
	if err != nil {
		return nil, err
	}

	remaining := differenceIDs(group.PeerIDs(), peerIDs)
	return s.submitMembership(ctx, group, remaining)
}

// submitMembership sends the full membership set. Name rides along because
// the API requires it on group updates.
func (s *GroupsService) submitMembership(ctx context.Context, group *Group, peerIDs []string) (*Group, error) {
	update := GroupUpdate{
		Name:  &group.Name,
		Peers: &peerIDs,
	}
	return s.Update(ctx, group.ID, update)
}

// unionIDs merges two id lists, deduplicated, preserving the order of first
// occurrence.
func unionIDs(existing, requested []string) []string {
	seen := make(map[string]struct{}, len(existing)+len(requested))
	merged := make([]string, 0, len(existing)+len(requested))

	for _, list := range [][]string{existing, requested} {
		for _, id := range list {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			merged = append(merged, id)
		}
	}

	return merged
}

// differenceIDs returns existing minus removed, preserving order.
func differenceIDs(existing, removed []string) []string {
	drop := make(map[string]struct{}, len(removed))
	for _, id := range removed {
		drop[id] = struct{}{}
	}

	remaining := make([]string, 0, len(existing))
	for _, id := range existing {
		if _, ok := drop[id]; ok {
			continue
		}
		remaining = append(remaining, id)
	}

	return remaining
}
