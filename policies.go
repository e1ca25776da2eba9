package netbird

import (
	"context"
	"slices"
	"strings"
)

// PoliciesService manages access policies and their rules.
type PoliciesService struct {
	transport *Transport
}

// List returns all policies in the account.
func (s *PoliciesService) List(ctx context.Context) ([]Policy, error) {
	var policies []Policy
	if err := s.transport.Get(ctx, "/policies", nil, &policies); err != nil {
		return nil, err
	}
	return policies, nil
}

// Get returns one policy by id.
func (s *PoliciesService) Get(ctx context.Context, policyID string) (*Policy, error) {
	if policyID == "" {
		return nil, newValidationError("policy id is required")
	}

	var policy Policy
	if err := s.transport.Get(ctx, "/policies/"+policyID, nil, &policy); err != nil {
		return nil, err
	}
	return &policy, nil
}

// GetByName returns the policy with the given name, or a not-found error.
func (s *PoliciesService) GetByName(ctx context.Context, name string) (*Policy, error) {
	if name == "" {
		return nil, newValidationError("policy name is required")
	}

	policies, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	for i := range policies {
		if policies[i].Name == name {
			return &policies[i], nil
		}
	}

	return nil, &Error{
		Kind:    KindNotFound,
		Message: "policy not found: " + name,
	}
}

// Create creates a new policy with its rules.
func (s *PoliciesService) Create(ctx context.Context, create PolicyCreate) (*Policy, error) {
	if create.Name == "" {
		return nil, newValidationError("policy name is required")
	}
	if len(create.Rules) == 0 {
		return nil, newValidationError("policy requires at least one rule")
	}

	var policy Policy
	if err := s.transport.Post(ctx, "/policies", create, &policy); err != nil {
		return nil, err
	}
	return &policy, nil
}

// Update replaces a policy's fields and rule set.
func (s *PoliciesService) Update(ctx context.Context, policyID string, update PolicyCreate) (*Policy, error) {
	if policyID == "" {
		return nil, newValidationError("policy id is required")
	}

	var policy Policy
	if err := s.transport.Put(ctx, "/policies/"+policyID, update, &policy); err != nil {
		return nil, err
	}
	return &policy, nil
}

// Delete removes a policy and all its rules.
func (s *PoliciesService) Delete(ctx context.Context, policyID string) error {
	if policyID == "" {
		return newValidationError("policy id is required")
	}
	return s.transport.Delete(ctx, "/policies/"+policyID)
}

// InternalCommunicationOptions tunes the rule written by
// EnsureInternalCommunication. The zero value means: enabled,
// bidirectional, all protocols, accept.
type InternalCommunicationOptions struct {
	Description string
	Protocol    Protocol
	Action      RuleAction
	// Unidirectional turns off the default bidirectional flow.
	Unidirectional bool
	// Disabled creates or updates the rule in disabled state.
	Disabled bool
}

// EnsureInternalCommunication makes sure a policy named policyName contains
// exactly one rule allowing traffic within the given group (sources and
// destinations both equal to the group). When the policy does not exist it
// is created with that single rule; when it exists, a rule matching the
// group pair is updated in place or a new one appended. Rules are matched by
// (sorted source ids, sorted destination ids, protocol), so repeated
// invocations never create duplicates for the same group pair.
func (s *PoliciesService) EnsureInternalCommunication(ctx context.Context, groupID, policyName string, opts InternalCommunicationOptions) (*Policy, error) {
	if groupID == "" {
		return nil, newValidationError("group id is required")
	}
	if policyName == "" {
		return nil, newValidationError("policy name is required")
	}

	if opts.Protocol == "" {
		opts.Protocol = ProtocolAll
	}
	if opts.Action == "" {
		opts.Action = ActionAccept
	}

	want := PolicyRuleInput{
		Name:          policyName,
		Description:   opts.Description,
		Enabled:       !opts.Disabled,
		Sources:       []string{groupID},
		Destinations:  []string{groupID},
		Bidirectional: !opts.Unidirectional,
		Protocol:      opts.Protocol,
		Ports:         []string{},
		Action:        opts.Action,
	}

	policy, err := s.GetByName(ctx, policyName)
	if IsNotFound(err) {
		return s.Create(ctx, PolicyCreate{
			Name:        policyName,
			Description: opts.Description,
			Enabled:     true,
			Rules:       []PolicyRuleInput{want},
		})
	}
	if err != nil {
		return nil, err
	}

	rules := make([]PolicyRuleInput, 0, len(policy.Rules)+1)
	for i := range policy.Rules {
		rules = append(rules, policy.Rules[i].Input())
	}

	wantKey := ruleKey(want.Sources, want.Destinations, want.Protocol)
	matched := false
	for i := range rules {
		if ruleKey(rules[i].Sources, rules[i].Destinations, rules[i].Protocol) != wantKey {
			continue
		}
		// Upsert in place, keeping the rule's identity and name.
		rules[i].Enabled = want.Enabled
		rules[i].Bidirectional = want.Bidirectional
		rules[i].Action = want.Action
		if want.Description != "" {
			rules[i].Description = want.Description
		}
		matched = true
		break
	}
	if !matched {
		rules = append(rules, want)
	}

	return s.Update(ctx, policy.ID, PolicyCreate{
		Name:        policy.Name,
		Description: policy.Description,
		Enabled:     policy.Enabled,
		Rules:       rules,
	})
}

// ruleKey identifies a rule by its group pair and protocol, ignoring order
// within the source and destination sets.
func ruleKey(sources, destinations []string, protocol Protocol) string {
	src := slices.Clone(sources)
	dst := slices.Clone(destinations)
	slices.Sort(src)
	slices.Sort(dst)

	return strings.Join(src, ",") + "|" + strings.Join(dst, ",") + "|" + string(protocol)
}
