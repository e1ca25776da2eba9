package netbird

import (
	"time"
)

// Protocol is a network protocol matched by a policy rule.
type Protocol string

// Protocols accepted by policy rules.
const (
	ProtocolAll  Protocol = "all"
	ProtocolTCP  Protocol = "tcp"
	ProtocolUDP  Protocol = "udp"
	ProtocolICMP Protocol = "icmp"
)

// RuleAction decides what a policy rule does with matched traffic.
type RuleAction string

// Actions accepted by policy rules.
const (
	ActionAccept RuleAction = "accept"
	ActionDrop   RuleAction = "drop"
)

// GroupRef is a weak reference to a group: id and name only, never the full
// object. Peers reference groups and rules reference groups this way, which
// keeps the entity graph free of cyclic ownership.
type GroupRef struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// PeerRef is a weak reference to a peer carried inside a group.
type PeerRef struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// Peer is a device enrolled in the network.
type Peer struct {
	ID                     string     `json:"id"`
	Name                   string     `json:"name"`
	IP                     string     `json:"ip"`
	Connected              bool       `json:"connected"`
	LastSeen               *time.Time `json:"last_seen,omitempty"`
	OS                     string     `json:"os,omitempty"`
	Version                string     `json:"version,omitempty"`
	Hostname               string     `json:"hostname,omitempty"`
	DNSLabel               string     `json:"dns_label,omitempty"`
	UserID                 string     `json:"user_id,omitempty"`
	SSHEnabled             bool       `json:"ssh_enabled"`
	LoginExpirationEnabled bool       `json:"login_expiration_enabled"`
	LoginExpired           bool       `json:"login_expired"`
	ApprovalRequired       bool       `json:"approval_required"`
	CountryCode            string     `json:"country_code,omitempty"`
	CityName               string     `json:"city_name,omitempty"`
	AccessiblePeersCount   int        `json:"accessible_peers_count,omitempty"`
	Groups                 []GroupRef `json:"groups,omitempty"`
}

// GroupIDs returns the ids of the groups this peer belongs to.
func (p *Peer) GroupIDs() []string {
	ids := make([]string, 0, len(p.Groups))
	for _, g := range p.Groups {
		ids = append(ids, g.ID)
	}
	return ids
}

// GroupNames returns the names of the groups this peer belongs to.
func (p *Peer) GroupNames() []string {
	names := make([]string, 0, len(p.Groups))
	for _, g := range p.Groups {
		if g.Name != "" {
			names = append(names, g.Name)
		}
	}
	return names
}

// InGroup reports whether the peer belongs to the named group.
func (p *Peer) InGroup(name string) bool {
	for _, g := range p.Groups {
		if g.Name == name {
			return true
		}
	}
	return false
}

// PeerUpdate is a partial peer mutation. Only non-nil fields are sent;
// omitted fields are left untouched server-side.
type PeerUpdate struct {
	Name                   *string `json:"name,omitempty"`
	SSHEnabled             *bool   `json:"ssh_enabled,omitempty"`
	LoginExpirationEnabled *bool   `json:"login_expiration_enabled,omitempty"`
	ApprovalRequired       *bool   `json:"approval_required,omitempty"`
}

// Group is a named set of peers used as a policy source or destination.
type Group struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	PeersCount     int       `json:"peers_count"`
	ResourcesCount int       `json:"resources_count,omitempty"`
	Issued         string    `json:"issued,omitempty"`
	Peers          []PeerRef `json:"peers,omitempty"`
}

// PeerIDs returns the ids of the group members, in membership order.
func (g *Group) PeerIDs() []string {
	ids := make([]string, 0, len(g.Peers))
	for _, p := range g.Peers {
		ids = append(ids, p.ID)
	}
	return ids
}

// HasPeer reports whether the peer id is a member of the group.
func (g *Group) HasPeer(peerID string) bool {
	for _, p := range g.Peers {
		if p.ID == peerID {
			return true
		}
	}
	return false
}

// IsAllGroup reports whether this is the distinguished account-wide default
// group. The API exposes no explicit default-group flag, so the check is a
// client-side naming convention. It is a guard, not a proof.
func (g *Group) IsAllGroup() bool {
	return g.Name == "All"
}

// GroupCreate carries the fields for creating a group.
type GroupCreate struct {
	Name  string   `json:"name"`
	Peers []string `json:"peers"`
}

// GroupUpdate is a partial group mutation. Only non-nil fields are sent.
// Peers, when set, replaces the full membership; use the AddPeers and
// RemovePeers operations for incremental changes.
type GroupUpdate struct {
	Name  *string   `json:"name,omitempty"`
	Peers *[]string `json:"peers,omitempty"`
}

// Policy is a named bundle of rules controlling traffic between groups.
type Policy struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Enabled     bool         `json:"enabled"`
	Rules       []PolicyRule `json:"rules"`
}

// PolicyRule is one accept/drop directive between source and destination
// group sets. Responses carry group references with names; requests send
// bare group ids (see PolicyRuleInput).
type PolicyRule struct {
	ID            string     `json:"id,omitempty"`
	Name          string     `json:"name"`
	Description   string     `json:"description,omitempty"`
	Enabled       bool       `json:"enabled"`
	Sources       []GroupRef `json:"sources"`
	Destinations  []GroupRef `json:"destinations"`
	Bidirectional bool       `json:"bidirectional"`
	Protocol      Protocol   `json:"protocol"`
	Ports         []string   `json:"ports,omitempty"`
	Action        RuleAction `json:"action"`
}

// SourceIDs returns the ids of the rule's source groups.
func (r *PolicyRule) SourceIDs() []string {
	return refIDs(r.Sources)
}

// DestinationIDs returns the ids of the rule's destination groups.
func (r *PolicyRule) DestinationIDs() []string {
	return refIDs(r.Destinations)
}

func refIDs(refs []GroupRef) []string {
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		ids = append(ids, ref.ID)
	}
	return ids
}

// Input converts a rule from response shape to request shape, flattening
// group references to bare ids. Absent ports become an empty list so the
// rule marshals as "ports": [] rather than null.
func (r *PolicyRule) Input() PolicyRuleInput {
	ports := r.Ports
	if ports == nil {
		ports = []string{}
	}
	return PolicyRuleInput{
		ID:            r.ID,
		Name:          r.Name,
		Description:   r.Description,
		Enabled:       r.Enabled,
		Sources:       r.SourceIDs(),
		Destinations:  r.DestinationIDs(),
		Bidirectional: r.Bidirectional,
		Protocol:      r.Protocol,
		Ports:         ports,
		Action:        r.Action,
	}
}

// PolicyRuleInput is the request shape of a rule: sources and destinations
// are bare group id lists.
type PolicyRuleInput struct {
	ID            string     `json:"id,omitempty"`
	Name          string     `json:"name"`
	Description   string     `json:"description,omitempty"`
	Enabled       bool       `json:"enabled"`
	Sources       []string   `json:"sources"`
	Destinations  []string   `json:"destinations"`
	Bidirectional bool       `json:"bidirectional"`
	Protocol      Protocol   `json:"protocol"`
	Ports         []string   `json:"ports"`
	Action        RuleAction `json:"action"`
}

// PolicyCreate carries the fields for creating or replacing a policy.
type PolicyCreate struct {
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Enabled     bool              `json:"enabled"`
	Rules       []PolicyRuleInput `json:"rules"`
}
