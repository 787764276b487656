// Package account holds the account descriptor model, the strict wire
// parser for structured account submissions, and the directory collaborator
// that looks descriptors up by display name.
package account

import (
	"github.com/modsentry/modsentry/internal/geo"
)

// ReasonImpersonation is the report reason that makes an account eligible
// for batch suspicion scoring.
const ReasonImpersonation = "Impersonation"

// Descriptor is one account's attributes as extracted from a structured
// submission.
type Descriptor struct {
	Name  string `json:"name"`
	Intro string `json:"intro"`

	// Followers and Following are the parsed account-id lists.
	// FollowersField and FollowingField keep the raw submission text; the
	// malformed-graph heuristic inspects the raw fields, not the parse.
	Followers      []string `json:"followers"`
	Following      []string `json:"following"`
	FollowersField string   `json:"-"`
	FollowingField string   `json:"-"`

	IPAddress string `json:"ip_address"`

	// Location is set iff IP resolution succeeded. A failed resolution never
	// defaults to the zero coordinate; it stays nil and the resolution error
	// travels separately.
	Location *geo.Point `json:"location,omitempty"`

	ReportCount     int      `json:"report_count"`
	ReportedReasons []string `json:"reported_reasons,omitempty"`
}

// ReportedFor reports whether the descriptor carries the given report reason.
func (d *Descriptor) ReportedFor(reason string) bool {
	for _, r := range d.ReportedReasons {
		if r == reason {
			return true
		}
	}
	return false
}

// CriteriaSet is an insertion-ordered mapping from account id to Descriptor,
// representing a batch of mutually similar accounts to cross-compare. The
// order of IDs is the order accounts were added, so scoring output is
// deterministic.
type CriteriaSet struct {
	ids      []string
	accounts map[string]*Descriptor
}

// NewCriteriaSet creates an empty CriteriaSet.
func NewCriteriaSet() *CriteriaSet {
	return &CriteriaSet{accounts: make(map[string]*Descriptor)}
}

// Add inserts a descriptor under the given id. Re-adding an existing id
// replaces the descriptor but keeps its original position.
func (s *CriteriaSet) Add(id string, d *Descriptor) {
	if _, ok := s.accounts[id]; !ok {
		s.ids = append(s.ids, id)
	}
	s.accounts[id] = d
}

// Get returns the descriptor for id.
func (s *CriteriaSet) Get(id string) (*Descriptor, bool) {
	d, ok := s.accounts[id]
	return d, ok
}

// IDs returns the account ids in insertion order. The returned slice is
// shared; callers must not mutate it.
func (s *CriteriaSet) IDs() []string { return s.ids }

// Len returns the number of accounts in the set.
func (s *CriteriaSet) Len() int { return len(s.ids) }
