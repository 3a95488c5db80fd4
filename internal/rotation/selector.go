// Package rotation picks payout recipients so that every active member is
// paid exactly once per rotation cycle before any repeats.
package rotation

import (
	"errors"
	"math/rand/v2"
	"sort"

	"PoolWarden/internal/ledger"
	"PoolWarden/internal/model"
)

var ErrNoEligibleRecipients = errors.New("no active members eligible for payout")

// Tracker records which wallet addresses have received a payout in the
// current rotation cycle.
type Tracker struct {
	paid map[string]struct{}
}

func NewTracker() *Tracker {
	return &Tracker{paid: make(map[string]struct{})}
}

// RestoreTracker rebuilds a tracker from persisted addresses.
func RestoreTracker(addresses []string) *Tracker {
	t := NewTracker()
	for _, a := range addresses {
		t.paid[a] = struct{}{}
	}
	return t
}

func (t *Tracker) Paid(address string) bool {
	_, ok := t.paid[address]
	return ok
}

func (t *Tracker) Mark(address string) { t.paid[address] = struct{}{} }

// Unmark withdraws a selection, for callers whose payout never happened.
func (t *Tracker) Unmark(address string) { delete(t.paid, address) }

func (t *Tracker) Clear() { clear(t.paid) }

func (t *Tracker) Len() int { return len(t.paid) }

// Addresses returns the tracked addresses sorted, for stable persistence.
func (t *Tracker) Addresses() []string {
	out := make([]string, 0, len(t.paid))
	for a := range t.paid {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

// Source yields a uniform index in [0, n). Injectable so rotation tests can
// be deterministic.
type Source interface {
	IntN(n int) int
}

type defaultSource struct{}

func (defaultSource) IntN(n int) int { return rand.IntN(n) }

// Selector chooses the next payout recipient. It operates on borrowed
// ledger and tracker state owned by the pool manager.
type Selector struct {
	src Source
}

// NewSelector creates a selector. A nil source uses math/rand/v2.
func NewSelector(src Source) *Selector {
	if src == nil {
		src = defaultSource{}
	}
	return &Selector{src: src}
}

// SelectRecipient picks one active member uniformly at random from those not
// yet paid this cycle and marks them paid. When every active member has been
// paid, the tracker is cleared first and a new cycle begins.
func (s *Selector) SelectRecipient(l *ledger.Ledger, t *Tracker) (*model.Member, error) {
	eligible := s.eligible(l, t)
	if len(eligible) == 0 {
		if l.ActiveCount() == 0 {
			return nil, ErrNoEligibleRecipients
		}
		t.Clear()
		eligible = s.eligible(l, t)
	}
	chosen := eligible[s.src.IntN(len(eligible))]
	t.Mark(chosen.WalletAddress)
	return chosen, nil
}

func (s *Selector) eligible(l *ledger.Ledger, t *Tracker) []*model.Member {
	var out []*model.Member
	for m := range l.ActiveMembers() {
		if !t.Paid(m.WalletAddress) {
			out = append(out, m)
		}
	}
	return out
}
