package ledger

import (
	"errors"
	"fmt"
	"iter"
	"time"

	"PoolWarden/internal/model"
)

var (
	ErrDuplicateMember = errors.New("member name already enrolled")
	ErrMemberNotFound  = errors.New("member not found")
	ErrMemberInactive  = errors.New("member has left the pool")
	ErrInvalidAddress  = errors.New("invalid wallet address")
)

// AddressValidator reports whether a wallet address is well formed. The
// actual format rules belong to the chain collaborator.
type AddressValidator func(address string) bool

// Ledger owns the member records in enrollment order. Order is significant:
// fee distribution iterates members in this order, which fixes rounding
// tie-breaks. The ledger itself is not goroutine-safe; the pool manager
// serializes access.
type Ledger struct {
	members  []*model.Member
	byName   map[string]*model.Member
	validate AddressValidator
}

// New creates an empty ledger. A nil validator accepts every address.
func New(validate AddressValidator) *Ledger {
	if validate == nil {
		validate = func(string) bool { return true }
	}
	return &Ledger{
		byName:   make(map[string]*model.Member),
		validate: validate,
	}
}

// Enroll adds a member with the given starting balances.
func (l *Ledger) Enroll(name, walletAddress string, primary, secondary uint64, joinDate time.Time) (*model.Member, error) {
	if _, ok := l.byName[name]; ok {
		return nil, fmt.Errorf("enroll %q: %w", name, ErrDuplicateMember)
	}
	if !l.validate(walletAddress) {
		return nil, fmt.Errorf("enroll %q: %w", name, ErrInvalidAddress)
	}
	m := &model.Member{
		Name:                 name,
		WalletAddress:        walletAddress,
		JoinDate:             joinDate,
		ContributedPrimary:   primary,
		ContributedSecondary: secondary,
		Status:               model.StatusActive,
	}
	l.members = append(l.members, m)
	l.byName[name] = m
	return m, nil
}

// Credit increases an active member's balances by the given deltas and
// returns the new totals. Members that have left cannot be credited.
func (l *Ledger) Credit(name string, deltaPrimary, deltaSecondary uint64) (primary, secondary uint64, err error) {
	m, ok := l.byName[name]
	if !ok {
		return 0, 0, fmt.Errorf("credit %q: %w", name, ErrMemberNotFound)
	}
	if !m.Active() {
		return 0, 0, fmt.Errorf("credit %q: %w", name, ErrMemberInactive)
	}
	m.ContributedPrimary += deltaPrimary
	m.ContributedSecondary += deltaSecondary
	return m.ContributedPrimary, m.ContributedSecondary, nil
}

// Settle zeroes a member's balances and returns what was held. Used when a
// member withdraws their stake from the pool.
func (l *Ledger) Settle(name string) (primary, secondary uint64, err error) {
	m, ok := l.byName[name]
	if !ok {
		return 0, 0, fmt.Errorf("settle %q: %w", name, ErrMemberNotFound)
	}
	if !m.Active() {
		return 0, 0, fmt.Errorf("settle %q: %w", name, ErrMemberInactive)
	}
	primary, secondary = m.ContributedPrimary, m.ContributedSecondary
	m.ContributedPrimary, m.ContributedSecondary = 0, 0
	return primary, secondary, nil
}

// MarkLeft sets a member's status to Left. Idempotent. The record is
// retained for audit; balances are untouched.
func (l *Ledger) MarkLeft(name string) error {
	m, ok := l.byName[name]
	if !ok {
		return fmt.Errorf("mark left %q: %w", name, ErrMemberNotFound)
	}
	m.Status = model.StatusLeft
	return nil
}

// Member looks up a member by name.
func (l *Ledger) Member(name string) (*model.Member, bool) {
	m, ok := l.byName[name]
	return m, ok
}

// ActiveMembers returns a restartable iterator over active members in
// enrollment order.
func (l *Ledger) ActiveMembers() iter.Seq[*model.Member] {
	return func(yield func(*model.Member) bool) {
		for _, m := range l.members {
			if !m.Active() {
				continue
			}
			if !yield(m) {
				return
			}
		}
	}
}

// Len returns the total member count, including members that have left.
func (l *Ledger) Len() int { return len(l.members) }

// ActiveCount returns the number of active members.
func (l *Ledger) ActiveCount() int {
	n := 0
	for range l.ActiveMembers() {
		n++
	}
	return n
}

// TotalActivePrimary sums the primary balances of all active members.
func (l *Ledger) TotalActivePrimary() uint64 {
	var total uint64
	for m := range l.ActiveMembers() {
		total += m.ContributedPrimary
	}
	return total
}

// Snapshot returns copies of all member records in enrollment order.
func (l *Ledger) Snapshot() []model.Member {
	out := make([]model.Member, len(l.members))
	for i, m := range l.members {
		out[i] = *m
	}
	return out
}

// Restore replaces the ledger contents with previously persisted records.
func (l *Ledger) Restore(members []model.Member) error {
	restored := New(l.validate)
	for i := range members {
		m := members[i]
		if _, ok := restored.byName[m.Name]; ok {
			return fmt.Errorf("restore %q: %w", m.Name, ErrDuplicateMember)
		}
		restored.members = append(restored.members, &m)
		restored.byName[m.Name] = &m
	}
	l.members = restored.members
	l.byName = restored.byName
	return nil
}
