package model

import "time"

// MemberStatus tracks whether a member still participates in the pool.
type MemberStatus string

const (
	StatusActive MemberStatus = "Active"
	StatusLeft   MemberStatus = "Left"
)

// Member is one participant's ledger record. Both balances are integer
// micro-units of their asset and never go negative. Records are retained
// after a member leaves; only Status changes.
type Member struct {
	Name                 string       `json:"name"`
	WalletAddress        string       `json:"wallet_address"`
	JoinDate             time.Time    `json:"join_date"`
	ContributedPrimary   uint64       `json:"contributed_primary"`
	ContributedSecondary uint64       `json:"contributed_secondary"`
	Status               MemberStatus `json:"status"`
}

// Active reports whether the member still participates in pool cycles.
func (m *Member) Active() bool { return m.Status == StatusActive }
