package model

import "time"

// PoolState is the persisted snapshot of the pool: member records in
// enrollment order plus the payout rotation tracker.
type PoolState struct {
	Members         []Member  `json:"members"`
	PaidThisCycle   []string  `json:"paid_this_cycle"`
	ContributionDay int       `json:"contribution_day"`
	PayoutDay       int       `json:"payout_day"`
	UpdatedAt       time.Time `json:"updated_at"`
}
