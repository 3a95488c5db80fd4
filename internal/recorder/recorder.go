package recorder

// ContributionEvent records one member's leg of a contribution cycle.
type ContributionEvent struct {
	Member  string
	Address string
	Amount  uint64
	TxID    string
}

// PayoutEvent records a rotation payout.
type PayoutEvent struct {
	Recipient  string
	Address    string
	Amount     uint64
	Total      uint64
	CycleReset bool
	TxID       string
}

// FeeEvent records a fee distribution, including the rounding loss.
type FeeEvent struct {
	Fee         uint64
	Distributed uint64
	Remainder   uint64
	ShareCount  int
	NoActive    bool
}

// SwapEvent records a buy flow against the pool.
type SwapEvent struct {
	Bought string // "PRIMARY" or "SECONDARY"
	Buyer  string
	Amount uint64
	Cost   uint64
	Fee    uint64
}

// MembershipEvent records an enrollment or opt-out.
type MembershipEvent struct {
	Member    string
	Address   string
	EventType string // "ENROLLED", "LEFT"
}

// Recorder persists pool history for audit and analysis.
type Recorder interface {
	RecordContribution(evt *ContributionEvent) error
	RecordPayout(evt *PayoutEvent) error
	RecordFeeDistribution(evt *FeeEvent) error
	RecordSwap(evt *SwapEvent) error
	RecordMembership(evt *MembershipEvent) error
	Close() error
}
