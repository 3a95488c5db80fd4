// Package fees splits transaction fees across active pool members in
// proportion to their contributed primary balance.
package fees

import (
	"fmt"
	"math/bits"

	"PoolWarden/internal/ledger"
)

// Share is one member's slice of a distributed fee.
type Share struct {
	Name    string
	Address string
	Amount  uint64
}

// Outcome reports how a fee was split. When no active member holds a
// positive primary balance the distribution is a no-op and
// NoActiveContributions is set; that is a recorded outcome, not an error.
type Outcome struct {
	Fee                   uint64
	Distributed           uint64
	Remainder             uint64
	Shares                []Share
	NoActiveContributions bool
}

// Engine operates on borrowed access to the pool's ledger; it never copies
// member state.
type Engine struct {
	ledger *ledger.Ledger
}

func NewEngine(l *ledger.Ledger) *Engine {
	return &Engine{ledger: l}
}

// Distribute credits each active member floor(fee * balance / total) primary
// micro-units, iterating in enrollment order. Floor division under-distributes
// by up to memberCount-1 units; the remainder is dropped, not redistributed.
// That loss is intentional and reported in the outcome for auditing.
func (e *Engine) Distribute(feeAmount uint64) (*Outcome, error) {
	out := &Outcome{Fee: feeAmount}

	total := e.ledger.TotalActivePrimary()
	if total == 0 {
		out.NoActiveContributions = true
		out.Remainder = feeAmount
		return out, nil
	}

	for m := range e.ledger.ActiveMembers() {
		// 128-bit intermediate so fee*balance cannot overflow. The quotient
		// fits in 64 bits because balance <= total.
		hi, lo := bits.Mul64(feeAmount, m.ContributedPrimary)
		share, _ := bits.Div64(hi, lo, total)
		if share == 0 {
			continue
		}
		if _, _, err := e.ledger.Credit(m.Name, share, 0); err != nil {
			return nil, fmt.Errorf("credit fee share to %q: %w", m.Name, err)
		}
		out.Shares = append(out.Shares, Share{Name: m.Name, Address: m.WalletAddress, Amount: share})
		out.Distributed += share
	}
	out.Remainder = feeAmount - out.Distributed
	return out, nil
}
