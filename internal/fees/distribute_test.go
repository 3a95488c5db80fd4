package fees

import (
	"strings"
	"testing"
	"time"

	"PoolWarden/internal/ledger"
)

func newLedger(t *testing.T, balances map[string]uint64, order []string) *ledger.Ledger {
	t.Helper()
	l := ledger.New(nil)
	for i, name := range order {
		addr := strings.Repeat(string(rune('A'+i)), 58)
		if _, err := l.Enroll(name, addr, balances[name], 0, time.Now()); err != nil {
			t.Fatal(err)
		}
	}
	return l
}

func TestDistribute_EqualBalances(t *testing.T) {
	// 5 members with 1,000,000 each; a fee of 7 yields 1 unit per member
	// and a rounding loss of 2.
	order := []string{"a", "b", "c", "d", "e"}
	balances := map[string]uint64{}
	for _, n := range order {
		balances[n] = 1_000_000
	}
	l := newLedger(t, balances, order)

	out, err := NewEngine(l).Distribute(7)
	if err != nil {
		t.Fatalf("distribute: %v", err)
	}
	if out.Distributed != 5 {
		t.Errorf("expected 5 distributed, got %d", out.Distributed)
	}
	if out.Remainder != 2 {
		t.Errorf("expected remainder 2, got %d", out.Remainder)
	}
	if len(out.Shares) != 5 {
		t.Fatalf("expected 5 shares, got %d", len(out.Shares))
	}
	for _, s := range out.Shares {
		if s.Amount != 1 {
			t.Errorf("%s: expected share 1, got %d", s.Name, s.Amount)
		}
	}
	m, _ := l.Member("a")
	if m.ContributedPrimary != 1_000_001 {
		t.Errorf("expected balance 1000001, got %d", m.ContributedPrimary)
	}
}

func TestDistribute_Proportional(t *testing.T) {
	l := newLedger(t, map[string]uint64{"a": 300, "b": 100}, []string{"a", "b"})

	out, err := NewEngine(l).Distribute(100)
	if err != nil {
		t.Fatalf("distribute: %v", err)
	}
	if out.Shares[0].Amount != 75 || out.Shares[1].Amount != 25 {
		t.Errorf("expected 75/25 split, got %d/%d", out.Shares[0].Amount, out.Shares[1].Amount)
	}
	if out.Remainder != 0 {
		t.Errorf("expected no remainder, got %d", out.Remainder)
	}
}

func TestDistribute_RemainderBound(t *testing.T) {
	tests := []struct {
		fee      uint64
		balances map[string]uint64
		order    []string
	}{
		{7, map[string]uint64{"a": 1, "b": 1, "c": 1}, []string{"a", "b", "c"}},
		{1000, map[string]uint64{"a": 7, "b": 11, "c": 13}, []string{"a", "b", "c"}},
		{1, map[string]uint64{"a": 999, "b": 1}, []string{"a", "b"}},
		{0, map[string]uint64{"a": 5, "b": 5}, []string{"a", "b"}},
	}
	for _, tt := range tests {
		l := newLedger(t, tt.balances, tt.order)
		out, err := NewEngine(l).Distribute(tt.fee)
		if err != nil {
			t.Fatalf("distribute %d: %v", tt.fee, err)
		}
		if out.Distributed > tt.fee {
			t.Errorf("fee %d: distributed %d exceeds fee", tt.fee, out.Distributed)
		}
		if out.Remainder >= uint64(len(tt.order)) {
			t.Errorf("fee %d: remainder %d not below member count %d", tt.fee, out.Remainder, len(tt.order))
		}
		if out.Distributed+out.Remainder != tt.fee {
			t.Errorf("fee %d: distributed %d + remainder %d != fee", tt.fee, out.Distributed, out.Remainder)
		}
	}
}

func TestDistribute_NoActiveContributions(t *testing.T) {
	// Zero balances: recorded outcome, no error, nothing mutated.
	l := newLedger(t, map[string]uint64{"a": 0, "b": 0}, []string{"a", "b"})
	out, err := NewEngine(l).Distribute(100)
	if err != nil {
		t.Fatalf("distribute: %v", err)
	}
	if !out.NoActiveContributions {
		t.Error("expected NoActiveContributions outcome")
	}
	if out.Distributed != 0 || len(out.Shares) != 0 {
		t.Errorf("expected no distribution, got %d across %d shares", out.Distributed, len(out.Shares))
	}

	// No members at all.
	out, err = NewEngine(ledger.New(nil)).Distribute(100)
	if err != nil {
		t.Fatalf("distribute: %v", err)
	}
	if !out.NoActiveContributions {
		t.Error("expected NoActiveContributions outcome for empty ledger")
	}
}

func TestDistribute_SkipsLeftMembers(t *testing.T) {
	l := newLedger(t, map[string]uint64{"a": 500, "b": 500}, []string{"a", "b"})
	if err := l.MarkLeft("b"); err != nil {
		t.Fatal(err)
	}

	out, err := NewEngine(l).Distribute(100)
	if err != nil {
		t.Fatalf("distribute: %v", err)
	}
	if len(out.Shares) != 1 || out.Shares[0].Name != "a" {
		t.Fatalf("expected single share to a, got %+v", out.Shares)
	}
	if out.Shares[0].Amount != 100 {
		t.Errorf("expected remaining member to take the whole fee, got %d", out.Shares[0].Amount)
	}
	b, _ := l.Member("b")
	if b.ContributedPrimary != 500 {
		t.Errorf("left member balance changed: %d", b.ContributedPrimary)
	}
}
