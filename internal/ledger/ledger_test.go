package ledger

import (
	"errors"
	"strings"
	"testing"
	"time"

	"PoolWarden/internal/model"
)

func testAddr(c byte) string {
	return strings.Repeat(string(c), 58)
}

func validateLen(addr string) bool { return len(addr) == 58 }

func TestEnroll(t *testing.T) {
	l := New(validateLen)
	m, err := l.Enroll("alice", testAddr('A'), 100, 10, time.Now())
	if err != nil {
		t.Fatalf("enroll: %v", err)
	}
	if m.Status != model.StatusActive {
		t.Errorf("expected new member to be active, got %s", m.Status)
	}
	if m.ContributedPrimary != 100 || m.ContributedSecondary != 10 {
		t.Errorf("unexpected starting balances: %d/%d", m.ContributedPrimary, m.ContributedSecondary)
	}

	if _, err := l.Enroll("alice", testAddr('B'), 0, 0, time.Now()); !errors.Is(err, ErrDuplicateMember) {
		t.Errorf("expected ErrDuplicateMember, got %v", err)
	}
	if _, err := l.Enroll("bob", "short", 0, 0, time.Now()); !errors.Is(err, ErrInvalidAddress) {
		t.Errorf("expected ErrInvalidAddress, got %v", err)
	}
}

func TestCredit(t *testing.T) {
	l := New(nil)
	if _, err := l.Enroll("alice", testAddr('A'), 100, 0, time.Now()); err != nil {
		t.Fatal(err)
	}

	p, s, err := l.Credit("alice", 50, 7)
	if err != nil {
		t.Fatalf("credit: %v", err)
	}
	if p != 150 || s != 7 {
		t.Errorf("expected totals 150/7, got %d/%d", p, s)
	}

	if _, _, err := l.Credit("nobody", 1, 0); !errors.Is(err, ErrMemberNotFound) {
		t.Errorf("expected ErrMemberNotFound, got %v", err)
	}
}

func TestCreditAfterLeft(t *testing.T) {
	l := New(nil)
	if _, err := l.Enroll("alice", testAddr('A'), 100, 0, time.Now()); err != nil {
		t.Fatal(err)
	}
	if err := l.MarkLeft("alice"); err != nil {
		t.Fatalf("mark left: %v", err)
	}

	if _, _, err := l.Credit("alice", 100, 0); !errors.Is(err, ErrMemberInactive) {
		t.Errorf("expected ErrMemberInactive, got %v", err)
	}
	m, _ := l.Member("alice")
	if m.ContributedPrimary != 100 {
		t.Errorf("balance changed on rejected credit: %d", m.ContributedPrimary)
	}
}

func TestMarkLeftIdempotent(t *testing.T) {
	l := New(nil)
	if _, err := l.Enroll("alice", testAddr('A'), 0, 0, time.Now()); err != nil {
		t.Fatal(err)
	}
	if err := l.MarkLeft("alice"); err != nil {
		t.Fatal(err)
	}
	if err := l.MarkLeft("alice"); err != nil {
		t.Errorf("second mark left should be a no-op, got %v", err)
	}
	if err := l.MarkLeft("nobody"); !errors.Is(err, ErrMemberNotFound) {
		t.Errorf("expected ErrMemberNotFound, got %v", err)
	}
}

func TestActiveMembersOrderAndRestart(t *testing.T) {
	l := New(nil)
	for _, name := range []string{"alice", "bob", "carol"} {
		if _, err := l.Enroll(name, testAddr(name[0]), 0, 0, time.Now()); err != nil {
			t.Fatal(err)
		}
	}
	if err := l.MarkLeft("bob"); err != nil {
		t.Fatal(err)
	}

	collect := func() []string {
		var names []string
		for m := range l.ActiveMembers() {
			names = append(names, m.Name)
		}
		return names
	}

	// Restartable: two passes see the same sequence, in enrollment order.
	for pass := 0; pass < 2; pass++ {
		names := collect()
		if len(names) != 2 || names[0] != "alice" || names[1] != "carol" {
			t.Fatalf("pass %d: unexpected active members %v", pass, names)
		}
	}
	if l.ActiveCount() != 2 {
		t.Errorf("expected 2 active, got %d", l.ActiveCount())
	}
	if l.Len() != 3 {
		t.Errorf("expected 3 total, got %d", l.Len())
	}
}

func TestSettle(t *testing.T) {
	l := New(nil)
	if _, err := l.Enroll("alice", testAddr('A'), 500, 20, time.Now()); err != nil {
		t.Fatal(err)
	}
	p, s, err := l.Settle("alice")
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if p != 500 || s != 20 {
		t.Errorf("expected settled 500/20, got %d/%d", p, s)
	}
	m, _ := l.Member("alice")
	if m.ContributedPrimary != 0 || m.ContributedSecondary != 0 {
		t.Errorf("balances not zeroed: %d/%d", m.ContributedPrimary, m.ContributedSecondary)
	}
}

func TestSnapshotRestore(t *testing.T) {
	l := New(nil)
	if _, err := l.Enroll("alice", testAddr('A'), 100, 0, time.Now()); err != nil {
		t.Fatal(err)
	}
	if _, err := l.Enroll("bob", testAddr('B'), 200, 5, time.Now()); err != nil {
		t.Fatal(err)
	}
	if err := l.MarkLeft("bob"); err != nil {
		t.Fatal(err)
	}

	restored := New(nil)
	if err := restored.Restore(l.Snapshot()); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if restored.Len() != 2 || restored.ActiveCount() != 1 {
		t.Errorf("restore mismatch: %d total, %d active", restored.Len(), restored.ActiveCount())
	}
	if restored.TotalActivePrimary() != 100 {
		t.Errorf("expected total active primary 100, got %d", restored.TotalActivePrimary())
	}
}
