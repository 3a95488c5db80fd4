package multisig

import (
	"errors"
	"strings"
	"testing"

	"PoolWarden/internal/model"
)

func addr(c byte) string { return strings.Repeat(string(c), 58) }

func signatories() []string {
	return []string{addr('A'), addr('B'), addr('C'), addr('D'), addr('E')}
}

func sig(address string) Signature {
	return Signature{Address: address, Blob: []byte("approved")}
}

func intent() model.TransferIntent {
	return model.TransferIntent{
		From: addr('P'), To: addr('A'), Amount: 600_000,
		Asset: model.AssetPrimary, Memo: "pool payout",
	}
}

func TestNewPolicy(t *testing.T) {
	if _, err := NewPolicy(signatories(), 4); err != nil {
		t.Fatalf("valid policy rejected: %v", err)
	}
	if _, err := NewPolicy(signatories(), 0); !errors.Is(err, ErrInsufficientSignatories) {
		t.Errorf("threshold 0: expected ErrInsufficientSignatories, got %v", err)
	}
	if _, err := NewPolicy(signatories()[:3], 4); !errors.Is(err, ErrInsufficientSignatories) {
		t.Errorf("threshold above set size: expected ErrInsufficientSignatories, got %v", err)
	}
}

func TestAuthorize_ThresholdBoundary(t *testing.T) {
	p, err := NewPolicy(signatories(), 4)
	if err != nil {
		t.Fatal(err)
	}

	// threshold-1 signatures fail
	sigs := []Signature{sig(addr('A')), sig(addr('B')), sig(addr('C'))}
	if _, err := p.Authorize(intent(), sigs); !errors.Is(err, ErrThresholdNotMet) {
		t.Errorf("expected ErrThresholdNotMet, got %v", err)
	}

	// exactly threshold unique signatures succeed
	sigs = append(sigs, sig(addr('D')))
	authorized, err := p.Authorize(intent(), sigs)
	if err != nil {
		t.Fatalf("threshold signatures rejected: %v", err)
	}
	if len(authorized.Signatures) != 4 {
		t.Errorf("expected 4 signatures carried, got %d", len(authorized.Signatures))
	}
	if authorized.Intent != intent() {
		t.Error("authorized transfer does not carry the original intent")
	}
}

func TestAuthorize_DuplicateSignatory(t *testing.T) {
	p, err := NewPolicy(signatories(), 4)
	if err != nil {
		t.Fatal(err)
	}
	sigs := []Signature{sig(addr('A')), sig(addr('B')), sig(addr('C')), sig(addr('A'))}
	if _, err := p.Authorize(intent(), sigs); !errors.Is(err, ErrDuplicateSignature) {
		t.Errorf("expected ErrDuplicateSignature, got %v", err)
	}
}

func TestAuthorize_UnknownSignatory(t *testing.T) {
	p, err := NewPolicy(signatories(), 2)
	if err != nil {
		t.Fatal(err)
	}
	sigs := []Signature{sig(addr('A')), sig(addr('Z'))}
	if _, err := p.Authorize(intent(), sigs); !errors.Is(err, ErrUnknownSignatory) {
		t.Errorf("expected ErrUnknownSignatory, got %v", err)
	}
}

type stubDeriver struct{ derived string }

func (d stubDeriver) DeriveAddress(signatories []string, threshold int) (string, error) {
	return d.derived, nil
}

func TestAddressDelegatesToDeriver(t *testing.T) {
	p, err := NewPolicy(signatories(), 4)
	if err != nil {
		t.Fatal(err)
	}
	got, err := p.Address(stubDeriver{derived: addr('M')})
	if err != nil {
		t.Fatal(err)
	}
	if got != addr('M') {
		t.Errorf("expected deriver's address, got %q", got)
	}
}
