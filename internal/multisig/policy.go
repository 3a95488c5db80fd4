// Package multisig encodes the threshold-of-N signing rule that authorizes
// pool-level transfers. The policy works purely on addresses and counts; it
// never sees private signing material.
package multisig

import (
	"errors"
	"fmt"

	"PoolWarden/internal/model"
)

var (
	ErrInsufficientSignatories = errors.New("not enough signatories for threshold")
	ErrThresholdNotMet         = errors.New("signature threshold not met")
	ErrUnknownSignatory        = errors.New("signature from unknown signatory")
	ErrDuplicateSignature      = errors.New("duplicate signatory signature")
)

// Signature is one signatory's approval of a transfer intent. Blob is the
// opaque authorization produced by the external signer.
type Signature struct {
	Address string
	Blob    []byte
}

// Deriver produces the pool control address for a signatory set. The chain
// collaborator implements it.
type Deriver interface {
	DeriveAddress(signatories []string, threshold int) (string, error)
}

// Policy is a fixed signatory set with a signing threshold. The set is
// fixed at pool creation.
type Policy struct {
	Threshold   int
	Signatories []string

	members map[string]struct{}
}

// NewPolicy validates and builds a threshold policy.
func NewPolicy(signatories []string, threshold int) (*Policy, error) {
	if threshold < 1 || len(signatories) < threshold {
		return nil, fmt.Errorf("threshold %d of %d signatories: %w",
			threshold, len(signatories), ErrInsufficientSignatories)
	}
	members := make(map[string]struct{}, len(signatories))
	for _, a := range signatories {
		members[a] = struct{}{}
	}
	return &Policy{
		Threshold:   threshold,
		Signatories: append([]string(nil), signatories...),
		members:     members,
	}, nil
}

// Address derives the pool control address for this policy.
func (p *Policy) Address(d Deriver) (string, error) {
	return d.DeriveAddress(p.Signatories, p.Threshold)
}

// AuthorizedTransfer is a transfer intent carrying enough unique signatory
// approvals to satisfy the policy. The chain submitter accepts it as-is.
type AuthorizedTransfer struct {
	Intent     model.TransferIntent
	Signatures []Signature
}

// Authorize checks the signatures against the policy and, on success,
// returns the authorized transfer. The intent is never submitted when
// authorization fails.
func (p *Policy) Authorize(intent model.TransferIntent, sigs []Signature) (*AuthorizedTransfer, error) {
	if len(sigs) < p.Threshold {
		return nil, fmt.Errorf("%d of %d signatures: %w", len(sigs), p.Threshold, ErrThresholdNotMet)
	}
	seen := make(map[string]struct{}, len(sigs))
	for _, sig := range sigs {
		if _, ok := p.members[sig.Address]; !ok {
			return nil, fmt.Errorf("signatory %s: %w", sig.Address, ErrUnknownSignatory)
		}
		if _, ok := seen[sig.Address]; ok {
			return nil, fmt.Errorf("signatory %s: %w", sig.Address, ErrDuplicateSignature)
		}
		seen[sig.Address] = struct{}{}
	}
	return &AuthorizedTransfer{
		Intent:     intent,
		Signatures: append([]Signature(nil), sigs...),
	}, nil
}
