// Package chain is the pool's narrow surface onto the external ledger
// network: address rules, transfer submission, and confirmation waits.
package chain

import (
	"errors"

	"PoolWarden/internal/model"
	"PoolWarden/internal/multisig"
)

var (
	ErrTransferRejected    = errors.New("transfer rejected by network")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrConfirmationTimeout = errors.New("confirmation wait timed out")
)

// Client is everything the pool needs from the ledger network. The pool
// never retries these calls; retry policy belongs to the caller.
type Client interface {
	// DeriveAddress returns the deterministic control address for a
	// signatory set and threshold.
	DeriveAddress(signatories []string, threshold int) (string, error)
	// ValidateAddress reports whether an address passes the network's
	// format rules.
	ValidateAddress(address string) bool
	// SubmitTransfer submits a single-signer transfer. The signature blob
	// is opaque to the pool.
	SubmitTransfer(intent model.TransferIntent, signature []byte) (model.Receipt, error)
	// SubmitAuthorized submits a threshold-authorized pool transfer.
	SubmitAuthorized(xfer *multisig.AuthorizedTransfer) (model.Receipt, error)
	// WaitForConfirmation blocks until the transfer confirms or the given
	// number of rounds passes.
	WaitForConfirmation(txID string, rounds int) (model.ConfirmationRecord, error)
	Name() string
}
