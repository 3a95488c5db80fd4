package model

// AssetKind selects which tracked asset a transfer moves.
type AssetKind string

const (
	AssetPrimary   AssetKind = "PRIMARY"
	AssetSecondary AssetKind = "SECONDARY"
	AssetPoolToken AssetKind = "POOL_TOKEN"
)

// TransferIntent describes a desired value movement on the external ledger
// network. It is immutable and never retried automatically.
type TransferIntent struct {
	From   string
	To     string
	Amount uint64
	Asset  AssetKind
	Memo   string
}

// Receipt identifies a submitted transfer.
type Receipt struct {
	TxID string
}

// ConfirmationRecord reports the round in which a transfer was confirmed.
type ConfirmationRecord struct {
	TxID           string
	ConfirmedRound uint64
}
