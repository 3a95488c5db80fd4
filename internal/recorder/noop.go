package recorder

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordContribution(_ *ContributionEvent) error { return nil }
func (n *NoopRecorder) RecordPayout(_ *PayoutEvent) error             { return nil }
func (n *NoopRecorder) RecordFeeDistribution(_ *FeeEvent) error       { return nil }
func (n *NoopRecorder) RecordSwap(_ *SwapEvent) error                 { return nil }
func (n *NoopRecorder) RecordMembership(_ *MembershipEvent) error     { return nil }
func (n *NoopRecorder) Close() error                                  { return nil }
