package chain

import (
	"github.com/google/uuid"

	"PoolWarden/internal/model"
	"PoolWarden/internal/multisig"
)

// MockClient returns controllable results for development and testing.
// Every submission is recorded so tests can assert on the intents the pool
// produced.
type MockClient struct {
	SubmitErr  error
	ConfirmErr error

	Submitted  []model.TransferIntent
	Authorized []*multisig.AuthorizedTransfer

	round uint64
}

func NewMockClient() *MockClient { return &MockClient{} }

func (m *MockClient) Name() string { return "mock" }

func (m *MockClient) DeriveAddress(signatories []string, threshold int) (string, error) {
	return DeriveMultisigAddress(signatories, threshold)
}

func (m *MockClient) ValidateAddress(address string) bool {
	return ValidAddress(address)
}

func (m *MockClient) SubmitTransfer(intent model.TransferIntent, _ []byte) (model.Receipt, error) {
	if m.SubmitErr != nil {
		return model.Receipt{}, m.SubmitErr
	}
	m.Submitted = append(m.Submitted, intent)
	return model.Receipt{TxID: uuid.NewString()}, nil
}

func (m *MockClient) SubmitAuthorized(xfer *multisig.AuthorizedTransfer) (model.Receipt, error) {
	if m.SubmitErr != nil {
		return model.Receipt{}, m.SubmitErr
	}
	m.Submitted = append(m.Submitted, xfer.Intent)
	m.Authorized = append(m.Authorized, xfer)
	return model.Receipt{TxID: uuid.NewString()}, nil
}

func (m *MockClient) WaitForConfirmation(txID string, _ int) (model.ConfirmationRecord, error) {
	if m.ConfirmErr != nil {
		return model.ConfirmationRecord{}, m.ConfirmErr
	}
	m.round++
	return model.ConfirmationRecord{TxID: txID, ConfirmedRound: m.round}, nil
}
