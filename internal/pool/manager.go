// Package pool orchestrates the member ledger, fee distribution, rotation
// selection, and threshold authorization against the chain collaborator.
// All pool-mutating operations run under one mutex; ledger state only
// changes after the corresponding transfer has confirmed.
package pool

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"PoolWarden/internal/chain"
	"PoolWarden/internal/fees"
	"PoolWarden/internal/ledger"
	"PoolWarden/internal/model"
	"PoolWarden/internal/multisig"
	"PoolWarden/internal/rotation"
)

// Primary micro-units per whole primary unit; swap rates are quoted per
// whole unit.
const microPerPrimary = 1_000_000

// MemberSigner produces a single holder's authorization for a transfer
// intent. Credential collection and validation live entirely outside the
// pool; the pool only ever sees the resulting blob.
type MemberSigner interface {
	Sign(signer string, intent model.TransferIntent) ([]byte, error)
}

// PoolSigner gathers signatory approvals for a pool-held transfer. The
// authorization policy decides whether they satisfy the threshold.
type PoolSigner interface {
	Collect(intent model.TransferIntent) ([]multisig.Signature, error)
}

// Settings are the pool's fixed operating parameters.
type Settings struct {
	ContributionDay    int
	PayoutDay          int
	ContributionAmount uint64
	PayoutFraction     decimal.Decimal // of total contributions, e.g. 0.60
	SwapRate           decimal.Decimal // secondary units per whole primary unit
	FeeDivisor         uint64          // fee = amount / FeeDivisor
	ConfirmationRounds int
}

// Manager owns the pool: the member ledger, the rotation tracker, and the
// threshold policy, plus the collaborator handles needed to move value.
type Manager struct {
	mu          sync.Mutex
	ledger      *ledger.Ledger
	engine      *fees.Engine
	selector    *rotation.Selector
	tracker     *rotation.Tracker
	policy      *multisig.Policy
	chain       chain.Client
	poolAddress string
	cfg         Settings
	statePath   string
}

// NewManager derives the pool control address, loads any persisted state,
// and wires the core components around one shared ledger.
func NewManager(cfg Settings, client chain.Client, policy *multisig.Policy, selector *rotation.Selector, statePath string) (*Manager, error) {
	poolAddress, err := policy.Address(client)
	if err != nil {
		return nil, fmt.Errorf("derive pool address: %w", err)
	}

	l := ledger.New(client.ValidateAddress)
	m := &Manager{
		ledger:      l,
		engine:      fees.NewEngine(l),
		selector:    selector,
		tracker:     rotation.NewTracker(),
		policy:      policy,
		chain:       client,
		poolAddress: poolAddress,
		cfg:         cfg,
		statePath:   statePath,
	}

	if statePath != "" {
		state, err := LoadState(statePath)
		if err != nil {
			return nil, fmt.Errorf("load pool state: %w", err)
		}
		if err := l.Restore(state.Members); err != nil {
			return nil, fmt.Errorf("restore ledger: %w", err)
		}
		m.tracker = rotation.RestoreTracker(state.PaidThisCycle)
		if err := m.save(); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// PoolAddress returns the derived multisig control address.
func (m *Manager) PoolAddress() string { return m.poolAddress }

// Snapshot returns a copy of the current pool state.
func (m *Manager) Snapshot() model.PoolState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *Manager) snapshotLocked() model.PoolState {
	return model.PoolState{
		Members:         m.ledger.Snapshot(),
		PaidThisCycle:   m.tracker.Addresses(),
		ContributionDay: m.cfg.ContributionDay,
		PayoutDay:       m.cfg.PayoutDay,
		UpdatedAt:       time.Now(),
	}
}

// Enroll adds a member with zero balances.
func (m *Manager) Enroll(name, walletAddress string) (*model.Member, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	member, err := m.ledger.Enroll(name, walletAddress, 0, 0, time.Now())
	if err != nil {
		return nil, err
	}
	m.persist()
	return member, nil
}

// StakeResult reports a completed stake flow.
type StakeResult struct {
	Member    model.Member
	Primary   uint64
	Secondary uint64
	Tokens    uint64
	Receipts  []model.Receipt
}

// Stake moves a member's primary and matching secondary amounts into the
// pool, grants pool tokens back, and credits the ledger once every transfer
// has confirmed.
func (m *Manager) Stake(name string, primaryAmount uint64, signer MemberSigner, pool PoolSigner) (*StakeResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	member, ok := m.ledger.Member(name)
	if !ok {
		return nil, fmt.Errorf("stake %q: %w", name, ledger.ErrMemberNotFound)
	}
	if !member.Active() {
		return nil, fmt.Errorf("stake %q: %w", name, ledger.ErrMemberInactive)
	}

	secondaryAmount := m.secondaryForPrimary(primaryAmount)
	result := &StakeResult{Primary: primaryAmount, Secondary: secondaryAmount, Tokens: secondaryAmount}

	r, err := m.submitSigned(model.TransferIntent{
		From: member.WalletAddress, To: m.poolAddress,
		Amount: primaryAmount, Asset: model.AssetPrimary, Memo: "pool stake",
	}, name, signer)
	if err != nil {
		return nil, fmt.Errorf("stake primary: %w", err)
	}
	result.Receipts = append(result.Receipts, r)

	if secondaryAmount > 0 {
		r, err = m.submitSigned(model.TransferIntent{
			From: member.WalletAddress, To: m.poolAddress,
			Amount: secondaryAmount, Asset: model.AssetSecondary, Memo: "pool stake",
		}, name, signer)
		if err != nil {
			return nil, fmt.Errorf("stake secondary: %w", err)
		}
		result.Receipts = append(result.Receipts, r)

		// Pool tokens mirror the secondary stake and come back out of
		// pool-held funds, so they need threshold authorization.
		r, err = m.submitAuthorized(model.TransferIntent{
			From: m.poolAddress, To: member.WalletAddress,
			Amount: secondaryAmount, Asset: model.AssetPoolToken, Memo: "pool token grant",
		}, pool)
		if err != nil {
			return nil, fmt.Errorf("grant pool tokens: %w", err)
		}
		result.Receipts = append(result.Receipts, r)
	}

	if _, _, err := m.ledger.Credit(name, primaryAmount, secondaryAmount); err != nil {
		return nil, fmt.Errorf("credit stake: %w", err)
	}
	result.Member = *member
	m.persist()
	return result, nil
}

// WithdrawResult reports a completed withdrawal.
type WithdrawResult struct {
	Member    model.Member
	Primary   uint64
	Secondary uint64
	Receipts  []model.Receipt
}

// Withdraw returns a member's pool tokens, pays their staked balances back
// out of pool-held funds, settles the ledger, and marks the member as left.
func (m *Manager) Withdraw(name string, signer MemberSigner, pool PoolSigner) (*WithdrawResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	member, ok := m.ledger.Member(name)
	if !ok {
		return nil, fmt.Errorf("withdraw %q: %w", name, ledger.ErrMemberNotFound)
	}
	if !member.Active() {
		return nil, fmt.Errorf("withdraw %q: %w", name, ledger.ErrMemberInactive)
	}

	result := &WithdrawResult{Primary: member.ContributedPrimary, Secondary: member.ContributedSecondary}

	if member.ContributedSecondary > 0 {
		r, err := m.submitSigned(model.TransferIntent{
			From: member.WalletAddress, To: m.poolAddress,
			Amount: member.ContributedSecondary, Asset: model.AssetPoolToken, Memo: "pool token return",
		}, name, signer)
		if err != nil {
			return nil, fmt.Errorf("return pool tokens: %w", err)
		}
		result.Receipts = append(result.Receipts, r)
	}

	if member.ContributedPrimary > 0 {
		r, err := m.submitAuthorized(model.TransferIntent{
			From: m.poolAddress, To: member.WalletAddress,
			Amount: member.ContributedPrimary, Asset: model.AssetPrimary, Memo: "stake withdrawal",
		}, pool)
		if err != nil {
			return nil, fmt.Errorf("withdraw primary: %w", err)
		}
		result.Receipts = append(result.Receipts, r)
	}

	if member.ContributedSecondary > 0 {
		r, err := m.submitAuthorized(model.TransferIntent{
			From: m.poolAddress, To: member.WalletAddress,
			Amount: member.ContributedSecondary, Asset: model.AssetSecondary, Memo: "stake withdrawal",
		}, pool)
		if err != nil {
			return nil, fmt.Errorf("withdraw secondary: %w", err)
		}
		result.Receipts = append(result.Receipts, r)
	}

	if _, _, err := m.ledger.Settle(name); err != nil {
		return nil, fmt.Errorf("settle %q: %w", name, err)
	}
	if err := m.ledger.MarkLeft(name); err != nil {
		return nil, err
	}
	result.Member = *member
	m.persist()
	return result, nil
}

// ContributionEntry is one member's leg of a contribution cycle.
type ContributionEntry struct {
	Name    string
	Address string
	Amount  uint64
	Receipt model.Receipt
}

// ContributionResult reports a contribution cycle run. On mid-cycle
// collaborator failure the entries completed so far are returned alongside
// the error; their credits have already been applied.
type ContributionResult struct {
	Entries []ContributionEntry
	Total   uint64
}

// RunContributionCycle moves the configured contribution amount from every
// active member into the pool, crediting each member's ledger balance as
// their transfer confirms.
func (m *Manager) RunContributionCycle(signer MemberSigner) (*ContributionResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := &ContributionResult{}
	for member := range m.ledger.ActiveMembers() {
		r, err := m.submitSigned(model.TransferIntent{
			From: member.WalletAddress, To: m.poolAddress,
			Amount: m.cfg.ContributionAmount, Asset: model.AssetPrimary, Memo: "pool contribution",
		}, member.Name, signer)
		if err != nil {
			m.persist()
			return result, fmt.Errorf("contribution from %q: %w", member.Name, err)
		}
		if _, _, err := m.ledger.Credit(member.Name, m.cfg.ContributionAmount, 0); err != nil {
			m.persist()
			return result, fmt.Errorf("credit contribution from %q: %w", member.Name, err)
		}
		result.Entries = append(result.Entries, ContributionEntry{
			Name: member.Name, Address: member.WalletAddress,
			Amount: m.cfg.ContributionAmount, Receipt: r,
		})
		result.Total += m.cfg.ContributionAmount
	}
	m.persist()
	return result, nil
}

// PayoutResult reports a payout cycle run.
type PayoutResult struct {
	Recipient  model.Member
	Amount     uint64
	Total      uint64
	CycleReset bool
	Receipt    model.Receipt
}

// RunPayoutCycle selects the next recipient under the rotation-fairness
// rule and pays them the configured fraction of total contributions out of
// pool-held funds.
func (m *Manager) RunPayoutCycle(pool PoolSigner) (*PayoutResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	total := m.ledger.TotalActivePrimary()
	amount := decimal.NewFromUint64(total).Mul(m.cfg.PayoutFraction).Floor().BigInt().Uint64()

	trackedBefore := m.tracker.Len()
	recipient, err := m.selector.SelectRecipient(m.ledger, m.tracker)
	if err != nil {
		return nil, err
	}
	cycleReset := m.tracker.Len() <= trackedBefore

	r, err := m.submitAuthorized(model.TransferIntent{
		From: m.poolAddress, To: recipient.WalletAddress,
		Amount: amount, Asset: model.AssetPrimary, Memo: "pool payout",
	}, pool)
	if err != nil {
		// The selection must not stick when the transfer never happened.
		m.tracker.Unmark(recipient.WalletAddress)
		return nil, fmt.Errorf("payout to %q: %w", recipient.Name, err)
	}

	m.persist()
	return &PayoutResult{
		Recipient:  *recipient,
		Amount:     amount,
		Total:      total,
		CycleReset: cycleReset,
		Receipt:    r,
	}, nil
}

// SwapResult reports a completed buy flow, including how the transaction
// fee was distributed back to stakers.
type SwapResult struct {
	Bought     model.AssetKind
	Amount     uint64
	Cost       uint64
	Fee        uint64
	FeeOutcome *fees.Outcome
	Receipts   []model.Receipt
}

// BuyPrimary sells pool-held primary units for the buyer's secondary units
// at the fixed swap rate, charges the primary-denominated fee, and
// distributes that fee across active stakers.
func (m *Manager) BuyPrimary(buyerAddress string, primaryAmount uint64, signer MemberSigner, pool PoolSigner) (*SwapResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.chain.ValidateAddress(buyerAddress) {
		return nil, fmt.Errorf("buy primary: %w", ledger.ErrInvalidAddress)
	}

	cost := m.secondaryForPrimary(primaryAmount)
	fee := primaryAmount / m.cfg.FeeDivisor
	result := &SwapResult{Bought: model.AssetPrimary, Amount: primaryAmount, Cost: cost, Fee: fee}

	r, err := m.submitSigned(model.TransferIntent{
		From: buyerAddress, To: m.poolAddress,
		Amount: cost, Asset: model.AssetSecondary, Memo: "primary purchase payment",
	}, buyerAddress, signer)
	if err != nil {
		return nil, fmt.Errorf("buy primary payment: %w", err)
	}
	result.Receipts = append(result.Receipts, r)

	r, err = m.submitAuthorized(model.TransferIntent{
		From: m.poolAddress, To: buyerAddress,
		Amount: primaryAmount, Asset: model.AssetPrimary, Memo: "primary purchased",
	}, pool)
	if err != nil {
		return nil, fmt.Errorf("buy primary delivery: %w", err)
	}
	result.Receipts = append(result.Receipts, r)

	r, err = m.submitSigned(model.TransferIntent{
		From: buyerAddress, To: m.poolAddress,
		Amount: fee, Asset: model.AssetPrimary, Memo: "purchase fee",
	}, buyerAddress, signer)
	if err != nil {
		return nil, fmt.Errorf("buy primary fee: %w", err)
	}
	result.Receipts = append(result.Receipts, r)

	outcome, err := m.engine.Distribute(fee)
	if err != nil {
		return nil, fmt.Errorf("distribute purchase fee: %w", err)
	}
	result.FeeOutcome = outcome
	m.persist()
	return result, nil
}

// BuySecondary sells pool-held secondary units for the buyer's primary
// units, charging and distributing the fee the same way.
func (m *Manager) BuySecondary(buyerAddress string, secondaryAmount uint64, signer MemberSigner, pool PoolSigner) (*SwapResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.chain.ValidateAddress(buyerAddress) {
		return nil, fmt.Errorf("buy secondary: %w", ledger.ErrInvalidAddress)
	}

	cost := m.primaryForSecondary(secondaryAmount)
	fee := cost / m.cfg.FeeDivisor
	result := &SwapResult{Bought: model.AssetSecondary, Amount: secondaryAmount, Cost: cost, Fee: fee}

	r, err := m.submitSigned(model.TransferIntent{
		From: buyerAddress, To: m.poolAddress,
		Amount: cost, Asset: model.AssetPrimary, Memo: "secondary purchase payment",
	}, buyerAddress, signer)
	if err != nil {
		return nil, fmt.Errorf("buy secondary payment: %w", err)
	}
	result.Receipts = append(result.Receipts, r)

	r, err = m.submitSigned(model.TransferIntent{
		From: buyerAddress, To: m.poolAddress,
		Amount: fee, Asset: model.AssetPrimary, Memo: "purchase fee",
	}, buyerAddress, signer)
	if err != nil {
		return nil, fmt.Errorf("buy secondary fee: %w", err)
	}
	result.Receipts = append(result.Receipts, r)

	r, err = m.submitAuthorized(model.TransferIntent{
		From: m.poolAddress, To: buyerAddress,
		Amount: secondaryAmount, Asset: model.AssetSecondary, Memo: "secondary purchased",
	}, pool)
	if err != nil {
		return nil, fmt.Errorf("buy secondary delivery: %w", err)
	}
	result.Receipts = append(result.Receipts, r)

	outcome, err := m.engine.Distribute(fee)
	if err != nil {
		return nil, fmt.Errorf("distribute purchase fee: %w", err)
	}
	result.FeeOutcome = outcome
	m.persist()
	return result, nil
}

// DistributeFee splits a fee across active stakers.
func (m *Manager) DistributeFee(amount uint64) (*fees.Outcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	outcome, err := m.engine.Distribute(amount)
	if err != nil {
		return nil, err
	}
	m.persist()
	return outcome, nil
}

func (m *Manager) submitSigned(intent model.TransferIntent, signerID string, signer MemberSigner) (model.Receipt, error) {
	sig, err := signer.Sign(signerID, intent)
	if err != nil {
		return model.Receipt{}, fmt.Errorf("sign: %w", err)
	}
	receipt, err := m.chain.SubmitTransfer(intent, sig)
	if err != nil {
		return model.Receipt{}, err
	}
	if _, err := m.chain.WaitForConfirmation(receipt.TxID, m.cfg.ConfirmationRounds); err != nil {
		return model.Receipt{}, err
	}
	return receipt, nil
}

func (m *Manager) submitAuthorized(intent model.TransferIntent, pool PoolSigner) (model.Receipt, error) {
	sigs, err := pool.Collect(intent)
	if err != nil {
		return model.Receipt{}, fmt.Errorf("collect signatures: %w", err)
	}
	authorized, err := m.policy.Authorize(intent, sigs)
	if err != nil {
		return model.Receipt{}, err
	}
	receipt, err := m.chain.SubmitAuthorized(authorized)
	if err != nil {
		return model.Receipt{}, err
	}
	if _, err := m.chain.WaitForConfirmation(receipt.TxID, m.cfg.ConfirmationRounds); err != nil {
		return model.Receipt{}, err
	}
	return receipt, nil
}

func (m *Manager) secondaryForPrimary(primaryMicro uint64) uint64 {
	return decimal.NewFromUint64(primaryMicro).
		Mul(m.cfg.SwapRate).
		Div(decimal.NewFromInt(microPerPrimary)).
		Floor().BigInt().Uint64()
}

func (m *Manager) primaryForSecondary(secondary uint64) uint64 {
	return decimal.NewFromUint64(secondary).
		Mul(decimal.NewFromInt(microPerPrimary)).
		Div(m.cfg.SwapRate).
		Floor().BigInt().Uint64()
}

func (m *Manager) persist() {
	if err := m.save(); err != nil {
		log.Printf("[ERROR] failed to save pool state: %v", err)
	}
}

func (m *Manager) save() error {
	if m.statePath == "" {
		return nil
	}
	state := m.snapshotLocked()
	return SaveState(m.statePath, &state)
}
