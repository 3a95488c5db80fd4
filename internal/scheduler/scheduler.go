// Package scheduler fires contribution and payout cycles on their
// configured days of the month and handles operator commands.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"PoolWarden/internal/cycle"
	"PoolWarden/internal/notifier"
	"PoolWarden/internal/pool"
	"PoolWarden/internal/recorder"
)

// Scheduler manages the cron tasks around the pool manager.
type Scheduler struct {
	Cron       *cron.Cron
	Pool       *pool.Manager
	Notifier   *notifier.Telegram
	Recorder   recorder.Recorder
	Members    pool.MemberSigner
	Signatures pool.PoolSigner
	Ctx        context.Context

	contributionDay int
	payoutDay       int
}

// NewScheduler creates a scheduler wired to the pool and its collaborators.
func NewScheduler(ctx context.Context, pm *pool.Manager, tn *notifier.Telegram, rec recorder.Recorder, members pool.MemberSigner, signatures pool.PoolSigner) *Scheduler {
	return &Scheduler{
		Cron:       cron.New(cron.WithSeconds()),
		Pool:       pm,
		Notifier:   tn,
		Recorder:   rec,
		Members:    members,
		Signatures: signatures,
		Ctx:        ctx,
	}
}

// RegisterAll schedules the contribution and payout cycles. A day-of-month
// of 31 only fires in 31-day months, mirroring the trigger-match rule.
func (s *Scheduler) RegisterAll(contributionDay, payoutDay, hour int) error {
	s.contributionDay = contributionDay
	s.payoutDay = payoutDay

	spec := fmt.Sprintf("0 0 %d %d * *", hour, contributionDay)
	if _, err := s.Cron.AddFunc(spec, s.contributionTask); err != nil {
		return fmt.Errorf("register contribution task: %w", err)
	}
	spec = fmt.Sprintf("0 0 %d %d * *", hour, payoutDay)
	if _, err := s.Cron.AddFunc(spec, s.payoutTask); err != nil {
		return fmt.Errorf("register payout task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}

func (s *Scheduler) contributionTask() {
	log.Println("[INFO] running contribution cycle")
	res, err := s.Pool.RunContributionCycle(s.Members)
	for _, e := range res.Entries {
		if recErr := s.Recorder.RecordContribution(&recorder.ContributionEvent{
			Member: e.Name, Address: e.Address, Amount: e.Amount, TxID: e.Receipt.TxID,
		}); recErr != nil {
			log.Printf("[ERROR] record contribution: %v", recErr)
		}
	}
	if err != nil {
		log.Printf("[ERROR] contribution cycle: %v", err)
		s.trySend(fmt.Sprintf("❌ Contribution cycle failed: %v", err))
		return
	}
	s.trySend(notifier.FormatContributionReport(res))
}

func (s *Scheduler) payoutTask() {
	log.Println("[INFO] running payout cycle")
	res, err := s.Pool.RunPayoutCycle(s.Signatures)
	if err != nil {
		log.Printf("[ERROR] payout cycle: %v", err)
		s.trySend(fmt.Sprintf("❌ Payout cycle failed: %v", err))
		return
	}
	if err := s.Recorder.RecordPayout(&recorder.PayoutEvent{
		Recipient: res.Recipient.Name, Address: res.Recipient.WalletAddress,
		Amount: res.Amount, Total: res.Total, CycleReset: res.CycleReset,
		TxID: res.Receipt.TxID,
	}); err != nil {
		log.Printf("[ERROR] record payout: %v", err)
	}
	s.trySend(notifier.FormatPayoutReport(res))
}

// Simulate walks monthsAhead months of occurrences from the start date and
// fires whichever cycles land on their configured day. Occurrences clamped
// to a shorter month no longer match the configured day and are skipped.
func (s *Scheduler) Simulate(start time.Time, monthsAhead int) {
	for i := 0; i < monthsAhead; i++ {
		contribution := cycle.NextOccurrence(start, s.contributionDay, i)
		if cycle.MatchesTrigger(contribution, s.contributionDay) {
			log.Printf("[INFO] simulation %d/%d: contribution on %s", i+1, monthsAhead, contribution.Format("2006-01-02"))
			s.contributionTask()
		}
		payout := cycle.NextOccurrence(start, s.payoutDay, i)
		if cycle.MatchesTrigger(payout, s.payoutDay) {
			log.Printf("[INFO] simulation %d/%d: payout on %s", i+1, monthsAhead, payout.Format("2006-01-02"))
			s.payoutTask()
		}
	}
}

// HandleCommand processes an operator command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return ""
	}
	switch fields[0] {
	case "/pool":
		state := s.Pool.Snapshot()
		return notifier.FormatPoolStatus(&state, s.Pool.PoolAddress())
	case "/members":
		state := s.Pool.Snapshot()
		return notifier.FormatMemberList(&state)
	case "/contribute":
		s.contributionTask()
		return ""
	case "/payout":
		s.payoutTask()
		return ""
	case "/enroll":
		if len(fields) != 3 {
			return "Usage: /enroll <name> <address>"
		}
		return s.enroll(fields[1], fields[2])
	case "/stake":
		if len(fields) != 3 {
			return "Usage: /stake <name> <primary-amount>"
		}
		return s.stake(fields[1], fields[2])
	case "/withdraw":
		if len(fields) != 2 {
			return "Usage: /withdraw <name>"
		}
		return s.withdraw(fields[1])
	case "/buy":
		if len(fields) != 4 || (fields[1] != "primary" && fields[1] != "secondary") {
			return "Usage: /buy primary|secondary <address> <amount>"
		}
		return s.buy(fields[1], fields[2], fields[3])
	default:
		return "Commands:\n• /pool\n• /members\n• /enroll <name> <address>\n• /stake <name> <amount>\n• /withdraw <name>\n• /buy primary|secondary <address> <amount>\n• /contribute\n• /payout"
	}
}

func (s *Scheduler) enroll(name, address string) string {
	member, err := s.Pool.Enroll(name, address)
	if err != nil {
		return fmt.Sprintf("Enroll failed: %v", err)
	}
	if err := s.Recorder.RecordMembership(&recorder.MembershipEvent{
		Member: member.Name, Address: member.WalletAddress, EventType: "ENROLLED",
	}); err != nil {
		log.Printf("[ERROR] record membership: %v", err)
	}
	return fmt.Sprintf("Enrolled %s.", member.Name)
}

func (s *Scheduler) stake(name, amountStr string) string {
	amount, err := strconv.ParseUint(amountStr, 10, 64)
	if err != nil {
		return fmt.Sprintf("Invalid amount %q", amountStr)
	}
	res, err := s.Pool.Stake(name, amount, s.Members, s.Signatures)
	if err != nil {
		return fmt.Sprintf("Stake failed: %v", err)
	}
	return fmt.Sprintf("Staked %d primary and %d secondary for %s; %d pool tokens granted.",
		res.Primary, res.Secondary, res.Member.Name, res.Tokens)
}

func (s *Scheduler) withdraw(name string) string {
	res, err := s.Pool.Withdraw(name, s.Members, s.Signatures)
	if err != nil {
		return fmt.Sprintf("Withdraw failed: %v", err)
	}
	if err := s.Recorder.RecordMembership(&recorder.MembershipEvent{
		Member: res.Member.Name, Address: res.Member.WalletAddress, EventType: "LEFT",
	}); err != nil {
		log.Printf("[ERROR] record membership: %v", err)
	}
	return fmt.Sprintf("%s withdrew %d primary and %d secondary and left the pool.",
		res.Member.Name, res.Primary, res.Secondary)
}

func (s *Scheduler) buy(kind, address, amountStr string) string {
	amount, err := strconv.ParseUint(amountStr, 10, 64)
	if err != nil {
		return fmt.Sprintf("Invalid amount %q", amountStr)
	}
	var res *pool.SwapResult
	if kind == "primary" {
		res, err = s.Pool.BuyPrimary(address, amount, s.Members, s.Signatures)
	} else {
		res, err = s.Pool.BuySecondary(address, amount, s.Members, s.Signatures)
	}
	if err != nil {
		return fmt.Sprintf("Buy failed: %v", err)
	}
	if recErr := s.Recorder.RecordSwap(&recorder.SwapEvent{
		Bought: string(res.Bought), Buyer: address,
		Amount: res.Amount, Cost: res.Cost, Fee: res.Fee,
	}); recErr != nil {
		log.Printf("[ERROR] record swap: %v", recErr)
	}
	if recErr := s.Recorder.RecordFeeDistribution(&recorder.FeeEvent{
		Fee: res.FeeOutcome.Fee, Distributed: res.FeeOutcome.Distributed,
		Remainder: res.FeeOutcome.Remainder, ShareCount: len(res.FeeOutcome.Shares),
		NoActive: res.FeeOutcome.NoActiveContributions,
	}); recErr != nil {
		log.Printf("[ERROR] record fee distribution: %v", recErr)
	}
	return fmt.Sprintf("Bought %d %s for %d.\n%s", res.Amount, kind, res.Cost,
		notifier.FormatFeeOutcome(res.FeeOutcome))
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
