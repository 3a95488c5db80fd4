package notifier

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"PoolWarden/internal/fees"
	"PoolWarden/internal/model"
	"PoolWarden/internal/pool"
)

func amount(v uint64) string {
	return humanize.Comma(int64(v))
}

// FormatPayoutReport formats a completed payout cycle.
func FormatPayoutReport(res *pool.PayoutResult) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("💸 <b>Pool payout</b> | %s\n\n", time.Now().Format("2006-01-02")))
	b.WriteString(fmt.Sprintf("Recipient: %s\n", res.Recipient.Name))
	b.WriteString(fmt.Sprintf("Amount: %s µ-units (of %s total staked)\n", amount(res.Amount), amount(res.Total)))
	b.WriteString(fmt.Sprintf("Tx: %s\n", res.Receipt.TxID))
	if res.CycleReset {
		b.WriteString("\n🔄 Everyone has been paid — a new rotation cycle begins.\n")
	}
	return b.String()
}

// FormatContributionReport formats a completed contribution cycle.
func FormatContributionReport(res *pool.ContributionResult) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📥 <b>Contribution cycle</b> | %s\n\n", time.Now().Format("2006-01-02")))
	for _, e := range res.Entries {
		b.WriteString(fmt.Sprintf("  %s: %s µ-units\n", e.Name, amount(e.Amount)))
	}
	b.WriteString(fmt.Sprintf("\nCollected: %s µ-units from %d members\n", amount(res.Total), len(res.Entries)))
	return b.String()
}

// FormatPoolStatus formats the current pool state for display.
func FormatPoolStatus(state *model.PoolState, poolAddress string) string {
	var b strings.Builder
	b.WriteString("📦 <b>Pool status</b>\n\n")
	b.WriteString(fmt.Sprintf("Control address: %s\n", poolAddress))
	b.WriteString(fmt.Sprintf("Contribution day: %d | Payout day: %d\n\n", state.ContributionDay, state.PayoutDay))

	active := 0
	var totalPrimary, totalSecondary uint64
	for _, m := range state.Members {
		if m.Status == model.StatusActive {
			active++
			totalPrimary += m.ContributedPrimary
			totalSecondary += m.ContributedSecondary
		}
	}
	b.WriteString(fmt.Sprintf("Members: %d active of %d\n", active, len(state.Members)))
	b.WriteString(fmt.Sprintf("Staked primary: %s µ-units\n", amount(totalPrimary)))
	b.WriteString(fmt.Sprintf("Staked secondary: %s units\n", amount(totalSecondary)))
	b.WriteString(fmt.Sprintf("Paid this cycle: %d of %d\n", len(state.PaidThisCycle), active))
	b.WriteString(fmt.Sprintf("Updated: %s\n", state.UpdatedAt.Format("2006-01-02 15:04")))
	return b.String()
}

// FormatMemberList formats the member roster.
func FormatMemberList(state *model.PoolState) string {
	var b strings.Builder
	b.WriteString("👥 <b>Members</b>\n\n")
	for _, m := range state.Members {
		marker := "•"
		if m.Status == model.StatusLeft {
			marker = "✗"
		}
		b.WriteString(fmt.Sprintf("%s %s — %s µ-units primary, %s secondary (%s)\n",
			marker, m.Name, amount(m.ContributedPrimary), amount(m.ContributedSecondary), m.Status))
	}
	return b.String()
}

// FormatFeeOutcome formats a fee distribution, rounding loss included.
func FormatFeeOutcome(out *fees.Outcome) string {
	if out.NoActiveContributions {
		return fmt.Sprintf("Fee of %s µ-units not distributed: no active contributions", amount(out.Fee))
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("💰 Fee distributed: %s of %s µ-units across %d stakers",
		amount(out.Distributed), amount(out.Fee), len(out.Shares)))
	if out.Remainder > 0 {
		b.WriteString(fmt.Sprintf(" (%s dropped to rounding)", amount(out.Remainder)))
	}
	return b.String()
}
