package notifier

import (
	"fmt"
	"html"
	"strings"

	"LootSpinner/internal/model"
)

// Banner is printed at startup and before the final report.
const Banner = "==================================================\n" +
	"      Auto Spin Box Lootify - Airdrop Insider     \n" +
	"==================================================\n"

// FormatInitialAccount formats the account snapshot shown at startup.
func FormatInitialAccount(wallet model.Wallet, a *model.AccountSnapshot) string {
	if a == nil {
		return "Could not retrieve initial account info. Continuing anyway...\n"
	}
	autoSell := "Disabled"
	if a.AutoSell {
		autoSell = "Enabled"
	}
	var b strings.Builder
	b.WriteString("Account information:\n")
	fmt.Fprintf(&b, "- Wallet: %s\n", wallet)
	fmt.Fprintf(&b, "- Jewels balance: %s\n", model.FormatJewels(a.Jewels))
	fmt.Fprintf(&b, "- Total spent: %s\n", model.FormatNumber(a.TotalSpent))
	fmt.Fprintf(&b, "- Multiplier: %s\n", model.FormatNumber(a.Multiplier))
	fmt.Fprintf(&b, "- Auto sell: %s\n", autoSell)
	return b.String()
}

// FormatAccountUpdate formats a periodic account poll.
func FormatAccountUpdate(a *model.AccountSnapshot) string {
	var b strings.Builder
	b.WriteString("\nAccount update:\n")
	fmt.Fprintf(&b, "- Current jewels: %s\n", model.FormatJewels(a.Jewels))
	fmt.Fprintf(&b, "- Total spent: %s\n", model.FormatNumber(a.TotalSpent))
	fmt.Fprintf(&b, "- Season level: %d\n", a.SeasonLevel)
	fmt.Fprintf(&b, "- Season XP: %s\n", model.FormatNumber(a.SeasonXP))
	return b.String()
}

// FormatItems lists the items of one successful spin.
func FormatItems(items []model.SpinItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "✅ Spin successful! Received %d items.\n", len(items))
	if len(items) == 0 {
		return b.String()
	}
	b.WriteString("Items received:\n")
	for i, it := range items {
		fmt.Fprintf(&b, "  %d. %s (%s) - Value: %s - %s\n",
			i+1, it.Name, it.Rarity, model.FormatNumber(it.Price), it.Disposition)
	}
	return b.String()
}

// FormatReport formats the final console report.
func FormatReport(rep *model.Report) string {
	s := &rep.Stats
	var b strings.Builder
	b.WriteString(Banner)
	b.WriteString("Spin Bot Report\n")
	fmt.Fprintf(&b, "Total spin attempts: %d\n", s.SpinCount)
	fmt.Fprintf(&b, "Successful spins: %d\n", s.SuccessfulSpins)
	fmt.Fprintf(&b, "Failed spins: %d\n", s.Failed())
	fmt.Fprintf(&b, "Total items received: %d\n", s.TotalItems)
	fmt.Fprintf(&b, "Rarity breakdown: %s\n", s.RarityBreakdown())
	fmt.Fprintf(&b, "Total spent: %s\n", model.FormatNumber(s.TotalSpent))
	fmt.Fprintf(&b, "Total earned (from auto-sell): %s\n", model.FormatNumber(s.TotalEarned))
	fmt.Fprintf(&b, "Profit/Loss: %s\n", model.FormatNumber(s.Profit()))
	return b.String()
}

// FormatFinalAccount formats the account snapshot taken after the loop.
func FormatFinalAccount(a *model.AccountSnapshot) string {
	if a == nil {
		return ""
	}
	return fmt.Sprintf("Final jewels balance: %s\nSeason progress: Level %d (%s XP)\n",
		model.FormatJewels(a.Jewels), a.SeasonLevel, model.FormatNumber(a.SeasonXP))
}

// FormatTelegramReport formats the final report as a Telegram HTML message.
func FormatTelegramReport(rep *model.Report) string {
	s := &rep.Stats
	var b strings.Builder
	fmt.Fprintf(&b, "🎰 <b>Spin Bot Report</b> | %s\n\n", rep.FinishedAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "Wallet: <code>%s</code>\n", html.EscapeString(string(rep.Wallet)))
	fmt.Fprintf(&b, "Stop reason: %s\n\n", rep.StopReason)
	fmt.Fprintf(&b, "Spins: %d (✅ %d | ❌ %d)\n", s.SpinCount, s.SuccessfulSpins, s.Failed())
	fmt.Fprintf(&b, "Items: %d\n", s.TotalItems)
	for _, r := range model.Rarities {
		fmt.Fprintf(&b, "  %s: %d\n", r, s.RarityCount[r])
	}
	fmt.Fprintf(&b, "\n💰 Spent: %s | Earned: %s | P/L: %s\n",
		model.FormatNumber(s.TotalSpent), model.FormatNumber(s.TotalEarned), model.FormatNumber(s.Profit()))
	if rep.FinalAccount != nil {
		fmt.Fprintf(&b, "💎 Jewels: %s (season level %d)\n", model.FormatJewels(rep.FinalAccount.Jewels), rep.FinalAccount.SeasonLevel)
	}
	return b.String()
}
