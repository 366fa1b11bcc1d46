package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/vadiminshakov/walletctl/internal/domain"
	"github.com/vadiminshakov/walletctl/internal/services/history"
)

var (
	subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	special   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	danger    = lipgloss.AdaptiveColor{Light: "#FF5F87", Dark: "#FF5F87"}

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(highlight).
			Padding(0, 2).
			Bold(true).
			MarginBottom(1)

	sectionStyle = lipgloss.NewStyle().
			Foreground(special).
			Bold(true).
			MarginTop(1)

	dimStyle = lipgloss.NewStyle().Foreground(subtle)

	errorStyle = lipgloss.NewStyle().Foreground(danger).Bold(true)

	amountInStyle  = lipgloss.NewStyle().Foreground(special)
	amountOutStyle = lipgloss.NewStyle().Foreground(danger)
)

// formatAmount renders an amount with the display precision the backend
// uses: 8 decimal places, 6 for TRX.
func formatAmount(amount decimal.Decimal, asset string) string {
	places := int32(8)
	if asset == "TRX" {
		places = 6
	}
	return amount.StringFixed(places)
}

func renderBalances(balances domain.Balances) string {
	if len(balances) == 0 {
		return dimStyle.Render("no balances yet")
	}

	var b strings.Builder
	for _, asset := range []string{"USDT", "TRX"} {
		if amount, ok := balances[asset]; ok {
			fmt.Fprintf(&b, "%-6s %s\n", asset, formatAmount(amount, asset))
		}
	}
	for asset, amount := range balances {
		if asset == "USDT" || asset == "TRX" {
			continue
		}
		fmt.Fprintf(&b, "%-6s %s\n", asset, formatAmount(amount, asset))
	}
	return b.String()
}

func renderHistoryPage(result *domain.PageResult) string {
	if result == nil || len(result.Records) == 0 {
		return dimStyle.Render("no transactions")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%-20s %-12s %18s %-10s %14s  %s\n",
		"DATE", "TYPE", "AMOUNT", "STATUS", "FEE", "MEMO")
	for _, tx := range result.Records {
		amount := formatAmount(tx.Amount, tx.Asset) + " " + tx.Asset
		if tx.Type == domain.TransactionWithdrawal {
			amount = amountOutStyle.Render("-" + amount)
		} else {
			amount = amountInStyle.Render("+" + amount)
		}
		fmt.Fprintf(&b, "%-20s %-12s %18s %-10s %14s  %s\n",
			tx.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			tx.Type.Title(),
			amount,
			tx.Status.Title(),
			formatAmount(tx.FeeAmount, tx.Asset),
			truncate(tx.Memo, 20))
	}

	p := history.Paginate(result.Total, result.Query.Skip, result.Query.Limit)
	if p.TotalPages > 1 {
		fmt.Fprintf(&b, "\n%s\n", dimStyle.Render(fmt.Sprintf("page %d of %d (%d records)",
			p.CurrentPage, p.TotalPages, result.Total)))
	}

	return b.String()
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
