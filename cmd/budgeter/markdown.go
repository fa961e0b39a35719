package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/bobmcallan/budgeter/internal/models"
	"github.com/charmbracelet/glamour"
)

// printMarkdown writes md to w, rendered for the terminal unless raw is set.
func printMarkdown(w io.Writer, md string, raw bool) error {
	if raw {
		_, err := io.WriteString(w, md)
		return err
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err != nil {
		return fmt.Errorf("creating markdown renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return fmt.Errorf("rendering markdown: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}

// importMarkdown formats an import report: summary, recorded transactions and row issues.
func importMarkdown(result *models.ImportResult) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# Import: %s\n\n", result.FileName))
	sb.WriteString(fmt.Sprintf("**Rows read:** %d\n", result.RowsRead))
	sb.WriteString(fmt.Sprintf("**Imported:** %d\n", result.Imported))
	sb.WriteString(fmt.Sprintf("**Skipped:** %d\n", result.SkippedRows()))
	sb.WriteString(fmt.Sprintf("**Duration:** %s\n\n", result.FinishedAt.Sub(result.StartedAt).Round(time.Millisecond)))

	if len(result.Transactions) > 0 {
		sb.WriteString("## Transactions\n\n")
		sb.WriteString("| Type | Name | Units | Price | Fees | Amount |\n")
		sb.WriteString("|------|------|-------|-------|------|--------|\n")
		for _, tx := range result.Transactions {
			fees := models.NullDecimalString(tx.Fees)
			if fees == "" {
				fees = "-"
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %s |\n",
				tx.TransactionType, cell(tx.Name), tx.Units.String(),
				models.FormatAmount(tx.PricePerUnit, tx.Currency), fees,
				tx.Amount.String(),
			))
		}
		sb.WriteString("\n")
	}

	if len(result.Issues) > 0 {
		sb.WriteString("## Issues\n\n")
		sb.WriteString("| Row | Kind | Skipped | Message |\n")
		sb.WriteString("|-----|------|---------|---------|\n")
		for _, issue := range result.Issues {
			skipped := "no"
			if issue.Skipped {
				skipped = "yes"
			}
			sb.WriteString(fmt.Sprintf("| %d | %s | %s | %s |\n", issue.Row, issue.Kind, skipped, cell(issue.Message)))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// positionsMarkdown formats one page of investment positions.
func positionsMarkdown(page models.Page[*models.Investment]) string {
	var sb strings.Builder

	sb.WriteString("# Positions\n\n")
	if len(page.Items) == 0 {
		sb.WriteString("No positions recorded.\n")
		return sb.String()
	}

	sb.WriteString("| Ticker | Name | Units | Cost Basis | Total Cost | Realized Gain |\n")
	sb.WriteString("|--------|------|-------|------------|------------|---------------|\n")
	for _, inv := range page.Items {
		ticker, name := inv.AssetID, ""
		if inv.Asset != nil {
			ticker, name = inv.Asset.Ticker, inv.Asset.Name
		}
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %s |\n",
			ticker, cell(name), inv.TotalUnits.String(),
			models.FormatAmount(inv.CostBasis, inv.BaseCurrency),
			models.FormatAmount(inv.TotalCost, inv.BaseCurrency),
			models.FormatAmount(inv.RealizedGainLoss, inv.BaseCurrency),
		))
	}
	sb.WriteString(fmt.Sprintf("\nPage %d of %d (%d positions)\n", page.Page+1, max(page.TotalPages, 1), page.TotalItems))

	return sb.String()
}

// cell escapes pipes so free text cannot break a table row.
func cell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
