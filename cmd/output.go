// ABOUTME: Human-readable rendering of cards and series
// ABOUTME: Column layout shared by card, scan, and sets commands

package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/markalston/tcg-binder/internal/models"
	"github.com/markalston/tcg-binder/internal/tui/styles"
)

// formatCardsHuman lays cards out one per line
func formatCardsHuman(cards []models.Card) string {
	if len(cards) == 0 {
		return "No cards"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%-3s %-8s %-10s %-5s %-24s %s\n", "", "SET", "NUMBER", "COUNT", "NAME", "REF")
	for _, c := range cards {
		mark := ""
		if c.Selected {
			mark = "*"
		}
		line := fmt.Sprintf("%-3s %-8s %-10s %-5d %-24s %s", mark, c.SetID, c.CardNumber, c.Count, c.CardName, c.Entry().Ref)
		b.WriteString(strings.TrimRight(line, " ") + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// formatCardHuman shows one card with its variants and versions
func formatCardHuman(c *models.Card) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Name:    %s\n", c.CardName)
	fmt.Fprintf(&b, "Set:     %s\n", c.SetID)
	fmt.Fprintf(&b, "Number:  %s\n", c.CardNumber)
	if c.Licence != "" {
		fmt.Fprintf(&b, "Licence: %s\n", c.Licence)
	}
	if c.Image != "" {
		fmt.Fprintf(&b, "Image:   %s\n", c.Image)
	}
	if c.Ref != "" {
		fmt.Fprintf(&b, "Ref:     %s\n", c.Ref)
	}
	for _, v := range c.Variants {
		fmt.Fprintf(&b, "Variant: %s (product %s)\n", v.Number, v.ProductID)
	}
	if len(c.Versions) > 0 {
		fmt.Fprintf(&b, "Versions: %d\n", len(c.Versions))
		for _, v := range c.Versions {
			fmt.Fprintf(&b, "  %s\n", v.Ref)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatSeriesHuman(series []models.Series) string {
	if len(series) == 0 {
		return "No sets"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%-24s %-10s %-12s %s\n", "ID", "SET", "DATE", "NAME")
	for _, s := range series {
		fmt.Fprintf(&b, "%-24s %-10s %-12s %s\n", s.ID, s.SetID, s.Date, s.Name)
	}
	return strings.TrimRight(b.String(), "\n")
}

func printTitle(w io.Writer, title string) {
	fmt.Fprintln(w, styles.Title.Render(title))
}
