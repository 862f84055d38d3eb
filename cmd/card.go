// ABOUTME: card command: look up one card by set and number

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var cardCmd = &cobra.Command{
	Use:   "card",
	Short: "Look up cards",
}

var cardGetCmd = &cobra.Command{
	Use:   "get <set-id> <card-number>",
	Short: "Show one card",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		exitWith(func(ctx context.Context) int { return runCardGet(ctx, os.Stdout, args[0], args[1]) })
	},
}

func init() {
	cardCmd.AddCommand(cardGetCmd)
	rootCmd.AddCommand(cardCmd)
}

func runCardGet(ctx context.Context, w io.Writer, setID, cardNumber string) int {
	a, err := newApp()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	defer a.close()

	card, err := a.cards.FetchCard(ctx, cardNumber, setID)
	if err != nil {
		return a.fail(ctx, w, err)
	}

	if IsJSONOutput() {
		writeJSON(w, card)
	} else {
		fmt.Fprintln(w, formatCardHuman(card))
	}
	return 0
}
