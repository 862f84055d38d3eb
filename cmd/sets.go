// ABOUTME: sets command: browse sets by licence and list their cards

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var setsLicence string

var setsCmd = &cobra.Command{
	Use:   "sets",
	Short: "Browse card sets",
}

var setsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sets published under a licence",
	Run: func(cmd *cobra.Command, args []string) {
		exitWith(func(ctx context.Context) int { return runSetsList(ctx, os.Stdout, setsLicence) })
	},
}

var setsCardsCmd = &cobra.Command{
	Use:   "cards <set>",
	Short: "List the cards in a set",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		exitWith(func(ctx context.Context) int { return runSetsCards(ctx, os.Stdout, args[0]) })
	},
}

func init() {
	setsListCmd.Flags().StringVar(&setsLicence, "licence", "pokemon", "Licence to list sets for")
	setsCmd.AddCommand(setsListCmd, setsCardsCmd)
	rootCmd.AddCommand(setsCmd)
}

func runSetsList(ctx context.Context, w io.Writer, licence string) int {
	a, err := newApp()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	defer a.close()

	series, err := a.series.FetchSeries(ctx, licence)
	if err != nil {
		return a.fail(ctx, w, err)
	}

	if IsJSONOutput() {
		writeJSON(w, series)
	} else {
		fmt.Fprintln(w, formatSeriesHuman(series))
	}
	return 0
}

func runSetsCards(ctx context.Context, w io.Writer, serieID string) int {
	a, err := newApp()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	defer a.close()

	cards, err := a.series.FetchCards(ctx, serieID)
	if err != nil {
		return a.fail(ctx, w, err)
	}

	if IsJSONOutput() {
		writeJSON(w, cards)
	} else {
		fmt.Fprintln(w, formatCardsHuman(cards))
	}
	return 0
}
