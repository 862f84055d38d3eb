// ABOUTME: scan command: upload a photo and list the recognized cards
// ABOUTME: Optionally pick which cards to keep and save them

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/markalston/tcg-binder/internal/models"
	"github.com/markalston/tcg-binder/internal/tui/picker"
)

var (
	scanPick bool
	scanSave bool
)

var scanCmd = &cobra.Command{
	Use:   "scan [image]",
	Short: "Recognize the cards in a photo",
	Long: `Upload a photo of cards or a binder page and list the recognized cards.

With --pick an interactive list lets you choose which cards to keep and
adjust counts. With --save the kept cards are added to your collection.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path := ""
		if len(args) == 1 {
			path = args[0]
		}
		var choose chooser
		if scanPick {
			choose = pickInteractively
		}
		exitWith(func(ctx context.Context) int { return runScan(ctx, os.Stdout, path, choose, scanSave) })
	},
}

func init() {
	scanCmd.Flags().BoolVar(&scanPick, "pick", false, "Choose which recognized cards to keep")
	scanCmd.Flags().BoolVar(&scanSave, "save", false, "Save the kept cards to your collection")
	rootCmd.AddCommand(scanCmd)
}

// chooser narrows scanned cards down to the ones to keep. ok is false when
// the user cancelled.
type chooser func(cards []models.Card) (kept []models.Card, ok bool, err error)

func pickInteractively(cards []models.Card) ([]models.Card, bool, error) {
	return picker.Run(cards)
}

func runScan(ctx context.Context, w io.Writer, path string, choose chooser, save bool) int {
	a, err := newApp()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	defer a.close()

	if path != "" {
		if err := a.uploads.SelectFile(path); err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			return 2
		}
	}

	if err := a.uploads.ScanFile(ctx); err != nil {
		return a.fail(ctx, w, err)
	}
	if a.uploads.Selected.Get() == nil {
		fmt.Fprintln(w, "Error: no image given")
		return 2
	}

	cards := a.cards.Read.Get()
	if choose != nil {
		kept, ok, err := choose(cards)
		if err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			return 2
		}
		if !ok {
			fmt.Fprintln(w, "Cancelled")
			return 0
		}
		cards = kept
	} else {
		cards = models.SelectedCards(cards)
	}

	if IsJSONOutput() && !save {
		writeJSON(w, cards)
		return 0
	}
	if !IsJSONOutput() {
		printTitle(w, fmt.Sprintf("Recognized %d card(s)", len(cards)))
		fmt.Fprintln(w, formatCardsHuman(cards))
	}

	if save {
		if len(cards) == 0 {
			fmt.Fprintln(w, "Nothing to save")
			return 0
		}
		return saveCards(ctx, w, a, cards)
	}
	return 0
}
