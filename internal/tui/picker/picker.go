// ABOUTME: Interactive picker for the cards recognized by a scan
// ABOUTME: Toggle which cards to keep and adjust counts before saving

package picker

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/markalston/tcg-binder/internal/models"
	"github.com/markalston/tcg-binder/internal/tui/styles"
)

// ConfirmedMsg is sent when the user accepts the selection
type ConfirmedMsg struct {
	Cards []models.Card
}

// CancelledMsg is sent when the user backs out
type CancelledMsg struct{}

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Toggle  key.Binding
	All     key.Binding
	Inc     key.Binding
	Dec     key.Binding
	Version key.Binding
	Confirm key.Binding
	Cancel  key.Binding
}

var keys = keyMap{
	Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Toggle:  key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space", "toggle")),
	All:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "all/none")),
	Inc:     key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "count up")),
	Dec:     key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "count down")),
	Version: key.NewBinding(key.WithKeys("v", "tab"), key.WithHelp("v", "next version")),
	Confirm: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save")),
	Cancel:  key.NewBinding(key.WithKeys("esc", "q", "ctrl+c"), key.WithHelp("esc", "cancel")),
}

// Picker is the scanned-card selection component
type Picker struct {
	cards     []models.Card
	cursor    int
	done      bool
	cancelled bool
	width     int
}

// New creates a picker over a copy of cards. Cards keep their selected flag
// and start on their first version.
func New(cards []models.Card) *Picker {
	cp := make([]models.Card, len(cards))
	copy(cp, cards)
	for i := range cp {
		if cp[i].Count < 1 {
			cp[i].Count = 1
		}
		cp[i].SelectDefaultVersion()
	}
	return &Picker{cards: cp}
}

// Init implements tea.Model
func (p *Picker) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (p *Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.width = msg.Width
		return p, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if p.cursor > 0 {
				p.cursor--
			}
		case key.Matches(msg, keys.Down):
			if p.cursor < len(p.cards)-1 {
				p.cursor++
			}
		case key.Matches(msg, keys.Toggle):
			if len(p.cards) > 0 {
				p.cards[p.cursor].Selected = !p.cards[p.cursor].Selected
			}
		case key.Matches(msg, keys.All):
			p.toggleAll()
		case key.Matches(msg, keys.Inc):
			if len(p.cards) > 0 {
				p.cards[p.cursor].Count++
			}
		case key.Matches(msg, keys.Dec):
			if len(p.cards) > 0 && p.cards[p.cursor].Count > 1 {
				p.cards[p.cursor].Count--
			}
		case key.Matches(msg, keys.Version):
			if len(p.cards) > 0 {
				p.cards[p.cursor].CycleVersion()
			}
		case key.Matches(msg, keys.Confirm):
			p.done = true
			selected := p.Selected()
			return p, tea.Sequence(
				func() tea.Msg { return ConfirmedMsg{Cards: selected} },
				tea.Quit,
			)
		case key.Matches(msg, keys.Cancel):
			p.cancelled = true
			return p, tea.Sequence(
				func() tea.Msg { return CancelledMsg{} },
				tea.Quit,
			)
		}
	}

	return p, nil
}

// toggleAll selects everything unless everything is already selected
func (p *Picker) toggleAll() {
	all := true
	for _, c := range p.cards {
		if !c.Selected {
			all = false
			break
		}
	}
	for i := range p.cards {
		p.cards[i].Selected = !all
	}
}

// View implements tea.Model
func (p *Picker) View() string {
	var b strings.Builder

	b.WriteString(styles.Title.Render(fmt.Sprintf("Scanned cards (%d)", len(p.cards))))
	b.WriteString("\n")

	if len(p.cards) == 0 {
		b.WriteString(styles.Subtitle.Render("No cards were recognized."))
		b.WriteString("\n")
	}

	for i, c := range p.cards {
		cursor := "  "
		if i == p.cursor {
			cursor = styles.Cursor.Render("> ")
		}
		check := "[ ]"
		if c.Selected {
			check = styles.StatusOK.Render("[x]")
		}
		name := c.CardName
		if name == "" {
			name = styles.Subtitle.Render("(unnamed)")
		}
		line := fmt.Sprintf("%s%s %-8s %-10s %s ×%d", cursor, check, c.SetID, c.CardNumber, name, c.Count)
		if n := len(c.Versions); n > 1 {
			line += styles.Subtitle.Render(fmt.Sprintf("  version %d/%d", versionIndex(c)+1, n))
		}
		if ref := c.Version().Ref; ref != "" {
			line += styles.Subtitle.Render("  " + ref)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString(styles.Help.Render(helpLine()))
	return lipgloss.NewStyle().MaxWidth(p.width).Render(b.String())
}

func helpLine() string {
	bindings := []key.Binding{keys.Up, keys.Down, keys.Toggle, keys.All, keys.Inc, keys.Dec, keys.Version, keys.Confirm, keys.Cancel}
	parts := make([]string, 0, len(bindings))
	for _, kb := range bindings {
		h := kb.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, " • ")
}

func versionIndex(c models.Card) int {
	if c.SelectedVersion == nil {
		return 0
	}
	for i, v := range c.Versions {
		if v.Ref == c.SelectedVersion.Ref && v.ID == c.SelectedVersion.ID {
			return i
		}
	}
	return 0
}

// Selected returns the cards flagged for saving, in scan order
func (p *Picker) Selected() []models.Card {
	return models.SelectedCards(p.cards)
}

// Cancelled reports whether the user backed out
func (p *Picker) Cancelled() bool {
	return p.cancelled
}

// Run shows the picker and returns the chosen cards. ok is false when the
// user cancelled.
func Run(cards []models.Card, opts ...tea.ProgramOption) (selected []models.Card, ok bool, err error) {
	p := New(cards)
	final, err := tea.NewProgram(p, opts...).Run()
	if err != nil {
		return nil, false, err
	}
	fp := final.(*Picker)
	if fp.Cancelled() || !fp.done {
		return nil, false, nil
	}
	return fp.Selected(), true, nil
}
