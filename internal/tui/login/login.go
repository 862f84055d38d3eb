// ABOUTME: Email and password prompt for signing in
// ABOUTME: huh form with field validation shared with non-interactive input

package login

import (
	"errors"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/markalston/tcg-binder/internal/tui/styles"
)

// Credentials are what the user typed
type Credentials struct {
	Email    string
	Password string
}

// Validate checks both fields are present and the email is well formed
func (c Credentials) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Email, validation.Required, is.EmailFormat),
		validation.Field(&c.Password, validation.Required),
	)
}

func validateEmail(s string) error {
	return validation.Validate(strings.TrimSpace(s), validation.Required.Error("email is required"), is.EmailFormat)
}

func validatePassword(s string) error {
	if s == "" {
		return errors.New("password is required")
	}
	return nil
}

func createTheme() *huh.Theme {
	t := huh.ThemeBase()
	t.Group.Title = lipgloss.NewStyle().
		Foreground(styles.Primary).
		Bold(true).
		MarginBottom(1)
	t.Focused.Base = lipgloss.NewStyle().
		PaddingLeft(1).
		BorderStyle(lipgloss.ThickBorder()).
		BorderLeft(true).
		BorderForeground(styles.Primary)
	t.Focused.Title = lipgloss.NewStyle().
		Foreground(styles.Accent).
		Bold(true)
	t.Focused.ErrorMessage = lipgloss.NewStyle().
		Foreground(styles.Danger)
	return t
}

// NewForm builds the sign-in form writing into c
func NewForm(c *Credentials) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Placeholder("you@example.com").
				Value(&c.Email).
				Validate(validateEmail),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&c.Password).
				Validate(validatePassword),
		).Title("Sign in to tcg-binder"),
	).WithTheme(createTheme())
}

// Prompt runs the form. email pre-fills the first field.
func Prompt(email string) (Credentials, error) {
	c := Credentials{Email: email}
	if err := NewForm(&c).Run(); err != nil {
		return Credentials{}, err
	}
	c.Email = strings.TrimSpace(c.Email)
	return c, nil
}
