// ABOUTME: Persists the signed-in identity between CLI invocations
// ABOUTME: YAML file with owner-only permissions in the config directory

package identity

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/markalston/tcg-binder/internal/session"
)

type tokenFile struct {
	UID          string    `yaml:"uid"`
	Email        string    `yaml:"email"`
	IDToken      string    `yaml:"id_token"`
	RefreshToken string    `yaml:"refresh_token"`
	ExpiresAt    time.Time `yaml:"expires_at"`
}

// loadIdentity returns nil without error when no token file exists
func loadIdentity(path string) (*session.Identity, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	var tf tokenFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("failed to parse token file %s: %w", path, err)
	}
	if tf.IDToken == "" && tf.RefreshToken == "" {
		return nil, nil
	}

	return &session.Identity{
		UID:          tf.UID,
		Email:        tf.Email,
		AccessToken:  tf.IDToken,
		RefreshToken: tf.RefreshToken,
		ExpiresAt:    tf.ExpiresAt,
	}, nil
}

func saveIdentity(path string, u *session.Identity) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	data, err := yaml.Marshal(tokenFile{
		UID:          u.UID,
		Email:        u.Email,
		IDToken:      u.AccessToken,
		RefreshToken: u.RefreshToken,
		ExpiresAt:    u.ExpiresAt.UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to encode token file: %w", err)
	}

	return os.WriteFile(path, data, 0600)
}

func removeIdentity(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove token file: %w", err)
	}
	return nil
}
