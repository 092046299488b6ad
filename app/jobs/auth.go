package jobs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/bytedance/sonic"
)

const (
	refreshTokenFile = "refresh_token"
	userFile         = "user.json"
)

// Auth performs the initial password login and persists the refresh
// token for every later run.
func (r *Runner) Auth(ctx context.Context, username, password string) error {
	token, err := r.client.Login(ctx, username, password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	path := filepath.Join(r.root, refreshTokenFile)
	if err := os.WriteFile(path, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	fmt.Fprintf(r.out, "Logged in as user %d, refresh token saved to %s\n", r.client.UserID(), path)
	return nil
}

// EnsureAuth loads the stored refresh token and exchanges it for an
// access token. Every remote job except auth calls this first. The
// authenticated user's id is recorded in user.json on first run.
func (r *Runner) EnsureAuth(ctx context.Context) error {
	path := filepath.Join(r.root, refreshTokenFile)

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("no refresh token found, run the auth command first")
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	r.client.SetRefreshToken(strings.TrimSpace(string(data)))

	if err := r.client.Authenticate(ctx); err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}

	slog.Info("Authenticated", "user", r.client.UserID())

	return r.writeUserFile()
}

func (r *Runner) writeUserFile() error {
	path := filepath.Join(r.root, userFile)
	if _, err := os.Lstat(path); err == nil {
		return nil
	}

	data, err := sonic.MarshalIndent(struct {
		ID int64 `json:"id"`
	}{r.client.UserID()}, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal user info: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}
