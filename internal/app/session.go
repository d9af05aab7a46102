package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/forgo/hungry/internal/model"
)

// SessionFile is the name of the client state file inside the state dir
const SessionFile = "session.json"

// Session is the client state kept between runs: the signed-in identity and
// the local dark mode flag.
type Session struct {
	Identity *model.Identity `json:"identity,omitempty"`
	DarkMode *bool           `json:"darkMode,omitempty"`
}

// LoadSession reads dir/session.json. A missing file is an empty session.
func LoadSession(dir string) (*Session, error) {
	data, err := os.ReadFile(filepath.Join(dir, SessionFile))
	if errors.Is(err, fs.ErrNotExist) {
		return &Session{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if s.Identity != nil && s.Identity.ID == "" {
		s.Identity = nil
	}
	return &s, nil
}

// Save writes the session to dir/session.json with owner-only permissions
func (s *Session) Save(dir string) error {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	path := filepath.Join(dir, SessionFile)
	if err := os.WriteFile(path+".tmp", data, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return os.Rename(path+".tmp", path)
}

// Capture records the app's current identity and theme into s
func (s *Session) Capture(a *App) {
	s.Identity = a.Identity.Current()
	dark := a.Theme.DarkMode()
	s.DarkMode = &dark
}
