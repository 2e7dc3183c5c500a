package allowlist

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/teich/phone-gate-bridge/domain"
)

// FileSourceImpl implements domain.AllowlistSource against a TOML file of
// [[callers]] entries. The file is re-read on every Resolve call so
// operators can edit it without restarting the service.
type FileSourceImpl struct {
	path string
}

// NewFileSource creates an allowlist source backed by the given file
func NewFileSource(path string) domain.AllowlistSource {
	return &FileSourceImpl{path: path}
}

type callerEntry struct {
	Number  string `toml:"number"`
	Name    string `toml:"name"`
	Enabled *bool  `toml:"enabled"`
	Notes   string `toml:"notes"`
}

type callersFile struct {
	Callers []callerEntry `toml:"callers"`
}

// ParseCallers converts the raw allowlist file into caller entries. Entries
// without a usable number are skipped; a missing enabled flag defaults to
// true. Any decode failure is an error so callers can fail closed.
func ParseCallers(raw []byte) ([]domain.AllowedCaller, error) {
	var file callersFile
	if err := toml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrAllowlistUnreadable, err)
	}

	callers := make([]domain.AllowedCaller, 0, len(file.Callers))
	for _, entry := range file.Callers {
		number := domain.NormalizePhone(entry.Number)
		if number == "" {
			continue
		}
		enabled := true
		if entry.Enabled != nil {
			enabled = *entry.Enabled
		}
		callers = append(callers, domain.AllowedCaller{
			Number:  number,
			Name:    strings.TrimSpace(entry.Name),
			Notes:   strings.TrimSpace(entry.Notes),
			Enabled: enabled,
		})
	}
	return callers, nil
}

// Resolve implements domain.AllowlistSource. Matching is exact against the
// normalized number of enabled entries; unknown and disabled numbers return
// (nil, nil).
func (s *FileSourceImpl) Resolve(ctx context.Context, phone string) (*domain.AllowedCaller, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrAllowlistUnreadable, err)
	}

	callers, err := ParseCallers(raw)
	if err != nil {
		return nil, err
	}

	normalized := domain.NormalizePhone(phone)
	if normalized == "" {
		return nil, nil
	}
	for i := range callers {
		if callers[i].Enabled && callers[i].Number == normalized {
			return &callers[i], nil
		}
	}
	return nil, nil
}
