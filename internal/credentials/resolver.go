// File: internal/credentials/resolver.go
package credentials

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/panelops/teller/api/schemas"
)

// ErrNotFound is returned when no admin identity exists for a panel URL.
var ErrNotFound = errors.New("admin credentials not found")

// entry mirrors one record of the credential file.
type entry struct {
	WebURL   string `json:"weburl"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// Resolver maps panel base URLs to administrator identities. The
// mapping is loaded once at construction and is read-only afterwards,
// so lookups are safe for concurrent use.
type Resolver struct {
	byURL  map[string]schemas.AdminIdentity
	logger *zap.Logger
}

var _ schemas.CredentialResolver = (*Resolver)(nil)

// NewResolver loads the credential file: a JSON array of
// {weburl, username, password} records. URL keys are whitespace-trimmed.
func NewResolver(path string, logger *zap.Logger) (*Resolver, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read credential file %q: %w", path, err)
	}

	var entries []entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse credential file %q: %w", path, err)
	}

	r := &Resolver{
		byURL:  make(map[string]schemas.AdminIdentity, len(entries)),
		logger: logger.Named("credentials"),
	}
	for _, e := range entries {
		key := strings.TrimSpace(e.WebURL)
		if key == "" {
			r.logger.Warn("Skipping credential entry with empty weburl.")
			continue
		}
		r.byURL[key] = schemas.AdminIdentity{Username: e.Username, Password: e.Password}
	}

	r.logger.Info("Credential store loaded.", zap.Int("entries", len(r.byURL)))
	return r, nil
}

// Resolve performs an exact-match lookup on the trimmed panel URL.
func (r *Resolver) Resolve(panelURL string) (schemas.AdminIdentity, error) {
	id, ok := r.byURL[strings.TrimSpace(panelURL)]
	if !ok {
		return schemas.AdminIdentity{}, fmt.Errorf("%w for URL: %s", ErrNotFound, panelURL)
	}
	return id, nil
}
