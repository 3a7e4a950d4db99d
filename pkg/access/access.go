// Package access implements the allow list consulted before a wizard may start.
package access

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strconv"
	"sync"

	"github.com/aretw0/architect/pkg/adapters/file"
)

// AllowAll authorizes everyone. Intended for local development.
type AllowAll struct{}

func (AllowAll) IsAuthorized(ctx context.Context, userID string) bool { return true }

// IDs is a list of user IDs that accepts JSON numbers as well as strings,
// since chat platforms commonly hand out numeric IDs.
type IDs []string

// UnmarshalJSON decodes numbers and strings alike.
func (ids *IDs) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(IDs, 0, len(raw))
	for _, item := range raw {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			out = append(out, s)
			continue
		}
		var n json.Number
		if err := json.Unmarshal(item, &n); err != nil {
			return fmt.Errorf("id %s must be a number or a string", item)
		}
		out = append(out, n.String())
	}
	*ids = out
	return nil
}

// MarshalJSON writes numeric IDs as numbers so the file stays compatible.
// Only canonical integers qualify: "007" or "+7" stay strings, otherwise
// reloading the file would yield a different ID.
func (ids IDs) MarshalJSON() ([]byte, error) {
	out := make([]any, len(ids))
	for i, id := range ids {
		if n, err := strconv.ParseInt(id, 10, 64); err == nil && strconv.FormatInt(n, 10) == id {
			out[i] = n
		} else {
			out[i] = id
		}
	}
	return json.Marshal(out)
}

// Whitelist is the on-disk document.
type Whitelist struct {
	Allowed IDs `json:"allowed"`
	Admin   IDs `json:"admin"`
}

// FileGate implements ports.AccessAdmin on a whitelist JSON file.
// Reads are served from memory; every change is written back atomically.
type FileGate struct {
	path string
	mu   sync.RWMutex
	list Whitelist
}

// Load reads the whitelist at path. A missing file is an error: without it
// nobody could ever be authorized.
func Load(path string) (*FileGate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("whitelist %s not found: %w", path, err)
		}
		return nil, fmt.Errorf("failed to read whitelist: %w", err)
	}
	var list Whitelist
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("failed to parse whitelist %s: %w", path, err)
	}
	return &FileGate{path: path, list: list}, nil
}

// IsAuthorized reports whether userID is allowed or an admin.
func (g *FileGate) IsAuthorized(ctx context.Context, userID string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return slices.Contains(g.list.Allowed, userID) || slices.Contains(g.list.Admin, userID)
}

// IsAdmin reports whether userID is an admin.
func (g *FileGate) IsAdmin(ctx context.Context, userID string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return slices.Contains(g.list.Admin, userID)
}

// Grant adds userID to the allowed list.
func (g *FileGate) Grant(ctx context.Context, userID string) error {
	if userID == "" {
		return fmt.Errorf("userID cannot be empty")
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	if slices.Contains(g.list.Allowed, userID) {
		return nil
	}
	next := g.list
	next.Allowed = append(slices.Clone(g.list.Allowed), userID)
	return g.commit(next)
}

// Revoke removes userID from the allowed list.
func (g *FileGate) Revoke(ctx context.Context, userID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	i := slices.Index(g.list.Allowed, userID)
	if i < 0 {
		return nil
	}
	next := g.list
	next.Allowed = slices.Delete(slices.Clone(g.list.Allowed), i, i+1)
	return g.commit(next)
}

// Members returns copies of the allowed and admin lists.
func (g *FileGate) Members(ctx context.Context) (allowed, admins []string) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return slices.Clone(g.list.Allowed), slices.Clone(g.list.Admin)
}

// commit persists next and only then makes it visible. Caller holds g.mu.
func (g *FileGate) commit(next Whitelist) error {
	data, err := json.MarshalIndent(next, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal whitelist: %w", err)
	}
	if err := file.WriteAtomic(g.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to save whitelist: %w", err)
	}
	g.list = next
	return nil
}
