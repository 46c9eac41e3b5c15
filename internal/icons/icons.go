// apps/go-server/internal/icons/icons.go
//
// Provides the icon catalog the deck is built from.
//
// Responsibilities:
//   - Load the catalog from an operator-provided JSON file or fall back to
//     the embedded default (assets/icons.json, 12 icons).
//   - Validate entries: non-empty catalog, unique keys, no blank fields.
//   - Report simple stats for the debug endpoint.
//
// File format: a JSON array of {"key","label","src"} objects.
//
// Environment variables (read by internal/config):
//   ICONS_FILE=/path/to/icons.json

package icons

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/robalobadob/memory/apps/go-server/assets"
	"github.com/robalobadob/memory/apps/go-server/internal/game"
)

// ErrEmpty is returned for a catalog without icons.
var ErrEmpty = errors.New("icon catalog is empty")

// Load reads the catalog from path, or the embedded default if path is "".
func Load(path string) ([]game.Icon, error) {
	if path == "" {
		return Default()
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Parse(b)
}

// Default returns the embedded catalog.
func Default() ([]game.Icon, error) {
	b, err := assets.IconsJSON()
	if err != nil {
		return nil, fmt.Errorf("embedded icons: %w", err)
	}
	return Parse(b)
}

// Parse decodes and validates a JSON catalog.
func Parse(data []byte) ([]game.Icon, error) {
	var list []game.Icon
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("decode icons: %w", err)
	}
	if len(list) == 0 {
		return nil, ErrEmpty
	}

	seen := make(map[string]struct{}, len(list))
	for i, ic := range list {
		ic.Key = strings.TrimSpace(ic.Key)
		ic.Label = strings.TrimSpace(ic.Label)
		ic.Image = strings.TrimSpace(ic.Image)
		if ic.Key == "" || ic.Label == "" || ic.Image == "" {
			return nil, fmt.Errorf("icon %d: key, label and src are required", i)
		}
		if _, dup := seen[ic.Key]; dup {
			return nil, fmt.Errorf("icon %d: duplicate key %q", i, ic.Key)
		}
		seen[ic.Key] = struct{}{}
		list[i] = ic
	}
	return list, nil
}

// Stats returns (pairs, cards) for a catalog.
func Stats(list []game.Icon) (int, int) {
	return len(list), 2 * len(list)
}
