package assets

import (
	"embed"
)

//go:embed icons.json
var FS embed.FS

// IconsJSON returns the default icon catalog shipped with the binary.
func IconsJSON() ([]byte, error) {
	return FS.ReadFile("icons.json")
}
