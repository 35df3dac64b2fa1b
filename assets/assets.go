// Package assets embeds the default icon set.
package assets

import "embed"

// Icons holds icons/icons.yaml and the bitmaps it lists.
//
//go:embed icons
var Icons embed.FS

// Manifest is the path of the manifest inside Icons.
const Manifest = "icons/icons.yaml"
