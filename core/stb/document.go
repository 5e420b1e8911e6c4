// Package stb defines the typed in-memory model of an ST-Bridge document.
//
// A Document is built once by the extract package and treated as an
// immutable snapshot afterwards. Members, sections and steel profiles are
// closed tagged unions: each variant is a concrete struct implementing a
// sealed interface, and JSON encodes them as {"<Tag>": {...}} objects so the
// model survives a round trip through any language-neutral consumer.
package stb

// Document is the root of a parsed ST-Bridge file.
type Document struct {
	Version    string      `json:"version"`
	Common     Common      `json:"stb_common"`
	Model      Model       `json:"stb_model"`
	Extensions []Extension `json:"stb_extensions"`
}

// Common holds document-wide definitions.
type Common struct {
	// ReinforcementStrength maps a bar diameter designation (D) to its
	// design strength designation (SD).
	ReinforcementStrength map[string]string `json:"stb_reinforcement_strength_list"`
}

// Strength returns the strength designation registered for a diameter.
func (c Common) Strength(diameter string) (string, bool) {
	sd, ok := c.ReinforcementStrength[diameter]
	return sd, ok
}

// Model is the structural model proper.
type Model struct {
	Nodes    NodeTable `json:"stb_nodes"`
	Axes     Axes      `json:"stb_axes"`
	Stories  []Story   `json:"stb_stories"`
	Members  Members   `json:"stb_members"`
	Sections Sections  `json:"stb_sections"`
}

// Extension records a vendor extension declared by the file.
type Extension struct {
	Identifier  string `json:"identifier"`
	Description string `json:"description"`
}
