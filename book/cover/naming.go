package cover

import "fmt"

// Naming decides the stored name of an accepted upload
type Naming int

const (
	// Original stores the sanitized client filename; a second upload with the
	// same name replaces the first file.
	Original Naming = iota + 1
	// Unique prefixes the sanitized name with a random UUID so uploads never collide
	Unique
)

func (n Naming) String() string {
	switch n {
	case Original:
		return "original"
	case Unique:
		return "unique"
	}
	return "unknown"
}

// ParseNaming converts a configuration value into a Naming
func ParseNaming(s string) (Naming, error) {
	switch s {
	case "original", "":
		return Original, nil
	case "unique":
		return Unique, nil
	}
	return 0, fmt.Errorf("invalid naming policy %q: must be original or unique", s)
}
