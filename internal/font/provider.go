package font

import (
	"fmt"
	"os"
	"path/filepath"
)

// Provider resolves an opaque font name to a font definition file.
//
// The name is treated as a raw key: no translation from embedded-library
// font identifiers is attempted.
type Provider interface {
	// Resolve returns the path of the font definition for name, or an
	// error wrapping ErrFontNotFound when no definition exists.
	Resolve(name string) (string, error)
}

// DirProvider resolves font names against the working directory and an
// optional root directory of .bdf files.
//
// Search order: the name used as a literal path, <name>.bdf relative to
// the working directory, then <Root>/<name>.bdf.
type DirProvider struct {
	// Root is the font-source root directory. Empty disables the
	// root-relative lookup.
	Root string
}

// Resolve implements Provider.
func (p DirProvider) Resolve(name string) (string, error) {
	candidates := []string{
		name,
		name + ".bdf",
	}
	if p.Root != "" {
		candidates = append(candidates, filepath.Join(p.Root, name+".bdf"))
	}

	for _, path := range candidates {
		info, err := os.Stat(path)
		if err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrFontNotFound, name)
}
