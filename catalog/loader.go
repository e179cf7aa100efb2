package catalog

import (
	"fmt"
	"path/filepath"

	"github.com/marcelsud/book-manager/book"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

/* Loader reads a YAML catalog of books to seed or bulk-import a collection.
 * Every entry is checked with the same rules the web form applies.
 */

// File represents the structure of catalog.yaml
type File struct {
	Books []Entry `yaml:"books"`
}

// Entry represents a single book in the YAML file
type Entry struct {
	Title  string `yaml:"title"`
	Author string `yaml:"author"`
	Year   string `yaml:"year"`
	// Cover paths are relative to the catalog file
	FrontImage string `yaml:"front_image"`
	BackImage  string `yaml:"back_image"`
}

// Input converts the entry into the form values the book service expects
func (e Entry) Input() book.Input {
	return book.Input{
		Title:  e.Title,
		Author: e.Author,
		Year:   e.Year,
	}
}

type Loader struct {
	fs      afero.Fs
	dir     string
	entries []Entry
}

func NewLoader(fs afero.Fs) *Loader {
	return &Loader{fs: fs}
}

// Load reads and validates the catalog file
func (l *Loader) Load(path string) error {
	data, err := afero.ReadFile(l.fs, path)
	if err != nil {
		return fmt.Errorf("reading catalog file: %w", err)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing catalog YAML: %w", err)
	}

	for i, e := range file.Books {
		if _, err := e.Input().Validate(); err != nil {
			return fmt.Errorf("validating entry %d (%q): %w", i+1, e.Title, err)
		}
	}

	l.dir = filepath.Dir(path)
	l.entries = file.Books
	return nil
}

// List returns the loaded entries in file order
func (l *Loader) List() []Entry {
	return l.entries
}

// open resolves a cover path of an entry; an empty path is no upload
func (l *Loader) open(path string) (book.Upload, afero.File, error) {
	if path == "" {
		return book.Upload{}, nil, nil
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(l.dir, path)
	}
	f, err := l.fs.Open(path)
	if err != nil {
		return book.Upload{}, nil, fmt.Errorf("opening cover %s: %w", path, err)
	}
	return book.Upload{Filename: filepath.Base(path), Content: f}, f, nil
}
