package book

/* Book represents one catalog entry in relation to the business.
 * No tags here: the web and storage layers have their own representations.
 */
type Book struct {
	ID     int64
	Title  string
	Author string
	// Year is nil when unknown
	Year *int
	// FrontImage and BackImage hold stored filenames, empty when absent
	FrontImage string
	BackImage  string
}

// HasCover reports whether at least one cover image is stored for the book
func (b Book) HasCover() bool {
	return b.FrontImage != "" || b.BackImage != ""
}

// Stats summarises the catalog contents
type Stats struct {
	Total     int64
	WithFront int64
	WithBack  int64
}
