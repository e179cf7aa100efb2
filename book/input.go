package book

import (
	"strconv"
	"strings"
)

// Input holds the raw form values of a create or update request
type Input struct {
	Title  string
	Author string
	Year   string
}

// Command is a validated Input, ready to be persisted
type Command struct {
	Title  string
	Author string
	Year   *int
}

// ValidationErrorKind enumerates the ways an Input can be rejected
type ValidationErrorKind int

const (
	MissingField ValidationErrorKind = iota + 1
	InvalidYear
)

func (k ValidationErrorKind) String() string {
	switch k {
	case MissingField:
		return "missing field"
	case InvalidYear:
		return "invalid year"
	}
	return "unknown"
}

// ValidationError is returned by Input.Validate. Its message is meant for the end user.
type ValidationError struct {
	Kind ValidationErrorKind
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case MissingField:
		return "Title and author are required."
	case InvalidYear:
		return "Year must be a number."
	}
	return "Invalid input."
}

// Validate trims every field and converts the year.
// An empty year is valid and means unknown.
func (in Input) Validate() (Command, error) {
	title := strings.TrimSpace(in.Title)
	author := strings.TrimSpace(in.Author)
	year := strings.TrimSpace(in.Year)

	if title == "" || author == "" {
		return Command{}, &ValidationError{Kind: MissingField}
	}

	cmd := Command{
		Title:  title,
		Author: author,
	}
	if year != "" {
		y, err := strconv.Atoi(year)
		if err != nil {
			return Command{}, &ValidationError{Kind: InvalidYear}
		}
		cmd.Year = &y
	}
	return cmd, nil
}
