package store

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by Load when no mapping file exists for the
// repository. Commands that require an initialized store translate it
// into a not-initialized failure; create and import start fresh.
var ErrNotFound = errors.New("branch mapping file not found")

// ValidationError rejects a document or entry before any write. It
// names the offending field and suggests a fix.
type ValidationError struct {
	Field      string
	Message    string
	Suggestion string
}

func (e *ValidationError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("invalid %s: %s (%s)", e.Field, e.Message, e.Suggestion)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// SchemaError is returned when a document carries a schema version this
// reader cannot interpret. The document is never auto-repaired.
type SchemaError struct {
	Path    string
	Version string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf(
		"unsupported schema version %q in %s: this build reads %s and the prior minor version; upgrade grove-stack, or restore the file from version control",
		e.Version, e.Path, SchemaVersion)
}

// CorruptError is returned when the document cannot be parsed at all.
type CorruptError struct {
	Path string
	Err  error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf(
		"unreadable branch mapping file %s: %v; restore it from version control or delete it and re-run 'gstack import'",
		e.Path, e.Err)
}

func (e *CorruptError) Unwrap() error { return e.Err }
