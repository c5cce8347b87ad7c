// Package ident canonicalizes entity identifiers. Every entity ID carries a
// collection prefix ("processes/", "Files/", ...) that routes reads and
// writes to the right logical store, but callers supply IDs in either the
// prefixed or the bare form. Normalize, Shorten and Variations convert
// between the two without ever failing.
package ident

import (
	"strings"

	"github.com/fares1919-ltrch/Backend-stage-sub000/internal/logging"
)

// Kind names a document collection with a known ID prefix.
type Kind string

const (
	KindProcess   Kind = "process"
	KindFile      Kind = "file"
	KindConflict  Kind = "conflict"
	KindException Kind = "exception"
	KindDuplicate Kind = "duplicate"
)

var prefixes = map[Kind]string{
	KindProcess:   "processes/",
	KindFile:      "Files/",
	KindConflict:  "Conflicts/",
	KindException: "Exceptions/",
	KindDuplicate: "DuplicatedRecords/",
}

// Collection returns the store collection name for a kind, without the
// trailing slash. Unknown kinds return an empty string.
func Collection(kind Kind) string {
	return strings.TrimSuffix(prefixes[kind], "/")
}

var warnLog = logging.Nop()

// SetLogger installs the logger used for empty-ID warnings.
func SetLogger(l *logging.Logger) {
	if l != nil {
		warnLog = l.Named("ident")
	}
}

// Normalize ensures id carries the collection prefix for kind. Already
// prefixed IDs and IDs of unknown kinds pass through unchanged. Empty input
// is returned unchanged with a warning, never an error.
func Normalize(id string, kind Kind) string {
	if id == "" {
		warnLog.Warn("normalize called with empty id (kind=%s)", kind)
		return id
	}
	prefix, ok := prefixes[kind]
	if !ok {
		return id
	}
	if strings.HasPrefix(id, prefix) {
		return id
	}
	return prefix + id
}

// Shorten strips the collection prefix for kind if present.
func Shorten(id string, kind Kind) string {
	if id == "" {
		warnLog.Warn("shorten called with empty id (kind=%s)", kind)
		return id
	}
	prefix, ok := prefixes[kind]
	if !ok {
		return id
	}
	return strings.TrimPrefix(id, prefix)
}

// Variations returns exactly the two lookup forms of id, prefixed first,
// regardless of which form was supplied. Callers retry a missed lookup
// under the other form.
func Variations(id string, kind Kind) []string {
	return []string{Normalize(id, kind), Shorten(id, kind)}
}
