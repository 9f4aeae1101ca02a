package extract

import (
	"path"
	"strings"

	"github.com/kayz/codeloom/internal/artifact"
	"github.com/kayz/codeloom/internal/debug"
)

const fenceMarker = "```"

// Rules configure extraction for one pipeline flavor: which single-line
// comment markers may carry a file path declaration, and which file
// extensions mark a declaration as path-like.
type Rules struct {
	CommentMarkers []string `yaml:"comment_markers"`
	Extensions     []string `yaml:"extensions"`
}

// Extractor recovers (path, content) pairs from raw conversational text.
// It never fails: malformed or unterminated fences simply yield no entry.
type Extractor struct {
	rules Rules
}

// New creates an Extractor with the given rules.
func New(rules Rules) *Extractor {
	return &Extractor{rules: rules}
}

// Extract walks raw line by line and returns every recovered artifact.
//
// A comment line containing a path-like token declares the current file.
// A fence with a language tag flushes pending content and starts a fresh
// block; a bare fence flushes and forgets the current file. Blank lines
// inside a pending block are dropped; non-blank lines are kept verbatim,
// indentation included. Declaring the same path twice overwrites the
// earlier content.
func (e *Extractor) Extract(raw string) *artifact.Map {
	result := artifact.NewMap()

	var currentPath string
	var currentLines []string

	flush := func() {
		if currentPath != "" && len(currentLines) > 0 {
			result.Set(currentPath, strings.Join(currentLines, "\n"))
			debug.Log("extract: recovered %s (%d lines)", currentPath, len(currentLines))
		}
	}

	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)

		switch {
		case trimmed == fenceMarker:
			// Block close: flush and forget the current file.
			flush()
			currentPath = ""
			currentLines = nil

		case strings.HasPrefix(trimmed, fenceMarker):
			// Block open with a language tag: flush pending content,
			// keep the declared path for the block that follows.
			flush()
			currentLines = nil

		case e.declarationCandidate(trimmed):
			// Consumes the line even when the extension check fails,
			// so a stray "# v1.2 notes" comment is never file content.
			if declared := e.declaredPath(trimmed); declared != "" {
				currentPath = declared
			}

		case currentPath != "" && trimmed != "":
			currentLines = append(currentLines, line)
		}
	}

	flush()
	return result
}

// declarationCandidate reports whether a line looks like a comment that
// may carry a file path: comment marker plus a "." or "/" somewhere.
func (e *Extractor) declarationCandidate(trimmed string) bool {
	for _, marker := range e.rules.CommentMarkers {
		if strings.HasPrefix(trimmed, marker) {
			return strings.Contains(trimmed, ".") || strings.Contains(trimmed, "/")
		}
	}
	return false
}

// declaredPath returns the declared relative path if the candidate line
// names a recognized extension, or "" otherwise.
func (e *Extractor) declaredPath(trimmed string) string {
	for _, marker := range e.rules.CommentMarkers {
		if !strings.HasPrefix(trimmed, marker) {
			continue
		}
		candidate := strings.TrimSpace(strings.Trim(trimmed, markerChars(marker)))
		if candidate == "" {
			continue
		}
		for _, ext := range e.rules.Extensions {
			if strings.Contains(candidate, ext) {
				if cleaned, ok := sanitizeRelPath(candidate); ok {
					return cleaned
				}
				return ""
			}
		}
	}
	return ""
}

// markerChars returns the cutset used to strip a comment marker from
// both ends of a declaration line.
func markerChars(marker string) string {
	switch marker {
	case "//":
		return "/"
	default:
		return marker
	}
}

// sanitizeRelPath normalizes a declared path and rejects anything that
// could escape the output root. Artifact paths are always relative and
// use forward slashes.
func sanitizeRelPath(candidate string) (string, bool) {
	candidate = strings.ReplaceAll(candidate, "\\", "/")
	cleaned := path.Clean(candidate)
	if cleaned == "." || cleaned == "" {
		return "", false
	}
	if path.IsAbs(cleaned) {
		return "", false
	}
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", false
	}
	return cleaned, true
}
