package docpath

import (
	"regexp"
	"strings"

	"docstore/internal/shared/errors"
)

// A document path is an ordered sequence of segments alternating collection
// and document IDs: col1/doc1/col2/doc2. An even segment count addresses a
// document, an odd count a collection.

// Valid ID pattern (alphanumeric, hyphens, underscores)
var validIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// maxIDLength mirrors the backend's document ID size limit.
const maxIDLength = 1500

// Split parses a path into its non-empty segments.
func Split(path string) []string {
	if path == "" {
		return []string{}
	}

	segments := strings.Split(strings.Trim(path, "/"), "/")
	var result []string
	for _, segment := range segments {
		if segment != "" {
			result = append(result, segment)
		}
	}

	return result
}

// Join constructs a path from segments.
func Join(segments ...string) string {
	return strings.Join(segments, "/")
}

// Append appends a segment to an existing path.
func Append(basePath, segment string) string {
	if basePath == "" {
		return segment
	}
	return basePath + "/" + segment
}

// IsValidID checks if an ID is a valid collection or document identifier.
func IsValidID(id string) bool {
	if id == "" || len(id) > maxIDLength {
		return false
	}
	return validIDPattern.MatchString(id)
}

// IsDocumentPath checks if a path addresses a document.
func IsDocumentPath(path string) bool {
	segments := Split(path)
	return len(segments) > 0 && len(segments)%2 == 0
}

// IsCollectionPath checks if a path addresses a collection.
func IsCollectionPath(path string) bool {
	segments := Split(path)
	return len(segments) > 0 && len(segments)%2 == 1
}

// DocumentID returns the document ID from a document path.
func DocumentID(path string) (string, error) {
	segments := Split(path)
	if len(segments) == 0 || len(segments)%2 == 1 {
		return "", errors.NewInvalidPathError(path)
	}
	return segments[len(segments)-1], nil
}

// CollectionID returns the innermost collection ID from a path.
func CollectionID(path string) (string, error) {
	segments := Split(path)
	switch {
	case len(segments) == 0:
		return "", errors.NewInvalidPathError(path)
	case len(segments)%2 == 0:
		return segments[len(segments)-2], nil
	default:
		return segments[len(segments)-1], nil
	}
}

// Parent returns the path with its last segment removed.
func Parent(path string) (string, error) {
	segments := Split(path)
	if len(segments) <= 1 {
		return "", errors.NewInvalidPathError(path)
	}
	return Join(segments[:len(segments)-1]...), nil
}

// ValidateDocumentPath validates that path addresses a document and every
// segment is a valid ID.
func ValidateDocumentPath(path string) error {
	segments := Split(path)
	if len(segments) == 0 || len(segments)%2 != 0 {
		return errors.NewInvalidPathError(path)
	}
	return validateSegments(path, segments)
}

// ValidateCollectionPath validates that path addresses a collection and every
// segment is a valid ID.
func ValidateCollectionPath(path string) error {
	segments := Split(path)
	if len(segments) == 0 || len(segments)%2 != 1 {
		return errors.NewInvalidPathError(path)
	}
	return validateSegments(path, segments)
}

func validateSegments(path string, segments []string) error {
	for i, segment := range segments {
		if !IsValidID(segment) {
			return errors.NewInvalidPathError(path).
				WithDetail("segment", segment).
				WithDetail("position", i)
		}
	}
	return nil
}
