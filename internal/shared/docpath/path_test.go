package docpath

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"docstore/internal/shared/errors"
)

func TestSplitAndJoin(t *testing.T) {
	segments := []string{"col1", "doc1", "col2", "doc2"}
	path := Join(segments...)
	assert.Equal(t, segments, Split(path))
	assert.Empty(t, Split(""))
	assert.Equal(t, []string{"col1"}, Split("/col1/"))
}

func TestAppend(t *testing.T) {
	assert.Equal(t, "col1", Append("", "col1"))
	assert.Equal(t, "col1/doc1", Append("col1", "doc1"))
}

func TestIsValidID(t *testing.T) {
	assert.True(t, IsValidID("abc-123_X"))
	assert.False(t, IsValidID(""))
	assert.False(t, IsValidID("a@b"))
}

func TestIsDocumentPath_IsCollectionPath(t *testing.T) {
	assert.True(t, IsDocumentPath("col1/doc1"))
	assert.False(t, IsDocumentPath("col1"))
	assert.True(t, IsCollectionPath("col1"))
	assert.False(t, IsCollectionPath("col1/doc1"))
	assert.False(t, IsDocumentPath(""))
}

func TestDocumentID_CollectionID(t *testing.T) {
	docID, err := DocumentID("col1/doc1")
	assert.NoError(t, err)
	assert.Equal(t, "doc1", docID)

	_, err = DocumentID("col1")
	assert.True(t, errors.IsInvalidPath(err))

	colID, err := CollectionID("col1/doc1")
	assert.NoError(t, err)
	assert.Equal(t, "col1", colID)

	colID, err = CollectionID("col1/doc1/col2")
	assert.NoError(t, err)
	assert.Equal(t, "col2", colID)
}

func TestParent(t *testing.T) {
	parent, err := Parent("col1/doc1/col2")
	assert.NoError(t, err)
	assert.Equal(t, "col1/doc1", parent)

	_, err = Parent("col1")
	assert.Error(t, err)
}

func TestValidateDocumentPath(t *testing.T) {
	assert.NoError(t, ValidateDocumentPath("col1/doc1"))
	assert.NoError(t, ValidateDocumentPath("col1/doc1/sub/doc2"))
	assert.Error(t, ValidateDocumentPath("col1"))
	assert.Error(t, ValidateDocumentPath(""))
	assert.Error(t, ValidateDocumentPath("col1/do@c1"))
}

func TestValidateCollectionPath(t *testing.T) {
	assert.NoError(t, ValidateCollectionPath("col1"))
	assert.NoError(t, ValidateCollectionPath("col1/doc1/sub"))
	assert.Error(t, ValidateCollectionPath("col1/doc1"))
	assert.Error(t, ValidateCollectionPath(""))
}
