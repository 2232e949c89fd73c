package service

import (
	"strings"
	"testing"

	"github.com/paperchat/paperchat/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestBuildContext_NoMatches(t *testing.T) {
	got := BuildContext(nil)
	assert.Equal(t, "No direct match found in document. Please rely on conversation history.", got)

	got = BuildContext([]domain.RetrievedMatch{})
	assert.Equal(t, "No direct match found in document. Please rely on conversation history.", got)
}

func TestBuildContext_NumbersSourcesInOrder(t *testing.T) {
	matches := []domain.RetrievedMatch{
		{
			Content:  "First chunk text.",
			Metadata: domain.ChunkMetadata{Page: "3", Source: "paper.pdf"},
		},
		{
			Content:  "Second chunk text.",
			Metadata: domain.ChunkMetadata{Page: "7", Source: "paper.pdf"},
		},
	}

	got := BuildContext(matches)

	assert.Contains(t, got, "[Source 1] paper.pdf (Page 3):\nFirst chunk text.")
	assert.Contains(t, got, "[Source 2] paper.pdf (Page 7):\nSecond chunk text.")
	assert.Less(t, strings.Index(got, "[Source 1]"), strings.Index(got, "[Source 2]"))
}

func TestBuildContext_MissingMetadataUsesPlaceholders(t *testing.T) {
	matches := []domain.RetrievedMatch{
		{Content: "Orphan chunk."},
	}

	got := BuildContext(matches)

	assert.Contains(t, got, "[Source 1] Document (Page Unknown):\nOrphan chunk.")
}
