package service

import (
	"fmt"
	"strings"

	"github.com/paperchat/paperchat/internal/domain"
)

// noMatchSentinel tells the generation step to fall back to conversation
// history. The chat prompt depends on this exact instruction, so treat it
// as part of the synthesizer contract.
const noMatchSentinel = "No direct match found in document. Please rely on conversation history."

// BuildContext renders retrieved matches into the citation-addressable
// context block fed to the completion service. Matches are rendered in
// the order supplied, which is already similarity-ranked.
func BuildContext(matches []domain.RetrievedMatch) string {
	if len(matches) == 0 {
		return noMatchSentinel
	}

	var b strings.Builder
	for i, m := range matches {
		source := m.Metadata.Source
		if source == "" {
			source = "Document"
		}
		page := m.Metadata.Page
		if page == "" {
			page = "Unknown"
		}
		fmt.Fprintf(&b, "\n[Source %d] %s (Page %s):\n%s\n", i+1, source, page, m.Content)
	}
	return b.String()
}
