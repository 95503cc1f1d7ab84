package knowledge

import (
	"fmt"
	"strings"

	"astu-route-be/internal/entity"
)

const systemPrompt = `You are ASTU Route AI, a university knowledge assistant.

You MUST:
- Answer ONLY using the provided sources
- Be accurate, clear, and student-friendly
- Refuse to guess or hallucinate
- Say "I don't have enough verified information" if the answer is not found

You MUST NOT:
- Use outside knowledge
- Invent university rules or offices
- Assume outdated information
`

const userPromptTemplate = `Question:
"%s"

Verified ASTU Sources:
%s

Provide your answer in JSON format:
{
  "answer": "Grounded answer based on ASTU sources",
  "sources_used": ["source_1", "source_2"],
  "confidence": "high | medium | low"
}
`

func sourceID(i int) string {
	return fmt.Sprintf("source_%d", i+1)
}

// renderSources writes one "[source_N] content" block per document.
func renderSources(docs []*entity.ScoredDocument) string {
	var b strings.Builder
	for i, d := range docs {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "[%s] ", sourceID(i))
		if d.Document.Title != "" {
			b.WriteString(d.Document.Title)
			b.WriteString("\n")
		}
		b.WriteString(strings.TrimSpace(d.Document.Content))
	}
	return b.String()
}

func buildUserPrompt(query string, docs []*entity.ScoredDocument) string {
	return fmt.Sprintf(userPromptTemplate, query, renderSources(docs))
}
