package pipeline

import (
	"strings"
)

const partialSeparator = "\n\n"

const chunkPromptHead = `Summarize the following text. Extract key points and present them clearly.

Document:
`

const chunkPromptTail = `

Format:
- Summary:
- Key Points:
- Questions to Consider:
`

const finalPromptHead = `Below are partial summaries from a multi-page document.
Please combine them into a single, well-structured summary.

Summaries:
`

const finalPromptTail = `

Format:
- Full Summary:
- Key Highlights:
- Questions to Consider:
`

// ChunkPrompt asks for a structured summary of one chunk.
func ChunkPrompt(chunk string) string {
	var b strings.Builder
	b.Grow(len(chunkPromptHead) + len(chunk) + len(chunkPromptTail))
	b.WriteString(chunkPromptHead)
	b.WriteString(chunk)
	b.WriteString(chunkPromptTail)
	return b.String()
}

// FinalPrompt asks to combine partial summaries, joined by blank lines.
func FinalPrompt(partials []string) string {
	joined := strings.Join(partials, partialSeparator)

	var b strings.Builder
	b.Grow(len(finalPromptHead) + len(joined) + len(finalPromptTail))
	b.WriteString(finalPromptHead)
	b.WriteString(joined)
	b.WriteString(finalPromptTail)
	return b.String()
}
