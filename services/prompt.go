package services

// QueryPreamble is layered in front of every question. It belongs to the
// per-query instruction and must never replace the engine's system prompt.
const QueryPreamble = `When answering, prefer information from the document in the context variable.
Cite specific passages when possible.

User question: `

// BuildQueryPrompt returns the root instruction for a question. The corpus is
// sent separately as the context payload.
func BuildQueryPrompt(question string) string {
	return QueryPreamble + question
}
