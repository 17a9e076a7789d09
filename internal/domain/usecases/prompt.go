// Package usecases contains application business rules.
// Usecases orchestrate entities and depend on port interfaces only.
package usecases

import "strings"

// DefaultPreamble fixes the assistant's output style. The constraints are
// delivered as literal prompt text; the model may violate them and no
// post-validation is performed.
const DefaultPreamble = `You are a helpful and knowledgeable medical assistant.

Based on the context below, write a clear, friendly, and conversational answer to the user's question.
Use full sentences and paragraph form. Do not use bullet points, numbered steps, or lists of any kind — even if the question asks for them.
Avoid restating the question. Only use the information in the context provided.`

// BuildPrompt composes the single text prompt sent to the model: style
// preamble, context block, and the user's question. Pure function: identical
// inputs yield identical output.
func BuildPrompt(preamble, context, question string) string {
	var sb strings.Builder
	sb.WriteString(preamble)
	sb.WriteString("\n\nContext:\n")
	sb.WriteString(context)
	sb.WriteString("\n\nQuestion:\n")
	sb.WriteString(question)
	sb.WriteString("\n\nAnswer:\n")
	return sb.String()
}
