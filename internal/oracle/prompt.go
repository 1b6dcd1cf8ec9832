package oracle

import (
	"fmt"
	"strings"
)

// PromptBuilder constructs the rename prompt sent to every backend.
type PromptBuilder struct{}

func (pb *PromptBuilder) BuildRenamePrompt(identifier, codeContext string) string {
	var sb strings.Builder
	sb.WriteString("Role: Reverse engineer reading minified JavaScript.\n")
	fmt.Fprintf(&sb, "Task: Suggest a better, descriptive name for the identifier `%s` based on how it is used in the code below.\n\n", identifier)
	sb.WriteString("Code:\n```javascript\n")
	sb.WriteString(codeContext)
	sb.WriteString("\n```\n\n")
	sb.WriteString("Rules:\n")
	sb.WriteString("- Answer with the new name only, no explanation and no punctuation.\n")
	sb.WriteString("- The name must be a valid JavaScript identifier in camelCase.\n")
	fmt.Fprintf(&sb, "- If the current name `%s` is already descriptive, answer with it unchanged.\n", identifier)
	return sb.String()
}

// cleanProposal strips code fences, quotes, and chatter from a model
// response, keeping the first name-like token.
func cleanProposal(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```javascript")
		text = strings.TrimPrefix(text, "```js")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(text, "```")
		text = strings.TrimSpace(text)
	}
	text = strings.Trim(text, "`'\"")

	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ' ' || r == '\n' || r == '\t' || r == ':' || r == ';' || r == ','
	})
	if len(fields) == 0 {
		return ""
	}
	return strings.Trim(fields[0], "`'\".")
}
