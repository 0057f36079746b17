package extraction

import (
	"strings"

	"github.com/siherrmann/processrag/core/llm"
)

const SystemPrompt = `# Engineering Process Actions Categorization and Grouping

## Role

You are a knowledge engineer who designs models capturing the process knowledge of a production site so that it becomes understandable and reusable.

## Objective

Summarize the problem solving processes into a representative, generic model of the improvement process.

## Guidelines

- LLD stands for Low Level Description, a detailed log of the actions taken during the process.
- GPM stands for General Process Model, a representative, generic model of the process derived from several LLDs.`

const lldTask = `## Task

Based on the provided information and knowledge, analyze and categorize the actions from the improvement process logs.
- [ ] First, extract all actions from the logs.
- [ ] Then categorize them by their similarities.
- [ ] Finally, group similar actions into a structured representation of the improvement process, with the source and knowledge you referred to.`

const gpmTask = `## Task

Based on the categorization of the LLD actions and the resulting GPM classes, analyze the PartOf relationships among the GPM classes.
- [ ] First, relate the LLD actions to the GPM classes by their IDs.
- [ ] Then list the GPM classes with their IDs, class names and the parent of each PartOf relation.`

const textSystemPrompt = "You are a knowledge engineer who designs models capturing process knowledge so that it becomes understandable and reusable. Answer only from the given context. If the context does not contain the answer, say that you don't know."

// LLDPrompt renders the human turn of the LLD stage.
// Besides the question and the chat history the stage input includes the retrieved
// chunks, so the LLD records are grounded in the indexed documents. The context block
// is left out when no relevant chunks were retrieved and the prompt is then the
// question alone.
func LLDPrompt(question string, retrieved string) string {
	var b strings.Builder
	b.WriteString(lldTask)
	b.WriteString("\n\n")
	if strings.TrimSpace(retrieved) != "" {
		b.WriteString("Context:\n")
		b.WriteString(retrieved)
		b.WriteString("\n\n")
	}
	b.WriteString("LLD Actions: ")
	b.WriteString(question)
	b.WriteString("\n\nAnswer:")
	return b.String()
}

// GPMPrompt renders the human turn of the GPM stage from the serialized LLD result
func GPMPrompt(lld string) string {
	return gpmTask + "\n\nContext:\n" + lld + "\n\nAnswer:"
}

// TextPrompt renders the human turn of the plain text answer
func TextPrompt(question string, retrieved string) string {
	return "Context:\n" + retrieved + "\n\nQuestion: " + question + "\n\nAnswer:"
}

// ExtractionSchema is the response schema of the LLD stage
func ExtractionSchema() llm.Schema {
	return llm.Schema{
		"type":        "object",
		"description": "LLD actions grouped by GPM class, ids and knowledge are aligned by position",
		"properties": map[string]interface{}{
			"ids":       llm.StringArray("ID of each LLD action, prefixed with the GPM class it is grouped into"),
			"knowledge": llm.StringArray("knowledge and source referred to for the action with the same position"),
		},
		"required": []string{"ids", "knowledge"},
	}
}

// ClassSchema is the response schema of the GPM stage
func ClassSchema() llm.Schema {
	return llm.Schema{
		"type":        "object",
		"description": "GPM classes, ids, class_names and part_of are aligned by position",
		"properties": map[string]interface{}{
			"ids":         llm.StringArray("ID of each GPM class"),
			"class_names": llm.StringArray("name of the GPM class with the same position"),
			"part_of":     llm.StringArray("ID of the parent class, empty for root classes"),
		},
		"required": []string{"ids", "class_names", "part_of"},
	}
}
