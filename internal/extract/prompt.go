package extract

import (
	"fmt"

	"llm-scraper/internal/anthropic"
)

// ToolLimits bounds how often the provider may invoke each server tool in a
// single request.
type ToolLimits struct {
	FetchMaxUses  int
	SearchMaxUses int
}

// BuildPrompt turns a normalized request into the instruction text and the
// server tools to grant. It is deterministic and does no I/O.
func BuildPrompt(req Request, limits ToolLimits) (string, []anthropic.Tool) {
	var prompt string

	switch {
	case req.IsSearch() && req.Mode == ModeMarkdown:
		prompt = fmt.Sprintf(`Search for "%s" and return the most relevant content as markdown. Focus on recent, high-quality results.`, req.SearchQuery)
	case req.IsSearch():
		prompt = fmt.Sprintf(`Search for "%s" and extract structured data from the most relevant results. Return ONLY valid JSON.`, req.SearchQuery)
		if req.CustomPrompt != "" {
			prompt += " " + req.CustomPrompt
		}
	case req.Mode == ModeMarkdown:
		prompt = fmt.Sprintf("Extract and return all content from %s as markdown (nothing else around it). Don't hallucinate or make anything up, just 1:1 content.", req.URL)
	default:
		prompt = fmt.Sprintf("Fetch the content from %s and extract structured data. Your response must be ONLY valid JSON with no additional text, explanations, or markdown formatting.", req.URL)
		// Schema beats custom prompt; they are never combined.
		switch {
		case req.Schema != "":
			prompt += " Use this exact JSON schema structure: " + req.Schema
		case req.CustomPrompt != "":
			prompt += fmt.Sprintf(" Extract data based on these instructions: %s.", req.CustomPrompt)
		default:
			prompt += " Extract the main content and organize it into a clean JSON format with relevant fields like title, description, content, etc."
		}
	}

	var tools []anthropic.Tool
	if req.IsSearch() {
		tools = append(tools, anthropic.Tool{
			Type:    anthropic.ToolTypeWebSearch,
			Name:    anthropic.ToolNameWebSearch,
			MaxUses: limits.SearchMaxUses,
		})
	}
	tools = append(tools, anthropic.Tool{
		Type:    anthropic.ToolTypeWebFetch,
		Name:    anthropic.ToolNameWebFetch,
		MaxUses: limits.FetchMaxUses,
	})

	return prompt, tools
}

// PrefillJSON reports whether the assistant turn is seeded with an opening
// brace so the model continues a JSON object instead of chatting.
func PrefillJSON(mode Mode) bool {
	return mode == ModeJSON
}

// buildMessages assembles the conversation for one extraction.
func buildMessages(prompt string, prefill bool) []anthropic.Message {
	msgs := []anthropic.Message{{Role: anthropic.RoleUser, Content: prompt}}
	if prefill {
		msgs = append(msgs, anthropic.Message{Role: anthropic.RoleAssistant, Content: jsonPrefix})
	}
	return msgs
}
