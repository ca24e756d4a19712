package classify

import (
	"context"
	"fmt"

	"github.com/smartcity-agent/backend/internal/llm"
	"github.com/smartcity-agent/backend/internal/prompts"
)

// ChatCompleter is the slice of the LLM client the gateway needs.
type ChatCompleter interface {
	Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error)
}

// Gateway sends a user query together with the classification reference
// texts to the LLM and returns the raw completion text. The system prompt is
// assembled once at construction from the immutable prompt library.
type Gateway struct {
	llm          ChatCompleter
	systemPrompt string
}

func NewGateway(llmClient ChatCompleter, lib *prompts.Library) *Gateway {
	return &Gateway{
		llm:          llmClient,
		systemPrompt: buildSystemPrompt(lib),
	}
}

// Classify returns the classifier's raw output unmodified. Callers recover
// structure with Extract and degrade to UNKNOWN when this call fails.
func (g *Gateway) Classify(ctx context.Context, userQuery string) (string, error) {
	resp, err := g.llm.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: g.systemPrompt,
		UserPrompt:   userQuery,
	})
	if err != nil {
		return "", fmt.Errorf("classification call failed: %w", err)
	}

	return resp.Content, nil
}

func buildSystemPrompt(lib *prompts.Library) string {
	return fmt.Sprintf(`
You are a smart city query classifier and response system.
Your task is to analyze user queries about the smart city sensor network, classify them, and provide appropriate responses using the correct node data sources.
Here is the classification system:
%s
Here is additional information about node IDs:
%s
Here is detailed information about the naming conventions and parameters:
%s
When a user asks a question, you should:
1. Classify the query as SPECIFIC, GENERIC, GENERIC WITH PARAMETER INFERENCE, or LIVING_LAB
2. Identify the relevant node IDs based on the classification and mappings
3. Determine if the query is about historical/temporal data (past day, week, month, year)
4. Return ONLY a JSON object with the following structure:
{
    "classification": "SPECIFIC / GENERIC / GENERIC WITH PARAMETER INFERENCE / LIVING_LAB",
    "node_ids": ["node_id_1", "node_id_2", ...],
    "is_temporal": true/false,
    "time_period": "day"/"week"/"month"/"year"/null
}
Do not include any other text or explanation in your response, just the JSON object.
`, lib.Taxonomy, lib.NodeDirectory, lib.NamingGuide)
}
