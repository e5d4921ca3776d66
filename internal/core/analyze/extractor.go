package analyze

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/MayTheStar/EVAL/config"
	"github.com/MayTheStar/EVAL/pkg/logger"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}
type chatChoice struct {
	Index   int `json:"index"`
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	FinishReason string `json:"finish_reason"`
}
type chatResponse struct {
	Choices []chatChoice `json:"choices"`
}

const rfpRole = "You are an expert in analyzing government and corporate RFPs. " +
	"Your task is to extract all explicit and implied requirements."

const vendorRole = "You are an expert analyzing vendor proposals in response to RFPs. " +
	"Extract all capabilities, commitments, or deliverables mentioned by the vendor."

// AnalyzeChunk runs the extraction prompt over one chunk of text. The model
// is asked for strict JSON; a malformed reply degrades to an empty analysis
// rather than failing the whole document.
func AnalyzeChunk(ctx context.Context, chunkText string, docType DocType) (ChunkAnalysis, error) {
	role := rfpRole
	if docType == DocTypeVendor {
		role = vendorRole
	}

	prompt := fmt.Sprintf(`%s

Instructions:
1. Extract key actionable points or requirements, each tagged "mandatory" or "optional".
2. Summarize the text in 2-3 sentences under "summary".
3. Identify key focus areas under "evaluation_labels" (e.g., Technical, Financial, Compliance).

Return valid JSON:
{
    "requirements": [{"text": "", "type": ""}],
    "summary": "",
    "evaluation_labels": []
}

Now analyze:
%s`, role, chunkText)

	content, err := callLLM(ctx, prompt)
	if err != nil {
		return ChunkAnalysis{}, err
	}

	var out ChunkAnalysis
	if err := json.Unmarshal([]byte(stripFences(content)), &out); err != nil {
		logger.Warn("%v: model returned non-JSON output, skipping chunk", config.ModuleAnalyze)
		return ChunkAnalysis{}, nil
	}
	return out, nil
}

func callLLM(ctx context.Context, prompt string) (string, error) {
	client := openai.NewClient(option.WithAPIKey(config.Cfg.OpenAI.Key))
	req := chatRequest{
		Model:       config.Cfg.OpenAI.Model,
		Temperature: config.Cfg.OpenAI.Temperature,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
	}
	var out chatResponse
	if err := client.Post(ctx, "/chat/completions", req, &out); err != nil {
		return "", err
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("no choices returned")
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}

// stripFences removes a markdown code fence wrapper if the model added one.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
