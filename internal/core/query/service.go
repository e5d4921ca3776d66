package query

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/MayTheStar/EVAL/config"
	"github.com/MayTheStar/EVAL/internal/api/upload"
	"github.com/MayTheStar/EVAL/internal/core/retriever"
	"github.com/MayTheStar/EVAL/internal/database"
	"github.com/MayTheStar/EVAL/internal/database/model"
	"github.com/MayTheStar/EVAL/pkg/logger"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const noEvidenceAnswer = "Not enough evidence in the indexed documents to answer that."

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float32       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
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

// Run executes the query flow: embed, search, prompt, LLM, persist.
func Run(ctx context.Context, req Request) (Response, error) {
	if req.TopK <= 0 || req.TopK > 64 {
		req.TopK = config.Cfg.Retriever.TopK
	}

	embedCtx, cancelEmbed := context.WithTimeout(ctx, 3*time.Second)
	defer cancelEmbed()
	vec, err := retriever.EmbedQuestion(embedCtx, strings.TrimSpace(req.Question))
	if err != nil {
		logger.Error(err, "%v: embed question failed", config.ModuleQuery)
		return Response{}, err
	}

	searchCtx, cancelSearch := context.WithTimeout(ctx, 1*time.Second)
	defer cancelSearch()
	hits, err := retriever.SearchMilvus(searchCtx, vec, req.TopK, retriever.Filters{DocIDs: req.DocIDs})
	if err != nil {
		logger.Error(err, "%v: search milvus failed", config.ModuleQuery)
		return Response{}, err
	}

	ctxs := make([]ContextSnippet, 0, len(hits))
	for _, h := range hits {
		ctxs = append(ctxs, ContextSnippet{
			DocID:   h.DocID,
			Page:    h.PageNumber,
			Snippet: h.Content,
		})
	}

	// Answer only from retrieved evidence.
	if len(ctxs) == 0 {
		if err := persistMessages(ctx, req.Question, noEvidenceAnswer, nil); err != nil {
			logger.Error(err, "%v: persist messages failed", config.ModuleQuery)
		}
		return Response{Answer: noEvidenceAnswer, Contexts: []ContextSnippet{}}, nil
	}

	sysMsg, userMsg := buildPrompt(req.Question, ctxs)
	llmCtx, cancelLLM := context.WithTimeout(ctx, 10*time.Second)
	defer cancelLLM()
	answer, err := callLLM(llmCtx, sysMsg, userMsg)
	if err != nil {
		logger.Error(err, "%v: call llm failed", config.ModuleQuery)
		return Response{}, err
	}

	if err := persistMessages(ctx, req.Question, answer, ctxs); err != nil {
		logger.Error(err, "%v: persist messages failed", config.ModuleQuery)
	}
	return Response{Answer: answer, Contexts: ctxs}, nil
}

func buildPrompt(question string, ctxs []ContextSnippet) (systemMsg, userMsg string) {
	var b strings.Builder
	b.WriteString("You are an RFP analyst assistant. Answer concisely and cite the ")
	b.WriteString("context number you used, e.g. [2]. Use only the contexts below. ")
	b.WriteString(fmt.Sprintf("If they are not enough, reply exactly: %q.\n\n", noEvidenceAnswer))
	b.WriteString("Contexts:\n")
	for i, c := range ctxs {
		b.WriteString(fmt.Sprintf("[%d] (doc_id=%d, page=%d): %s\n\n", i+1, c.DocID, c.Page, sanitize(c.Snippet)))
	}
	systemMsg = b.String()
	userMsg = fmt.Sprintf("Question: %s", question)
	return
}

func sanitize(s string) string {
	out := strings.ReplaceAll(s, "\x00", "")
	return strings.TrimSpace(out)
}

func callLLM(ctx context.Context, promptSystem, promptUser string) (string, error) {
	client := openai.NewClient(option.WithAPIKey(config.Cfg.OpenAI.Key))
	req := chatRequest{
		Model:       config.Cfg.OpenAI.Model,
		Temperature: 0.2,
		MaxTokens:   512,
		Messages: []chatMessage{
			{Role: "system", Content: promptSystem},
			{Role: "user", Content: promptUser},
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

func persistMessages(ctx context.Context, question string, answer string, ctxs []ContextSnippet) error {
	db, err := database.GetDB()
	if err != nil {
		return err
	}
	userID, err := upload.EnsureDefaultUser(db)
	if err != nil {
		return err
	}
	now := time.Now()
	msgUser := model.Message{
		UserID:    userID,
		Role:      "user",
		Content:   question,
		CreatedAt: &now,
	}
	if err := database.CreateEntity(ctx, &msgUser); err != nil {
		return err
	}
	msgAssistant := model.Message{
		UserID:    userID,
		Role:      "assistant",
		Content:   answer,
		CreatedAt: &now,
	}
	if err := database.CreateEntity(ctx, &msgAssistant); err != nil {
		return err
	}
	for _, cs := range ctxs {
		docID := cs.DocID
		msgCtx := model.Message{
			UserID:     userID,
			Role:       "context",
			Content:    cs.Snippet,
			DocumentID: &docID,
			CreatedAt:  &now,
		}
		if err := database.CreateEntity(ctx, &msgCtx); err != nil {
			return err
		}
	}
	return nil
}
