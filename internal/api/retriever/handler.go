package retriever

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/MayTheStar/EVAL/config"
	"github.com/MayTheStar/EVAL/internal/core/retriever"
	"github.com/MayTheStar/EVAL/pkg/apperror"
	"github.com/MayTheStar/EVAL/pkg/apperror/status"

	"github.com/gofiber/fiber/v3"
)

type searchResponse struct {
	Hits []retriever.Hit `json:"hits"`
}

func HandleSearch(c fiber.Ctx) error {
	trackingID := c.Get("X-Request-ID")

	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		return apperror.BadRequest(config.ModuleRetriever, c, status.MissingParams, "q is required")
	}
	topK := config.Cfg.Retriever.TopK
	if topKStr := c.Query("top_k"); topKStr != "" {
		if v, err := strconv.Atoi(topKStr); err == nil && v > 0 && v <= 64 {
			topK = v
		}
	}
	var docIDs []int64
	if ids := strings.TrimSpace(c.Query("doc_ids")); ids != "" {
		for _, p := range strings.Split(ids, ",") {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			if id, err := strconv.ParseInt(p, 10, 64); err == nil {
				docIDs = append(docIDs, id)
			}
		}
	}

	// Embedding is a network call, give it a longer timeout than the search.
	embedCtx, cancelEmbed := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancelEmbed()
	vec, err := retriever.EmbedQuestion(embedCtx, q)
	if err != nil {
		return apperror.InternalError(config.ModuleRetriever, c, err)
	}
	searchCtx, cancelSearch := context.WithTimeout(context.Background(), time.Second)
	defer cancelSearch()
	hits, err := retriever.SearchMilvus(searchCtx, vec, topK, retriever.Filters{DocIDs: docIDs})
	if err != nil {
		return apperror.InternalError(config.ModuleRetriever, c, err)
	}

	return apperror.Success(config.ModuleRetriever, c, apperror.FiberSuccessMessage{
		Code:       status.OK,
		Message:    "search ok",
		TrackingID: trackingID,
		Data:       searchResponse{Hits: hits},
	})
}
