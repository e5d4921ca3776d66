package query

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/MayTheStar/EVAL/config"
	corequery "github.com/MayTheStar/EVAL/internal/core/query"
	"github.com/MayTheStar/EVAL/pkg/apperror"
	"github.com/MayTheStar/EVAL/pkg/apperror/status"

	"github.com/gofiber/fiber/v3"
)

func HandleQuery(c fiber.Ctx) error {
	trackingID := c.Get("X-Request-ID")

	var req corequery.Request
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return apperror.BadRequest(config.ModuleQuery, c, status.InvalidRequestBody, err.Error())
	}
	req.Question = strings.TrimSpace(req.Question)
	if req.Question == "" {
		return apperror.BadRequest(config.ModuleQuery, c, status.MissingParams, "question is empty")
	}

	resp, err := corequery.Run(context.Background(), req)
	if err != nil {
		return apperror.InternalError(config.ModuleQuery, c, err)
	}

	return apperror.Success(config.ModuleQuery, c, apperror.FiberSuccessMessage{
		Code:       status.OK,
		Message:    "query ok",
		TrackingID: trackingID,
		Data:       resp,
	})
}
