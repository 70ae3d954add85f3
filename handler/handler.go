// Package handler adapts API Gateway proxy events to the chat use case.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"nft-gallery-agent/internal/domain"
	"nft-gallery-agent/internal/usecase"
)

const correlationHeader = "X-Correlation-Id"

type UseCase interface {
	Chat(ctx context.Context, in usecase.ChatInput) (usecase.ChatOutput, error)
	Suggestions(input string) []domain.Suggestion
	QuickActions() []domain.Suggestion
	Record(ctx context.Context, id string) (usecase.RecordOutput, error)
}

type Handler struct {
	uc UseCase
}

type chatRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversationId"`
}

type chatResponse struct {
	Reply          string              `json:"reply"`
	ConversationID string              `json:"conversationId"`
	Intent         domain.Intent       `json:"intent"`
	Language       domain.Language     `json:"language"`
	Source         string              `json:"source"`
	RecordID       string              `json:"recordId,omitempty"`
	Suggestions    []domain.Suggestion `json:"suggestions"`
}

type suggestionsResponse struct {
	Suggestions []domain.Suggestion `json:"suggestions"`
}

type recordResponse struct {
	Record          domain.CatalogRecord `json:"record"`
	Metadata        domain.NFTMetadata   `json:"metadata"`
	MetadataFetched bool                 `json:"metadataFetched"`
}

type errorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

func NewHandler(uc UseCase) (*Handler, error) {
	if uc == nil {
		return nil, errors.New("handler: use case must not be nil")
	}
	return &Handler{uc: uc}, nil
}

func (h *Handler) Handle(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	correlationID := headerValue(event.Headers, correlationHeader)
	if correlationID == "" {
		correlationID = uuid.NewString()
	}
	logger := slog.With("correlationId", correlationID, "method", event.HTTPMethod, "path", event.Path)

	path := "/" + strings.Trim(event.Path, "/")
	switch {
	case event.HTTPMethod == http.MethodPost && path == "/chat":
		return h.chat(ctx, event, correlationID, logger)
	case event.HTTPMethod == http.MethodGet && path == "/suggestions":
		input := event.QueryStringParameters["input"]
		return jsonResponse(http.StatusOK, suggestionsResponse{Suggestions: h.uc.Suggestions(input)}, correlationID), nil
	case event.HTTPMethod == http.MethodGet && path == "/quick-actions":
		return jsonResponse(http.StatusOK, suggestionsResponse{Suggestions: h.uc.QuickActions()}, correlationID), nil
	case event.HTTPMethod == http.MethodGet && strings.HasPrefix(path, "/nfts/"):
		return h.record(ctx, event, path, correlationID, logger)
	}

	logger.Info("route not found")
	return jsonResponse(http.StatusNotFound, errorResponse{Error: string(usecase.ErrorNotFound), Reason: "route_not_found"}, correlationID), nil
}

func (h *Handler) chat(ctx context.Context, event events.APIGatewayProxyRequest, correlationID string, logger *slog.Logger) (events.APIGatewayProxyResponse, error) {
	var req chatRequest
	if err := json.Unmarshal([]byte(event.Body), &req); err != nil {
		logger.Info("invalid request body", "err", err)
		return jsonResponse(http.StatusBadRequest, errorResponse{Error: string(usecase.ErrorInvalidInput), Reason: "invalid_json"}, correlationID), nil
	}

	out, err := h.uc.Chat(ctx, usecase.ChatInput{Message: req.Message, ConversationID: req.ConversationID})
	if err != nil {
		return errorResult(err, correlationID, logger), nil
	}

	logger.Info("chat answered",
		"conversationId", out.ConversationID,
		"intent", out.Intent,
		"language", out.Language,
		"source", out.Source,
		"recordId", out.RecordID,
	)
	return jsonResponse(http.StatusOK, chatResponse{
		Reply:          out.Reply,
		ConversationID: out.ConversationID,
		Intent:         out.Intent,
		Language:       out.Language,
		Source:         out.Source,
		RecordID:       out.RecordID,
		Suggestions:    out.Suggestions,
	}, correlationID), nil
}

func (h *Handler) record(ctx context.Context, event events.APIGatewayProxyRequest, path, correlationID string, logger *slog.Logger) (events.APIGatewayProxyResponse, error) {
	id := event.PathParameters["id"]
	if id == "" {
		id = strings.TrimPrefix(path, "/nfts/")
	}
	out, err := h.uc.Record(ctx, id)
	if err != nil {
		return errorResult(err, correlationID, logger), nil
	}
	return jsonResponse(http.StatusOK, recordResponse{
		Record:          out.Record,
		Metadata:        out.Metadata,
		MetadataFetched: out.MetadataFetched,
	}, correlationID), nil
}

func errorResult(err error, correlationID string, logger *slog.Logger) events.APIGatewayProxyResponse {
	var ucErr *usecase.Error
	if !errors.As(err, &ucErr) {
		logger.Error("unexpected error", "err", err)
		return jsonResponse(http.StatusInternalServerError, errorResponse{Error: string(usecase.ErrorInternal)}, correlationID)
	}

	status := statusFor(ucErr.Code)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "code", ucErr.Code, "reason", ucErr.Reason, "err", ucErr.Err)
	} else {
		logger.Info("request rejected", "code", ucErr.Code, "reason", ucErr.Reason)
	}
	return jsonResponse(status, errorResponse{Error: string(ucErr.Code), Reason: ucErr.Reason}, correlationID)
}

func statusFor(code usecase.ErrorCode) int {
	switch code {
	case usecase.ErrorInvalidInput:
		return http.StatusBadRequest
	case usecase.ErrorNotFound:
		return http.StatusNotFound
	case usecase.ErrorConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func headerValue(headers map[string]string, name string) string {
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func jsonResponse(status int, body any, correlationID string) events.APIGatewayProxyResponse {
	raw, err := json.Marshal(body)
	if err != nil {
		status = http.StatusInternalServerError
		raw = []byte(`{"error":"INTERNAL_ERROR"}`)
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers: map[string]string{
			"Content-Type":    "application/json",
			correlationHeader: correlationID,
		},
		Body: string(raw),
	}
}
