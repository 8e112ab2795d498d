package api

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"docrag/internal/domain"
	"docrag/internal/usecase"
)

var validate = validator.New()

// SearchRequest is the body of POST /search.
type SearchRequest struct {
	Query   string            `json:"query" validate:"required"`
	TopK    int               `json:"top_k" validate:"omitempty,min=1,max=100"`
	Filters map[string]string `json:"filters"`
}

// RAGRequest is the body of POST /rag.
type RAGRequest struct {
	Query string `json:"query" validate:"required"`
	TopK  int    `json:"top_k" validate:"omitempty,min=1,max=100"`
}

func validateStruct(v any) map[string]string {
	if err := validate.Struct(v); err != nil {
		errs := err.(validator.ValidationErrors)
		fields := make(map[string]string)
		for _, e := range errs {
			fields[e.Field()] = fmt.Sprintf("failed on '%s' tag", e.Tag())
		}
		return fields
	}
	return nil
}

// Handler serves the retrieval endpoints.
type Handler struct {
	retrieve *usecase.RetrieveUseCase
	answer   *usecase.AnswerUseCase
}

func NewHandler(retrieve *usecase.RetrieveUseCase, answer *usecase.AnswerUseCase) *Handler {
	return &Handler{retrieve: retrieve, answer: answer}
}

func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (h *Handler) HandleSearch(c *fiber.Ctx) error {
	var req SearchRequest
	if c.BodyParser(&req) != nil {
		return ErrBadRequest()
	}
	if fields := validateStruct(&req); len(fields) > 0 {
		return NewValidationError(fields)
	}

	results, err := h.retrieve.Search(c.Context(), req.Query, req.TopK, req.Filters)
	if err != nil {
		return NewError(fiber.StatusInternalServerError, err.Error())
	}
	if results == nil {
		results = []domain.SearchResult{}
	}
	return c.JSON(results)
}

func (h *Handler) HandleRAG(c *fiber.Ctx) error {
	var req RAGRequest
	if c.BodyParser(&req) != nil {
		return ErrBadRequest()
	}
	if fields := validateStruct(&req); len(fields) > 0 {
		return NewValidationError(fields)
	}

	answer, err := h.answer.Answer(c.Context(), req.Query, req.TopK)
	if err != nil {
		return NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(answer)
}
