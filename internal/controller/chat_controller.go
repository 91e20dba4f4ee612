package controller

import (
	"corrective-rag-be/internal/constant"
	"corrective-rag-be/internal/dto"
	"corrective-rag-be/internal/pkg/serverutils"
	"corrective-rag-be/internal/service"
	"corrective-rag-be/pkg/rag/orchestrator"

	"github.com/gofiber/fiber/v2"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	Chat(ctx *fiber.Ctx) error
	PendingSession(ctx *fiber.Ctx) error
}

type chatController struct {
	ragService service.IRagService
}

func NewChatController(ragService service.IRagService) IChatController {
	return &chatController{
		ragService: ragService,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/rag/v1")
	h.Post("chat", c.Chat)
	h.Get("sessions/:id/pending", c.PendingSession)
}

func (c *chatController) Chat(ctx *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	err := serverutils.ValidateRequest(req)
	if err != nil {
		return err
	}

	res, err := c.ragService.Chat(ctx.Context(), &req)
	if err != nil {
		return err
	}

	if res.NeedsClarification {
		return ctx.JSON(serverutils.SuccessResponse("Clarification needed", toClarificationResponse(res)))
	}
	return ctx.JSON(serverutils.SuccessResponse("Success chat", toChatResponse(res)))
}

func (c *chatController) PendingSession(ctx *fiber.Ctx) error {
	sessionId := ctx.Params("id")
	res := c.ragService.GetPendingSession(sessionId)
	return ctx.JSON(serverutils.SuccessResponse("Success get pending session", res))
}

func toClarificationResponse(res *orchestrator.Result) *dto.ClarificationResponse {
	return &dto.ClarificationResponse{
		SessionId:             res.SessionID,
		ClarificationQuestion: res.Clarification.Question,
		Options:               res.Clarification.Options,
	}
}

func toChatResponse(res *orchestrator.Result) *dto.ChatResponse {
	response := &dto.ChatResponse{
		SessionId:        res.SessionID,
		Response:         res.Response,
		Sources:          res.Sources,
		Confidence:       res.Confidence,
		NeedsDisclaimer:  res.NeedsDisclaimer,
		RetrievalSource:  string(res.RetrievalSource),
		ProcessingTimeMs: res.ProcessingTimeMs,
	}
	if res.NeedsDisclaimer {
		response.Disclaimer = constant.DisclaimerMessage
	}
	return response
}
