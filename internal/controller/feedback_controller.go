package controller

import (
	"corrective-rag-be/internal/dto"
	"corrective-rag-be/internal/pkg/serverutils"
	"corrective-rag-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IFeedbackController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
}

type feedbackController struct {
	feedbackService service.IFeedbackService
}

func NewFeedbackController(feedbackService service.IFeedbackService) IFeedbackController {
	return &feedbackController{
		feedbackService: feedbackService,
	}
}

func (c *feedbackController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/feedback/v1")
	h.Post("", c.Create)
}

func (c *feedbackController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateFeedbackRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	err := serverutils.ValidateRequest(req)
	if err != nil {
		return err
	}

	res, err := c.feedbackService.CreateFeedback(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success create feedback", res))
}
