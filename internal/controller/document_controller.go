package controller

import (
	"corrective-rag-be/internal/dto"
	"corrective-rag-be/internal/pkg/serverutils"
	"corrective-rag-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IDocumentController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	Index(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	Reindex(ctx *fiber.Ctx) error
}

type documentController struct {
	documentService service.IDocumentService
}

func NewDocumentController(documentService service.IDocumentService) IDocumentController {
	return &documentController{
		documentService: documentService,
	}
}

func (c *documentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/document/v1")
	h.Post("", c.Create)
	h.Get("", c.Index)
	h.Post(":id/reindex", c.Reindex)
	h.Delete(":id", c.Delete)
}

func (c *documentController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateDocumentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	err := serverutils.ValidateRequest(req)
	if err != nil {
		return err
	}

	res, err := c.documentService.CreateDocument(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success create document", res))
}

func (c *documentController) Index(ctx *fiber.Ctx) error {
	limit := ctx.QueryInt("limit", 20)
	offset := ctx.QueryInt("offset", 0)

	res, err := c.documentService.GetDocuments(ctx.Context(), limit, offset)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list documents", res))
}

func (c *documentController) Delete(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid document id")
	}

	if err := c.documentService.DeleteDocument(ctx.Context(), id); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success delete document", nil))
}

func (c *documentController) Reindex(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid document id")
	}

	if err := c.documentService.ReindexDocument(ctx.Context(), id); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success reindex document", nil))
}
