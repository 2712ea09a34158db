package controller

import (
	"ai-casefile-be/internal/dto"
	"ai-casefile-be/internal/pkg/serverutils"
	"ai-casefile-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IInvestigationController interface {
	RegisterRoutes(r fiber.Router)
	VisitLocation(ctx *fiber.Ctx) error
	Interrogate(ctx *fiber.Ctx) error
	DiscoverClue(ctx *fiber.Ctx) error
	GetProgress(ctx *fiber.Ctx) error
	ListFindings(ctx *fiber.Ctx) error
}

type investigationController struct {
	investigationService service.IInvestigationService
}

func NewInvestigationController(investigationService service.IInvestigationService) IInvestigationController {
	return &investigationController{
		investigationService: investigationService,
	}
}

func (c *investigationController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/investigation/v1/:caseId")
	h.Use(serverutils.JwtMiddleware)
	h.Post("visit", c.VisitLocation)
	h.Post("interrogate", c.Interrogate)
	h.Post("clues/:clueId/discover", c.DiscoverClue)
	h.Get("progress", c.GetProgress)
	h.Get("findings", c.ListFindings)
}

func (c *investigationController) VisitLocation(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	caseId, _ := uuid.Parse(ctx.Params("caseId"))

	var req dto.VisitLocationRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	err := serverutils.ValidateRequest(req)
	if err != nil {
		return err
	}

	res, err := c.investigationService.VisitLocation(ctx.Context(), userId, caseId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success visit location", res))
}

func (c *investigationController) Interrogate(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	caseId, _ := uuid.Parse(ctx.Params("caseId"))

	var req dto.InterrogateRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	err := serverutils.ValidateRequest(req)
	if err != nil {
		return err
	}

	res, err := c.investigationService.Interrogate(ctx.Context(), userId, caseId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success interrogate suspect", res))
}

func (c *investigationController) DiscoverClue(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	caseId, _ := uuid.Parse(ctx.Params("caseId"))
	clueId := ctx.Params("clueId")

	res, err := c.investigationService.DiscoverClue(ctx.Context(), userId, caseId, clueId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success discover clue", res))
}

func (c *investigationController) GetProgress(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	caseId, _ := uuid.Parse(ctx.Params("caseId"))

	res, err := c.investigationService.GetProgress(ctx.Context(), userId, caseId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get progress", res))
}

func (c *investigationController) ListFindings(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	caseId, _ := uuid.Parse(ctx.Params("caseId"))

	res, err := c.investigationService.ListFindings(ctx.Context(), userId, caseId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list findings", res))
}
