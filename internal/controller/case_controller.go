package controller

import (
	"ai-casefile-be/internal/dto"
	"ai-casefile-be/internal/pkg/serverutils"
	"ai-casefile-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ICaseController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	GetOperation(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
}

type caseController struct {
	caseService service.ICaseService
}

func NewCaseController(caseService service.ICaseService) ICaseController {
	return &caseController{
		caseService: caseService,
	}
}

func (c *caseController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/case/v1")
	h.Use(serverutils.JwtMiddleware)
	// Register the static segment before the :id wildcard
	h.Get("operations/:id", c.GetOperation)
	h.Post("", c.Create)
	h.Get("", c.List)
	h.Get(":id", c.Show)
}

func (c *caseController) Create(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.CreateCaseRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	err := serverutils.ValidateRequest(req)
	if err != nil {
		return err
	}

	res, err := c.caseService.Create(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Case generation accepted", res))
}

func (c *caseController) GetOperation(ctx *fiber.Ctx) error {
	res, err := c.caseService.GetOperation(ctx.Context(), ctx.Params("id"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get operation status", res))
}

func (c *caseController) Show(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	id, _ := uuid.Parse(ctx.Params("id"))

	res, err := c.caseService.Show(ctx.Context(), userId, id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show case", res))
}

func (c *caseController) List(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	status := ctx.Query("status", "")

	res, err := c.caseService.List(ctx.Context(), userId, status)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list cases", res))
}
