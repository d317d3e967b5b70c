package handler

import (
	"github.com/gofiber/fiber/v2"

	"conclusio/internal/http/middleware"
	"conclusio/internal/model"
	"conclusio/internal/service"
)

// CreateConclusion godoc
// @Summary      Create a conclusion
// @Tags         conclusions
// @Accept       json
// @Produce      json
// @Param        body  body      service.ConclusionInput  true  "Conclusion"
// @Success      201  {object}  model.Conclusion
// @Failure      400  {object}  errorPayload
// @Router       /api/conclusions [post]
func CreateConclusion(conclusions service.ConclusionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.ConclusionInput
		if err := c.BodyParser(&in); err != nil {
			return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "invalid JSON body")
		}
		res, err := conclusions.Create(c.UserContext(), middleware.UserIDFromCtx(c), in)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(res)
	}
}

// ListConclusions godoc
// @Summary      List the caller's conclusions, newest first
// @Tags         conclusions
// @Produce      json
// @Success      200  {array}  model.Conclusion
// @Router       /api/conclusions [get]
func ListConclusions(conclusions service.ConclusionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := conclusions.List(c.UserContext(), middleware.UserIDFromCtx(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(res)
	}
}

// GetConclusion godoc
// @Summary      Get a conclusion
// @Tags         conclusions
// @Produce      json
// @Param        id   path      string  true  "Conclusion ID"
// @Success      200  {object}  model.Conclusion
// @Failure      404  {object}  errorPayload
// @Router       /api/conclusions/{id} [get]
func GetConclusion(conclusions service.ConclusionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := conclusions.Get(c.UserContext(), c.Params("id"), middleware.UserIDFromCtx(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(res)
	}
}

// UpdateConclusion godoc
// @Summary      Update the text or status of a conclusion
// @Tags         conclusions
// @Accept       json
// @Produce      json
// @Param        id    path      string                  true  "Conclusion ID"
// @Param        body  body      model.ConclusionUpdate  true  "Fields to change"
// @Success      200  {object}  model.Conclusion
// @Failure      400  {object}  errorPayload
// @Failure      404  {object}  errorPayload
// @Router       /api/conclusions/{id} [put]
func UpdateConclusion(conclusions service.ConclusionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var upd model.ConclusionUpdate
		if err := c.BodyParser(&upd); err != nil {
			return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "invalid JSON body")
		}
		res, err := conclusions.Update(c.UserContext(), c.Params("id"), middleware.UserIDFromCtx(c), upd)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(res)
	}
}

// DeleteConclusion godoc
// @Summary      Delete a conclusion with its exhibits
// @Tags         conclusions
// @Produce      json
// @Param        id   path      string  true  "Conclusion ID"
// @Success      200  {object}  messageResponse
// @Failure      404  {object}  errorPayload
// @Router       /api/conclusions/{id} [delete]
func DeleteConclusion(conclusions service.ConclusionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := conclusions.Delete(c.UserContext(), c.Params("id"), middleware.UserIDFromCtx(c)); err != nil {
			return respondError(c, err)
		}
		return c.JSON(messageResponse{Message: "Conclusion supprimée"})
	}
}
