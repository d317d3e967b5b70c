package handler

import (
	"github.com/gofiber/fiber/v2"

	"conclusio/internal/service"
)

// SearchArticles godoc
// @Summary      Search the Code civil extract
// @Tags         reference
// @Produce      json
// @Param        q    query     string  true  "Text to look for in numero, titre or contenu"
// @Success      200  {array}   model.Article
// @Failure      400  {object}  errorPayload
// @Router       /api/code-civil/search [get]
func SearchArticles(ref service.ReferenceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := ref.SearchArticles(c.UserContext(), c.Query("q"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(res)
	}
}

// ListArticles godoc
// @Summary      List Code civil articles
// @Tags         reference
// @Produce      json
// @Param        category  query  string  false  "Category filter"
// @Success      200  {array}  model.Article
// @Router       /api/code-civil/articles [get]
func ListArticles(ref service.ReferenceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := ref.ListArticles(c.UserContext(), c.Query("category"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(res)
	}
}

// ListTemplates godoc
// @Summary      List drafting templates
// @Tags         reference
// @Produce      json
// @Param        type  query  string  false  "jaf or penal"
// @Success      200  {array}   model.Template
// @Failure      400  {object}  errorPayload
// @Router       /api/templates [get]
func ListTemplates(ref service.ReferenceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := ref.ListTemplates(c.UserContext(), c.Query("type"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(res)
	}
}

// GetTemplate godoc
// @Summary      Get a drafting template
// @Tags         reference
// @Produce      json
// @Param        id   path      string  true  "Template ID"
// @Success      200  {object}  model.Template
// @Failure      404  {object}  errorPayload
// @Router       /api/templates/{id} [get]
func GetTemplate(ref service.ReferenceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := ref.GetTemplate(c.UserContext(), c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(res)
	}
}
