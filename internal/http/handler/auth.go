package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"conclusio/internal/config"
	"conclusio/internal/http/middleware"
	"conclusio/internal/service"
)

// Me godoc
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Success      200  {object}  model.User
// @Failure      401  {object}  errorPayload
// @Router       /api/auth/me [get]
func Me(auth service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.Me(c.UserContext(), middleware.UserIDFromCtx(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(user)
	}
}

// Logout godoc
// @Summary      Close the current session
// @Tags         auth
// @Produce      json
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  errorPayload
// @Router       /api/auth/logout [post]
func Logout(auth service.AuthService, cfg config.SessionConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := auth.Logout(c.UserContext(), middleware.ClaimsFromCtx(c)); err != nil {
			return respondError(c, err)
		}
		c.Cookie(&fiber.Cookie{
			Name:     cfg.CookieName,
			Value:    "",
			Path:     "/",
			Expires:  time.Unix(0, 0),
			MaxAge:   -1,
			Secure:   cfg.Secure,
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
		return c.JSON(messageResponse{Message: "Déconnexion réussie"})
	}
}
