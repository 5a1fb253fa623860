package controller

import (
	"autofilter-be/internal/pkg/serverutils"
	"autofilter-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IVerificationController interface {
	RegisterRoutes(r fiber.Router, endpoint string)
	VerifyCallback(ctx *fiber.Ctx) error
	Health(ctx *fiber.Ctx) error
}

type verificationController struct {
	service service.IVerificationService
}

func NewVerificationController(service service.IVerificationService) IVerificationController {
	return &verificationController{service: service}
}

func (c *verificationController) RegisterRoutes(r fiber.Router, endpoint string) {
	r.Get(endpoint, c.VerifyCallback)
	r.Get("/healthz", c.Health)
}

const successPage = `<!DOCTYPE html>
<html>
<head><title>Verification complete</title></head>
<body>
<h1>Verification complete</h1>
<p>Your tokens have been credited. You can return to the chat now.</p>
</body>
</html>`

const failurePage = `<!DOCTYPE html>
<html>
<head><title>Verification failed</title></head>
<body>
<h1>Link invalid or expired</h1>
<p>Request a new verification link from the bot and try again.</p>
</body>
</html>`

// VerifyCallback is hit by the shortener redirect. A consumed, expired
// or unknown token renders the same page; the response never says which.
func (c *verificationController) VerifyCallback(ctx *fiber.Ctx) error {
	ctx.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)

	token := ctx.Query("token")
	if token == "" {
		return ctx.Status(fiber.StatusBadRequest).SendString(failurePage)
	}

	userID, err := c.service.Redeem(ctx.Context(), token)
	if err != nil {
		return err
	}
	if userID == 0 {
		return ctx.Status(fiber.StatusBadRequest).SendString(failurePage)
	}

	return ctx.SendString(successPage)
}

func (c *verificationController) Health(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("service healthy", "ok"))
}
