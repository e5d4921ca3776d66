package analyze

import "github.com/gofiber/fiber/v3"

func RegisterRoutes(r fiber.Router) {
	r.Post("/analyze/:docID", HandleAnalyze)
	r.Post("/compliance", HandleCompliance)
}
