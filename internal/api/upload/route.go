package upload

import (
	"github.com/gofiber/fiber/v3"
)

// RegisterRoutes registers upload and document management routes on the
// provided router.
func RegisterRoutes(r fiber.Router) {
	r.Post("/upload", HandleUpload)

	grp := r.Group("/documents")
	grp.Get("/", HandleListDocuments)
	grp.Get("/:docID", HandleGetDocument)
	grp.Get("/:docID/download", HandleDownloadDocument)
	grp.Patch("/:docID", HandlePatchDocument)
	grp.Delete("/:docID", HandleDeleteDocument)
}
