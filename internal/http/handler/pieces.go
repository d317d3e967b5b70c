package handler

import (
	"mime"

	"github.com/gofiber/fiber/v2"

	"conclusio/internal/http/middleware"
	"conclusio/internal/model"
	"conclusio/internal/service"
)

// reorderRequest is the body of PUT /conclusions/{id}/pieces/reorder.
type reorderRequest struct {
	PieceIDs []string `json:"piece_ids"`
}

// AttachPiece godoc
// @Summary      Attach an exhibit
// @Description  Uploads a file and appends it after the last exhibit of the conclusion.
// @Tags         pieces
// @Accept       multipart/form-data
// @Produce      json
// @Param        id           path      string  true   "Conclusion ID"
// @Param        file         formData  file    true   "Exhibit content"
// @Param        nom          formData  string  true   "Exhibit name"
// @Param        description  formData  string  false  "Exhibit description"
// @Success      201  {object}  model.Piece
// @Failure      400  {object}  errorPayload
// @Failure      401  {object}  errorPayload
// @Failure      404  {object}  errorPayload
// @Failure      500  {object}  errorPayload
// @Router       /api/conclusions/{id}/pieces [post]
func AttachPiece(pieces service.PieceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "file is required")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		p, err := pieces.Attach(c.UserContext(), c.Params("id"), middleware.UserIDFromCtx(c), service.AttachInput{
			Nom:              c.FormValue("nom"),
			Description:      c.FormValue("description"),
			Content:          f,
			Size:             fh.Size,
			OriginalFilename: fh.Filename,
			ContentType:      fh.Header.Get(fiber.HeaderContentType),
		})
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(p)
	}
}

// ListPieces godoc
// @Summary      List exhibits
// @Description  Returns the exhibits of a conclusion ordered by numero.
// @Tags         pieces
// @Produce      json
// @Param        id   path      string  true  "Conclusion ID"
// @Success      200  {array}   model.Piece
// @Failure      401  {object}  errorPayload
// @Failure      404  {object}  errorPayload
// @Router       /api/conclusions/{id}/pieces [get]
func ListPieces(pieces service.PieceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		list, err := pieces.List(c.UserContext(), c.Params("id"), middleware.UserIDFromCtx(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(list)
	}
}

// ReorderPieces godoc
// @Summary      Reorder exhibits
// @Description  Renumbers the exhibits following piece_ids. The list must name every exhibit once.
// @Tags         pieces
// @Accept       json
// @Produce      json
// @Param        id    path      string          true  "Conclusion ID"
// @Param        body  body      reorderRequest  true  "New order"
// @Success      200  {array}   model.Piece
// @Failure      400  {object}  errorPayload
// @Failure      401  {object}  errorPayload
// @Failure      404  {object}  errorPayload
// @Router       /api/conclusions/{id}/pieces/reorder [put]
func ReorderPieces(pieces service.PieceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req reorderRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "invalid JSON body")
		}
		if req.PieceIDs == nil {
			return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "piece_ids is required")
		}

		list, err := pieces.Reorder(c.UserContext(), c.Params("id"), middleware.UserIDFromCtx(c), req.PieceIDs)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(list)
	}
}

// UpdatePiece godoc
// @Summary      Update an exhibit
// @Tags         pieces
// @Accept       json
// @Produce      json
// @Param        id        path      string             true  "Conclusion ID"
// @Param        piece_id  path      string             true  "Exhibit ID"
// @Param        body      body      model.PieceUpdate  true  "Fields to change"
// @Success      200  {object}  model.Piece
// @Failure      400  {object}  errorPayload
// @Failure      404  {object}  errorPayload
// @Router       /api/conclusions/{id}/pieces/{piece_id} [put]
func UpdatePiece(pieces service.PieceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var upd model.PieceUpdate
		if err := c.BodyParser(&upd); err != nil {
			return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "invalid JSON body")
		}

		p, err := pieces.Update(c.UserContext(), c.Params("id"), c.Params("piece_id"), middleware.UserIDFromCtx(c), upd)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(p)
	}
}

// DeletePiece godoc
// @Summary      Remove an exhibit
// @Description  Deletes the exhibit and renumbers the following ones.
// @Tags         pieces
// @Produce      json
// @Param        id        path      string  true  "Conclusion ID"
// @Param        piece_id  path      string  true  "Exhibit ID"
// @Success      200  {object}  messageResponse
// @Failure      404  {object}  errorPayload
// @Router       /api/conclusions/{id}/pieces/{piece_id} [delete]
func DeletePiece(pieces service.PieceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := pieces.Remove(c.UserContext(), c.Params("id"), c.Params("piece_id"), middleware.UserIDFromCtx(c)); err != nil {
			return respondError(c, err)
		}
		return c.JSON(messageResponse{Message: "Pièce supprimée"})
	}
}

// DownloadPiece godoc
// @Summary      Download an exhibit
// @Tags         pieces
// @Produce      octet-stream
// @Param        piece_id  path  string  true  "Exhibit ID"
// @Success      200  {file}    binary
// @Failure      404  {object}  errorPayload
// @Router       /api/pieces/{piece_id}/download [get]
func DownloadPiece(pieces service.PieceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, rc, err := pieces.Download(c.UserContext(), c.Params("piece_id"), middleware.UserIDFromCtx(c))
		if err != nil {
			return respondError(c, err)
		}

		c.Set(fiber.HeaderContentType, p.MimeType)
		c.Set(fiber.HeaderContentDisposition, contentDisposition(p.OriginalFilename))
		// fasthttp closes the stream once the body is written.
		return c.SendStream(rc, int(p.FileSize))
	}
}

// contentDisposition formats an attachment header. Names that cannot sit in a quoted
// string are sent in the RFC 2231 encoded form.
func contentDisposition(filename string) string {
	if filename == "" {
		filename = "fichier"
	}
	if quotable(filename) {
		return `attachment; filename="` + filename + `"`
	}
	if v := mime.FormatMediaType("attachment", map[string]string{"filename": filename}); v != "" {
		return v
	}
	return `attachment; filename="fichier"`
}

func quotable(s string) bool {
	for i := 0; i < len(s); i++ {
		b := s[i]
		if b < 0x20 || b > 0x7e || b == '"' || b == '\\' {
			return false
		}
	}
	return true
}
