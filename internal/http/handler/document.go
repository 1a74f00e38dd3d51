package handler

import (
	"io"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"casedocs/internal/http/middleware"
	"casedocs/internal/model"
	"casedocs/internal/repository"
	"casedocs/internal/service"
)

// UploadDocument handles multipart uploads (field name: file). Optional
// form fields: case_id, document_type (defaults to "other"), document_date
// (YYYY-MM-DD), description, tags (JSON array or comma-separated),
// is_template, auto_ocr (defaults to true).
func UploadDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		content, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_READ_ERROR", "cannot read uploaded file")
		}

		in := service.UploadInput{
			Content:          content,
			OriginalFilename: fh.Filename,
			DocumentType:     model.DocumentTypeOther,
			Tags:             c.FormValue("tags"),
			AutoOCR:          true,
		}
		if v := c.FormValue("case_id"); v != "" {
			if _, err := uuid.Parse(v); err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid case_id format")
			}
			in.CaseID = &v
		}
		if v := c.FormValue("document_type"); v != "" {
			in.DocumentType = model.DocumentType(v)
		}
		if v := c.FormValue("document_date"); v != "" {
			d, err := time.Parse("2006-01-02", v)
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_DATE", "document_date must be YYYY-MM-DD")
			}
			in.DocumentDate = &d
		}
		if v := c.FormValue("description"); v != "" {
			in.Description = &v
		}
		if v := c.FormValue("is_template"); v != "" {
			in.IsTemplate, _ = strconv.ParseBool(v)
		}
		if v := c.FormValue("auto_ocr"); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				in.AutoOCR = b
			}
		}
		if uid, ok := c.Locals(middleware.UserIDLocalKey).(string); ok {
			in.CreatedBy = uid
		}

		doc, err := docSvc.Upload(c.UserContext(), in)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(doc)
	}
}

func ListDocuments(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		var f repository.DocumentFilter
		if v := c.Query("case_id"); v != "" {
			f.CaseID = &v
		}
		if v := c.Query("document_type"); v != "" {
			dt := model.DocumentType(v)
			if !dt.Valid() {
				return writeError(c, fiber.StatusBadRequest, "INVALID_DOCUMENT_TYPE", "invalid document type")
			}
			f.DocumentType = &dt
		}
		if v := c.Query("is_template"); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_IS_TEMPLATE", "invalid is_template")
			}
			f.IsTemplate = &b
		}
		f.Search = c.Query("search")

		res, err := docSvc.List(c.UserContext(), f, limit, offset)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

func GetDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		doc, err := docSvc.Get(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(doc)
	}
}

func UpdateDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		var upd model.DocumentUpdate
		if err := c.BodyParser(&upd); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		doc, err := docSvc.Update(c.UserContext(), id, upd)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(doc)
	}
}

func DeleteDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := docSvc.Delete(c.UserContext(), id); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func DownloadDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		doc, rc, err := docSvc.Download(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		defer rc.Close()

		content, err := io.ReadAll(rc)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		c.Set(fiber.HeaderContentType, doc.ContentType)
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+doc.OriginalFilename+`"`)
		return c.Send(content)
	}
}

func RunDocumentOCR(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		text, err := docSvc.RunOCR(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"id": id, "ocr_text": text})
	}
}

func OCRStatus(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(docSvc.OCRHealth(c.UserContext()))
	}
}
