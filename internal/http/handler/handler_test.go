package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"casedocs/internal/filetype"
	"casedocs/internal/model"
	"casedocs/internal/repository"
	"casedocs/internal/service"
	serviceMocks "casedocs/internal/service/mocks"
)

func multipartBody(t *testing.T, filename string, content []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	part.Write(content)
	for k, v := range fields {
		writer.WriteField(k, v)
	}
	writer.Close()
	return body, writer.FormDataContentType()
}

func decodeError(t *testing.T, resp *http.Response) errorPayload {
	t.Helper()
	var res errorPayload
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	return res
}

func TestHealthCheck(t *testing.T) {
	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	app := fiber.New()
	app.Get("/health", HealthCheck(db))

	t.Run("healthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(nil)

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(errors.New("db error"))

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, "SERVICE_UNAVAILABLE", decodeError(t, resp).Error.Code)
	})
}

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestUploadDocument(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := fiber.New()
	app.Post("/documents", UploadDocument(mockSvc))

	t.Run("success with metadata fields", func(t *testing.T) {
		caseID := uuid.New().String()
		body, ct := multipartBody(t, "scan.pdf", []byte("%PDF-1.4"), map[string]string{
			"case_id":       caseID,
			"document_type": "evidence",
			"document_date": "2026-08-01",
			"description":   "intake scan",
			"tags":          `["intake"]`,
			"auto_ocr":      "false",
		})

		expectedDoc := &model.Document{ID: uuid.New().String(), Filename: "scan.pdf"}
		mockSvc.On("Upload", mock.Anything, mock.MatchedBy(func(in service.UploadInput) bool {
			return in.OriginalFilename == "scan.pdf" &&
				in.CaseID != nil && *in.CaseID == caseID &&
				in.DocumentType == model.DocumentTypeEvidence &&
				in.DocumentDate != nil && in.DocumentDate.Format("2006-01-02") == "2026-08-01" &&
				in.Description != nil && *in.Description == "intake scan" &&
				!in.AutoOCR
		})).Return(expectedDoc, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/documents", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var result model.Document
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, expectedDoc.ID, result.ID)
		mockSvc.AssertExpectations(t)
	})

	t.Run("defaults: type other, auto_ocr on", func(t *testing.T) {
		body, ct := multipartBody(t, "notes.txt", []byte("hello"), nil)

		mockSvc.On("Upload", mock.Anything, mock.MatchedBy(func(in service.UploadInput) bool {
			return in.DocumentType == model.DocumentTypeOther && in.AutoOCR && in.CaseID == nil
		})).Return(&model.Document{ID: uuid.New().String()}, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/documents", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("no file", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/documents", nil))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "FILE_REQUIRED", decodeError(t, resp).Error.Code)
	})

	t.Run("invalid case_id", func(t *testing.T) {
		body, ct := multipartBody(t, "notes.txt", []byte("hello"), map[string]string{"case_id": "not-a-uuid"})

		req := httptest.NewRequest(http.MethodPost, "/documents", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_ID", decodeError(t, resp).Error.Code)
	})

	t.Run("invalid document_date", func(t *testing.T) {
		body, ct := multipartBody(t, "notes.txt", []byte("hello"), map[string]string{"document_date": "01/08/2026"})

		req := httptest.NewRequest(http.MethodPost, "/documents", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_DATE", decodeError(t, resp).Error.Code)
	})

	t.Run("unsupported file type", func(t *testing.T) {
		body, ct := multipartBody(t, "tool.exe", []byte{0x4d, 0x5a}, nil)

		mockSvc.On("Upload", mock.Anything, mock.Anything).
			Return(nil, &filetype.UnsupportedTypeError{Detected: "application/vnd.microsoft.portable-executable"}).Once()

		req := httptest.NewRequest(http.MethodPost, "/documents", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)
		res := decodeError(t, resp)
		assert.Equal(t, "UNSUPPORTED_FILE_TYPE", res.Error.Code)
		assert.Contains(t, res.Error.Message, "application/vnd.microsoft.portable-executable")
		mockSvc.AssertExpectations(t)
	})

	t.Run("file too large", func(t *testing.T) {
		body, ct := multipartBody(t, "big.pdf", []byte("%PDF-1.4"), nil)

		mockSvc.On("Upload", mock.Anything, mock.Anything).
			Return(nil, &filetype.TooLargeError{Limit: 52428800}).Once()

		req := httptest.NewRequest(http.MethodPost, "/documents", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
		res := decodeError(t, resp)
		assert.Equal(t, "FILE_TOO_LARGE", res.Error.Code)
		assert.Contains(t, res.Error.Message, "52428800")
		mockSvc.AssertExpectations(t)
	})

	t.Run("case not found", func(t *testing.T) {
		body, ct := multipartBody(t, "notes.txt", []byte("hello"), map[string]string{"case_id": uuid.New().String()})

		mockSvc.On("Upload", mock.Anything, mock.Anything).Return(nil, service.ErrCaseNotFound).Once()

		req := httptest.NewRequest(http.MethodPost, "/documents", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "CASE_NOT_FOUND", decodeError(t, resp).Error.Code)
		mockSvc.AssertExpectations(t)
	})
}

func TestListDocuments(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := fiber.New()
	app.Get("/documents", ListDocuments(mockSvc))

	t.Run("success with filters", func(t *testing.T) {
		caseID := uuid.New().String()
		expectedRes := &service.DocumentListResult{
			Items: []model.Document{{ID: uuid.New().String(), Filename: "test.pdf"}},
			Total: 1,
		}
		mockSvc.On("List", mock.Anything, mock.MatchedBy(func(f repository.DocumentFilter) bool {
			return f.CaseID != nil && *f.CaseID == caseID &&
				f.DocumentType != nil && *f.DocumentType == model.DocumentTypeContract &&
				f.Search == "lease"
		}), 5, 10).Return(expectedRes, nil).Once()

		url := "/documents?limit=5&offset=10&case_id=" + caseID + "&document_type=contract&search=lease"
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, url, nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result service.DocumentListResult
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Len(t, result.Items, 1)
		assert.Equal(t, 1, result.Total)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid limit", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/documents?limit=abc", nil))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_LIMIT", decodeError(t, resp).Error.Code)
	})

	t.Run("invalid document_type", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/documents?document_type=memo", nil))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_DOCUMENT_TYPE", decodeError(t, resp).Error.Code)
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc.On("List", mock.Anything, mock.Anything, 10, 0).
			Return(nil, errors.New("service error")).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/documents", nil))

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestGetDocument(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := fiber.New()
	app.Get("/documents/:id", GetDocument(mockSvc))

	t.Run("success", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Get", mock.Anything, id).Return(&model.Document{ID: id}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/documents/"+id, nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result model.Document
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, id, result.ID)
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Get", mock.Anything, id).Return(nil, service.ErrNotFound).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/documents/"+id, nil))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decodeError(t, resp).Error.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid id", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/documents/invalid-uuid", nil))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_ID", decodeError(t, resp).Error.Code)
	})
}

func TestUpdateDocument(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := fiber.New()
	app.Patch("/documents/:id", UpdateDocument(mockSvc))

	t.Run("success", func(t *testing.T) {
		id := uuid.New().String()
		desc := "updated description"
		mockSvc.On("Update", mock.Anything, id, mock.MatchedBy(func(upd model.DocumentUpdate) bool {
			return upd.Description != nil && *upd.Description == desc
		})).Return(&model.Document{ID: id, Description: &desc}, nil).Once()

		req := httptest.NewRequest(http.MethodPatch, "/documents/"+id,
			strings.NewReader(`{"description":"updated description"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid body", func(t *testing.T) {
		id := uuid.New().String()
		req := httptest.NewRequest(http.MethodPatch, "/documents/"+id, strings.NewReader("{"))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_BODY", decodeError(t, resp).Error.Code)
	})

	t.Run("not found", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Update", mock.Anything, id, mock.Anything).Return(nil, service.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodPatch, "/documents/"+id, strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestDeleteDocument(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := fiber.New()
	app.Delete("/documents/:id", DeleteDocument(mockSvc))

	t.Run("success", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Delete", mock.Anything, id).Return(nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodDelete, "/documents/"+id, nil))

		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Delete", mock.Anything, id).Return(service.ErrNotFound).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodDelete, "/documents/"+id, nil))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestDownloadDocument(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := fiber.New()
	app.Get("/documents/:id/download", DownloadDocument(mockSvc))

	t.Run("success", func(t *testing.T) {
		id := uuid.New().String()
		doc := &model.Document{ID: id, OriginalFilename: "report.pdf", ContentType: "application/pdf"}
		mockSvc.On("Download", mock.Anything, id).
			Return(doc, io.NopCloser(bytes.NewReader([]byte("%PDF-1.4"))), nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/documents/"+id+"/download", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "application/pdf", resp.Header.Get(fiber.HeaderContentType))
		assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), `filename="report.pdf"`)

		got, _ := io.ReadAll(resp.Body)
		assert.Equal(t, []byte("%PDF-1.4"), got)
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Download", mock.Anything, id).Return(nil, nil, service.ErrNotFound).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/documents/"+id+"/download", nil))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestRunDocumentOCR(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := fiber.New()
	app.Post("/documents/:id/ocr", RunDocumentOCR(mockSvc))

	t.Run("success", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("RunOCR", mock.Anything, id).Return("=== Page 1 ===\nrecognized", nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/documents/"+id+"/ocr", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "=== Page 1 ===\nrecognized", body["ocr_text"])
		mockSvc.AssertExpectations(t)
	})

	t.Run("not a pdf", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("RunOCR", mock.Anything, id).Return("", service.ErrNotPDF).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/documents/"+id+"/ocr", nil))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "NOT_PDF", decodeError(t, resp).Error.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("ocr unavailable", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("RunOCR", mock.Anything, id).Return("", service.ErrOCRUnavailable).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/documents/"+id+"/ocr", nil))

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, "OCR_UNAVAILABLE", decodeError(t, resp).Error.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("ocr failed", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("RunOCR", mock.Anything, id).Return("", service.ErrOCRFailed).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/documents/"+id+"/ocr", nil))

		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
		assert.Equal(t, "OCR_FAILED", decodeError(t, resp).Error.Code)
		mockSvc.AssertExpectations(t)
	})
}

func TestOCRStatus(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := fiber.New()
	app.Get("/ocr/status", OCRStatus(mockSvc))

	mockSvc.On("OCRHealth", mock.Anything).Return(service.OCRStatus{Enabled: true, Available: false}).Once()

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/ocr/status", nil))

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body service.OCRStatus
	json.NewDecoder(resp.Body).Decode(&body)
	assert.True(t, body.Enabled)
	assert.False(t, body.Available)
	mockSvc.AssertExpectations(t)
}

func TestCaseHandlers(t *testing.T) {
	mockSvc := new(serviceMocks.MockCaseService)
	app := fiber.New()
	app.Post("/cases", CreateCase(mockSvc))
	app.Get("/cases", ListCases(mockSvc))
	app.Get("/cases/:id", GetCase(mockSvc))

	t.Run("create success", func(t *testing.T) {
		mockSvc.On("Create", mock.Anything, "2026-0042", "Estate of Doe").
			Return(&model.Case{ID: uuid.New().String(), CaseNumber: "2026-0042"}, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/cases",
			strings.NewReader(`{"case_number":"2026-0042","title":"Estate of Doe"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("create missing fields", func(t *testing.T) {
		mockSvc.On("Create", mock.Anything, "", "Estate of Doe").
			Return(nil, service.ErrCaseFieldsRequired).Once()

		req := httptest.NewRequest(http.MethodPost, "/cases",
			strings.NewReader(`{"title":"Estate of Doe"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_CASE", decodeError(t, resp).Error.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("list", func(t *testing.T) {
		mockSvc.On("List", mock.Anything).
			Return([]model.Case{{ID: uuid.New().String()}}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/cases", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body struct {
			Data []model.Case `json:"data"`
		}
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Len(t, body.Data, 1)
		mockSvc.AssertExpectations(t)
	})

	t.Run("get not found", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Get", mock.Anything, id).Return(nil, service.ErrCaseNotFound).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/cases/"+id, nil))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "CASE_NOT_FOUND", decodeError(t, resp).Error.Code)
		mockSvc.AssertExpectations(t)
	})
}

func TestRouting(t *testing.T) {
	app := fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler(),
	})

	mockDocSvc := new(serviceMocks.MockDocumentService)
	mockCaseSvc := new(serviceMocks.MockCaseService)
	RegisterRoutes(app, nil, mockDocSvc, mockCaseSvc, "test-secret")

	t.Run("not found route", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/non-existent", nil))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decodeError(t, resp).Error.Code)
	})

	t.Run("method not allowed", func(t *testing.T) {
		// Health endpoint only allows GET
		resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/health", nil))

		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
		assert.Equal(t, "METHOD_NOT_ALLOWED", decodeError(t, resp).Error.Code)
	})

	t.Run("api routes require a token", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/documents", nil))

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("delete requires admin role", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": "user-1", "role": "member",
		}).SignedString([]byte("test-secret"))
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodDelete, "/documents/"+uuid.New().String(), nil)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})
}
