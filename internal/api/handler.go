// Package api exposes the statement converters over HTTP.
package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"fjacquet/beancount-import/internal/categorizer"
	"fjacquet/beancount-import/internal/container"
	"fjacquet/beancount-import/internal/logging"
	"fjacquet/beancount-import/internal/parser"
	"fjacquet/beancount-import/internal/parsererror"

	"github.com/gofiber/fiber/v2"
)

// Version is reported by the health endpoint.
const Version = "1.0.0"

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the JSON body of GET /api/health.
type HealthResponse struct {
	Status  string   `json:"status"`
	Version string   `json:"version"`
	Formats []string `json:"formats"`
}

// Handler holds the HTTP handlers for the API.
type Handler struct {
	container *container.Container
	logger    logging.Logger
}

// NewHandler creates a Handler serving the parsers of c.
func NewHandler(c *container.Container) *Handler {
	return &Handler{container: c, logger: c.GetLogger()}
}

// NewApp builds a fiber application with the API routes registered.
func NewApp(c *container.Container) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "beancount-import",
		BodyLimit:             c.GetConfig().Server.BodyLimitMB << 20,
		DisableStartupMessage: true,
	})
	NewHandler(c).RegisterRoutes(app)
	return app
}

// RegisterRoutes sets up the HTTP routes.
func (h *Handler) RegisterRoutes(app *fiber.App) {
	app.Get("/api/health", h.HandleHealth)
	app.Post("/api/convert/:format", h.HandleConvert)
}

// HandleHealth reports liveness and the supported formats.
func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	formats := make([]string, 0, len(parser.Types()))
	for _, pt := range parser.Types() {
		formats = append(formats, string(pt))
	}
	return c.JSON(HealthResponse{Status: "ok", Version: Version, Formats: formats})
}

// HandleConvert converts the uploaded statement in form field "file" and
// answers with the ledger text. The optional "account" field overrides the
// statement account and the optional "rules" file replaces the configured
// rules for this request.
func (h *Handler) HandleConvert(c *fiber.Ctx) error {
	pt, err := parser.ParseType(c.Params("format"))
	if err != nil {
		return writeError(c, fiber.StatusNotFound, err.Error())
	}

	upload, err := c.FormFile("file")
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, "No file uploaded. Use form field 'file'.")
	}

	classifier := h.container.GetClassifier()
	if rulesUpload, err := c.FormFile("rules"); err == nil {
		table, err := loadRules(rulesUpload)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, err.Error())
		}
		classifier = h.container.ClassifierFor(table)
	}

	p, err := h.container.ParserFor(pt, strings.TrimSpace(c.FormValue("account")))
	if err != nil {
		return writeError(c, fiber.StatusNotFound, err.Error())
	}

	tmp, err := os.CreateTemp("", "statement-*"+filepath.Ext(upload.Filename))
	if err != nil {
		return writeError(c, fiber.StatusInternalServerError, "Failed to create temp file.")
	}
	tmpPath := tmp.Name()
	_ = tmp.Close()
	defer func() { _ = os.Remove(tmpPath) }()

	if err := c.SaveFile(upload, tmpPath); err != nil {
		return writeError(c, fiber.StatusInternalServerError, "Failed to save uploaded file.")
	}

	entries, err := p.ConvertFile(c.UserContext(), tmpPath, classifier)
	if err != nil {
		h.logger.WithError(err).Warn("Conversion failed",
			logging.Field{Key: logging.FieldParser, Value: string(pt)},
			logging.Field{Key: logging.FieldInputFile, Value: upload.Filename})
		if errors.Is(err, parsererror.ErrMalformedInput) {
			return writeError(c, fiber.StatusUnprocessableEntity, err.Error())
		}
		return writeError(c, fiber.StatusInternalServerError, err.Error())
	}

	var buf bytes.Buffer
	if err := h.container.WriteLedger(&buf, entries); err != nil {
		return writeError(c, fiber.StatusInternalServerError, err.Error())
	}

	h.logger.Info("Converted statement",
		logging.Field{Key: logging.FieldParser, Value: string(pt)},
		logging.Field{Key: logging.FieldInputFile, Value: upload.Filename},
		logging.Field{Key: logging.FieldCount, Value: len(entries)})

	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.Send(buf.Bytes())
}

// loadRules reads an uploaded rules table, YAML when the file name says so.
func loadRules(fh *multipart.FileHeader) (*categorizer.Table, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("could not open rules file: %w", err)
	}
	defer func() { _ = f.Close() }()

	switch strings.ToLower(filepath.Ext(fh.Filename)) {
	case ".yaml", ".yml":
		data, err := io.ReadAll(f)
		if err != nil {
			return nil, fmt.Errorf("could not read rules file: %w", err)
		}
		table, err := categorizer.LoadYAML(data)
		if err != nil {
			return nil, fmt.Errorf("could not parse rules file: %w", err)
		}
		return table, nil
	default:
		table, err := categorizer.Load(f)
		if err != nil {
			return nil, fmt.Errorf("could not read rules file: %w", err)
		}
		return table, nil
	}
}

func writeError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(ErrorResponse{Error: msg})
}
