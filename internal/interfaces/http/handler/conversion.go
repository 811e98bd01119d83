package handler

import (
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mittenshop/fulfillment/internal/application/pipeline"
	"github.com/mittenshop/fulfillment/internal/domain/manifest"
	"github.com/mittenshop/fulfillment/internal/infrastructure/csvimport"
	"github.com/mittenshop/fulfillment/internal/infrastructure/export"
	"github.com/mittenshop/fulfillment/internal/infrastructure/labels"
	"github.com/mittenshop/fulfillment/internal/infrastructure/logger"
	"github.com/mittenshop/fulfillment/internal/interfaces/http/dto"
)

// conversionRun keeps a finished run around for follow-up downloads.
type conversionRun struct {
	result    *pipeline.Result
	locations *pipeline.DistributeResult
	labels    []byte
	createdAt time.Time
}

// ConversionHandler handles order export conversion endpoints.
type ConversionHandler struct {
	BaseHandler
	service       *pipeline.Service
	store         pipeline.ManifestStore
	writer        *export.ManifestWriter
	maxUpload     int64
	labelsEnabled bool
	labelTemplate string

	mu   sync.RWMutex
	runs map[uuid.UUID]*conversionRun
}

// ConversionHandlerConfig configures a ConversionHandler.
type ConversionHandlerConfig struct {
	Service        *pipeline.Service
	Store          pipeline.ManifestStore
	MaxUploadBytes int64
	LabelsEnabled  bool
	LabelTemplate  string
}

// NewConversionHandler creates a ConversionHandler.
func NewConversionHandler(cfg ConversionHandlerConfig) *ConversionHandler {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10 << 20
	}
	return &ConversionHandler{
		service:       cfg.Service,
		store:         cfg.Store,
		writer:        export.NewManifestWriter(),
		maxUpload:     cfg.MaxUploadBytes,
		labelsEnabled: cfg.LabelsEnabled,
		labelTemplate: cfg.LabelTemplate,
		runs:          make(map[uuid.UUID]*conversionRun),
	}
}

// RegisterRoutes registers conversion routes on the API group.
func (h *ConversionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	conversions := rg.Group("/conversions")
	{
		conversions.POST("", h.Create)
		conversions.GET("/:id", h.Get)
		conversions.GET("/:id/report", h.Report)
		conversions.GET("/:id/manifests/:region", h.Manifest)
		conversions.GET("/:id/labels", h.Labels)
	}
}

// WarningDTO is one data-quality warning from a run.
type WarningDTO struct {
	Row     int    `json:"row"`
	Column  string `json:"column,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ConversionResponse summarizes a finished conversion run.
type ConversionResponse struct {
	RunID              string                     `json:"run_id"`
	RowsRead           int                        `json:"rows_read"`
	Orders             int                        `json:"orders"`
	InternationalLines int                        `json:"international_lines"`
	USLines            int                        `json:"us_lines"`
	DomesticLabels     int                        `json:"domestic_labels"`
	Excluded           int                        `json:"excluded"`
	Locations          *pipeline.DistributeResult `json:"locations,omitempty"`
	Warnings           []WarningDTO               `json:"warnings,omitempty"`
	WarningsTruncated  bool                       `json:"warnings_truncated,omitempty"`
	TotalWarnings      int                        `json:"total_warnings"`
	Report             string                     `json:"report"`
}

// Create accepts a storefront order export as a multipart upload, runs the
// conversion, persists the manifests, and returns the run summary.
func (h *ConversionHandler) Create(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.BadRequest(c, dto.ErrCodeBadRequest, "file is required")
		return
	}
	if fileHeader.Size > h.maxUpload {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeFileTooLarge, "file exceeds the upload size limit")
		return
	}
	if ext := strings.ToLower(filepath.Ext(fileHeader.Filename)); ext != ".csv" {
		h.Error(c, http.StatusUnsupportedMediaType, dto.ErrCodeInvalidFileType, "only CSV files are accepted")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.Internal(c, "failed to read uploaded file")
		return
	}
	defer file.Close()

	result, err := h.service.Convert(c.Request.Context(), file)
	if err != nil {
		h.Error(c, http.StatusUnprocessableEntity, dto.ErrCodeInvalidExport, err.Error())
		return
	}

	run := &conversionRun{result: result, createdAt: time.Now()}

	var sink pipeline.LabelSink
	var renderer *labels.TemplateRenderer
	if h.labelsEnabled {
		renderer, err = labels.NewTemplateRenderer(h.labelTemplate)
		if err != nil {
			h.Internal(c, "label template is invalid")
			return
		}
		sink = renderer
	}

	locations, err := h.service.Distribute(c.Request.Context(), result, h.store, sink)
	if err != nil {
		logger.FromContext(c).Error("manifest distribution failed",
			zap.String("run_id", result.RunID.String()), zap.Error(err))
		h.Internal(c, "failed to persist manifests")
		return
	}
	run.locations = locations
	if renderer != nil {
		run.labels = renderer.Bytes()
	}

	h.mu.Lock()
	h.runs[result.RunID] = run
	h.mu.Unlock()

	h.Created(c, h.response(run))
}

// Get returns the summary of a previous run.
func (h *ConversionHandler) Get(c *gin.Context) {
	run, ok := h.lookup(c)
	if !ok {
		return
	}
	h.Success(c, h.response(run))
}

// Report returns the plain-text summary report of a run.
func (h *ConversionHandler) Report(c *gin.Context) {
	run, ok := h.lookup(c)
	if !ok {
		return
	}
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(run.result.Report))
}

// Manifest streams a region manifest ("international" or "us") as a CSV
// attachment.
func (h *ConversionHandler) Manifest(c *gin.Context) {
	run, ok := h.lookup(c)
	if !ok {
		return
	}

	var lines []manifest.Line
	var name string
	switch c.Param("region") {
	case "international":
		lines, name = run.result.Output.International, "manifest_international.csv"
	case "us":
		lines, name = run.result.Output.US, "manifest_us.csv"
	default:
		h.BadRequest(c, dto.ErrCodeBadRequest, "region must be \"international\" or \"us\"")
		return
	}
	if len(lines) == 0 {
		h.NotFound(c, "run produced no "+c.Param("region")+" manifest")
		return
	}

	data, err := h.writer.Encode(lines)
	if err != nil {
		h.Internal(c, "failed to encode manifest")
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, "text/csv", data)
}

// Labels streams the rendered domestic label sheet.
func (h *ConversionHandler) Labels(c *gin.Context) {
	run, ok := h.lookup(c)
	if !ok {
		return
	}
	if len(run.labels) == 0 {
		h.NotFound(c, "run produced no domestic labels")
		return
	}
	c.Header("Content-Disposition", `attachment; filename="labels.txt"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", run.labels)
}

func (h *ConversionHandler) lookup(c *gin.Context) (*conversionRun, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, dto.ErrCodeBadRequest, "invalid run ID")
		return nil, false
	}
	h.mu.RLock()
	run, ok := h.runs[id]
	h.mu.RUnlock()
	if !ok {
		h.NotFound(c, "conversion run not found")
		return nil, false
	}
	return run, true
}

func (h *ConversionHandler) response(run *conversionRun) ConversionResponse {
	res := run.result
	resp := ConversionResponse{
		RunID:              res.RunID.String(),
		RowsRead:           res.RowsRead,
		Orders:             res.Merged,
		InternationalLines: len(res.Output.International),
		USLines:            len(res.Output.US),
		DomesticLabels:     len(res.Output.Labels),
		Excluded:           res.Output.Excluded,
		Locations:          run.locations,
		Warnings:           warningDTOs(res.Warnings),
		WarningsTruncated:  res.WarningsTruncated,
		TotalWarnings:      res.TotalWarnings,
		Report:             res.Report,
	}
	return resp
}

func warningDTOs(errs []csvimport.RowError) []WarningDTO {
	if len(errs) == 0 {
		return nil
	}
	out := make([]WarningDTO, len(errs))
	for i, e := range errs {
		out[i] = WarningDTO{Row: e.Row, Column: e.Column, Code: e.Code, Message: e.Message}
	}
	return out
}
