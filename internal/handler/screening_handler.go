package handler

import (
	"bytes"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jengzang/reallocation-screener/internal/models"
	"github.com/jengzang/reallocation-screener/internal/presentation"
	"github.com/jengzang/reallocation-screener/internal/service"
	"github.com/jengzang/reallocation-screener/pkg/response"
)

// ScreeningHandler handles HTTP requests for the screening dashboard
type ScreeningHandler struct {
	screeningService *service.ScreeningService
	maxUploadBytes   int64
	logger           *zap.Logger
}

// NewScreeningHandler creates a new screening handler
func NewScreeningHandler(screeningService *service.ScreeningService, maxUploadBytes int64, logger *zap.Logger) *ScreeningHandler {
	return &ScreeningHandler{
		screeningService: screeningService,
		maxUploadBytes:   maxUploadBytes,
		logger:           logger,
	}
}

// GetOptions handles GET /api/v1/screening/options
func (h *ScreeningHandler) GetOptions(c *gin.Context) {
	clean, err := strconv.ParseBool(c.DefaultQuery("clean", "true"))
	if err != nil {
		response.BadRequest(c, "Invalid clean parameter")
		return
	}

	resp, err := h.screeningService.Options(c.Request.Context(), clean)
	if err != nil {
		fail(c, h.logger, err)
		return
	}

	response.Success(c, resp)
}

// PostView handles POST /api/v1/screening/view
func (h *ScreeningHandler) PostView(c *gin.Context) {
	req, ok := bindViewRequest(c)
	if !ok {
		return
	}

	resp, err := h.screeningService.View(c.Request.Context(), req)
	if err != nil {
		fail(c, h.logger, err)
		return
	}

	response.Success(c, resp)
}

// PostMap handles POST /api/v1/screening/map
func (h *ScreeningHandler) PostMap(c *gin.Context) {
	req, ok := bindViewRequest(c)
	if !ok {
		return
	}

	layer, err := h.screeningService.Map(c.Request.Context(), req)
	if err != nil {
		fail(c, h.logger, err)
		return
	}

	response.Success(c, layer)
}

// PostExport handles POST /api/v1/screening/export
func (h *ScreeningHandler) PostExport(c *gin.Context) {
	req, ok := bindViewRequest(c)
	if !ok {
		return
	}
	h.export(c, req)
}

// GetExport handles GET /api/v1/screening/export, with filters in the query string
// so the export can be fetched by a plain download link.
func (h *ScreeningHandler) GetExport(c *gin.Context) {
	var filters models.FilterState
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.BadRequest(c, "Invalid filter parameters: "+err.Error())
		return
	}
	clean, err := strconv.ParseBool(c.DefaultQuery("clean", "true"))
	if err != nil {
		response.BadRequest(c, "Invalid clean parameter")
		return
	}
	h.export(c, models.ViewRequest{Clean: &clean, Filters: filters})
}

func (h *ScreeningHandler) export(c *gin.Context, req models.ViewRequest) {
	var buf bytes.Buffer
	if _, err := h.screeningService.Export(c.Request.Context(), req, &buf); err != nil {
		fail(c, h.logger, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+presentation.ExportFilename+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// PostHighlight handles POST /api/v1/screening/highlight (multipart "collection" and "allocation")
func (h *ScreeningHandler) PostHighlight(c *gin.Context) {
	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}

	collection, err := formFile(c, "collection")
	if err != nil {
		response.BadRequest(c, "Invalid collection upload: "+err.Error())
		return
	}
	if collection != nil {
		defer collection.Close()
	}

	allocation, err := formFile(c, "allocation")
	if err != nil {
		response.BadRequest(c, "Invalid allocation upload: "+err.Error())
		return
	}
	if allocation != nil {
		defer allocation.Close()
	}

	summary, err := h.screeningService.Highlight(reader(collection), reader(allocation))
	if err != nil {
		fail(c, h.logger, err)
		return
	}

	response.Success(c, summary)
}

// formFile opens an optional upload; a missing part yields nil
func formFile(c *gin.Context, name string) (multipart.File, error) {
	header, err := c.FormFile(name)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return header.Open()
}

// reader keeps a nil file from becoming a non-nil interface
func reader(f multipart.File) io.Reader {
	if f == nil {
		return nil
	}
	return f
}

// bindViewRequest decodes the optional JSON body; an empty body selects everything
func bindViewRequest(c *gin.Context) (models.ViewRequest, bool) {
	var req models.ViewRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return req, false
	}
	return req, true
}
