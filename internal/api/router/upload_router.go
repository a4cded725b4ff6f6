package router

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/DjordjeVuckovic/alumni-memories/internal/apperr"
	"github.com/DjordjeVuckovic/alumni-memories/internal/upload"
	"github.com/labstack/echo/v4"
)

const filesField = "files"

type UploadRouter struct {
	e        *echo.Echo
	pipeline *upload.Pipeline
	opts     upload.Options
}

func NewUploadRouter(e *echo.Echo, pipeline *upload.Pipeline, opts upload.Options) *UploadRouter {
	return &UploadRouter{
		e:        e,
		pipeline: pipeline,
		opts:     opts,
	}
}

func (r *UploadRouter) Bind() {
	g := r.e.Group("/uploads")
	g.POST("", r.uploadFiles)
	g.POST("/retry", r.retryFailed)
	g.POST("/cancel", r.cancel)
	g.GET("/stats", r.stats)
}

type UploadResponse struct {
	Results []upload.Result `json:"results"`
	Stats   upload.Stats    `json:"stats"`
}

type UploadStatsResponse struct {
	Stats upload.Stats `json:"stats"`
	State upload.State `json:"state"`
}

// uploadFiles godoc
// @Summary Upload media files
// @Description Validates, compresses and stores files concurrently. One result per file, in request order; a failed file never fails the request.
// @Tags uploads
// @Accept mpfd
// @Produce json
// @Param files formData file true "Files to upload"
// @Param folder formData string false "Destination folder"
// @Success 200 {object} UploadResponse
// @Failure 400 {object} ErrorResponse
// @Router /uploads [post]
func (r *UploadRouter) uploadFiles(c echo.Context) error {
	files, opts, err := r.readForm(c)
	if err != nil {
		return err
	}
	results := r.pipeline.UploadFiles(c.Request().Context(), files, opts)
	return c.JSON(http.StatusOK, UploadResponse{Results: results, Stats: r.pipeline.Stats()})
}

// retryFailed godoc
// @Summary Retry failed uploads
// @Description Re-sends only the files that failed in the previous batch. Send the same files in the same order as before.
// @Tags uploads
// @Accept mpfd
// @Produce json
// @Param files formData file true "Files of the previous batch"
// @Param folder formData string false "Destination folder"
// @Success 200 {object} UploadResponse
// @Failure 400 {object} ErrorResponse
// @Router /uploads/retry [post]
func (r *UploadRouter) retryFailed(c echo.Context) error {
	files, opts, err := r.readForm(c)
	if err != nil {
		return err
	}
	results := r.pipeline.RetryFailedUploads(c.Request().Context(), files, opts)
	return c.JSON(http.StatusOK, UploadResponse{Results: results, Stats: r.pipeline.Stats()})
}

// cancel godoc
// @Summary Cancel uploads
// @Description Best effort: resets the upload state, transfers already past their last chunk may still complete.
// @Tags uploads
// @Success 202
// @Router /uploads/cancel [post]
func (r *UploadRouter) cancel(c echo.Context) error {
	r.pipeline.CancelUploads()
	return c.NoContent(http.StatusAccepted)
}

// stats godoc
// @Summary Upload statistics
// @Tags uploads
// @Produce json
// @Success 200 {object} UploadStatsResponse
// @Router /uploads/stats [get]
func (r *UploadRouter) stats(c echo.Context) error {
	return c.JSON(http.StatusOK, UploadStatsResponse{Stats: r.pipeline.Stats(), State: r.pipeline.State()})
}

func (r *UploadRouter) readForm(c echo.Context) ([]upload.File, upload.Options, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, upload.Options{}, apperr.NewValidationWrap("expected a multipart form", err)
	}
	headers := form.File[filesField]
	if len(headers) == 0 {
		return nil, upload.Options{}, apperr.NewFieldValidation("no files", map[string]string{filesField: "at least one file is required"})
	}

	opts := r.opts.WithFolder(c.FormValue("folder"))
	files := make([]upload.File, 0, len(headers))
	for _, h := range headers {
		f, err := readPart(h, opts.MaxFileSize)
		if err != nil {
			return nil, upload.Options{}, err
		}
		files = append(files, f)
	}
	return files, opts, nil
}

// readPart reads at most limit+1 bytes so an oversized file is still
// rejected by validation without being held in memory entirely.
func readPart(h *multipart.FileHeader, limit int64) (upload.File, error) {
	src, err := h.Open()
	if err != nil {
		return upload.File{}, fmt.Errorf("open %s: %w", h.Filename, err)
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, limit+1))
	if err != nil {
		return upload.File{}, fmt.Errorf("read %s: %w", h.Filename, err)
	}
	return upload.File{
		Name:        h.Filename,
		ContentType: h.Header.Get(echo.HeaderContentType),
		Data:        data,
	}, nil
}
