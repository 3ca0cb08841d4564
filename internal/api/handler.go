package api

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/BerylCAtieno/kicks-match/internal/analyzer"
	"github.com/BerylCAtieno/kicks-match/internal/models"
	"github.com/BerylCAtieno/kicks-match/internal/web"
	"github.com/gin-gonic/gin"
)

// ImageField is the multipart field carrying the photo.
const ImageField = "image"

// ShoeAnalyzer turns one uploaded photo into a description.
type ShoeAnalyzer interface {
	Analyze(ctx context.Context, img analyzer.Image) (*models.ShoeDescription, error)
}

type AnalyzeHandler struct {
	analyzer       ShoeAnalyzer
	maxUploadBytes int64
}

func NewAnalyzeHandler(shoeAnalyzer ShoeAnalyzer, maxUploadBytes int64) *AnalyzeHandler {
	return &AnalyzeHandler{
		analyzer:       shoeAnalyzer,
		maxUploadBytes: maxUploadBytes,
	}
}

// HandleAnalyze handles POST /api/analyze.
func (h *AnalyzeHandler) HandleAnalyze(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)

	fileHeader, err := c.FormFile(ImageField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			log.Printf("WARN: Upload exceeds %d bytes", tooLarge.Limit)
			h.sendError(c, http.StatusRequestEntityTooLarge, "Image is too large")
			return
		}
		log.Printf("WARN: No image in request: %v", err)
		h.sendError(c, http.StatusBadRequest, "No image provided")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		log.Printf("ERROR: Failed to open upload: %v", err)
		h.sendError(c, http.StatusInternalServerError, err.Error())
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		log.Printf("ERROR: Failed to read upload: %v", err)
		h.sendError(c, http.StatusInternalServerError, err.Error())
		return
	}

	img := analyzer.NewImage(data, fileHeader.Header.Get("Content-Type"), fileHeader.Filename)
	log.Printf("STATE: Received %q (%d bytes, %s)", img.Filename, img.Size, img.MIMEType)

	shoe, err := h.analyzer.Analyze(c.Request.Context(), img)
	if err != nil {
		h.sendAnalysisError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.Success(img.Size, img.MIMEType, shoe))
}

func (h *AnalyzeHandler) sendAnalysisError(c *gin.Context, err error) {
	var upstream *analyzer.UpstreamError

	switch {
	case errors.Is(err, analyzer.ErrMissingAPIKey):
		log.Printf("ERROR: Server misconfigured: %v", err)
		h.sendError(c, http.StatusInternalServerError, err.Error())
	case errors.As(err, &upstream):
		log.Printf("ERROR: Upstream failure: %v", err)
		h.sendError(c, http.StatusBadGateway, upstream.Error())
	default:
		log.Printf("ERROR: Analysis failed: %v", err)
		h.sendError(c, http.StatusInternalServerError, err.Error())
	}
}

func (h *AnalyzeHandler) sendError(c *gin.Context, status int, message string) {
	c.JSON(status, models.Failure(message))
}

// HandleIndex renders the upload page.
func HandleIndex(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{
		"Title":       web.Title,
		"Description": web.Description,
	})
}

func HandleHealth(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}
