package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/maxaizer/jobs-board/internal/cache"
	"github.com/maxaizer/jobs-board/internal/entities"
	"github.com/maxaizer/jobs-board/internal/services"
	"github.com/pkg/errors"
)

type jobSearcher interface {
	Search(ctx context.Context, query entities.SearchQuery, page, pageSize int, requesterID string) (*services.SearchResult, error)
	Categories(ctx context.Context) ([]string, error)
}

type jobMaterializer interface {
	GetByID(ctx context.Context, id string, requesterID string) (*entities.Job, error)
	SaveJob(ctx context.Context, userID string, id string) error
	UnsaveJob(ctx context.Context, userID string, id string) error
	ListSaved(ctx context.Context, userID string, page, pageSize int) ([]entities.Job, int64, error)
}

type datasetStatus interface {
	Status() cache.DatasetStatus
}

type JobsHandler struct {
	searcher     jobSearcher
	materializer jobMaterializer
	dataset      datasetStatus
}

func NewJobsHandler(searcher jobSearcher, materializer jobMaterializer, dataset datasetStatus) *JobsHandler {
	return &JobsHandler{
		searcher:     searcher,
		materializer: materializer,
		dataset:      dataset,
	}
}

func (h *JobsHandler) Search(c *gin.Context) {
	var req SearchRequest
	if !bindQuery(c, &req) {
		return
	}

	page, limit := pagination(req.Page, req.Limit)

	result, err := h.searcher.Search(c.Request.Context(), req.toQuery(), page, limit, requesterID(c))
	if err != nil {
		internalError(c, "Error searching jobs", err)
		return
	}

	c.JSON(http.StatusOK, JobsResponse[services.SearchHit]{
		Jobs:       result.Jobs,
		Pagination: Pagination{Page: result.Page, Limit: result.PageSize, Total: int64(result.Total)},
	})
}

func (h *JobsHandler) Categories(c *gin.Context) {
	categories, err := h.searcher.Categories(c.Request.Context())
	if err != nil {
		internalError(c, "Error fetching categories", err)
		return
	}
	c.JSON(http.StatusOK, CategoriesResponse{Categories: categories})
}

func (h *JobsHandler) Health(c *gin.Context) {
	status := h.dataset.Status()

	response := HealthResponse{Status: "ok", CacheStatus: "not cached", CacheSize: status.Size}
	if !status.FetchedAt.IsZero() {
		response.FetchedAt = status.FetchedAt.UTC().Format(time.RFC3339)
		response.CacheStatus = "stale"
		if status.Fresh {
			response.CacheStatus = "cached"
		}
	}

	c.JSON(http.StatusOK, response)
}

func (h *JobsHandler) Saved(c *gin.Context) {
	var req PageRequest
	if !bindQuery(c, &req) {
		return
	}

	page, limit := pagination(req.Page, req.Limit)

	jobs, total, err := h.materializer.ListSaved(c.Request.Context(), requesterID(c), page, limit)
	if err != nil {
		internalError(c, "Error fetching saved jobs", err)
		return
	}

	c.JSON(http.StatusOK, JobsResponse[entities.Job]{
		Jobs:       jobs,
		Pagination: Pagination{Page: page, Limit: limit, Total: total},
	})
}

func (h *JobsHandler) GetByID(c *gin.Context) {
	job, err := h.materializer.GetByID(c.Request.Context(), c.Param("id"), requesterID(c))
	if err != nil {
		if errors.Is(err, services.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, MessageResponse{Message: "Job not found"})
			return
		}
		internalError(c, "Error fetching job details", err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *JobsHandler) Save(c *gin.Context) {
	err := h.materializer.SaveJob(c.Request.Context(), requesterID(c), c.Param("id"))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, MessageResponse{Message: "Job saved successfully"})
	case errors.Is(err, services.ErrJobNotFound):
		c.JSON(http.StatusNotFound, MessageResponse{Message: "Job not found"})
	case errors.Is(err, services.ErrAlreadySaved):
		c.JSON(http.StatusBadRequest, MessageResponse{Message: "Job already saved"})
	default:
		internalError(c, "Error saving job", err)
	}
}

func (h *JobsHandler) Unsave(c *gin.Context) {
	err := h.materializer.UnsaveJob(c.Request.Context(), requesterID(c), c.Param("id"))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, MessageResponse{Message: "Job unsaved successfully"})
	case errors.Is(err, services.ErrJobNotFound):
		c.JSON(http.StatusNotFound, MessageResponse{Message: "Job not found"})
	default:
		internalError(c, "Error unsaving job", err)
	}
}

func bindQuery(c *gin.Context, req any) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Validation failed", Errors: fieldErrors(err)})
		return false
	}
	if err := validate.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Validation failed", Errors: fieldErrors(err)})
		return false
	}
	return true
}

func internalError(c *gin.Context, message string, err error) {
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, MessageResponse{Message: message})
}
