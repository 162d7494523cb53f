package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jobhive/jobhive/internal/services"
	"github.com/jobhive/jobhive/internal/utils"
)

type JobHandler struct {
	svc services.JobService
}

func NewJobHandler(svc services.JobService) *JobHandler {
	return &JobHandler{svc: svc}
}

type CreateJobRequest struct {
	Title       string   `json:"title"`
	Location    string   `json:"location"`
	Salary      *float64 `json:"salary"`
	SalaryType  string   `json:"salaryType"`
	Negotiable  *bool    `json:"negotiable"`
	JobType     []string `json:"jobType"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Skills      []string `json:"skills"`
}

func (h *JobHandler) Create(c *gin.Context) {
	ident, ok := requireIdentity(c)
	if !ok {
		return
	}

	var req CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "JobHandler.Create", "invalid request body", err))
		return
	}

	job, err := h.svc.Create(c.Request.Context(), ident.Subject, services.CreateJobInput{
		Title:       req.Title,
		Location:    req.Location,
		Salary:      req.Salary,
		SalaryType:  req.SalaryType,
		Negotiable:  req.Negotiable,
		JobType:     req.JobType,
		Description: req.Description,
		Tags:        req.Tags,
		Skills:      req.Skills,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Job created successfully",
		"job":     job,
	})
}

func (h *JobHandler) List(c *gin.Context) {
	jobs, err := h.svc.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"jobs": jobs})
}

func (h *JobHandler) ListByUser(c *gin.Context) {
	jobs, err := h.svc.ListByUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, jobs)
}

func (h *JobHandler) Search(c *gin.Context) {
	jobs, err := h.svc.Search(c.Request.Context(),
		c.Query("tags"), c.Query("location"), c.Query("title"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"jobs": jobs})
}

func (h *JobHandler) Apply(c *gin.Context) {
	ident, ok := requireIdentity(c)
	if !ok {
		return
	}

	job, err := h.svc.Apply(c.Request.Context(), c.Param("id"), ident.Subject)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Application successful",
		"job":     job,
	})
}

func (h *JobHandler) ToggleLike(c *gin.Context) {
	ident, ok := requireIdentity(c)
	if !ok {
		return
	}

	job, err := h.svc.ToggleLike(c.Request.Context(), c.Param("id"), ident.Subject)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, job)
}

func (h *JobHandler) ToggleSave(c *gin.Context) {
	ident, ok := requireIdentity(c)
	if !ok {
		return
	}

	user, err := h.svc.ToggleSave(c.Request.Context(), c.Param("id"), ident.Subject)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *JobHandler) GetByID(c *gin.Context) {
	if _, ok := requireIdentity(c); !ok {
		return
	}

	job, err := h.svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, job)
}

func (h *JobHandler) Delete(c *gin.Context) {
	ident, ok := requireIdentity(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), ident.Subject); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Job deleted successfully"})
}
