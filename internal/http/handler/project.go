package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/frankfika/gitlab-issuehelper/internal/http/dto"
	"github.com/frankfika/gitlab-issuehelper/internal/service"
)

type ProjectHandler struct {
	projects service.ProjectService
}

func NewProjectHandler(projects service.ProjectService) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

func (h *ProjectHandler) List(c *gin.Context) {
	projects, err := h.projects.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToProjectResponses(projects))
}

func (h *ProjectHandler) Create(c *gin.Context) {
	var req dto.ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	project, err := h.projects.Add(c.Request.Context(), req.ToModel())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToProjectResponse(project))
}

func (h *ProjectHandler) Update(c *gin.Context) {
	var req dto.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	project, err := h.projects.Update(c.Request.Context(), c.Param("id"), req.ToPatch())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToProjectResponse(project))
}

func (h *ProjectHandler) Delete(c *gin.Context) {
	if err := h.projects.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// TestConnection checks an ad-hoc credential, typically before saving it.
func (h *ProjectHandler) TestConnection(c *gin.Context) {
	var req dto.ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	res, err := h.projects.TestConnection(c.Request.Context(), req.ToModel())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToTestConnectionResponse(res))
}
