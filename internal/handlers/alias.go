package handlers

import (
	"errors"
	"net/http"

	"github.com/alimgiray/copyrite/internal/models"
	"github.com/alimgiray/copyrite/internal/repositories"
	"github.com/alimgiray/copyrite/internal/services"
	"github.com/alimgiray/copyrite/pkg/logger"
	"github.com/gin-gonic/gin"
)

type AliasHandler struct {
	aliasService  *services.AliasService
	reportService *services.ReportService
}

func NewAliasHandler(aliasService *services.AliasService, reportService *services.ReportService) *AliasHandler {
	return &AliasHandler{
		aliasService:  aliasService,
		reportService: reportService,
	}
}

type createAliasRequest struct {
	Name              *string  `json:"name"`
	Mails             []string `json:"mails" binding:"required"`
	AuthoritativeMail *string  `json:"authoritative_mail"`
}

type resolveRequest struct {
	Contributions []models.Contribution `json:"contributions"`
}

// ListAliases returns the aliases of a project in resolution order.
// With ?mail= it returns only the alias that mail resolves to.
func (h *AliasHandler) ListAliases(c *gin.Context) {
	if mail, ok := c.GetQuery("mail"); ok {
		h.findAliasByMail(c, mail)
		return
	}

	aliases, err := h.aliasService.GetAliasesByProjectID(c.Param("id"))
	if err != nil {
		h.internalError(c, err)
		return
	}
	if aliases == nil {
		aliases = []*models.Alias{}
	}

	c.JSON(http.StatusOK, gin.H{"aliases": aliases})
}

// CreateAlias appends a new alias to a project
func (h *AliasHandler) CreateAlias(c *gin.Context) {
	var req createAliasRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	alias, err := h.aliasService.CreateAlias(c.Param("id"), req.Name, req.Mails, req.AuthoritativeMail)
	if errors.Is(err, services.ErrAliasWithoutMails) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		h.internalError(c, err)
		return
	}

	c.JSON(http.StatusCreated, alias)
}

func (h *AliasHandler) findAliasByMail(c *gin.Context, mail string) {
	alias, err := h.aliasService.FindAliasByMail(c.Param("id"), mail)
	if errors.Is(err, repositories.ErrAliasNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		h.internalError(c, err)
		return
	}

	c.JSON(http.StatusOK, alias)
}

// UpdateAlias replaces the name, mails and authoritative mail of an alias
func (h *AliasHandler) UpdateAlias(c *gin.Context) {
	var req createAliasRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	alias, ok := h.projectAlias(c)
	if !ok {
		return
	}

	alias.Name = req.Name
	alias.Mails = req.Mails
	alias.AuthoritativeMail = req.AuthoritativeMail

	err := h.aliasService.UpdateAlias(alias)
	if errors.Is(err, services.ErrAliasWithoutMails) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if errors.Is(err, repositories.ErrAliasNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		h.internalError(c, err)
		return
	}

	c.JSON(http.StatusOK, alias)
}

// projectAlias loads the :alias_id alias and checks it belongs to the :id project.
// It writes the error response itself when it returns false.
func (h *AliasHandler) projectAlias(c *gin.Context) (*models.Alias, bool) {
	alias, err := h.aliasService.GetAliasByID(c.Param("alias_id"))
	if errors.Is(err, repositories.ErrAliasNotFound) || (err == nil && alias.ProjectID != c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": repositories.ErrAliasNotFound.Error()})
		return nil, false
	}
	if err != nil {
		h.internalError(c, err)
		return nil, false
	}
	return alias, true
}

// DeleteAlias removes an alias from a project
func (h *AliasHandler) DeleteAlias(c *gin.Context) {
	alias, ok := h.projectAlias(c)
	if !ok {
		return
	}

	if err := h.aliasService.DeleteAlias(alias.ID); err != nil {
		h.internalError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ResolveContributions applies the project's aliases to the posted contributions
func (h *AliasHandler) ResolveContributions(c *gin.Context) {
	var req resolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resolved, err := h.aliasService.ResolveContributions(c.Param("id"), req.Contributions)
	if err != nil {
		h.internalError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"contributions": resolved,
		"authors":       h.reportService.Authors(resolved),
	})
}

func (h *AliasHandler) internalError(c *gin.Context, err error) {
	logger.WithError(err).WithField("path", c.Request.URL.Path).Error("Request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
