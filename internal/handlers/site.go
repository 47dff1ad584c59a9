package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emaratgreen/esg-backend/internal/services"
)

type SiteHandler struct {
	userService    services.UserService
	companyService services.CompanyService
	siteService    services.SiteService
}

func NewSiteHandler(userService services.UserService, companyService services.CompanyService, siteService services.SiteService) *SiteHandler {
	return &SiteHandler{userService: userService, companyService: companyService, siteService: siteService}
}

func (sh *SiteHandler) Create(c *gin.Context) {
	_, company, err := currentCompany(c, sh.userService, sh.companyService)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	var input services.CreateSiteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	site, err := sh.siteService.CreateSite(c.Request.Context(), company, &input)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, gin.H{"site": site})
}

func (sh *SiteHandler) List(c *gin.Context) {
	_, company, err := currentCompany(c, sh.userService, sh.companyService)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	sites, err := sh.siteService.ListSites(c.Request.Context(), company.ID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"sites": sites})
}

func (sh *SiteHandler) Update(c *gin.Context) {
	_, company, err := currentCompany(c, sh.userService, sh.companyService)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	siteID, err := pathUUID(c, "id")
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	var input services.UpdateSiteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	site, err := sh.siteService.UpdateSite(c.Request.Context(), company, siteID, &input)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"site": site})
}

func (sh *SiteHandler) Delete(c *gin.Context) {
	_, company, err := currentCompany(c, sh.userService, sh.companyService)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	siteID, err := pathUUID(c, "id")
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	if err := sh.siteService.DeleteSite(c.Request.Context(), company.ID, siteID); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"message": "site deleted"})
}
