package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/emaratgreen/esg-backend/internal/services"
)

type ChecklistHandler struct {
	userService      services.UserService
	companyService   services.CompanyService
	checklistService services.ChecklistService
}

func NewChecklistHandler(userService services.UserService, companyService services.CompanyService, checklistService services.ChecklistService) *ChecklistHandler {
	return &ChecklistHandler{userService: userService, companyService: companyService, checklistService: checklistService}
}

func (ch *ChecklistHandler) Get(c *gin.Context) {
	_, company, err := currentCompany(c, ch.userService, ch.companyService)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	siteID, err := optionalSiteID(c)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	items, err := ch.checklistService.Get(c.Request.Context(), company.ID, siteID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"checklist": items})
}

func (ch *ChecklistHandler) Regenerate(c *gin.Context) {
	_, company, err := currentCompany(c, ch.userService, ch.companyService)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	siteID, err := optionalSiteID(c)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	items, err := ch.checklistService.Generate(c.Request.Context(), company, siteID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"checklist": items})
}
