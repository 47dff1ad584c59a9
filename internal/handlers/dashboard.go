package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/emaratgreen/esg-backend/internal/services"
)

type DashboardHandler struct {
	userService      services.UserService
	companyService   services.CompanyService
	dashboardService services.DashboardService
}

func NewDashboardHandler(userService services.UserService, companyService services.CompanyService, dashboardService services.DashboardService) *DashboardHandler {
	return &DashboardHandler{userService: userService, companyService: companyService, dashboardService: dashboardService}
}

func (dh *DashboardHandler) Summary(c *gin.Context) {
	_, company, err := currentCompany(c, dh.userService, dh.companyService)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	siteID, err := optionalSiteID(c)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	year := queryInt(c, "year", time.Now().Year())
	summary, err := dh.dashboardService.Summary(c.Request.Context(), company, year, siteID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"dashboard": summary})
}
