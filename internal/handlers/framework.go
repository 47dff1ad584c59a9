package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emaratgreen/esg-backend/internal/services"
)

type FrameworkHandler struct {
	userService      services.UserService
	companyService   services.CompanyService
	frameworkService services.FrameworkService
}

func NewFrameworkHandler(userService services.UserService, companyService services.CompanyService, frameworkService services.FrameworkService) *FrameworkHandler {
	return &FrameworkHandler{userService: userService, companyService: companyService, frameworkService: frameworkService}
}

func (fh *FrameworkHandler) ListAll(c *gin.Context) {
	frameworks, err := fh.frameworkService.ListAll(c.Request.Context())
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"frameworks": frameworks})
}

func (fh *FrameworkHandler) ListForCompany(c *gin.Context) {
	_, company, err := currentCompany(c, fh.userService, fh.companyService)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	adoptions, err := fh.frameworkService.ListForCompany(c.Request.Context(), company.ID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"company_frameworks": adoptions})
}

func (fh *FrameworkHandler) AdoptVoluntary(c *gin.Context) {
	_, company, err := currentCompany(c, fh.userService, fh.companyService)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	var req struct {
		Code string `json:"code"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if err := fh.frameworkService.AddVoluntaryFramework(c.Request.Context(), company.ID, req.Code); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, gin.H{"message": "framework adopted"})
}

func (fh *FrameworkHandler) RemoveVoluntary(c *gin.Context) {
	_, company, err := currentCompany(c, fh.userService, fh.companyService)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	code := c.Param("code")
	if err := fh.frameworkService.RemoveVoluntaryFramework(c.Request.Context(), company.ID, code); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"message": "framework removed"})
}
