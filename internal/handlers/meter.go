package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/emaratgreen/esg-backend/internal/services"
	"github.com/emaratgreen/esg-backend/internal/types"
)

type MeterHandler struct {
	userService    services.UserService
	companyService services.CompanyService
	meterService   services.MeterService
}

func NewMeterHandler(userService services.UserService, companyService services.CompanyService, meterService services.MeterService) *MeterHandler {
	return &MeterHandler{userService: userService, companyService: companyService, meterService: meterService}
}

func (mh *MeterHandler) List(c *gin.Context) {
	_, company, err := currentCompany(c, mh.userService, mh.companyService)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	siteID, err := optionalSiteID(c)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	meters, err := mh.meterService.List(c.Request.Context(), company.ID, siteID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"meters": meters})
}

func (mh *MeterHandler) Create(c *gin.Context) {
	_, company, err := currentCompany(c, mh.userService, mh.companyService)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	var req struct {
		Name   string     `json:"name"`
		Type   string     `json:"type"`
		SiteID *uuid.UUID `json:"site_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	meter := &types.Meter{
		CompanyID: company.ID,
		SiteID:    req.SiteID,
		Name:      req.Name,
		Type:      req.Type,
	}
	created, err := mh.meterService.Create(c.Request.Context(), meter)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, gin.H{"meter": created})
}

func (mh *MeterHandler) Provision(c *gin.Context) {
	_, company, err := currentCompany(c, mh.userService, mh.companyService)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	siteID, err := optionalSiteID(c)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	created, err := mh.meterService.ProvisionMeters(c.Request.Context(), company, siteID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"created": created})
}

func (mh *MeterHandler) UpdateStatus(c *gin.Context) {
	_, company, err := currentCompany(c, mh.userService, mh.companyService)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	meterID, err := pathUUID(c, "id")
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	meter, err := mh.meterService.UpdateStatus(c.Request.Context(), company.ID, meterID, req.Status)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"meter": meter})
}

func (mh *MeterHandler) Delete(c *gin.Context) {
	_, company, err := currentCompany(c, mh.userService, mh.companyService)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	meterID, err := pathUUID(c, "id")
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	if err := mh.meterService.Delete(c.Request.Context(), company.ID, meterID); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"message": "meter deleted"})
}
