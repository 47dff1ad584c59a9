package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/emaratgreen/esg-backend/internal/requestdata"
	"github.com/emaratgreen/esg-backend/internal/services"
	"github.com/emaratgreen/esg-backend/internal/types"
)

type DataCollectionHandler struct {
	userService           services.UserService
	companyService        services.CompanyService
	dataCollectionService services.DataCollectionService
	dashboardService      services.DashboardService
}

func NewDataCollectionHandler(
	userService services.UserService,
	companyService services.CompanyService,
	dataCollectionService services.DataCollectionService,
	dashboardService services.DashboardService,
) *DataCollectionHandler {
	return &DataCollectionHandler{
		userService:           userService,
		companyService:        companyService,
		dataCollectionService: dataCollectionService,
		dashboardService:      dashboardService,
	}
}

func queryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	if v, err := strconv.Atoi(raw); err == nil {
		return v
	}
	return fallback
}

func (dh *DataCollectionHandler) GetTasks(c *gin.Context) {
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
	now := time.Now()
	year := queryInt(c, "year", now.Year())
	month := queryInt(c, "month", int(now.Month()))

	tasks, err := dh.dataCollectionService.GetTasks(c.Request.Context(), company, year, month, siteID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"tasks": tasks, "year": year, "month": month})
}

func (dh *DataCollectionHandler) GetProgress(c *gin.Context) {
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

	// Without a month the whole reporting year is summarized.
	if c.Query("month") == "" {
		progress, err := dh.dataCollectionService.YearProgress(c.Request.Context(), company, year, siteID)
		if err != nil {
			RespondServiceError(c, err)
			return
		}
		RespondOK(c, gin.H{"progress": progress, "year": year})
		return
	}
	month := queryInt(c, "month", int(time.Now().Month()))
	progress, err := dh.dataCollectionService.MonthProgress(c.Request.Context(), company, year, month, siteID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"progress": progress, "year": year, "month": month})
}

func (dh *DataCollectionHandler) SubmitData(c *gin.Context) {
	_, company, err := currentCompany(c, dh.userService, dh.companyService)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	var input services.SubmissionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	rd := requestdata.GetRequestData(c.Request.Context())
	submission, err := dh.dataCollectionService.UpsertSubmission(c.Request.Context(), company, rd.UserID, &input)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	dh.dashboardService.Invalidate(c.Request.Context(), company.ID)
	RespondOK(c, gin.H{"submission": submission, "status": submission.Status()})
}

// MarkPeriodInactive records the sentinel value for a task's period, taking
// it out of progress math.
func (dh *DataCollectionHandler) MarkPeriodInactive(c *gin.Context) {
	_, company, err := currentCompany(c, dh.userService, dh.companyService)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	var input services.SubmissionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	inactive := types.InactivePeriodValue
	input.Value = &inactive
	input.EvidenceFile = nil

	rd := requestdata.GetRequestData(c.Request.Context())
	submission, err := dh.dataCollectionService.UpsertSubmission(c.Request.Context(), company, rd.UserID, &input)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	dh.dashboardService.Invalidate(c.Request.Context(), company.ID)
	RespondOK(c, gin.H{"submission": submission, "status": submission.Status()})
}
