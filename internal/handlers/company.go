package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emaratgreen/esg-backend/internal/services"
)

type CompanyHandler struct {
	userService    services.UserService
	companyService services.CompanyService
}

func NewCompanyHandler(userService services.UserService, companyService services.CompanyService) *CompanyHandler {
	return &CompanyHandler{userService: userService, companyService: companyService}
}

func (ch *CompanyHandler) Create(c *gin.Context) {
	owner, err := currentUser(c, ch.userService)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	var input services.CreateCompanyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	company, err := ch.companyService.CreateCompany(c.Request.Context(), owner, &input)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, gin.H{"company": company})
}

func (ch *CompanyHandler) Get(c *gin.Context) {
	_, company, err := currentCompany(c, ch.userService, ch.companyService)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"company": company})
}

func (ch *CompanyHandler) Update(c *gin.Context) {
	_, company, err := currentCompany(c, ch.userService, ch.companyService)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	var input services.UpdateCompanyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	updated, err := ch.companyService.UpdateCompany(c.Request.Context(), company.ID, &input)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"company": updated})
}

func (ch *CompanyHandler) ListActivities(c *gin.Context) {
	activities, err := ch.companyService.ListActivities(c.Request.Context())
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"activities": activities})
}

func (ch *CompanyHandler) SetActivities(c *gin.Context) {
	_, company, err := currentCompany(c, ch.userService, ch.companyService)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	var req struct {
		Activities []string `json:"activities"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	activities, err := ch.companyService.SetCompanyActivities(c.Request.Context(), company.ID, req.Activities)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"activities": activities})
}

func (ch *CompanyHandler) GetProfileQuestions(c *gin.Context) {
	questions, err := ch.companyService.GetProfileQuestions(c.Request.Context())
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"questions": questions})
}

func (ch *CompanyHandler) GetProfileAnswers(c *gin.Context) {
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
	answers, err := ch.companyService.GetProfileAnswers(c.Request.Context(), company.ID, siteID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"answers": answers})
}

func (ch *CompanyHandler) SubmitProfileAnswers(c *gin.Context) {
	_, company, err := currentCompany(c, ch.userService, ch.companyService)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	var req struct {
		Answers []*services.AnswerInput `json:"answers"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if err := ch.companyService.SubmitProfileAnswers(c.Request.Context(), company.ID, req.Answers); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"message": "answers saved"})
}

func (ch *CompanyHandler) RefreshCompliance(c *gin.Context) {
	_, company, err := currentCompany(c, ch.userService, ch.companyService)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	if err := ch.companyService.RefreshCompliance(c.Request.Context(), company.ID); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"message": "compliance refreshed"})
}
