package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emaratgreen/esg-backend/internal/services"
)

type AssignmentHandler struct {
	userService       services.UserService
	companyService    services.CompanyService
	assignmentService services.AssignmentService
}

func NewAssignmentHandler(userService services.UserService, companyService services.CompanyService, assignmentService services.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{userService: userService, companyService: companyService, assignmentService: assignmentService}
}

func (ah *AssignmentHandler) Create(c *gin.Context) {
	actor, company, err := currentCompany(c, ah.userService, ah.companyService)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	var input services.CreateAssignmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	assignment, err := ah.assignmentService.CreateAssignment(c.Request.Context(), actor, company, &input)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, gin.H{"assignment": assignment})
}

func (ah *AssignmentHandler) List(c *gin.Context) {
	actor, company, err := currentCompany(c, ah.userService, ah.companyService)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	if c.Query("mine") == "true" {
		assignments, err := ah.assignmentService.ListForAssignee(c.Request.Context(), actor.ID)
		if err != nil {
			RespondServiceError(c, err)
			return
		}
		RespondOK(c, gin.H{"assignments": assignments})
		return
	}
	assignments, err := ah.assignmentService.ListForCompany(c.Request.Context(), company.ID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"assignments": assignments})
}

func (ah *AssignmentHandler) Update(c *gin.Context) {
	_, company, err := currentCompany(c, ah.userService, ah.companyService)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	assignmentID, err := pathUUID(c, "id")
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	var input services.UpdateAssignmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	assignment, err := ah.assignmentService.UpdateAssignment(c.Request.Context(), company.ID, assignmentID, &input)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"assignment": assignment})
}

func (ah *AssignmentHandler) Delete(c *gin.Context) {
	_, company, err := currentCompany(c, ah.userService, ah.companyService)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	assignmentID, err := pathUUID(c, "id")
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	if err := ah.assignmentService.DeleteAssignment(c.Request.Context(), company.ID, assignmentID); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"message": "assignment deleted"})
}
