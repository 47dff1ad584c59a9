package handlers

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/emaratgreen/esg-backend/internal/apierr"
	"github.com/emaratgreen/esg-backend/internal/requestdata"
	"github.com/emaratgreen/esg-backend/internal/services"
	"github.com/emaratgreen/esg-backend/internal/types"
)

// currentUser loads the authenticated user for a request. Only callable
// behind RequireAuth.
func currentUser(c *gin.Context, userService services.UserService) (*types.User, error) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.Unauthorized("no_request_data", fmt.Errorf("no authenticated user"))
	}
	return userService.GetByID(c.Request.Context(), rd.UserID)
}

// currentCompany loads the company the authenticated user belongs to.
func currentCompany(c *gin.Context, userService services.UserService, companyService services.CompanyService) (*types.User, *types.Company, error) {
	user, err := currentUser(c, userService)
	if err != nil {
		return nil, nil, err
	}
	if user.CompanyID == nil {
		return nil, nil, apierr.Validation("company_required", fmt.Errorf("user has no company"))
	}
	company, err := companyService.GetCompany(c.Request.Context(), *user.CompanyID)
	if err != nil {
		return nil, nil, err
	}
	return user, company, nil
}

// optionalSiteID parses the site_id query parameter, nil when absent.
func optionalSiteID(c *gin.Context) (*uuid.UUID, error) {
	raw := c.Query("site_id")
	if raw == "" {
		return nil, nil
	}
	siteID, err := uuid.Parse(raw)
	if err != nil {
		return nil, apierr.Validation("site_id_invalid", fmt.Errorf("invalid site_id %q", raw))
	}
	return &siteID, nil
}

func pathUUID(c *gin.Context, name string) (uuid.UUID, error) {
	raw := c.Param(name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apierr.Validation(name+"_invalid", fmt.Errorf("invalid %s %q", name, raw))
	}
	return id, nil
}
