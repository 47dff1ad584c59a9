package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emaratgreen/esg-backend/internal/services"
)

// Avatar uploads are decoded in memory, keep them modest.
const maxAvatarBytes = 5 << 20

type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (uh *UserHandler) Me(c *gin.Context) {
	user, err := currentUser(c, uh.userService)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{
		"user":             user,
		"manageable_roles": uh.userService.ManageableRolesFor(user.Role),
	})
}

func (uh *UserHandler) List(c *gin.Context) {
	actor, err := currentUser(c, uh.userService)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	users, err := uh.userService.ListCompanyUsers(c.Request.Context(), actor)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"users": users})
}

func (uh *UserHandler) Create(c *gin.Context) {
	actor, err := currentUser(c, uh.userService)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	var input services.CreateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	user, err := uh.userService.CreateUser(c.Request.Context(), actor, &input)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, gin.H{"user": user})
}

func (uh *UserHandler) Update(c *gin.Context) {
	actor, err := currentUser(c, uh.userService)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	targetID, err := pathUUID(c, "id")
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	var input services.UpdateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	user, err := uh.userService.UpdateUser(c.Request.Context(), actor, targetID, &input)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"user": user})
}

func (uh *UserHandler) Delete(c *gin.Context) {
	actor, err := currentUser(c, uh.userService)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	targetID, err := pathUUID(c, "id")
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	if err := uh.userService.DeleteUser(c.Request.Context(), actor, targetID); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"message": "user deleted"})
}

func (uh *UserHandler) ResetPassword(c *gin.Context) {
	actor, err := currentUser(c, uh.userService)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	targetID, err := pathUUID(c, "id")
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	var req struct {
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if err := uh.userService.ResetUserPassword(c.Request.Context(), actor, targetID, req.Password); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"message": "password updated"})
}

func (uh *UserHandler) UploadAvatar(c *gin.Context) {
	user, err := currentUser(c, uh.userService)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	file, _, err := c.Request.FormFile("avatar")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "avatar_required", err)
		return
	}
	defer file.Close()
	raw, err := io.ReadAll(io.LimitReader(file, maxAvatarBytes))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "avatar_unreadable", err)
		return
	}
	if err := uh.userService.SetUploadedAvatar(c.Request.Context(), user, raw); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"avatar_data_url": user.AvatarDataURL})
}
