package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/grupoaf/afix/db"
	"github.com/grupoaf/afix/internal/models"
	"github.com/grupoaf/afix/internal/types"
	"github.com/grupoaf/afix/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

type UpdateSelfRequest struct {
	FullName *string `json:"full_name"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	Password *string `json:"password"`
}

// UpdateSelf applies a partial update to the caller's own profile. A provided
// password is hashed before storage; the hash is never part of the response.
func UpdateSelf(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)

	if err != nil {
		fail(ctx, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var body UpdateSelfRequest

	if err := ctx.BindJSON(&body); err != nil {
		fail(ctx, http.StatusBadRequest, "Invalid request")
		return
	}

	updates := make(map[string]interface{})

	if body.FullName != nil {
		updates["full_name"] = strings.TrimSpace(*body.FullName)
	}
	if body.Email != nil {
		updates["email"] = strings.ToLower(strings.TrimSpace(*body.Email))
	}
	if body.Phone != nil {
		updates["phone"] = strings.TrimSpace(*body.Phone)
	}
	if body.Password != nil && *body.Password != "" {
		passwordHash, err := bcrypt.GenerateFromPassword([]byte(*body.Password), bcrypt.DefaultCost)
		if err != nil {
			failStore(ctx, err)
			return
		}
		updates["password_hash"] = string(passwordHash)
	}

	if len(updates) == 0 {
		fail(ctx, http.StatusBadRequest, "No fields to update")
		return
	}

	if err := db.DB.Model(&models.User{}).Where("id = ?", user.ID).Updates(updates).Error; err != nil {
		failStore(ctx, err)
		return
	}

	var dbUser models.User

	if err := db.DB.Where("id = ?", user.ID).First(&dbUser).Error; err != nil {
		failStore(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"ok": true,
		"user": types.UserResponse{
			ID:       dbUser.ID,
			FullName: dbUser.FullName,
			Email:    dbUser.Email,
			Phone:    dbUser.Phone,
			Role:     types.ParseRole(dbUser.Role),
		},
	})
}
