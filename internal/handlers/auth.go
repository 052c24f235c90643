package handlers

import (
	"errors"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/grupoaf/afix/db"
	"github.com/grupoaf/afix/internal/auth"
	"github.com/grupoaf/afix/internal/models"
	"github.com/grupoaf/afix/internal/types"
	"github.com/grupoaf/afix/internal/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RegisterRequest struct {
	FullName string `json:"full_name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

var (
	Domain = os.Getenv("DOMAIN")
)

func setTokenCookie(ctx *gin.Context, token string, maxAge int) {
	http.SetCookie(ctx.Writer, &http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		Domain:   Domain,
		MaxAge:   maxAge,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteNoneMode,
	})
}

func Register(ctx *gin.Context) {
	var body RegisterRequest

	if err := ctx.BindJSON(&body); err != nil {
		fail(ctx, http.StatusBadRequest, "full_name, email and password are required")
		return
	}

	email := strings.ToLower(strings.TrimSpace(body.Email))

	var existing models.User

	err := db.DB.Where("LOWER(email) = ?", email).First(&existing).Error

	if err == nil {
		fail(ctx, http.StatusConflict, "User already exists")
		return
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		failStore(ctx, err)
		return
	}

	role := types.ParseRole(body.Role)
	if role == types.RoleUnknown {
		role = types.RoleCliente
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)

	if err != nil {
		failStore(ctx, err)
		return
	}

	newUser := models.User{
		FullName:     strings.TrimSpace(body.FullName),
		Email:        email,
		Phone:        strings.TrimSpace(body.Phone),
		PasswordHash: string(passwordHash),
		Role:         string(role),
	}

	if err := db.DB.Create(&newUser).Error; err != nil {
		failStore(ctx, err)
		return
	}

	// A fresh cliente account adopts any projetos submitted earlier with the
	// same email. Best-effort: the account exists even if linking fails.
	if role == types.RoleCliente {
		linkExistingProjetos(&newUser)
	}

	token, err := auth.GenerateJWT(newUser.ID, newUser.Email)

	if err != nil {
		failStore(ctx, err)
		return
	}

	setTokenCookie(ctx, token, 60*60*24*7)

	ctx.JSON(http.StatusCreated, gin.H{
		"ok": true,
		"user": types.UserResponse{
			ID:       newUser.ID,
			FullName: newUser.FullName,
			Email:    newUser.Email,
			Phone:    newUser.Phone,
			Role:     role,
		},
	})
}

func linkExistingProjetos(user *models.User) {
	var projetos []models.Projeto

	err := db.DB.Select("id").
		Where("LOWER(email) = ?", user.Email).
		Limit(1000).
		Find(&projetos).Error

	if err != nil || len(projetos) == 0 {
		return
	}

	records := make([]models.ProjetoUser, 0, len(projetos))
	for _, p := range projetos {
		records = append(records, models.ProjetoUser{
			ProjetoID: p.ID,
			UserID:    user.ID,
			Role:      user.Role,
		})
	}

	err = db.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "projeto_id"}, {Name: "user_id"}},
		DoNothing: true,
	}).Create(&records).Error

	if err != nil {
		// Upsert unsupported on this schema; plain insert, duplicates ignored.
		if err := db.DB.Create(&records).Error; err != nil {
			log.Printf("failed to link existing projetos for %s: %v", user.Email, err)
		}
	}
}

func Login(ctx *gin.Context) {
	var body LoginRequest

	if err := ctx.BindJSON(&body); err != nil {
		fail(ctx, http.StatusBadRequest, "Invalid request")
		return
	}

	email := strings.ToLower(strings.TrimSpace(body.Email))

	var user models.User

	err := db.DB.Where("LOWER(email) = ?", email).First(&user).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(ctx, http.StatusBadRequest, "Invalid email or password")
			return
		}
		failStore(ctx, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(body.Password)); err != nil {
		fail(ctx, http.StatusBadRequest, "Invalid email or password")
		return
	}

	token, err := auth.GenerateJWT(user.ID, user.Email)

	if err != nil {
		failStore(ctx, err)
		return
	}

	setTokenCookie(ctx, token, 60*60*24*7)

	ctx.JSON(http.StatusOK, gin.H{
		"ok": true,
		"user": types.UserResponse{
			ID:       user.ID,
			FullName: user.FullName,
			Email:    user.Email,
			Phone:    user.Phone,
			Role:     types.ParseRole(user.Role),
		},
	})
}

func Logout(ctx *gin.Context) {
	setTokenCookie(ctx, "", -1)
	ctx.JSON(http.StatusOK, gin.H{"ok": true, "message": "Logged out successfully"})
}

func Me(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		fail(ctx, http.StatusUnauthorized, "Not authenticated")
		return
	}

	createdAt := currentUser.CreatedAt

	ctx.JSON(http.StatusOK, gin.H{
		"ok": true,
		"user": types.UserResponse{
			ID:        currentUser.ID,
			FullName:  currentUser.FullName,
			Email:     currentUser.Email,
			Phone:     currentUser.Phone,
			Role:      currentUser.Role,
			CreatedAt: &createdAt,
		},
	})
}
