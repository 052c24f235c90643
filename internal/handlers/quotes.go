package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/grupoaf/afix/db"
	"github.com/grupoaf/afix/internal/models"
	"github.com/grupoaf/afix/internal/types"
	"github.com/grupoaf/afix/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type QuoteRequest struct {
	Name        string `json:"name"`
	NomeProjeto string `json:"nome_projeto"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Service     string `json:"service"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Urgency     string `json:"urgency"`
	Budget      string `json:"budget"`
}

// Server-side max lengths for quote submissions.
var quoteMaxLen = map[string]int{
	"name":        200,
	"email":       254,
	"phone":       50,
	"service":     100,
	"description": 2000,
	"location":    200,
	"urgency":     50,
	"budget":      100,
}

func quoteFieldsTooLong(body QuoteRequest, email string) []string {
	var tooLong []string

	check := func(field, value string) {
		if value != "" && len(value) > quoteMaxLen[field] {
			tooLong = append(tooLong, field)
		}
	}

	check("name", body.Name)
	check("email", email)
	check("phone", body.Phone)
	check("service", body.Service)
	check("description", body.Description)
	check("location", body.Location)
	check("urgency", body.Urgency)
	check("budget", body.Budget)

	return tooLong
}

// SubmitQuote creates a projeto from a quote form. Authentication is optional;
// when present it overrides the submitted email and supplies the full name,
// so full_name always reflects a verified identity, never free-text input.
func SubmitQuote(ctx *gin.Context) {
	var body QuoteRequest

	if err := ctx.BindJSON(&body); err != nil {
		fail(ctx, http.StatusBadRequest, "Invalid request")
		return
	}

	authUser, authenticated := utils.GetOptionalUser(ctx)

	email := strings.TrimSpace(authUser.Email)
	if email == "" {
		email = strings.TrimSpace(body.Email)
	}
	email = strings.ToLower(email)

	if email == "" {
		fail(ctx, http.StatusBadRequest, "Email is required")
		return
	}

	if tooLong := quoteFieldsTooLong(body, email); len(tooLong) > 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "Fields too long", "fields": tooLong})
		return
	}

	fullName := ""
	if authenticated {
		fullName = strings.TrimSpace(authUser.FullName)
	}

	projeto := models.Projeto{
		NomeProjeto: strings.TrimSpace(body.NomeProjeto),
		FullName:    fullName,
		Email:       email,
		Phone:       body.Phone,
		Service:     body.Service,
		Description: body.Description,
		Location:    body.Location,
		Urgency:     body.Urgency,
		Budget:      body.Budget,
		Status:      types.StatusPendente,
	}

	if db.Schema.ProjetoHasContact {
		if err := db.DB.Create(&projeto).Error; err != nil {
			failStore(ctx, err)
			return
		}
	} else {
		// Reduced column set for installations without the contact columns;
		// the email is patched back right after so the invariant holds.
		if err := db.DB.Omit("email", "phone").Create(&projeto).Error; err != nil {
			failStore(ctx, err)
			return
		}
		if err := db.DB.Model(&models.Projeto{}).Where("id = ?", projeto.ID).
			Update("email", email).Error; err != nil {
			log.Printf("failed to patch email on projeto %s: %v", projeto.ID, err)
		}
	}

	// Best-effort: link the projeto to an existing account with this email.
	linkProjetoByEmail(&projeto, email)

	// Best-effort: mirror the quote into a normalized service line-item.
	if body.Service != "" || body.Description != "" || body.Urgency != "" || body.Budget != "" {
		servico := models.ProjetoServico{
			ProjetoID:      projeto.ID,
			Servico:        body.Service,
			Descricao:      body.Description,
			OrcamentoRange: body.Budget,
			UrgenciaLevel:  body.Urgency,
			Status:         types.StatusPendente,
		}
		if err := db.DB.Create(&servico).Error; err != nil {
			log.Printf("failed to create servico for projeto %s: %v", projeto.ID, err)
		}
	}

	ctx.JSON(http.StatusOK, gin.H{"ok": true, "projeto": projeto})
}

// linkProjetoByEmail associates the projeto with an existing account matching
// the email, if any. Failures are swallowed: the projeto is always created
// even when linking is not possible.
func linkProjetoByEmail(projeto *models.Projeto, email string) {
	var user models.User

	err := db.DB.Where("LOWER(email) = ?", email).First(&user).Error

	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("user lookup failed for %s: %v", email, err)
		}
		return
	}

	record := models.ProjetoUser{
		ProjetoID: projeto.ID,
		UserID:    user.ID,
		Role:      user.Role,
	}

	err = db.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "projeto_id"}, {Name: "user_id"}},
		DoNothing: true,
	}).Create(&record).Error

	if err != nil {
		// Upsert unsupported; plain insert, duplicate errors ignored.
		if err := db.DB.Create(&record).Error; err != nil {
			log.Printf("failed to link projeto %s to user %s: %v", projeto.ID, user.ID, err)
		}
	}
}
