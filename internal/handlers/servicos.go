package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/grupoaf/afix/db"
	"github.com/grupoaf/afix/internal/models"
	"github.com/grupoaf/afix/internal/types"
	"github.com/grupoaf/afix/internal/utils"
	"gorm.io/gorm"
)

func findServico(ctx *gin.Context) (models.ProjetoServico, bool) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		fail(ctx, http.StatusBadRequest, "Invalid service id")
		return models.ProjetoServico{}, false
	}

	var servico models.ProjetoServico

	if err := db.DB.Where("id = ?", id).First(&servico).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(ctx, http.StatusNotFound, "Not found")
		} else {
			failStore(ctx, err)
		}
		return models.ProjetoServico{}, false
	}

	return servico, true
}

// ClaimServico assigns the caller to one service line-item. Unlike projects,
// the status change rides in the same UPDATE as the assignment.
func ClaimServico(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)

	if err != nil {
		fail(ctx, http.StatusUnauthorized, "Not authenticated")
		return
	}

	if !user.Role.CanClaim() {
		fail(ctx, http.StatusForbidden, "Forbidden")
		return
	}

	servico, ok := findServico(ctx)
	if !ok {
		return
	}

	displayName := user.DisplayName()
	current := strings.TrimSpace(servico.ResponsavelTecnico)

	if current != "" && current != displayName {
		fail(ctx, http.StatusConflict, "Serviço já atribuído a outro responsável técnico")
		return
	}

	newStatus := servico.Status
	if newStatus == types.StatusPendente {
		newStatus = types.StatusRespondido
	}

	err = db.DB.Model(&models.ProjetoServico{}).Where("id = ?", servico.ID).
		Updates(map[string]interface{}{
			"status":              newStatus,
			"responsavel_tecnico": displayName,
		}).Error

	if err != nil {
		failStore(ctx, err)
		return
	}

	if err := db.DB.Where("id = ?", servico.ID).First(&servico).Error; err != nil {
		failStore(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"ok": true, "servico": servicoResponse(servico)})
}

// ReleaseServico drops the assignment and deterministically resets the
// line-item to pendente, unlike project release which keeps the status.
func ReleaseServico(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)

	if err != nil {
		fail(ctx, http.StatusUnauthorized, "Not authenticated")
		return
	}

	if !user.Role.CanClaim() {
		fail(ctx, http.StatusForbidden, "Forbidden")
		return
	}

	servico, ok := findServico(ctx)
	if !ok {
		return
	}

	current := strings.TrimSpace(servico.ResponsavelTecnico)

	if current == "" {
		fail(ctx, http.StatusConflict, "Nenhum responsável técnico atribuído")
		return
	}

	if current != user.DisplayName() && user.Role != types.RoleAdmin {
		fail(ctx, http.StatusForbidden, "Não pode desistir: outro responsável definido")
		return
	}

	err = db.DB.Model(&models.ProjetoServico{}).Where("id = ?", servico.ID).
		Updates(map[string]interface{}{
			"status":              types.StatusPendente,
			"responsavel_tecnico": "",
		}).Error

	if err != nil {
		failStore(ctx, err)
		return
	}

	if err := db.DB.Where("id = ?", servico.ID).First(&servico).Error; err != nil {
		failStore(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"ok": true, "servico": servicoResponse(servico)})
}
