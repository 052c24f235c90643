package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/grupoaf/afix/db"
	"github.com/grupoaf/afix/internal/models"
	"github.com/grupoaf/afix/internal/ownership"
	"github.com/grupoaf/afix/internal/types"
	"github.com/grupoaf/afix/internal/utils"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const listLimit = 200

// projetoPayload is a projeto plus its attached service line-items. Services
// stays off the wire entirely when enrichment was not possible.
type projetoPayload struct {
	models.Projeto
	Services any `json:"services,omitempty"`
}

type ServicoInput struct {
	Service        string `json:"service"`
	Servico        string `json:"servico"`
	Description    string `json:"description"`
	Descricao      string `json:"descricao"`
	Budget         string `json:"budget"`
	OrcamentoRange string `json:"orcamento_range"`
	Urgency        string `json:"urgency"`
	Urgencia       string `json:"urgencia"`
	Status         string `json:"status"`
}

type UpdateProjetoRequest struct {
	FullName           *string        `json:"full_name"`
	Location           *string        `json:"location"`
	Localizacao        *string        `json:"localizacao"`
	ResponsavelTecnico *string        `json:"responsavel_tecnico"`
	DataInicioPrevista *string        `json:"data_inicio_prevista"`
	PrazoExecucaoMeses *int           `json:"prazo_execucao_meses"`
	Budget             *string        `json:"budget"`
	Urgency            *string        `json:"urgency"`
	Status             *string        `json:"status"`
	Services           []ServicoInput `json:"services"`
}

func servicoResponse(s models.ProjetoServico) types.ServicoResponse {
	return types.ServicoResponse{
		ID:                 s.ID,
		Service:            s.Servico,
		Description:        s.Descricao,
		Budget:             s.OrcamentoRange,
		Urgency:            s.UrgenciaLevel,
		Status:             s.Status,
		ResponsavelTecnico: s.ResponsavelTecnico,
		CreatedAt:          s.CreatedAt,
	}
}

func fetchServicos(projetoID uuid.UUID) ([]types.ServicoResponse, error) {
	var rows []models.ProjetoServico

	if err := db.DB.Where("projeto_id = ?", projetoID).Find(&rows).Error; err != nil {
		return nil, err
	}

	services := make([]types.ServicoResponse, 0, len(rows))
	for _, s := range rows {
		services = append(services, servicoResponse(s))
	}

	return services, nil
}

// withServicos attaches line-items best-effort; on enrichment failure the
// projeto is returned without the services field rather than failing.
func withServicos(projeto models.Projeto) projetoPayload {
	payload := projetoPayload{Projeto: projeto}

	services, err := fetchServicos(projeto.ID)
	if err != nil {
		log.Printf("failed to attach servicos for projeto %s: %v", projeto.ID, err)
		return payload
	}

	payload.Services = services
	return payload
}

// legacyServices reconstructs line-items from the projeto's single-service
// columns. The service column historically held either a plain token or a
// JSON-encoded array of items.
func legacyServices(projeto models.Projeto) []types.ServicoResponse {
	if projeto.Service == "" {
		return []types.ServicoResponse{}
	}

	var parsed []struct {
		Service     string `json:"service"`
		Description string `json:"description"`
		Budget      string `json:"budget"`
		Urgency     string `json:"urgency"`
	}

	if err := json.Unmarshal([]byte(projeto.Service), &parsed); err == nil {
		services := make([]types.ServicoResponse, 0, len(parsed))
		for _, s := range parsed {
			services = append(services, types.ServicoResponse{
				Service:     s.Service,
				Description: s.Description,
				Budget:      s.Budget,
				Urgency:     s.Urgency,
			})
		}
		return services
	}

	return []types.ServicoResponse{{
		Service:     projeto.Service,
		Description: projeto.Description,
		Budget:      projeto.Budget,
		Urgency:     projeto.Urgency,
	}}
}

func parseProjetoID(ctx *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		fail(ctx, http.StatusBadRequest, "Invalid project id")
		return uuid.Nil, false
	}
	return id, true
}

func findProjeto(ctx *gin.Context, id uuid.UUID) (models.Projeto, bool) {
	var projeto models.Projeto

	err := db.DB.Where("id = ?", id).First(&projeto).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(ctx, http.StatusNotFound, "Not found")
		} else {
			failStore(ctx, err)
		}
		return models.Projeto{}, false
	}

	return projeto, true
}

// GetProjeto fetches one projeto with its services attached. When the
// normalized table cannot be read, line-items are reconstructed from the
// legacy single-service columns.
func GetProjeto(ctx *gin.Context) {
	id, ok := parseProjetoID(ctx)
	if !ok {
		return
	}

	projeto, ok := findProjeto(ctx, id)
	if !ok {
		return
	}

	services, err := fetchServicos(projeto.ID)
	if err != nil {
		payload := projetoPayload{Projeto: projeto, Services: legacyServices(projeto)}
		ctx.JSON(http.StatusOK, gin.H{"ok": true, "projeto": payload})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"ok": true, "projeto": projetoPayload{Projeto: projeto, Services: services}})
}

// ListMyProjetos is the role-scoped listing:
//   - admin defaults to finalizado unless an explicit status filter (or the
//     sentinel "all") is given
//   - franqueado/franqueador see the whole pool to choose what to claim
//   - cliente sees linked projetos, falling back to legacy email matching
func ListMyProjetos(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)

	if err != nil {
		fail(ctx, http.StatusUnauthorized, "Not authenticated")
		return
	}

	statusParam := ctx.Query("status")

	if statusParam != "" && statusParam != types.StatusFilterAll && !types.ValidStatus(statusParam) {
		fail(ctx, http.StatusBadRequest, "Invalid status value")
		return
	}

	var projetos []models.Projeto

	switch user.Role {
	case types.RoleAdmin:
		query := db.DB.Model(&models.Projeto{})
		if statusParam != "" && statusParam != types.StatusFilterAll {
			query = query.Where("status = ?", statusParam)
		} else {
			query = query.Where("status = ?", types.StatusFinalizado)
		}
		err = query.Order("created_at DESC").Limit(listLimit).Find(&projetos).Error

	case types.RoleFranqueado, types.RoleFranqueador:
		query := db.DB.Model(&models.Projeto{})
		if statusParam != "" && statusParam != types.StatusFilterAll {
			query = query.Where("status = ?", statusParam)
		}
		err = query.Order("created_at DESC").Limit(listLimit).Find(&projetos).Error

	default:
		projetos, err = listClienteProjetos(user.ID, user.Email, statusParam)
	}

	if err != nil {
		failStore(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"ok": true, "projetos": enrichProjetos(projetos)})
}

func listClienteProjetos(userID uuid.UUID, email, statusParam string) ([]models.Projeto, error) {
	var projetos []models.Projeto

	var links []models.ProjetoUser
	linkErr := db.DB.Where("user_id = ?", userID).Find(&links).Error

	if linkErr == nil && len(links) > 0 {
		ids := make([]uuid.UUID, 0, len(links))
		for _, l := range links {
			ids = append(ids, l.ProjetoID)
		}

		query := db.DB.Where("id IN ?", ids)
		if statusParam != "" && statusParam != types.StatusFilterAll {
			query = query.Where("status = ?", statusParam)
		}

		if err := query.Order("created_at DESC").Limit(listLimit).Find(&projetos).Error; err == nil {
			return projetos, nil
		}
		// fall through to the legacy path on error
	}

	// Legacy fallback: match by the email stored on the projeto.
	query := db.DB.Where("LOWER(email) = ?", strings.ToLower(email))
	if statusParam != "" && statusParam != types.StatusFilterAll {
		query = query.Where("status = ?", statusParam)
	}

	err := query.Order("created_at DESC").Limit(listLimit).Find(&projetos).Error
	return projetos, err
}

// enrichProjetos batch-fetches line-items for the listed projetos. On failure
// the projetos are returned without the services field.
func enrichProjetos(projetos []models.Projeto) []projetoPayload {
	payload := make([]projetoPayload, 0, len(projetos))

	ids := make([]uuid.UUID, 0, len(projetos))
	for _, p := range projetos {
		ids = append(ids, p.ID)
	}

	grouped := map[uuid.UUID][]types.ServicoResponse{}
	enriched := true

	if len(ids) > 0 {
		var rows []models.ProjetoServico
		if err := db.DB.Where("projeto_id IN ?", ids).Find(&rows).Error; err != nil {
			log.Printf("failed to batch-fetch servicos: %v", err)
			enriched = false
		} else {
			for _, s := range rows {
				grouped[s.ProjetoID] = append(grouped[s.ProjetoID], servicoResponse(s))
			}
		}
	}

	for _, p := range projetos {
		item := projetoPayload{Projeto: p}
		if enriched {
			services := grouped[p.ID]
			if services == nil {
				services = []types.ServicoResponse{}
			}
			item.Services = services
		}
		payload = append(payload, item)
	}

	return payload
}

// UpdateMyProjeto edits contact/status/services fields on an owned projeto.
func UpdateMyProjeto(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)

	if err != nil {
		fail(ctx, http.StatusUnauthorized, "Not authenticated")
		return
	}

	if !user.Role.CanEditProjects() {
		fail(ctx, http.StatusForbidden, "Forbidden")
		return
	}

	id, ok := parseProjetoID(ctx)
	if !ok {
		return
	}

	var body UpdateProjetoRequest

	if err := ctx.BindJSON(&body); err != nil {
		fail(ctx, http.StatusBadRequest, "Invalid request")
		return
	}

	projeto, ok := findProjeto(ctx, id)
	if !ok {
		return
	}

	actor := ownership.Actor{ID: user.ID, Email: user.Email, Role: user.Role}
	if !ownership.CanModify(db.DB, projeto, actor) {
		fail(ctx, http.StatusForbidden, "Forbidden")
		return
	}

	updates := make(map[string]interface{})

	if body.FullName != nil {
		updates["full_name"] = strings.TrimSpace(*body.FullName)
	}
	if body.Location != nil {
		updates["location"] = *body.Location
	}
	if body.Localizacao != nil {
		updates["localizacao"] = *body.Localizacao
	}
	if body.ResponsavelTecnico != nil {
		updates["responsavel_tecnico"] = *body.ResponsavelTecnico
	}
	if body.DataInicioPrevista != nil {
		parsed, err := time.Parse("2006-01-02", *body.DataInicioPrevista)
		if err != nil {
			fail(ctx, http.StatusBadRequest, "Invalid data_inicio_prevista")
			return
		}
		updates["data_inicio_prevista"] = datatypes.Date(parsed)
	}
	if body.PrazoExecucaoMeses != nil {
		updates["prazo_execucao_meses"] = *body.PrazoExecucaoMeses
	}
	if body.Budget != nil {
		updates["budget"] = *body.Budget
	}
	if body.Urgency != nil {
		updates["urgency"] = *body.Urgency
	}
	if body.Status != nil {
		if !types.ValidStatus(*body.Status) {
			fail(ctx, http.StatusBadRequest, "Invalid status value")
			return
		}
		updates["status"] = *body.Status
	}

	if len(updates) > 0 {
		if err := db.DB.Model(&models.Projeto{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			failStore(ctx, err)
			return
		}
	}

	// A provided services array replaces the projeto's line-items wholesale.
	if body.Services != nil {
		if err := replaceServicos(id, body.Services); err != nil {
			failStore(ctx, err)
			return
		}
	}

	if err := db.DB.Where("id = ?", id).First(&projeto).Error; err != nil {
		failStore(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"ok": true, "projeto": withServicos(projeto)})
}

func replaceServicos(projetoID uuid.UUID, inputs []ServicoInput) error {
	if err := db.DB.Where("projeto_id = ?", projetoID).Delete(&models.ProjetoServico{}).Error; err != nil {
		log.Printf("failed to clear servicos for projeto %s: %v", projetoID, err)
	}

	if len(inputs) == 0 {
		return nil
	}

	pick := func(a, b string) string {
		if a != "" {
			return a
		}
		return b
	}

	rows := make([]models.ProjetoServico, 0, len(inputs))
	for _, s := range inputs {
		status := s.Status
		if !types.ValidStatus(status) {
			status = types.StatusPendente
		}
		rows = append(rows, models.ProjetoServico{
			ProjetoID:      projetoID,
			Servico:        pick(s.Service, s.Servico),
			Descricao:      pick(s.Description, s.Descricao),
			OrcamentoRange: pick(s.Budget, s.OrcamentoRange),
			UrgenciaLevel:  pick(s.Urgency, s.Urgencia),
			Status:         status,
		})
	}

	return db.DB.Create(&rows).Error
}

// ClaimProjeto assigns the caller as responsavel_tecnico ("angariar").
// Re-claiming one's own projeto is a no-op success; a projeto held by a
// different display name is a conflict.
func ClaimProjeto(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)

	if err != nil {
		fail(ctx, http.StatusUnauthorized, "Not authenticated")
		return
	}

	if !user.Role.CanClaim() {
		fail(ctx, http.StatusForbidden, "Forbidden")
		return
	}

	id, ok := parseProjetoID(ctx)
	if !ok {
		return
	}

	projeto, ok := findProjeto(ctx, id)
	if !ok {
		return
	}

	displayName := user.DisplayName()
	current := strings.TrimSpace(projeto.ResponsavelTecnico)

	if current != "" && current != displayName {
		fail(ctx, http.StatusConflict, "Projeto já atribuído a outro responsável técnico")
		return
	}

	if err := db.DB.Model(&models.Projeto{}).Where("id = ?", id).
		Update("responsavel_tecnico", displayName).Error; err != nil {
		failStore(ctx, err)
		return
	}

	// Best-effort status bump: a failure here does not fail the claim.
	if projeto.Status == types.StatusPendente {
		if err := db.DB.Model(&models.Projeto{}).Where("id = ?", id).
			Update("status", types.StatusRespondido).Error; err != nil {
			log.Printf("failed to bump status on projeto %s: %v", id, err)
		}
	}

	// Record ownership so future edits resolve through the link table.
	link := models.ProjetoUser{ProjetoID: id, UserID: user.ID, Role: string(user.Role)}
	err = db.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "projeto_id"}, {Name: "user_id"}},
		DoNothing: true,
	}).Create(&link).Error
	if err != nil {
		log.Printf("failed to link projeto %s to user %s: %v", id, user.ID, err)
	}

	if err := db.DB.Where("id = ?", id).First(&projeto).Error; err != nil {
		failStore(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"ok": true, "projeto": withServicos(projeto)})
}

// ReleaseProjeto clears the assignment ("desistir"). Status is deliberately
// left untouched: project status never walks backwards past pendente.
func ReleaseProjeto(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)

	if err != nil {
		fail(ctx, http.StatusUnauthorized, "Not authenticated")
		return
	}

	if !user.Role.CanClaim() {
		fail(ctx, http.StatusForbidden, "Forbidden")
		return
	}

	id, ok := parseProjetoID(ctx)
	if !ok {
		return
	}

	projeto, ok := findProjeto(ctx, id)
	if !ok {
		return
	}

	current := strings.TrimSpace(projeto.ResponsavelTecnico)

	if current == "" {
		fail(ctx, http.StatusConflict, "Nenhum responsável técnico atribuído")
		return
	}

	if current != user.DisplayName() && user.Role != types.RoleAdmin {
		fail(ctx, http.StatusForbidden, "Não é o responsável técnico atual")
		return
	}

	if err := db.DB.Model(&models.Projeto{}).Where("id = ?", id).
		Update("responsavel_tecnico", "").Error; err != nil {
		failStore(ctx, err)
		return
	}

	if err := db.DB.Where("id = ?", id).First(&projeto).Error; err != nil {
		failStore(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"ok": true, "projeto": projeto})
}
