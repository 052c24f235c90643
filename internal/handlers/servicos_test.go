package handlers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/grupoaf/afix/db"
	"github.com/grupoaf/afix/internal/models"
	"github.com/grupoaf/afix/internal/types"
)

func createServico(t *testing.T, status string) models.ProjetoServico {
	t.Helper()

	projeto := createProjeto(t, "a@b.com", types.StatusPendente)

	servico := models.ProjetoServico{
		ProjetoID:     projeto.ID,
		Servico:       "pintura",
		UrgenciaLevel: "media",
		Status:        status,
	}
	if err := db.DB.Create(&servico).Error; err != nil {
		t.Fatalf("create servico: %v", err)
	}
	return servico
}

func reloadServico(t *testing.T, id uuid.UUID) models.ProjetoServico {
	t.Helper()

	var servico models.ProjetoServico
	if err := db.DB.Where("id = ?", id).First(&servico).Error; err != nil {
		t.Fatalf("reload servico: %v", err)
	}
	return servico
}

func TestClaimServico(t *testing.T) {
	r := setupTest(t)

	franqueado := createTestUser(t, "Filipa Gomes", "filipa@example.com", types.RoleFranqueado)
	outro := createTestUser(t, "Gustavo Pinto", "gustavo@example.com", types.RoleFranqueado)
	servico := createServico(t, types.StatusPendente)

	path := fmt.Sprintf("/api/servicos/%s/angariar", servico.ID)

	w := doRequest(t, r, http.MethodPost, path, tokenFor(t, franqueado), nil)
	expectStatus(t, w, http.StatusOK)

	stored := reloadServico(t, servico.ID)
	if stored.ResponsavelTecnico != "Filipa Gomes" {
		t.Errorf("expected assignment to Filipa Gomes, got %q", stored.ResponsavelTecnico)
	}
	if stored.Status != types.StatusRespondido {
		t.Errorf("claiming a pendente servico must set respondido, got %q", stored.Status)
	}

	// Conflicting claim leaves the servico untouched.
	w = doRequest(t, r, http.MethodPost, path, tokenFor(t, outro), nil)
	expectStatus(t, w, http.StatusConflict)
	if got := reloadServico(t, servico.ID).ResponsavelTecnico; got != "Filipa Gomes" {
		t.Errorf("conflict must not change assignment, got %q", got)
	}

	// Re-claim by the same display name is idempotent.
	w = doRequest(t, r, http.MethodPost, path, tokenFor(t, franqueado), nil)
	expectStatus(t, w, http.StatusOK)
}

func TestClaimServicoKeepsAdvancedStatus(t *testing.T) {
	r := setupTest(t)

	franqueado := createTestUser(t, "Filipa Gomes", "filipa@example.com", types.RoleFranqueado)
	servico := createServico(t, types.StatusEmAnalise)

	w := doRequest(t, r, http.MethodPost, fmt.Sprintf("/api/servicos/%s/angariar", servico.ID), tokenFor(t, franqueado), nil)
	expectStatus(t, w, http.StatusOK)

	if got := reloadServico(t, servico.ID).Status; got != types.StatusEmAnalise {
		t.Errorf("claim must only advance pendente, got %q", got)
	}
}

func TestClaimServicoRoleGate(t *testing.T) {
	r := setupTest(t)

	cliente := createTestUser(t, "Carlos", "carlos@example.com", types.RoleCliente)
	servico := createServico(t, types.StatusPendente)

	w := doRequest(t, r, http.MethodPost, fmt.Sprintf("/api/servicos/%s/angariar", servico.ID), tokenFor(t, cliente), nil)
	expectStatus(t, w, http.StatusForbidden)

	w = doRequest(t, r, http.MethodPost, fmt.Sprintf("/api/servicos/%s/angariar", uuid.NewString()), tokenFor(t, cliente), nil)
	expectStatus(t, w, http.StatusForbidden)
}

func TestReleaseServico(t *testing.T) {
	r := setupTest(t)

	franqueado := createTestUser(t, "Filipa Gomes", "filipa@example.com", types.RoleFranqueado)
	outro := createTestUser(t, "Gustavo Pinto", "gustavo@example.com", types.RoleFranqueado)
	admin := createTestUser(t, "Root", "root@example.com", types.RoleAdmin)
	servico := createServico(t, types.StatusPendente)

	claim := fmt.Sprintf("/api/servicos/%s/angariar", servico.ID)
	release := fmt.Sprintf("/api/servicos/%s/desistir", servico.ID)

	// Nothing assigned yet: conflict.
	w := doRequest(t, r, http.MethodPost, release, tokenFor(t, franqueado), nil)
	expectStatus(t, w, http.StatusConflict)

	w = doRequest(t, r, http.MethodPost, claim, tokenFor(t, franqueado), nil)
	expectStatus(t, w, http.StatusOK)

	w = doRequest(t, r, http.MethodPost, release, tokenFor(t, outro), nil)
	expectStatus(t, w, http.StatusForbidden)

	w = doRequest(t, r, http.MethodPost, release, tokenFor(t, franqueado), nil)
	expectStatus(t, w, http.StatusOK)

	stored := reloadServico(t, servico.ID)
	if stored.ResponsavelTecnico != "" {
		t.Errorf("release must clear the assignment, got %q", stored.ResponsavelTecnico)
	}
	if stored.Status != types.StatusPendente {
		t.Errorf("servico release must reset status to pendente, got %q", stored.Status)
	}

	// Admin may release another member's claim.
	w = doRequest(t, r, http.MethodPost, claim, tokenFor(t, outro), nil)
	expectStatus(t, w, http.StatusOK)
	w = doRequest(t, r, http.MethodPost, release, tokenFor(t, admin), nil)
	expectStatus(t, w, http.StatusOK)
}

func TestReleaseServicoNotFound(t *testing.T) {
	r := setupTest(t)

	franqueado := createTestUser(t, "Filipa Gomes", "filipa@example.com", types.RoleFranqueado)

	w := doRequest(t, r, http.MethodPost, fmt.Sprintf("/api/servicos/%s/desistir", uuid.NewString()), tokenFor(t, franqueado), nil)
	expectStatus(t, w, http.StatusNotFound)
}
