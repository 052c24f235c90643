package handlers_test

import (
	"net/http"
	"testing"

	"github.com/grupoaf/afix/db"
	"github.com/grupoaf/afix/internal/handlers"
	"github.com/grupoaf/afix/internal/models"
	"github.com/grupoaf/afix/internal/types"
)

func TestRegisterAndLogin(t *testing.T) {
	r := setupTest(t)

	w := doRequest(t, r, http.MethodPost, "/api/auth/register", "", map[string]string{
		"full_name": "Ana Sousa",
		"email":     "Ana@Example.com",
		"password":  "password123",
	})
	expectStatus(t, w, http.StatusCreated)

	payload := decodeBody(t, w)["user"].(map[string]interface{})
	if payload["email"] != "ana@example.com" {
		t.Errorf("registration must lower-case the email, got %v", payload["email"])
	}
	if payload["role"] != string(types.RoleCliente) {
		t.Errorf("role must default to cliente, got %v", payload["role"])
	}

	// Duplicate registration conflicts, case-insensitively.
	w = doRequest(t, r, http.MethodPost, "/api/auth/register", "", map[string]string{
		"full_name": "Ana Again",
		"email":     "ANA@example.com",
		"password":  "password123",
	})
	expectStatus(t, w, http.StatusConflict)

	w = doRequest(t, r, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "ana@example.com",
		"password": "wrong-password",
	})
	expectStatus(t, w, http.StatusBadRequest)

	w = doRequest(t, r, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "ana@example.com",
		"password": "password123",
	})
	expectStatus(t, w, http.StatusOK)

	cookieSet := false
	for _, c := range w.Result().Cookies() {
		if c.Name == "token" && c.Value != "" {
			cookieSet = true
		}
	}
	if !cookieSet {
		t.Error("login must set the token cookie")
	}
}

func TestRegisterValidation(t *testing.T) {
	r := setupTest(t)

	w := doRequest(t, r, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    "a@b.com",
		"password": "password123",
	})
	expectStatus(t, w, http.StatusBadRequest)

	w = doRequest(t, r, http.MethodPost, "/api/auth/register", "", map[string]string{
		"full_name": "Ana",
		"email":     "a@b.com",
		"password":  "short",
	})
	expectStatus(t, w, http.StatusBadRequest)
}

func TestRegisterBackLinksExistingProjetos(t *testing.T) {
	r := setupTest(t)

	w := doRequest(t, r, http.MethodPost, "/api/quotes", "", handlers.QuoteRequest{Email: "ana@example.com", Service: "pintura"})
	expectStatus(t, w, http.StatusOK)

	w = doRequest(t, r, http.MethodPost, "/api/auth/register", "", map[string]string{
		"full_name": "Ana Sousa",
		"email":     "ana@example.com",
		"password":  "password123",
	})
	expectStatus(t, w, http.StatusCreated)

	var user models.User
	if err := db.DB.Where("email = ?", "ana@example.com").First(&user).Error; err != nil {
		t.Fatalf("registered user: %v", err)
	}

	var count int64
	db.DB.Model(&models.ProjetoUser{}).Where("user_id = ?", user.ID).Count(&count)
	if count != 1 {
		t.Fatalf("registration must adopt earlier same-email projetos, got %d links", count)
	}

	// The adopted projeto shows up in the cliente listing via the link table.
	w = doRequest(t, r, http.MethodGet, "/api/me/projetos", tokenFor(t, user), nil)
	expectStatus(t, w, http.StatusOK)
	if got := len(decodeBody(t, w)["projetos"].([]interface{})); got != 1 {
		t.Errorf("expected the adopted projeto in the listing, got %d rows", got)
	}
}

func TestMe(t *testing.T) {
	r := setupTest(t)

	user := createTestUser(t, "Ana Sousa", "ana@example.com", types.RoleFranqueado)

	w := doRequest(t, r, http.MethodGet, "/api/auth/me", tokenFor(t, user), nil)
	expectStatus(t, w, http.StatusOK)

	payload := decodeBody(t, w)["user"].(map[string]interface{})
	if payload["full_name"] != "Ana Sousa" || payload["role"] != string(types.RoleFranqueado) {
		t.Errorf("unexpected identity payload: %v", payload)
	}

	w = doRequest(t, r, http.MethodGet, "/api/auth/me", "", nil)
	expectStatus(t, w, http.StatusUnauthorized)
}
