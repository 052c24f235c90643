package types

import (
	"os"
	"strings"
)

const ContextUserKey = "user"

// Role is a normalized account role token. Raw values coming from the database
// or a request body may be mixed-case, so always go through ParseRole.
type Role string

const (
	RoleCliente     Role = "cliente"
	RoleFranqueado  Role = "franqueado"
	RoleFranqueador Role = "franqueador"
	RoleAdmin       Role = "admin"
	RoleUnknown     Role = "unknown"
)

func ParseRole(raw string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleCliente:
		return RoleCliente
	case RoleFranqueado:
		return RoleFranqueado
	case RoleFranqueador:
		return RoleFranqueador
	case RoleAdmin:
		return RoleAdmin
	default:
		return RoleUnknown
	}
}

// CanClaim reports whether the role may angariar/desistir projects and services.
func (r Role) CanClaim() bool {
	return r == RoleFranqueado || r == RoleFranqueador || r == RoleAdmin
}

// CanEditProjects reports whether the role may edit its own projects. Admin is
// deliberately absent here: admins work through the claim endpoints.
func (r Role) CanEditProjects() bool {
	return r == RoleCliente || r == RoleFranqueado || r == RoleFranqueador
}

// Projeto / projeto_servico status tokens.
const (
	StatusPendente   = "pendente"
	StatusEmAnalise  = "em_analise"
	StatusRespondido = "respondido"
	StatusFinalizado = "finalizado"

	// StatusFilterAll is the listing sentinel that disables the default filter.
	StatusFilterAll = "all"
)

func ValidStatus(s string) bool {
	switch s {
	case StatusPendente, StatusEmAnalise, StatusRespondido, StatusFinalizado:
		return true
	}
	return false
}

var (
	// Default allowed origins for development
	defaultOrigins = []string{
		"http://localhost:3000",
		"http://localhost:5173",
	}

	AllowedOrigins = initAllowedOrigins()
)

func initAllowedOrigins() []string {
	origins := make([]string, len(defaultOrigins))
	copy(origins, defaultOrigins)

	if clientURL := os.Getenv("CLIENT_URL"); clientURL != "" {
		origins = append(origins, clientURL)
	}

	if allowedOrigins := os.Getenv("ALLOWED_ORIGINS"); allowedOrigins != "" {
		envOrigins := strings.Split(allowedOrigins, ",")
		for _, origin := range envOrigins {
			trimmed := strings.TrimSpace(origin)
			if trimmed != "" {
				origins = append(origins, trimmed)
			}
		}
	}

	return origins
}
