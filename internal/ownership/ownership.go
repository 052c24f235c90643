// Package ownership decides whether an account may modify a projeto. Ownership
// has two sources of truth: the projeto_users link table (authoritative) and a
// legacy email match kept for rows created before the link table existed.
package ownership

import (
	"strings"

	"github.com/google/uuid"
	"github.com/grupoaf/afix/internal/models"
	"github.com/grupoaf/afix/internal/types"
	"gorm.io/gorm"
)

type Decision int

const (
	// Unknown means the strategy cannot decide; the chain moves on.
	Unknown Decision = iota
	Allow
	Deny
)

// Actor is the authenticated account an ownership question is asked about.
type Actor struct {
	ID    uuid.UUID
	Email string
	Role  types.Role
}

type strategy func(dbi *gorm.DB, projeto models.Projeto, actor Actor) Decision

// linkStrategy consults projeto_users. A lookup error degrades to Unknown so
// installations without the table still work through the email fallback.
func linkStrategy(dbi *gorm.DB, projeto models.Projeto, actor Actor) Decision {
	var count int64

	err := dbi.Model(&models.ProjetoUser{}).
		Where("projeto_id = ? AND user_id = ?", projeto.ID, actor.ID).
		Count(&count).Error

	if err != nil {
		return Unknown
	}

	if count > 0 {
		return Allow
	}

	return Unknown
}

func adminStrategy(dbi *gorm.DB, projeto models.Projeto, actor Actor) Decision {
	if actor.Role == types.RoleAdmin {
		return Allow
	}
	return Unknown
}

// emailStrategy is the legacy fallback. A projeto without a stored email can
// never be matched this way and is denied.
func emailStrategy(dbi *gorm.DB, projeto models.Projeto, actor Actor) Decision {
	if projeto.Email == "" || actor.Email == "" {
		return Deny
	}

	if strings.EqualFold(projeto.Email, actor.Email) {
		return Allow
	}

	return Deny
}

var chain = []strategy{linkStrategy, adminStrategy, emailStrategy}

// CanModify reports whether the actor may edit the projeto. Strategies run in
// priority order and the first definitive answer wins; a chain that never
// decides is a denial.
func CanModify(dbi *gorm.DB, projeto models.Projeto, actor Actor) bool {
	for _, s := range chain {
		switch s(dbi, projeto, actor) {
		case Allow:
			return true
		case Deny:
			return false
		}
	}
	return false
}
