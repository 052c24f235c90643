package models

import (
	"time"

	"github.com/google/uuid"
)

// ProjetoUser links an account to a projeto and is the authoritative ownership
// record. The unique index backs upsert-with-ignore semantics on (projeto, user).
type ProjetoUser struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProjetoID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_projeto_user" json:"projeto_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_projeto_user" json:"user_id"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`

	// Relationships
	Projeto Projeto `gorm:"foreignKey:ProjetoID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
	User    User    `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}

func (ProjetoUser) TableName() string {
	return "projeto_users"
}
