package types

import (
	"time"

	"github.com/google/uuid"
)

type UserResponse struct {
	ID        uuid.UUID  `json:"id"`
	FullName  string     `json:"full_name"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone,omitempty"`
	Role      Role       `json:"role"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// ServicoResponse is the wire shape of a projeto_servico line-item. Column
// names differ from the JSON keys for historical reasons (servico -> service,
// orcamento_range -> budget, urgencia_level -> urgency).
type ServicoResponse struct {
	ID                 uuid.UUID `json:"id"`
	Service            string    `json:"service"`
	Description        string    `json:"description"`
	Budget             string    `json:"budget"`
	Urgency            string    `json:"urgency"`
	Status             string    `json:"status"`
	ResponsavelTecnico string    `json:"responsavel_tecnico"`
	CreatedAt          time.Time `json:"created_at"`
}
