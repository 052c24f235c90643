package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProjetoServico is one normalized service line-item inside a projeto. Status
// is tracked independently from the parent projeto.
type ProjetoServico struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProjetoID          uuid.UUID `gorm:"type:uuid;not null;index" json:"projeto_id"`
	Servico            string    `json:"servico"`
	Descricao          string    `json:"descricao"`
	OrcamentoRange     string    `json:"orcamento_range"`
	UrgenciaLevel      string    `json:"urgencia_level"`
	Status             string    `gorm:"not null;default:pendente" json:"status"`
	ResponsavelTecnico string    `json:"responsavel_tecnico"`
	CreatedAt          time.Time `json:"created_at"`

	// Relationships
	Projeto Projeto `gorm:"foreignKey:ProjetoID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}

func (ProjetoServico) TableName() string {
	return "projeto_servicos"
}

func (s *ProjetoServico) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
