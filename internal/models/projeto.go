package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Projeto is a quote request. Email is always populated right after creation
// (authenticated user's email, else the submitted one). The single-service
// columns (Service, Description, Budget, Urgency) predate projeto_servicos and
// are kept in sync as a read fallback for older rows.
type Projeto struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	NomeProjeto        string          `json:"nome_projeto"`
	FullName           string          `json:"full_name"`
	Email              string          `gorm:"index" json:"email"`
	Phone              string          `json:"phone"`
	Service            string          `json:"service"`
	Description        string          `json:"description"`
	Location           string          `json:"location"`
	Localizacao        string          `json:"localizacao"`
	Budget             string          `json:"budget"`
	Urgency            string          `json:"urgency"`
	Status             string          `gorm:"not null;default:pendente;index" json:"status"`
	ResponsavelTecnico string          `json:"responsavel_tecnico"`
	DataInicioPrevista *datatypes.Date `json:"data_inicio_prevista"`
	PrazoExecucaoMeses *int            `json:"prazo_execucao_meses"`
	CreatedAt          time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt          time.Time       `json:"-"`

	// Relationships
	Servicos []ProjetoServico `gorm:"foreignKey:ProjetoID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
	Links    []ProjetoUser    `gorm:"foreignKey:ProjetoID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}

func (Projeto) TableName() string {
	return "projetos"
}

func (p *Projeto) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
