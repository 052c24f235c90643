package db

import (
	"github.com/grupoaf/afix/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

// SchemaCapabilities records what the live projetos table actually supports.
// Some older installations dropped the contact columns; intake consults this
// instead of pattern-matching insert errors.
type SchemaCapabilities struct {
	ProjetoHasContact bool
}

var Schema = SchemaCapabilities{ProjetoHasContact: true}

func ConnectDatabase(dsn string) error {
	var err error

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})

	if err != nil {
		return err
	}

	return nil
}

func MigrateDatabase() error {
	models := []interface{}{
		&models.User{},
		&models.Projeto{},
		&models.ProjetoServico{},
		&models.ProjetoUser{},
	}

	migrator := DB.Migrator()

	for _, model := range models {
		if !migrator.HasTable(model) {
			if err := DB.AutoMigrate(model); err != nil {
				return err
			}
		}
	}

	return nil
}

// DetectSchema resolves capability flags once at startup.
func DetectSchema() {
	migrator := DB.Migrator()
	Schema.ProjetoHasContact = migrator.HasColumn(&models.Projeto{}, "email") &&
		migrator.HasColumn(&models.Projeto{}, "phone")
}
