package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/emaratgreen/esg-backend/internal/logger"
	"github.com/emaratgreen/esg-backend/internal/types"
	"github.com/emaratgreen/esg-backend/internal/utils"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
	serviceLog := log.With("service", "PostgresService")

	postgresHost := utils.GetEnv("POSTGRES_HOST", "localhost", log)
	postgresPort := utils.GetEnv("POSTGRES_PORT", "5432", log)
	postgresUser := utils.GetEnv("POSTGRES_USER", "postgres", log)
	postgresPassword := utils.GetEnv("POSTGRES_PASSWORD", "", log)
	postgresName := utils.GetEnv("POSTGRES_NAME", "esgportal", log)

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", postgresUser, postgresPassword, postgresHost, postgresPort, postgresName)

	serviceLog.Info("Connecting to Postgres...")
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		serviceLog.Error("Failed to connect to Postgres", "error", err)
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}

	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
		serviceLog.Error("Failed to enable uuid-ossp extension", "error", err)
		return nil, fmt.Errorf("failed to enable uuid-ossp extension: %w", err)
	}

	return &PostgresService{db: db, log: serviceLog}, nil
}

// Models lists every persisted entity in migration order.
func Models() []interface{} {
	return []interface{}{
		&types.User{},
		&types.UserToken{},
		&types.EmailToken{},
		&types.Company{},
		&types.Site{},
		&types.Activity{},
		&types.CompanyActivity{},
		&types.Framework{},
		&types.FrameworkElement{},
		&types.CompanyFramework{},
		&types.ProfileQuestion{},
		&types.CompanyProfileAnswer{},
		&types.ChecklistItem{},
		&types.Meter{},
		&types.DataSubmission{},
		&types.ElementAssignment{},
	}
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	if err := s.db.AutoMigrate(Models()...); err != nil {
		s.log.Error("Auto migration failed for postgres tables", "error", err)
		return err
	}
	s.log.Info("Configuring foreign key relationships for postgres tables...")
	constraints := []struct {
		table, name, column, refTable, refColumn string
	}{
		{"user_token", "fk_user_token_user_id", "user_id", "user", "id"},
		{"email_token", "fk_email_token_user_id", "user_id", "user", "id"},
		{"site", "fk_site_company_id", "company_id", "company", "id"},
		{"company_activity", "fk_company_activity_company_id", "company_id", "company", "id"},
		{"company_framework", "fk_company_framework_company_id", "company_id", "company", "id"},
		{"company_profile_answer", "fk_company_profile_answer_company_id", "company_id", "company", "id"},
		{"company_checklist", "fk_company_checklist_company_id", "company_id", "company", "id"},
		{"meter", "fk_meter_company_id", "company_id", "company", "id"},
		{"company_data_submission", "fk_company_data_submission_company_id", "company_id", "company", "id"},
		{"element_assignment", "fk_element_assignment_company_id", "company_id", "company", "id"},
	}
	for _, c := range constraints {
		stmt := fmt.Sprintf(`
			ALTER TABLE %q DROP CONSTRAINT IF EXISTS %q;
			ALTER TABLE %q
			ADD CONSTRAINT %q
			FOREIGN KEY (%q)
			REFERENCES %q(%q)
			ON DELETE CASCADE
		`, c.table, c.name, c.table, c.name, c.column, c.refTable, c.refColumn)
		if err := s.db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to add %s: %w", c.name, err)
		}
	}
	return nil
}

func (s *PostgresService) DB() *gorm.DB {
	return s.db
}
