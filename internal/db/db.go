package db

import (
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/hireloop/ai-interviewer/internal/interview"
	"github.com/hireloop/ai-interviewer/internal/models"
)

func Connect(dsn string) (*gorm.DB, error) {
	gdb, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	return gdb, nil
}

// Migrate creates/updates every table the service owns.
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&models.User{},
		&models.Candidate{},
		&models.Vacancy{},
		&models.Resume{},
		&interview.Interview{},
		&interview.Message{},
		&interview.EvaluationScore{},
		&interview.EvaluationSummary{},
	)
}
