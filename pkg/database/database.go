package database

import (
	"fmt"
	"log"
	"time"

	"exam_bank_backend/internal/config"
	"exam_bank_backend/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
		// Surfaces unique-index violations as gorm.ErrDuplicatedKey so the
		// services can map them onto the business-rule errors.
		TranslateError: true,
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	Seed(db)

	return db, nil
}

// Migrate creates or updates the schema for every model the service owns.
// The unique indexes declared on the models are what enforce the
// cross-entity invariants (one vote per reviewer, one attachment per
// question, one attempt number per student) under concurrent requests.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Cycle{},
		&model.Subcategory{},
		&model.AgeRange{},
		&model.DifficultyLevel{},
		&model.ContentAsset{},
		&model.Question{},
		&model.Option{},
		&model.MatchingPair{},
		&model.ModelAnswer{},
		&model.ReviewVote{},
		&model.Exam{},
		&model.ExamQuestion{},
		&model.Attempt{},
		&model.SelectionAnswer{},
		&model.FreeTextAnswer{},
		&model.MatchingAnswer{},
	)
}

// Seed inserts the lookup rows the service consults but does not manage.
func Seed(db *gorm.DB) {
	var count int64
	db.Model(&model.DifficultyLevel{}).Count(&count)
	if count == 0 {
		defaults := []model.DifficultyLevel{
			{Name: "easy", Rank: 1},
			{Name: "medium", Rank: 2},
			{Name: "hard", Rank: 3},
		}
		for _, d := range defaults {
			db.Create(&d)
		}
	}

	var arCount int64
	db.Model(&model.AgeRange{}).Count(&arCount)
	if arCount == 0 {
		defaults := []model.AgeRange{
			{Name: "6-8", MinAge: 6, MaxAge: 8},
			{Name: "9-11", MinAge: 9, MaxAge: 11},
			{Name: "12-14", MinAge: 12, MaxAge: 14},
			{Name: "15-18", MinAge: 15, MaxAge: 18},
		}
		for _, a := range defaults {
			db.Create(&a)
		}
	}

	var cyCount int64
	db.Model(&model.Cycle{}).Count(&cyCount)
	if cyCount == 0 {
		now := time.Now()
		db.Create(&model.Cycle{
			Name:      fmt.Sprintf("%d", now.Year()),
			StartDate: time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.Local),
			EndDate:   time.Date(now.Year(), 12, 31, 23, 59, 59, 0, time.Local),
			Active:    true,
		})
	}
}
