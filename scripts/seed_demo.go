// 手动生成演示数据脚本
//
// 在空数据库上创建演示账号、若干已发布题目和一场进行中的考试，
// 方便本地联调前端。重复执行是安全的：已有演示账号时直接退出。
//
// 用法: go run scripts/seed_demo.go

package main

import (
	"log"
	"time"

	"exam_bank_backend/internal/config"
	"exam_bank_backend/internal/model"
	"exam_bank_backend/pkg/database"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("无法加载配置: %v", err)
	}

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	var existing int64
	db.Model(&model.User{}).Where("email = ?", "editor@demo.local").Count(&existing)
	if existing > 0 {
		log.Println("演示数据已存在，跳过")
		return
	}

	if err := seed(db); err != nil {
		log.Fatalf("生成演示数据失败: %v", err)
	}
	log.Println("演示数据生成完成")
}

func seed(db *gorm.DB) error {
	hash, err := bcrypt.GenerateFromPassword([]byte("demo1234"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	editor := &model.User{Name: "演示编辑", Email: "editor@demo.local", Password: string(hash), Role: model.Editor, Active: true}
	student := &model.User{Name: "演示学生", Email: "student@demo.local", Password: string(hash), Role: model.Student, Active: true}

	var cycle model.Cycle
	if err := db.Where("active = ?", true).First(&cycle).Error; err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(editor).Error; err != nil {
			return err
		}
		if err := tx.Create(student).Error; err != nil {
			return err
		}

		now := time.Now()
		choice := &model.Question{
			CreatorID:         editor.ID,
			SubcategoryID:     1,
			QuestionType:      model.QuestionTypeSingleChoice,
			State:             model.QuestionStatePublished,
			Title:             "地球绕太阳公转一周需要多长时间？",
			RecommendedPoints: 2,
			VotesRequired:     3,
			PositiveVotes:     3,
			PublishedAt:       &now,
			Active:            true,
		}
		if err := tx.Create(choice).Error; err != nil {
			return err
		}
		options := []model.Option{
			{QuestionID: choice.ID, Text: "一天", DisplayOrder: 1},
			{QuestionID: choice.ID, Text: "一个月", DisplayOrder: 2},
			{QuestionID: choice.ID, Text: "一年", IsCorrect: true, DisplayOrder: 3},
		}
		if err := tx.Create(&options).Error; err != nil {
			return err
		}

		matching := &model.Question{
			CreatorID:         editor.ID,
			SubcategoryID:     1,
			QuestionType:      model.QuestionTypeMatching,
			State:             model.QuestionStatePublished,
			Title:             "连线：动物与叫声",
			RecommendedPoints: 4,
			VotesRequired:     3,
			PositiveVotes:     3,
			PublishedAt:       &now,
			Active:            true,
		}
		if err := tx.Create(matching).Error; err != nil {
			return err
		}
		pairs := []model.MatchingPair{
			{QuestionID: matching.ID, LeftText: "猫", RightText: "喵", PairOrder: 1},
			{QuestionID: matching.ID, LeftText: "狗", RightText: "汪", PairOrder: 2},
		}
		if err := tx.Create(&pairs).Error; err != nil {
			return err
		}

		exam := &model.Exam{
			CreatorID:       editor.ID,
			CycleID:         cycle.ID,
			Title:           "演示考试",
			StartAt:         now.Add(-time.Hour),
			EndAt:           now.Add(7 * 24 * time.Hour),
			DurationMinutes: 30,
			MaxAttempts:     3,
			PassingScore:    60,
			ShowResults:     true,
			Active:          true,
		}
		if err := tx.Create(exam).Error; err != nil {
			return err
		}

		order1, order2 := 1, 2
		attachments := []model.ExamQuestion{
			{ExamID: exam.ID, QuestionID: choice.ID, UseRecommended: true, DisplayOrder: &order1, AddedByID: editor.ID},
			{ExamID: exam.ID, QuestionID: matching.ID, UseRecommended: true, DisplayOrder: &order2, AddedByID: editor.ID},
		}
		return tx.Create(&attachments).Error
	})
}
