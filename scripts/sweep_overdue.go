// 手动触发超时答题清扫脚本
//
// 该功能已集成到主应用的后台定时任务中（按配置的间隔自动执行）。
// 此脚本仅用于手动触发，例如服务停机一段时间后积压了大量到期未终结的答题。
//
// 用法: go run scripts/sweep_overdue.go

package main

import (
	"log"
	"os"
	"testroom_backend/internal/config"
	"testroom_backend/internal/repository"
	"testroom_backend/internal/service"
	"testroom_backend/pkg/database"
	"testroom_backend/pkg/logger"

	"gopkg.in/yaml.v3"
)

func main() {
	data, err := os.ReadFile("configs/config.yaml")
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}

	var cfg config.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		log.Fatalf("解析配置文件失败: %v", err)
	}

	logger.InitLogger(&cfg)

	db, err := database.InitDB(&cfg)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	attempts := repository.NewAttemptRepository(db)
	tests := repository.NewTestRepository(db)
	questions := repository.NewQuestionRepository(db)
	attemptService := service.NewAttemptService(attempts, tests, questions, db)

	log.Println("开始清扫超时答题...")
	if err := attemptService.SweepOverdue(); err != nil {
		log.Fatalf("清扫失败: %v", err)
	}
	log.Println("清扫完成")
}
