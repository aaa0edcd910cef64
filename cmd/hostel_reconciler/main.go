package main

// 结账只写自由文本的宿舍/地址
// 这个进程周期性把未解析订单和规范宿舍记录对上 回填 hostel_id
// 尽力而为 每轮报告匹配/未解析计数 不因单个订单失败而停止

import (
	"context"
	"time"

	"github.com/lapatisseriex/La-Patisserie-sub001/internal/dao"
	"github.com/lapatisseriex/La-Patisserie-sub001/internal/dao/mysql"
	"github.com/lapatisseriex/La-Patisserie-sub001/internal/service"
	"github.com/lapatisseriex/La-Patisserie-sub001/pkg/app"
	"github.com/lapatisseriex/La-Patisserie-sub001/pkg/logger"
)

func main() {
	cfg := app.BootstrapApp()

	// DB
	db, err := mysql.InitDB(&cfg.Database.Mysql)
	if err != nil {
		logger.Fatal("连接Mysql数据库失败", "err", err)
	}

	orderDao := dao.NewOrderDao(db)
	hostelDao := dao.NewHostelDao(db)
	reconcileService := service.NewReconcileService(orderDao, hostelDao)

	logger.Info("Hostel Reconciler started",
		"batch_size", cfg.Reconciler.BatchSize,
		"interval_seconds", cfg.Reconciler.IntervalSeconds,
	)

	interval := time.Duration(cfg.Reconciler.IntervalSeconds) * time.Second

	// 定时器驱动
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// 启动先跑一轮 再按节奏轮询
	runOnce(reconcileService, cfg.Reconciler.BatchSize)
	for range ticker.C {
		runOnce(reconcileService, cfg.Reconciler.BatchSize)
	}
}

func runOnce(svc *service.ReconcileService, batchSize int) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	result, err := svc.ReconcileAll(ctx, batchSize)
	if err != nil {
		logger.Error("reconcile round failed", "err", err)
		return
	}
	if result.Processed == 0 {
		return
	}
	logger.Info("reconcile round done",
		"processed", result.Processed,
		"matched", result.Matched,
		"unresolved", result.Unresolved,
		"failed", result.Failed,
	)
}
