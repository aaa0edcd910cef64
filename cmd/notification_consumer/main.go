package main

// 消费派送通知消息 落库notifications表
// 通知是尽力而为的：解析失败直接丢弃 落库失败requeue一次

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lapatisseriex/La-Patisserie-sub001/internal/dao"
	"github.com/lapatisseriex/La-Patisserie-sub001/internal/dao/mysql"
	redisinit "github.com/lapatisseriex/La-Patisserie-sub001/internal/dao/redis"
	"github.com/lapatisseriex/La-Patisserie-sub001/internal/model"
	"github.com/lapatisseriex/La-Patisserie-sub001/internal/mq"
	"github.com/lapatisseriex/La-Patisserie-sub001/internal/service"
	"github.com/lapatisseriex/La-Patisserie-sub001/pkg/app"
	"github.com/lapatisseriex/La-Patisserie-sub001/pkg/logger"
	"github.com/redis/go-redis/v9"
	"github.com/streadway/amqp"
)

const (
	notifyQueue = "notification.dispatch"
)

type notificationStore interface {
	CreateNotification(ctx context.Context, n *model.Notification) error
}

func main() {
	cfg := app.BootstrapApp()

	db, err := mysql.InitDB(&cfg.Database.Mysql)
	if err != nil {
		logger.Fatal("连接Mysql数据库失败", "err", err)
	}

	rdb, err := redisinit.InitRedis(&cfg.Database.Redis)
	if err != nil {
		logger.Fatal("连接Redis失败", "err", err)
	}

	notificationDao := dao.NewNotificationDao(db)

	// 仅绑定 notification.dispatch
	conn, consumerCh, msgs, err := mq.NewConsumerChannel(&cfg.MQ, notifyQueue, mq.KeyDispatchNotify, mq.Exchange, true, cfg.MQ.ConsumerPrefetch)
	if err != nil {
		logger.Fatal("init consumer channel failed", "err", err)
	}
	defer mq.CloseConsumer(conn, consumerCh)

	logger.Info("Notification consumer started", "queue", notifyQueue)

	for d := range msgs {
		handleDelivery(rdb, notificationDao, d)
	}
}

// handleDelivery 处理单条派送通知
func handleDelivery(rdb redis.UniversalClient, store notificationStore, d amqp.Delivery) {
	// 幂等：如果MessageId存在则用Redis去重
	var dedupKey string
	if d.MessageId != "" {
		dedupKey = "notify:msg:done:" + d.MessageId
		added, _ := rdb.SetNX(context.Background(), dedupKey, 1, 30*time.Minute).Result()
		if !added {
			// 已经处理过，直接ACK
			logger.Warn("duplicate notification detected, skipping", "message_id", d.MessageId)
			_ = d.Ack(false)
			return
		}
	}

	var m service.DispatchNotifyMessage
	if err := json.Unmarshal(d.Body, &m); err != nil {
		logger.Error("通知消息解析失败", "err", err)
		_ = d.Nack(false, false)
		return
	}

	n := &model.Notification{
		OrderID: m.OrderID,
		UserID:  m.UserID,
		Type:    "dispatch",
		Title:   "你的订单已出发",
		Body:    fmt.Sprintf("订单 %s 的 %s 已从烘焙坊发出，正在派送到 %s", m.OrderNumber, m.ProductName, m.Hostel),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	err := store.CreateNotification(ctx, n)
	cancel()
	if err != nil {
		logger.Error("通知落库失败", "order_id", m.OrderID, "err", err)
		// 去重键要先释放 否则requeue回来的消息会被当成重复直接ACK掉
		if dedupKey != "" {
			rdb.Del(context.Background(), dedupKey)
		}
		// requeue一次 再失败就丢
		_ = d.Nack(false, !d.Redelivered)
		return
	}

	_ = d.Ack(false)
}
