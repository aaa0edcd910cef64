package main

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/lapatisseriex/La-Patisserie-sub001/internal/model"
	"github.com/lapatisseriex/La-Patisserie-sub001/internal/service"
	"github.com/redis/go-redis/v9"
	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
)

type fakeAcker struct {
	acked    bool
	nacked   bool
	requeued bool
}

func (f *fakeAcker) Ack(tag uint64, multiple bool) error {
	f.acked = true
	return nil
}

func (f *fakeAcker) Nack(tag uint64, multiple, requeue bool) error {
	f.nacked = true
	f.requeued = requeue
	return nil
}

func (f *fakeAcker) Reject(tag uint64, requeue bool) error {
	return nil
}

type stubRedis struct {
	redis.UniversalClient
	data map[string]struct{}
}

func (s *stubRedis) SetNX(ctx context.Context, key string, value interface{}, _ time.Duration) *redis.BoolCmd {
	if _, ok := s.data[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	s.data[key] = struct{}{}
	return redis.NewBoolResult(true, nil)
}

func (s *stubRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	for _, k := range keys {
		delete(s.data, k)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

type mockStore struct {
	create func(ctx context.Context, n *model.Notification) error
}

func (m *mockStore) CreateNotification(ctx context.Context, n *model.Notification) error {
	return m.create(ctx, n)
}

func notifyBody(t *testing.T) []byte {
	t.Helper()
	body, err := json.Marshal(service.DispatchNotifyMessage{
		OrderID:     1,
		UserID:      2,
		OrderNumber: "LP-20260829-000001",
		ProductName: "Croissant",
		Hostel:      "PSG",
	})
	assert.NoError(t, err)
	return body
}

func TestHandleDelivery_Success(t *testing.T) {
	rdb := &stubRedis{data: map[string]struct{}{}}
	store := &mockStore{create: func(ctx context.Context, n *model.Notification) error { return nil }}
	acker := &fakeAcker{}

	handleDelivery(rdb, store, amqp.Delivery{
		Acknowledger: acker,
		MessageId:    "m1",
		Body:         notifyBody(t),
	})

	assert.True(t, acker.acked)
	assert.False(t, acker.nacked)
}

func TestHandleDelivery_DuplicateAcked(t *testing.T) {
	rdb := &stubRedis{data: map[string]struct{}{"notify:msg:done:m1": {}}}
	calls := 0
	store := &mockStore{create: func(ctx context.Context, n *model.Notification) error {
		calls++
		return nil
	}}
	acker := &fakeAcker{}

	handleDelivery(rdb, store, amqp.Delivery{
		Acknowledger: acker,
		MessageId:    "m1",
		Body:         notifyBody(t),
	})

	assert.True(t, acker.acked)
	assert.Equal(t, 0, calls)
}

func TestHandleDelivery_StoreFailureReleasesDedupKey(t *testing.T) {
	// 落库失败时必须释放去重键再requeue
	// 否则redelivery会命中去重直接被ACK 实际通知丢失
	rdb := &stubRedis{data: map[string]struct{}{}}
	store := &mockStore{create: func(ctx context.Context, n *model.Notification) error {
		return errors.New("db down")
	}}
	acker := &fakeAcker{}

	handleDelivery(rdb, store, amqp.Delivery{
		Acknowledger: acker,
		MessageId:    "m1",
		Body:         notifyBody(t),
	})

	assert.True(t, acker.nacked)
	assert.True(t, acker.requeued)
	_, keyStillSet := rdb.data["notify:msg:done:m1"]
	assert.False(t, keyStillSet)

	// redelivery：这次落库成功 消息被正常处理而不是当成重复
	saved := 0
	store.create = func(ctx context.Context, n *model.Notification) error {
		saved++
		return nil
	}
	acker2 := &fakeAcker{}
	handleDelivery(rdb, store, amqp.Delivery{
		Acknowledger: acker2,
		MessageId:    "m1",
		Body:         notifyBody(t),
		Redelivered:  true,
	})

	assert.True(t, acker2.acked)
	assert.Equal(t, 1, saved)
}

func TestHandleDelivery_RedeliveredFailureNotRequeued(t *testing.T) {
	// 已经requeue过一次的消息再失败就丢弃
	rdb := &stubRedis{data: map[string]struct{}{}}
	store := &mockStore{create: func(ctx context.Context, n *model.Notification) error {
		return errors.New("db down")
	}}
	acker := &fakeAcker{}

	handleDelivery(rdb, store, amqp.Delivery{
		Acknowledger: acker,
		MessageId:    "m2",
		Body:         notifyBody(t),
		Redelivered:  true,
	})

	assert.True(t, acker.nacked)
	assert.False(t, acker.requeued)
}
