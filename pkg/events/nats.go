package events

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// SubjectPattern 所有关系事件 relationships.<verb>.<action>
const SubjectPattern = "relationships.>"

// NatsPublisher 关系事件发布到 JetStream
type NatsPublisher struct {
	nc     *nats.Conn
	js     jetstream.JetStream
	stream string
}

// NewNatsPublisher 连接 NATS 并确保 stream 存在（幂等）
func NewNatsPublisher(ctx context.Context, url, stream string) (*NatsPublisher, error) {
	nc, err := nats.Connect(url, nats.Name("relgraph"))
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("jetstream init: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     stream,
		Subjects: []string{SubjectPattern},
		Storage:  jetstream.FileStorage,
		Replicas: 1,
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create stream: %w", err)
	}

	return &NatsPublisher{nc: nc, js: js, stream: stream}, nil
}

// Publish 等待服务端确认持久化
func (p *NatsPublisher) Publish(ctx context.Context, subject string, data []byte) error {
	if _, err := p.js.Publish(ctx, subject, data); err != nil {
		return fmt.Errorf("nats publish %s: %w", subject, err)
	}
	return nil
}

// Watch 从当前位置开始消费新事件，直到 ctx 结束
func (p *NatsPublisher) Watch(ctx context.Context, filter string, handle func(subject string, data []byte)) error {
	if filter == "" {
		filter = SubjectPattern
	}
	cons, err := p.js.OrderedConsumer(ctx, p.stream, jetstream.OrderedConsumerConfig{
		FilterSubjects: []string{filter},
		DeliverPolicy:  jetstream.DeliverNewPolicy,
	})
	if err != nil {
		return fmt.Errorf("create consumer: %w", err)
	}
	cc, err := cons.Consume(func(msg jetstream.Msg) {
		handle(msg.Subject(), msg.Data())
	})
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}
	<-ctx.Done()
	cc.Stop()
	return nil
}

// Close 排空后关闭连接
func (p *NatsPublisher) Close() error {
	return p.nc.Drain()
}
