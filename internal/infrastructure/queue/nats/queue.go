package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/kirillkom/internship-allocator/internal/core/domain"
	"github.com/kirillkom/internship-allocator/internal/infrastructure/resilience"
)

const DefaultQueueGroup = "matchers"

type Queue struct {
	conn       *nats.Conn
	subject    string
	queueGroup string
	executor   *resilience.Executor
}

func New(url, subject string) (*Queue, error) {
	return NewWithOptions(url, subject, Options{})
}

type Options struct {
	ClientName           string
	QueueGroup           string
	ConnectTimeout       time.Duration
	ReconnectWait        time.Duration
	MaxReconnects        int
	RetryOnFailedConnect *bool
	ResilienceExecutor   *resilience.Executor
}

func NewWithOptions(url, subject string, options Options) (*Queue, error) {
	connectTimeout := options.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 2 * time.Second
	}
	reconnectWait := options.ReconnectWait
	if reconnectWait <= 0 {
		reconnectWait = 2 * time.Second
	}
	maxReconnects := options.MaxReconnects
	if maxReconnects <= 0 {
		maxReconnects = 60
	}
	retryOnFailedConnect := true
	if options.RetryOnFailedConnect != nil {
		retryOnFailedConnect = *options.RetryOnFailedConnect
	}
	clientName := options.ClientName
	if clientName == "" {
		clientName = "internship-allocator"
	}
	queueGroup := strings.TrimSpace(options.QueueGroup)
	if queueGroup == "" {
		queueGroup = DefaultQueueGroup
	}

	conn, err := nats.Connect(
		url,
		nats.Name(clientName),
		nats.Timeout(connectTimeout),
		nats.ReconnectWait(reconnectWait),
		nats.MaxReconnects(maxReconnects),
		nats.RetryOnFailedConnect(retryOnFailedConnect),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			slog.Warn("nats_disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			slog.Info("nats_reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &Queue{
		conn:       conn,
		subject:    subject,
		queueGroup: queueGroup,
		executor:   options.ResilienceExecutor,
	}, nil
}

func (q *Queue) Close() {
	if q.conn != nil {
		q.conn.Close()
	}
}

// Flush waits until the server has acknowledged everything published so far.
func (q *Queue) Flush(timeout time.Duration) error {
	if !q.Connected() {
		return domain.WrapError(domain.ErrTemporary, "nats flush", nats.ErrConnectionReconnecting)
	}
	if err := q.conn.FlushTimeout(timeout); err != nil {
		return publishError(fmt.Errorf("nats flush: %w", err))
	}
	return nil
}

// Connected reports whether the underlying connection is usable.
func (q *Queue) Connected() bool {
	return q.conn != nil && q.conn.IsConnected()
}

func (q *Queue) PublishMatchRequested(ctx context.Context, profile domain.ApplicantProfile) error {
	payload, err := encodeMatchRequest(profile)
	if err != nil {
		return domain.WrapError(domain.ErrInvalidRequest, "nats publish", err)
	}

	call := func(_ context.Context) error {
		// A reconnecting client would buffer the message and drop it on Close.
		if !q.Connected() {
			return domain.WrapError(domain.ErrTemporary, "nats publish", nats.ErrConnectionReconnecting)
		}
		return publishError(q.conn.Publish(q.subject, payload))
	}

	if q.executor != nil {
		err = q.executor.Execute(ctx, "nats.publish", call, resilience.ClassifyDomainError)
	} else {
		err = call(ctx)
	}
	return publishError(err)
}

// SubscribeMatchRequested blocks until ctx is done, then drains the
// subscription so in-flight handlers finish.
func (q *Queue) SubscribeMatchRequested(ctx context.Context, handler func(context.Context, domain.ApplicantProfile) error) error {
	sub, err := q.conn.QueueSubscribe(q.subject, q.queueGroup, func(msg *nats.Msg) {
		if errors.Is(ctx.Err(), context.Canceled) {
			return
		}

		profile, err := decodeMatchRequest(msg.Data)
		if err != nil {
			slog.Error("match_request_decode_failed", "subject", msg.Subject, "error", err)
			return
		}

		handlerCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		if err := handler(handlerCtx, profile); err != nil {
			slog.Error("match_request_failed", "applicant_id", profile.ApplicantID, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("nats subscribe: %w", err)
	}

	if err := q.conn.Flush(); err != nil {
		return fmt.Errorf("nats flush: %w", err)
	}

	<-ctx.Done()
	if err := sub.Drain(); err != nil {
		return fmt.Errorf("nats drain subscription: %w", err)
	}
	if err := q.conn.FlushTimeout(5 * time.Second); err != nil {
		return fmt.Errorf("nats flush after drain: %w", err)
	}
	return nil
}

func encodeMatchRequest(profile domain.ApplicantProfile) ([]byte, error) {
	payload, err := json.Marshal(profile)
	if err != nil {
		return nil, fmt.Errorf("marshal match request: %w", err)
	}
	return payload, nil
}

func decodeMatchRequest(data []byte) (domain.ApplicantProfile, error) {
	var profile domain.ApplicantProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return domain.ApplicantProfile{}, fmt.Errorf("unmarshal match request: %w", err)
	}
	profile.ApplicantID = strings.TrimSpace(profile.ApplicantID)
	if profile.ApplicantID == "" {
		return domain.ApplicantProfile{}, errors.New("match request without applicant_id")
	}
	return profile, nil
}
