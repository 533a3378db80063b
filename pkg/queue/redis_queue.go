// Package queue is a Redis streams job queue for journal analysis.
package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"melify/internal/util"
)

const (
	StatusQueued     = "queued"
	StatusProcessing = "processing"
	StatusDone       = "done"
	StatusFailed     = "failed"
)

// Job tracks one requested analysis of a journal.
type Job struct {
	ID           string    `json:"id"`
	JournalID    string    `json:"journalId"`
	UserID       string    `json:"userId"`
	Status       string    `json:"status"`
	ErrorMessage string    `json:"errorMessage,omitempty"`
	Attempts     int       `json:"attempts"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Handler processes one job. Return Permanent(err) to skip retries.
type Handler func(context.Context, Job) error

type RedisJobQueue struct {
	client       *redis.Client
	stream       string
	group        string
	consumerBase string
	jobTTL       time.Duration
	maxRetries   int
	block        time.Duration
	claimIdle    time.Duration
	retryDelay   time.Duration
	maxLen       int64
	readCount    int64
	claimCount   int64
	logger       *slog.Logger
	once         sync.Once
}

type RedisQueueConfig struct {
	// Client is used as is when set; otherwise one is built from Addr and Password.
	Client     *redis.Client
	Addr       string
	Password   string
	Stream     string
	Group      string
	Consumer   string
	JobTTL     time.Duration
	MaxRetries int
	Block      time.Duration
	ClaimIdle  time.Duration
	RetryDelay time.Duration
	MaxLen     int64
	ReadCount  int64
	ClaimCount int64
	Logger     *slog.Logger
}

func NewRedisJobQueue(cfg RedisQueueConfig) (*RedisJobQueue, error) {
	client := cfg.Client
	if client == nil {
		addr := strings.TrimSpace(cfg.Addr)
		if addr == "" {
			return nil, errors.New("redis addr required")
		}
		client = redis.NewClient(&redis.Options{Addr: addr, Password: cfg.Password})
	}
	stream := strings.TrimSpace(cfg.Stream)
	if stream == "" {
		return nil, errors.New("queue stream required")
	}
	group := strings.TrimSpace(cfg.Group)
	if group == "" {
		group = "default"
	}
	consumer := strings.TrimSpace(cfg.Consumer)
	if consumer == "" {
		consumer = util.NewID()
	}
	jobTTL := cfg.JobTTL
	if jobTTL <= 0 {
		jobTTL = 24 * time.Hour
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	block := cfg.Block
	if block <= 0 {
		block = 5 * time.Second
	}
	claimIdle := cfg.ClaimIdle
	if claimIdle <= 0 {
		claimIdle = 2 * time.Minute
	}
	retryDelay := cfg.RetryDelay
	if retryDelay <= 0 {
		retryDelay = 2 * time.Second
	}
	maxLen := cfg.MaxLen
	if maxLen <= 0 {
		maxLen = 10000
	}
	readCount := cfg.ReadCount
	if readCount <= 0 {
		readCount = 10
	}
	claimCount := cfg.ClaimCount
	if claimCount <= 0 {
		claimCount = 10
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &RedisJobQueue{
		client:       client,
		stream:       stream,
		group:        group,
		consumerBase: consumer,
		jobTTL:       jobTTL,
		maxRetries:   maxRetries,
		block:        block,
		claimIdle:    claimIdle,
		retryDelay:   retryDelay,
		maxLen:       maxLen,
		readCount:    readCount,
		claimCount:   claimCount,
		logger:       logger.With("stream", stream),
	}, nil
}

// Enqueue records a queued job and appends it to the stream.
func (q *RedisJobQueue) Enqueue(ctx context.Context, journalID, userID string) (Job, error) {
	journalID = strings.TrimSpace(journalID)
	userID = strings.TrimSpace(userID)
	if journalID == "" {
		return Job{}, errors.New("journalId required")
	}
	if userID == "" {
		return Job{}, errors.New("userId required")
	}
	now := time.Now().UTC()
	job := Job{
		ID:        util.NewID(),
		JournalID: journalID,
		UserID:    userID,
		Status:    StatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := q.writeStatus(ctx, job); err != nil {
		return Job{}, fmt.Errorf("write job status: %w", err)
	}
	if err := q.client.XAdd(ctx, q.addArgs(job.ID, job.JournalID, job.UserID)).Err(); err != nil {
		return Job{}, fmt.Errorf("enqueue job: %w", err)
	}
	return job, nil
}

// GetJob reads a job's status hash.
func (q *RedisJobQueue) GetJob(ctx context.Context, jobID string) (Job, bool, error) {
	jobID = strings.TrimSpace(jobID)
	if jobID == "" {
		return Job{}, false, nil
	}
	data, err := q.client.HGetAll(ctx, q.jobKey(jobID)).Result()
	if err != nil {
		return Job{}, false, err
	}
	if len(data) == 0 {
		return Job{}, false, nil
	}
	return decodeJob(jobID, data), true, nil
}

// Start launches concurrency consumers that run until ctx is done.
func (q *RedisJobQueue) Start(ctx context.Context, concurrency int, handler Handler) {
	if concurrency <= 0 {
		concurrency = 1
	}
	q.ensureGroup(ctx)
	for i := 0; i < concurrency; i++ {
		consumer := fmt.Sprintf("%s-%d", q.consumerBase, i)
		go q.consumeLoop(ctx, consumer, handler)
	}
}

// Ping checks Redis connectivity.
func (q *RedisJobQueue) Ping(ctx context.Context) error {
	return q.client.Ping(ctx).Err()
}

func (q *RedisJobQueue) ensureGroup(ctx context.Context) {
	q.once.Do(func() {
		err := q.client.XGroupCreateMkStream(ctx, q.stream, q.group, "$").Err()
		if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
			q.logger.Warn("create consumer group failed", "group", q.group, "error", err)
		}
	})
}

func (q *RedisJobQueue) consumeLoop(ctx context.Context, consumer string, handler Handler) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if msgs, err := q.claimPending(ctx, consumer); err == nil {
			for _, msg := range msgs {
				q.handleMessage(ctx, msg, handler)
			}
		}

		streams, err := q.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    q.group,
			Consumer: consumer,
			Streams:  []string{q.stream, ">"},
			Count:    q.readCount,
			Block:    q.block,
		}).Result()
		if err != nil {
			if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
				q.logger.Warn("read stream failed", "consumer", consumer, "error", err)
				sleepCtx(ctx, q.retryDelay)
			}
			continue
		}
		for _, stream := range streams {
			for _, msg := range stream.Messages {
				q.handleMessage(ctx, msg, handler)
			}
		}
	}
}

func (q *RedisJobQueue) claimPending(ctx context.Context, consumer string) ([]redis.XMessage, error) {
	res, _, err := q.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   q.stream,
		Group:    q.group,
		Consumer: consumer,
		MinIdle:  q.claimIdle,
		Start:    "0-0",
		Count:    q.claimCount,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (q *RedisJobQueue) handleMessage(ctx context.Context, msg redis.XMessage, handler Handler) {
	jobID, _ := msg.Values["job_id"].(string)
	journalID, _ := msg.Values["journal_id"].(string)
	userID, _ := msg.Values["user_id"].(string)
	if jobID == "" || journalID == "" || userID == "" {
		q.ackAndDel(ctx, msg.ID)
		return
	}
	job, err := q.markProcessing(ctx, jobID, journalID, userID)
	if err != nil {
		q.ackAndDel(ctx, msg.ID)
		return
	}
	logger := q.logger.With("job_id", jobID, "journal_id", journalID, "attempt", job.Attempts)
	err = handler(ctx, job)
	if err == nil {
		_ = q.markDone(ctx, jobID)
		q.ackAndDel(ctx, msg.ID)
		return
	}
	if IsPermanent(err) || job.Attempts >= q.maxRetries {
		logger.Warn("analysis job failed", "error", err, "permanent", IsPermanent(err))
		_ = q.markFailed(ctx, jobID, err.Error())
		q.ackAndDel(ctx, msg.ID)
		return
	}
	logger.Info("analysis job will retry", "error", err)
	_ = q.markQueued(ctx, jobID, err.Error())
	if !sleepCtx(ctx, q.retryDelay) {
		return
	}
	_ = q.requeueAndAck(ctx, msg.ID, jobID, journalID, userID)
}

func (q *RedisJobQueue) addArgs(jobID, journalID, userID string) *redis.XAddArgs {
	return &redis.XAddArgs{
		Stream: q.stream,
		MaxLen: q.maxLen,
		Approx: true,
		Values: map[string]any{
			"job_id":     jobID,
			"journal_id": journalID,
			"user_id":    userID,
		},
	}
}

func (q *RedisJobQueue) ackAndDel(ctx context.Context, msgID string) {
	_, _ = q.client.XAck(ctx, q.stream, q.group, msgID).Result()
	_, _ = q.client.XDel(ctx, q.stream, msgID).Result()
}

func (q *RedisJobQueue) requeueAndAck(ctx context.Context, msgID, jobID, journalID, userID string) error {
	pipe := q.client.TxPipeline()
	pipe.XAdd(ctx, q.addArgs(jobID, journalID, userID))
	pipe.XAck(ctx, q.stream, q.group, msgID)
	pipe.XDel(ctx, q.stream, msgID)
	_, err := pipe.Exec(ctx)
	return err
}

func (q *RedisJobQueue) markProcessing(ctx context.Context, jobID, journalID, userID string) (Job, error) {
	job, _, err := q.GetJob(ctx, jobID)
	if err != nil {
		return Job{}, err
	}
	if job.ID == "" {
		job = Job{ID: jobID}
	}
	job.JournalID = journalID
	job.UserID = userID
	job.Attempts++
	job.Status = StatusProcessing
	job.UpdatedAt = time.Now().UTC()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = job.UpdatedAt
	}
	if err := q.writeStatus(ctx, job); err != nil {
		return Job{}, err
	}
	return job, nil
}

func (q *RedisJobQueue) markQueued(ctx context.Context, jobID, errMsg string) error {
	return q.updateStatus(ctx, jobID, StatusQueued, errMsg)
}

func (q *RedisJobQueue) markDone(ctx context.Context, jobID string) error {
	return q.updateStatus(ctx, jobID, StatusDone, "")
}

func (q *RedisJobQueue) markFailed(ctx context.Context, jobID, errMsg string) error {
	return q.updateStatus(ctx, jobID, StatusFailed, errMsg)
}

func (q *RedisJobQueue) updateStatus(ctx context.Context, jobID, status, errMsg string) error {
	job, _, err := q.GetJob(ctx, jobID)
	if err != nil {
		return err
	}
	job.ID = jobID
	job.Status = status
	job.ErrorMessage = errMsg
	job.UpdatedAt = time.Now().UTC()
	return q.writeStatus(ctx, job)
}

func (q *RedisJobQueue) writeStatus(ctx context.Context, job Job) error {
	key := q.jobKey(job.ID)
	payload := map[string]any{
		"id":        job.ID,
		"journalId": job.JournalID,
		"userId":    job.UserID,
		"status":    job.Status,
		"error":     job.ErrorMessage,
		"attempts":  strconv.Itoa(job.Attempts),
		"createdAt": job.CreatedAt.Format(time.RFC3339Nano),
		"updatedAt": job.UpdatedAt.Format(time.RFC3339Nano),
	}
	if err := q.client.HSet(ctx, key, payload).Err(); err != nil {
		return err
	}
	_ = q.client.Expire(ctx, key, q.jobTTL).Err()
	return nil
}

func (q *RedisJobQueue) jobKey(jobID string) string {
	return fmt.Sprintf("job:%s:%s", q.stream, jobID)
}

func decodeJob(jobID string, data map[string]string) Job {
	job := Job{
		ID:           jobID,
		JournalID:    data["journalId"],
		UserID:       data["userId"],
		Status:       data["status"],
		ErrorMessage: data["error"],
	}
	if n, err := strconv.Atoi(data["attempts"]); err == nil {
		job.Attempts = n
	}
	if t, err := time.Parse(time.RFC3339Nano, data["createdAt"]); err == nil {
		job.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339Nano, data["updatedAt"]); err == nil {
		job.UpdatedAt = t
	}
	return job
}

// sleepCtx waits for d and reports false if ctx ended first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
