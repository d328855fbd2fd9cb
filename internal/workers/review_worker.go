package workers

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	pgrepo "github.com/skillswap/backend/internal/repositories/postgres"
)

// ReviewStream carries submitted session reviews; the worker pool folds
// them into each mentor's rating rollup.
const ReviewStream = "reviews:stream"

type ReviewWorkerPool struct {
	Redis   *redis.Client
	Ratings pgrepo.MentorRatingRepository

	NumWorkers int
	Logger     *logrus.Logger

	Stream         string
	Group          string
	ConsumerPrefix string
}

func (p *ReviewWorkerPool) Start(ctx context.Context) error {
	if p.Redis == nil || p.Ratings == nil {
		return errors.New("ReviewWorkerPool missing dependency: Redis/Ratings must be set")
	}
	if p.Stream == "" {
		p.Stream = ReviewStream
	}
	if p.Group == "" {
		p.Group = "review-workers"
	}
	if p.ConsumerPrefix == "" {
		p.ConsumerPrefix = "c"
	}
	if p.NumWorkers <= 0 {
		p.NumWorkers = 2
	}
	if p.Logger == nil {
		p.Logger = logrus.New()
	}

	_ = p.Redis.XGroupCreateMkStream(ctx, p.Stream, p.Group, "0").Err() // ignore BUSYGROUP

	for i := 0; i < p.NumWorkers; i++ {
		consumer := p.ConsumerPrefix + "-" + strconv.Itoa(i+1)
		go p.runConsumer(ctx, consumer)
	}
	return nil
}

func (p *ReviewWorkerPool) runConsumer(ctx context.Context, consumer string) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		res, err := p.Redis.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    p.Group,
			Consumer: consumer,
			Streams:  []string{p.Stream, ">"},
			Count:    10,
			Block:    5 * time.Second,
		}).Result()
		if err != nil {
			if err == redis.Nil {
				continue
			}
			time.Sleep(500 * time.Millisecond)
			continue
		}

		for _, stream := range res {
			for _, msg := range stream.Messages {
				p.handleMsg(ctx, msg)
				_ = p.Redis.XAck(ctx, p.Stream, p.Group, msg.ID).Err()
			}
		}
	}
}

func (p *ReviewWorkerPool) handleMsg(ctx context.Context, msg redis.XMessage) {
	getStr := func(k string) string {
		v, ok := msg.Values[k]
		if !ok || v == nil {
			return ""
		}
		s, _ := v.(string)
		return s
	}

	mentorID, err := strconv.ParseUint(getStr("mentor_id"), 10, 64)
	if err != nil || mentorID == 0 {
		return
	}
	rating, err := strconv.ParseFloat(getStr("rating"), 64)
	if err != nil || rating < 1 || rating > 5 {
		return
	}

	log := p.Logger.WithFields(logrus.Fields{
		"redis_id":   msg.ID,
		"mentor_id":  mentorID,
		"session_id": getStr("session_id"),
	})

	// A single atomic statement in the repository; consumers may fold
	// reviews for the same mentor concurrently.
	if err := p.Ratings.FoldReview(ctx, uint(mentorID), rating); err != nil {
		log.WithError(err).Error("rating rollup update failed")
		return
	}
	log.Debug("rating rollup updated")
}
