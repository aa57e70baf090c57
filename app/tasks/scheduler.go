package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tgpulse/tgpulse/app/analyzer"
	"github.com/tgpulse/tgpulse/app/cfg"
	"github.com/tgpulse/tgpulse/app/database"
	"github.com/tgpulse/tgpulse/app/query"
	"github.com/tgpulse/tgpulse/app/telegram"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

type Scheduler struct {
	channelRepo   database.ChannelRepository
	postRepo      database.PostRepository
	client        telegram.Client
	assembler     *analyzer.Assembler
	interval      time.Duration
	parseInterval time.Duration
	postsPerParse int
	workerCount   int
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
	taskQueue     chan TaskInterface
}

func NewScheduler(channelRepo database.ChannelRepository, postRepo database.PostRepository,
	client telegram.Client, assembler *analyzer.Assembler) TaskSchedulerInterface {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := cfg.Get()

	return &Scheduler{
		channelRepo:   channelRepo,
		postRepo:      postRepo,
		client:        client,
		assembler:     assembler,
		interval:      time.Duration(cfg.SchedulerInterval) * time.Second,
		parseInterval: time.Duration(cfg.ParseInterval) * time.Second,
		postsPerParse: cfg.PostsPerParse,
		workerCount:   cfg.WorkerCount,
		ctx:           ctx,
		cancel:        cancel,
		taskQueue:     make(chan TaskInterface, 300),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.enqueueDueChannels()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueueDueChannels()
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	close(s.taskQueue)
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

// enqueueDueChannels schedules a parse for every active channel whose
// last parse is older than the parse interval.
func (s *Scheduler) enqueueDueChannels() {
	active := true
	channels, err := s.channelRepo.ListChannels(query.BuildChannelList(query.ChannelFilter{IsActive: &active}))
	if err != nil {
		slog.Error("Failed to list channels for scheduling", "error", err)
		return
	}

	if len(channels) == 0 {
		slog.Debug("No active channels found")
		return
	}

	now := time.Now().UTC()
	for _, channel := range channels {
		if channel.LastParsedAt != nil && now.Sub(*channel.LastParsedAt) < s.parseInterval {
			slog.Debug("Channel not due for parsing yet", "channel", channel.Handle, "last_parsed_at", channel.LastParsedAt)
			continue
		}

		task := NewParseChannelTask(channel, s.client, s.assembler, s.channelRepo, s.postRepo, s.postsPerParse)
		if err := s.EnqueueTask(task); err != nil {
			slog.Warn("Failed to enqueue ParseChannelTask", "channel", channel.Handle, "error", err)
		}
	}
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task, ok := <-s.taskQueue:
			if !ok {
				return
			}
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, 5*time.Minute)
	defer cancel()

	err := task.Execute(taskCtx)

	if err != nil {
		slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", err)

		if task.CanRetry() {
			task.IncrementRetryCount()
			retryDelay := time.Duration(1<<uint(task.GetRetryCount()-1)) * time.Second
			if retryDelay > 30*time.Second {
				retryDelay = 30 * time.Second
			}

			slog.Warn("Task retry scheduled", "type", string(task.GetType()), "channel", task.GetChannelHandle(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

			go func() {
				time.Sleep(retryDelay)
				select {
				case <-s.ctx.Done():
					slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
					return
				default:
					if retryErr := s.EnqueueTask(task); retryErr != nil {
						slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", retryErr)
					}
				}
			}()
		} else {
			slog.Error("Task failed after maximum retries", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
		}
	}
}
