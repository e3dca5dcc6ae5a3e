package queue

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/unclebandit/mailmirror-backend/internal/mailchimp"
	"github.com/unclebandit/mailmirror-backend/internal/service"
)

// TopicCampaignSync carries sync triggers (manual "fetch now" requests and
// the interval ticker). The payload is a free-form reason string.
const TopicCampaignSync = "campaign_sync"

// Queue interface
type Queue interface {
	Publish(topic string, payload any) error
	Subscribe(topic string, handler func(payload any) error) error
}

// InMemoryQueue is a small in-process pub/sub with retry
type InMemoryQueue struct {
	mu       sync.Mutex
	handlers map[string][]func(payload any) error
}

// NewInMemoryQueue creates a new queue
func NewInMemoryQueue() *InMemoryQueue {
	return &InMemoryQueue{
		handlers: make(map[string][]func(payload any) error),
	}
}

// JobPayload wraps a message payload with retry info
type JobPayload struct {
	Payload    any
	RetryCount int
	MaxRetries int
}

// Publish sends a message to all subscribers
func (q *InMemoryQueue) Publish(topic string, payload any) error {
	q.mu.Lock()
	handlers := q.handlers[topic]
	q.mu.Unlock()

	if len(handlers) == 0 {
		return fmt.Errorf("no subscribers for topic %s", topic)
	}

	job := JobPayload{
		Payload:    payload,
		RetryCount: 0,
		MaxRetries: 3,
	}

	for _, handler := range handlers {
		go q.processJob(handler, job)
	}

	return nil
}

// processJob handles retries and errors
func (q *InMemoryQueue) processJob(handler func(payload any) error, job JobPayload) {
	for job.RetryCount <= job.MaxRetries {
		err := handler(job.Payload)
		if err == nil {
			return // ACK
		}

		job.RetryCount++
		log.Printf("Job failed (attempt %d/%d): %+v, error: %v\n", job.RetryCount, job.MaxRetries, job.Payload, err)

		if job.RetryCount > job.MaxRetries {
			log.Printf("Job permanently failed after %d attempts: %+v\n", job.MaxRetries, job.Payload)
			return // No requeue
		}

		// Exponential backoff before retry
		time.Sleep(time.Duration(job.RetryCount*500) * time.Millisecond)
	}
}

// Subscribe adds a handler for a topic
func (q *InMemoryQueue) Subscribe(topic string, handler func(payload any) error) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.handlers[topic] = append(q.handlers[topic], handler)
	return nil
}

// StartCampaignSyncSubscriber wires the sync pipeline to the campaign_sync
// topic: each trigger fetches the remote campaign list and reconciles it.
// Sync runs are serialized with a mutex; overlapping runs against the same
// external_id are not supported, a trigger arriving mid-run just waits.
func StartCampaignSyncSubscriber(q Queue, syncSvc *service.SyncService, fetcher mailchimp.Fetcher) {
	var running sync.Mutex

	err := q.Subscribe(TopicCampaignSync, func(payload any) error {
		reason, _ := payload.(string)

		running.Lock()
		defer running.Unlock()

		log.Println("📩 Sync triggered:", reason)

		records, err := fetcher.FetchCampaigns(context.Background())
		if err != nil {
			log.Println("⚠️ Failed to fetch campaigns:", err)
			return err // triggers retry in queue
		}

		report, err := syncSvc.Sync(records)
		if err != nil {
			log.Println("⚠️ Sync failed:", err)
			return err
		}

		log.Printf("✅ Sync %s done: created=%d updated=%d classified=%d skipped=%d\n",
			report.RunID, report.Created, report.Updated, report.Classified, report.Skipped)
		return nil
	})

	if err != nil {
		log.Println("⚠️ Failed to start subscriber for campaign_sync:", err)
	}
}
