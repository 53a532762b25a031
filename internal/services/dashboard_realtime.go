package services

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/warriorcare/warriorcare-backend/internal/database"
	"github.com/warriorcare/warriorcare-backend/internal/models"
)

// EventTypeSummaryUpdate is the only event type pushed to dashboards today.
const EventTypeSummaryUpdate = "summary_update"

// SummaryEvent is the payload published over Redis and delivered to dashboard
// WebSocket subscribers. Snapshots are immutable: subscribers never share a
// reference with the pipeline.
type SummaryEvent struct {
	Type      string                    `json:"type"`
	Summary   models.ParticipantSummary `json:"summary"`
	Timestamp time.Time                 `json:"timestamp"`
}

const subscriberBuffer = 16

type dashboardSubscriber struct {
	clinicianID uuid.UUID
	events      chan SummaryEvent
}

// DashboardHub is the process-wide registry of live dashboard subscriptions:
// clinician id -> open subscriber channels. It is a cache of who is listening
// right now, never a source of truth; a clinician who is not registered at
// the moment of an event simply queries later.
type DashboardHub struct {
	mu          sync.RWMutex
	subscribers map[uuid.UUID]map[*dashboardSubscriber]struct{}
}

func NewDashboardHub() *DashboardHub {
	return &DashboardHub{subscribers: make(map[uuid.UUID]map[*dashboardSubscriber]struct{})}
}

var (
	dashboardHub     = NewDashboardHub()
	triageSubStarted sync.Once
)

// Subscribe registers a live dashboard view for a clinician and returns the
// event channel plus an unsubscribe func. The caller must invoke unsubscribe
// on disconnect, or the registry grows without bound.
func (h *DashboardHub) Subscribe(clinicianID uuid.UUID) (<-chan SummaryEvent, func()) {
	sub := &dashboardSubscriber{
		clinicianID: clinicianID,
		events:      make(chan SummaryEvent, subscriberBuffer),
	}

	h.mu.Lock()
	if h.subscribers[clinicianID] == nil {
		h.subscribers[clinicianID] = make(map[*dashboardSubscriber]struct{})
	}
	h.subscribers[clinicianID][sub] = struct{}{}
	h.mu.Unlock()

	unsubscribe := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		set, ok := h.subscribers[clinicianID]
		if !ok {
			return
		}
		if _, ok := set[sub]; !ok {
			return
		}
		delete(set, sub)
		if len(set) == 0 {
			delete(h.subscribers, clinicianID)
		}
		close(sub.events)
	}
	return sub.events, unsubscribe
}

// Deliver enqueues an event for every listed clinician's open subscriptions.
// Sends are non-blocking: a subscriber that cannot keep up loses the event
// (logged as a delivery failure) rather than stalling the pipeline. Each
// subscriber channel is drained by a single writer, so events for one
// participant reach one subscriber in commit order.
func (h *DashboardHub) Deliver(clinicianIDs []uuid.UUID, event SummaryEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, clinicianID := range clinicianIDs {
		for sub := range h.subscribers[clinicianID] {
			select {
			case sub.events <- event:
			default:
				log.Printf("dashboard: delivery failure, dropping update for clinician %s (buffer full)", clinicianID)
			}
		}
	}
}

// FanOut resolves the care team for the event's participant at delivery time
// and hands the snapshot to every authorized, currently-subscribed clinician.
// Resolution happens per event so a revoked assignment stops deliveries
// immediately.
func (h *DashboardHub) FanOut(ctx context.Context, directory Directory, event SummaryEvent) {
	clinicians, err := directory.CliniciansFor(ctx, event.Summary.ParticipantID)
	if err != nil {
		log.Printf("dashboard: failed to resolve care team for %s: %v", event.Summary.ParticipantID, err)
		return
	}
	if len(clinicians) == 0 {
		return
	}
	h.Deliver(clinicians, event)
}

// SubscribeDashboard registers on the process-wide hub.
func SubscribeDashboard(clinicianID uuid.UUID) (<-chan SummaryEvent, func()) {
	return dashboardHub.Subscribe(clinicianID)
}

// --- Redis transport ---

const summaryChannelPrefix = "triage:participant:"

// RedisSummaryPublisher publishes summary snapshots to the per-participant
// Redis channel. Publish order on one channel is delivery order, which gives
// the per-participant FIFO guarantee across instances.
type RedisSummaryPublisher struct{}

func NewRedisSummaryPublisher() *RedisSummaryPublisher {
	return &RedisSummaryPublisher{}
}

func (p *RedisSummaryPublisher) PublishSummary(ctx context.Context, summary models.ParticipantSummary) error {
	event := SummaryEvent{
		Type:      EventTypeSummaryUpdate,
		Summary:   summary,
		Timestamp: time.Now().UTC(),
	}
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	channel := summaryChannelPrefix + summary.ParticipantID.String()
	return database.RedisClient.Publish(ctx, channel, data).Err()
}

// StartDashboardSubscriber ensures a single shared Redis listener per
// instance. Events received from Redis are fanned out to local subscribers.
func StartDashboardSubscriber(ctx context.Context, directory Directory) {
	triageSubStarted.Do(func() {
		go runDashboardSubscriber(ctx, directory)
	})
}

func runDashboardSubscriber(ctx context.Context, directory Directory) {
	client := database.RedisClient
	if client == nil {
		log.Println("Redis client not initialized; dashboard subscriber not started")
		return
	}

	backoff := time.Second

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		func() {
			pubsub := client.PSubscribe(ctx, summaryChannelPrefix+"*")
			defer pubsub.Close()

			log.Println("✅ Dashboard Redis subscriber started (pattern: triage:participant:*)")

			for {
				msg, err := pubsub.ReceiveMessage(ctx)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					log.Printf("Redis subscriber error: %v", err)
					time.Sleep(backoff)
					backoff *= 2
					if backoff > 30*time.Second {
						backoff = 30 * time.Second
					}
					return
				}

				backoff = time.Second

				var event SummaryEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					log.Printf("failed to unmarshal summary event: %v", err)
					continue
				}

				// Fan out to local subscriptions, re-checking assignments.
				dashboardHub.FanOut(ctx, directory, event)
			}
		}()
	}
}
