// Package sync mirrors session records to and from a remote results store.
// Mirroring is best-effort in both directions: a failed push is logged and
// dropped, and each poll is independent and idempotent, so remote loss or
// duplicate delivery never blocks or corrupts local ingestion.
package sync

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/KofuCodes/ReMind/internal/models"
	"github.com/KofuCodes/ReMind/internal/store"
)

// Pusher posts each ingested record to a remote collector.
type Pusher struct {
	url    string
	client *http.Client
	log    *zap.Logger
}

func NewPusher(url string, log *zap.Logger) *Pusher {
	return &Pusher{
		url:    url,
		client: &http.Client{Timeout: 5 * time.Second},
		log:    log,
	}
}

// Push sends one record, fire-and-forget. Failures are logged and dropped.
func (p *Pusher) Push(rec models.SessionRecord) {
	body, err := json.Marshal(rec)
	if err != nil {
		p.log.Error("Failed to marshal record for push", zap.String("id", rec.ID), zap.Error(err))
		return
	}

	req, err := http.NewRequest(http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		p.log.Error("Failed to build push request", zap.String("id", rec.ID), zap.Error(err))
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := p.client.Do(req)
	if err != nil {
		p.log.Warn("Push to remote store failed, record dropped from mirror",
			zap.String("id", rec.ID), zap.Error(err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		p.log.Warn("Remote store rejected pushed record",
			zap.String("id", rec.ID), zap.Int("status", resp.StatusCode))
		return
	}

	p.log.Debug("Record mirrored to remote store", zap.String("id", rec.ID))
}

// Poller periodically pulls the remote history and merges unseen records
// into the local store.
type Poller struct {
	url      string
	interval time.Duration
	store    store.Store
	client   *http.Client
	log      *zap.Logger
	stop     chan struct{}
	done     chan struct{}
}

func NewPoller(url string, interval time.Duration, st store.Store, log *zap.Logger) *Poller {
	return &Poller{
		url:      url,
		interval: interval,
		store:    st,
		client:   &http.Client{Timeout: 10 * time.Second},
		log:      log,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start runs the poll loop in a goroutine.
func (p *Poller) Start() {
	p.log.Info("Starting results poller", zap.String("url", p.url), zap.Duration("interval", p.interval))
	go func() {
		defer close(p.done)
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := p.poll(); err != nil {
					p.log.Warn("Results poll failed", zap.Error(err))
				}
			case <-p.stop:
				return
			}
		}
	}()
}

// Stop halts the poll loop and waits for it to exit.
func (p *Poller) Stop() {
	close(p.stop)
	<-p.done
}

func (p *Poller) poll() error {
	resp, err := p.client.Get(p.url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("remote store returned status %d", resp.StatusCode)
	}

	var payload struct {
		Sessions []models.SessionRecord `json:"sessions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return fmt.Errorf("failed to decode remote history: %w", err)
	}

	merged := 0
	for _, rec := range payload.Sessions {
		if p.store.Merge(rec) {
			merged++
		}
	}
	if merged > 0 {
		p.log.Info("Merged remote session records", zap.Int("merged", merged), zap.Int("received", len(payload.Sessions)))
	}
	return nil
}
