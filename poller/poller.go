// Package poller implements the client-side status watcher for credit purchase
// requests: it queries the status endpoint on a fixed interval until the request
// reaches the completed stage.
package poller

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"playvault/models"

	"github.com/go-resty/resty/v2"
)

// DefaultInterval matches the dashboard's poll cadence.
const DefaultInterval = 3 * time.Second

// StatusResponse is the payload of GET /api/credit-purchase/:id/status.
type StatusResponse struct {
	ID               uint      `json:"id"`
	Status           string    `json:"status"`
	Stage            string    `json:"stage"`
	AdminURL         string    `json:"adminUrl"`
	CreditsRequested int64     `json:"creditsRequested"`
	USDAmount        float64   `json:"usdAmount"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// Poller polls a purchase request until it completes. Transient query failures
// are retried on the next tick rather than aborting the watch.
type Poller struct {
	client     *resty.Client
	interval   time.Duration
	onStage    func(models.Stage, StatusResponse)
	onComplete func(StatusResponse)
}

func New(baseURL, token string, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		client: resty.New().
			SetBaseURL(baseURL).
			SetAuthToken(token).
			SetTimeout(10 * time.Second),
		interval: interval,
	}
}

// OnStageChange registers a callback fired once per observed stage transition.
func (p *Poller) OnStageChange(fn func(models.Stage, StatusResponse)) {
	p.onStage = fn
}

// OnComplete registers a callback fired exactly once, when the request reaches
// the completed stage.
func (p *Poller) OnComplete(fn func(StatusResponse)) {
	p.onComplete = fn
}

// Watch polls until the request completes or ctx is cancelled. It returns nil
// after signalling completion, or ctx.Err() on cancellation.
func (p *Poller) Watch(ctx context.Context, purchaseID uint) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	var lastStage models.Stage
	for {
		st, err := p.fetch(purchaseID)
		if err != nil {
			// Transient failure: keep the watch alive, retry next tick
			log.Printf("[POLLER] status query for purchase %d failed: %v", purchaseID, err)
		} else {
			stage := models.Stage(st.Stage)
			if stage != lastStage {
				lastStage = stage
				if p.onStage != nil {
					p.onStage(stage, *st)
				}
			}
			if stage == models.StageCompleted {
				if p.onComplete != nil {
					p.onComplete(*st)
				}
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (p *Poller) fetch(purchaseID uint) (*StatusResponse, error) {
	var envelope struct {
		Status  bool           `json:"status"`
		Message string         `json:"message"`
		Data    StatusResponse `json:"data"`
	}

	resp, err := p.client.R().
		SetResult(&envelope).
		Get(fmt.Sprintf("/api/credit-purchase/%d/status", purchaseID))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("status endpoint responded %d", resp.StatusCode())
	}
	return &envelope.Data, nil
}
