// Package countdown keeps the storefront's cosmetic scarcity counters:
// units remaining and the offer timer. Neither is backed by real stock.
package countdown

import (
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"

	applog "albumstore/internal/log"
)

const (
	DefaultUnits   = 118
	DefaultSeconds = 900

	// units stop dropping at this floor
	unitsFloor = 7

	unitsSchedule  = "@every 3s"
	secondSchedule = "@every 1s"
)

type Snapshot struct {
	Units     int    `json:"units"`
	Seconds   int    `json:"seconds"`
	Remaining string `json:"remaining"`
	Expired   bool   `json:"expired"`
}

type Offer struct {
	mu      sync.Mutex
	units   int
	seconds int

	c *cron.Cron
}

func New(units, seconds int) *Offer {
	if units <= 0 {
		units = DefaultUnits
	}
	if seconds <= 0 {
		seconds = DefaultSeconds
	}
	return &Offer{units: units, seconds: seconds}
}

// Start registers both tickers and starts them. Calling Start twice is a no-op.
func (o *Offer) Start() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.c != nil {
		return nil
	}
	c := cron.New()
	if _, err := c.AddFunc(unitsSchedule, o.dropUnit); err != nil {
		return fmt.Errorf("countdown: register units job: %w", err)
	}
	if _, err := c.AddFunc(secondSchedule, o.tick); err != nil {
		return fmt.Errorf("countdown: register offer job: %w", err)
	}
	c.Start()
	o.c = c
	applog.Event("countdown.start", nil, map[string]any{"units": o.units, "seconds": o.seconds})
	return nil
}

// Stop halts the tickers and waits for a running job to return.
func (o *Offer) Stop() {
	o.mu.Lock()
	c := o.c
	o.c = nil
	o.mu.Unlock()
	if c != nil {
		<-c.Stop().Done()
	}
}

func (o *Offer) dropUnit() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.units > unitsFloor {
		o.units--
	}
}

func (o *Offer) tick() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.seconds > 0 {
		o.seconds--
	}
}

func (o *Offer) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return Snapshot{
		Units:     o.units,
		Seconds:   o.seconds,
		Remaining: Format(o.seconds),
		Expired:   o.seconds == 0,
	}
}

// Format renders seconds as zero-padded MM:SS.
func Format(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
