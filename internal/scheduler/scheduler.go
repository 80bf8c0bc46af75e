package scheduler

import (
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/weather-telegram-bot/internal/weather"
)

// StatusSource reports the health of outbound providers.
type StatusSource interface {
	Statuses() []weather.ProviderStatus
}

// Scheduler periodically logs the circuit breaker state of each provider.
type Scheduler struct {
	scheduler *gocron.Scheduler
	source    StatusSource
	interval  time.Duration
}

// New creates a new Scheduler.
func New(interval time.Duration, source StatusSource) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		source:    source,
		interval:  interval,
	}
}

// Start schedules the report job and starts the underlying scheduler.
// A non-positive interval disables reporting.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		log.Println("INFO: scheduler: status reporting disabled")
		return nil
	}

	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 1
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(s.Report)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Report logs one line per provider.
func (s *Scheduler) Report() {
	for _, st := range s.source.Statuses() {
		log.Printf("INFO: scheduler: provider %s state=%s requests=%d failures=%d consecutive_failures=%d",
			st.Provider, st.State, st.Requests, st.TotalFailures, st.ConsecutiveFailures)
	}
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
