package bot

import (
	"log"

	"github.com/robfig/cron/v3"

	"sentry-bot/verify"
)

var c *cron.Cron

// startScheduler starts the cron jobs. Resolved verification sessions stay in
// the registry until the hourly sweep drops them; their timeout has already
// fired by then.
func startScheduler(registry *verify.Registry) {
	log.Println("Initializing scheduler...")
	c = cron.New()
	_, err := c.AddFunc("@hourly", func() {
		if removed := registry.Sweep(); removed > 0 {
			log.Printf("Swept %d resolved verification sessions from the registry", removed)
		}
	})
	if err != nil {
		log.Fatalf("Could not set up cron job: %v", err)
	}
	c.Start()
	log.Println("Session registry sweep scheduled to run hourly.")
}

// stopScheduler stops the cron jobs.
func stopScheduler() {
	if c != nil {
		c.Stop()
		log.Println("Scheduler stopped.")
	}
}
