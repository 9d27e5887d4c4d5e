// scheduler/scheduler.go
package scheduler

import (
	"context"
	"georeport/services"
	"log"

	"github.com/robfig/cron/v3"
)

// DefaultImportSchedule runs the import job every minute at second zero.
const DefaultImportSchedule = "0 * * * * *"

// StartImportScheduler registers the import job and starts the cron runner.
// The caller stops it with Stop on shutdown.
func StartImportScheduler(ctx context.Context, spec string, importer *services.Importer) (*cron.Cron, error) {
	if spec == "" {
		spec = DefaultImportSchedule
	}
	c := cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))

	_, err := c.AddFunc(spec, func() {
		log.Println("Running scheduled import job...")
		res, err := importer.ImportDir(ctx)
		if err != nil {
			log.Printf("import job failed: %v", err)
			return
		}
		if res.Files > 0 || res.Failed > 0 {
			log.Printf("import job: %d files, %d reports added, %d failed", res.Files, res.Added, res.Failed)
		}
	})
	if err != nil {
		return nil, err
	}

	c.Start()
	log.Println("Scheduler started")
	return c, nil
}
