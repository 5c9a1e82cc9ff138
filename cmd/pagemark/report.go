package main

import (
	"time"

	"github.com/kpauljoseph/pagemark/pkg/logger"
)

// Report summarises a batch run.
type Report struct {
	StartTime  time.Time
	EndTime    time.Time
	Exported   int
	Failed     int
	Pages      int
	Highlights int
	Declined   int
}

func (r *Report) Print(log *logger.Logger) {
	log.Info("Processing complete:")
	log.Info("- Documents exported: %d", r.Exported)
	if r.Failed > 0 {
		log.Info("- Documents failed: %d", r.Failed)
	}
	log.Info("- Pages processed: %d", r.Pages)
	log.Info("- Highlights added: %d", r.Highlights)
	if r.Declined > 0 {
		log.Info("- Commands declined: %d", r.Declined)
	}
	log.Info("- Time taken: %v", r.EndTime.Sub(r.StartTime).Round(time.Millisecond))
}
