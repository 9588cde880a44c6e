package monitoring

import (
	"time"

	"github.com/lessonlab/lessonlab-be/internal/services"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Reconciler periodically rewrites lesson bookmark counters from the
// bookmark reverse index. The index is ground truth; the counter is a cache
// that can drift when concurrent toggles race.
type Reconciler struct {
	userSvc  services.UserServiceProvider
	schedule cron.Schedule
	nextRun  time.Time
	ticker   *time.Ticker
	done     chan bool
}

// NewReconciler creates a reconciler firing on the given standard cron
// expression.
func NewReconciler(userSvc services.UserServiceProvider, cronExpr string) (*Reconciler, error) {
	schedule, err := cron.ParseStandard(cronExpr)
	if err != nil {
		return nil, err
	}
	return &Reconciler{
		userSvc:  userSvc,
		schedule: schedule,
		nextRun:  schedule.Next(time.Now()),
		done:     make(chan bool),
	}, nil
}

// Run starts the reconciler's ticking loop.
func (r *Reconciler) Run() {
	log.Info().Time("next_run", r.nextRun).Msg("Starting bookmark count reconciler")
	r.ticker = time.NewTicker(30 * time.Second)
	defer r.ticker.Stop()

	for {
		select {
		case <-r.done:
			log.Info().Msg("Stopping bookmark count reconciler")
			return
		case now := <-r.ticker.C:
			if now.After(r.nextRun) {
				r.reconcile()
				r.nextRun = r.schedule.Next(now)
			}
		}
	}
}

// Stop halts the reconciler.
func (r *Reconciler) Stop() {
	r.done <- true
}

func (r *Reconciler) reconcile() {
	drifted, err := r.userSvc.ReconcileBookmarkCounts()
	if err != nil {
		log.Error().Err(err).Msg("Reconciler: failed to rewrite bookmark counts")
		return
	}
	if drifted > 0 {
		log.Warn().Int64("lessons", drifted).Msg("Reconciler: corrected drifted bookmark counts")
	}
}
