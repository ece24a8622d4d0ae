// Package scheduler runs the background jobs of the API process.
package scheduler

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	paymentService "colegio_backend/internals/features/finance/payments/service"
	helperAuth "colegio_backend/internals/helpers/auth"
	"colegio_backend/internals/helpers/dbtime"
)

const (
	BlacklistPurgeSchedule = "30 4 * * *"
	jobTimeout             = 10 * time.Minute
)

type Scheduler struct {
	cron *cron.Cron
	loc  *time.Location
}

// Job is one named unit of work.
type Job struct {
	Name     string
	Schedule string
	Run      func(ctx context.Context) error
}

func New(loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	l := cron.PrintfLogger(log.New(os.Stdout, "[CRON] ", log.LstdFlags))
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(l),
			cron.WithChain(cron.Recover(l), cron.SkipIfStillRunning(l)),
		),
		loc: loc,
	}
}

// Add registers j; a malformed schedule is an error.
func (s *Scheduler) Add(j Job) error {
	_, err := s.cron.AddFunc(j.Schedule, func() { runJob(j) })
	if err != nil {
		return errors.Wrapf(err, "cron %s (%q)", j.Name, j.Schedule)
	}
	log.Printf("[CRON] %s programado: %s", j.Name, j.Schedule)
	return nil
}

func runJob(j Job) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	start := time.Now()
	if err := j.Run(ctx); err != nil {
		log.Printf("[CRON] %s falló tras %s: %v", j.Name, time.Since(start), err)
		return
	}
	log.Printf("[CRON] %s ok (%s)", j.Name, time.Since(start))
}

func (s *Scheduler) Start() { s.cron.Start() }

// Stop waits for running jobs up to the deadline of ctx.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		log.Println("[CRON] jobs en curso no terminaron antes del cierre")
	}
}

// OverdueJob marks pending payments past due as vencido and then resyncs every guardian.
func OverdueJob(db *gorm.DB, schedule string, loc *time.Location) Job {
	return Job{
		Name:     "overdue-payments",
		Schedule: schedule,
		Run: func(ctx context.Context) error {
			today := dbtime.StartOfDay(time.Now().In(loc))
			n, err := paymentService.MarkOverdue(ctx, db, today)
			if err != nil {
				return errors.Wrap(err, "mark overdue")
			}
			log.Printf("[CRON] %d pagos marcados como vencidos", n)
			if _, err := paymentService.SyncAll(ctx, db, nil); err != nil {
				return errors.Wrap(err, "sync all")
			}
			return nil
		},
	}
}

// BlacklistPurgeJob drops revoked tokens that already expired.
func BlacklistPurgeJob(bl *helperAuth.Blacklist) Job {
	return Job{
		Name:     "token-blacklist-purge",
		Schedule: BlacklistPurgeSchedule,
		Run: func(ctx context.Context) error {
			n, err := bl.PurgeExpired(ctx)
			if err != nil {
				return err
			}
			log.Printf("[CRON] %d tokens revocados eliminados", n)
			return nil
		},
	}
}

// StartDefault wires the production jobs and starts the scheduler.
func StartDefault(db *gorm.DB, bl *helperAuth.Blacklist, overdueSchedule string, loc *time.Location) (*Scheduler, error) {
	s := New(loc)
	for _, j := range []Job{OverdueJob(db, overdueSchedule, s.loc), BlacklistPurgeJob(bl)} {
		if err := s.Add(j); err != nil {
			return nil, err
		}
	}
	s.Start()
	return s, nil
}
