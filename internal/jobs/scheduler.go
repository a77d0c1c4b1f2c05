// Package jobs управляет фоновыми задачами (cron).
// scheduler.go настраивает расписание: удаление закрытых тикетов,
// истечение подтверждений !nuke, чистку админ-состояний и кеша членства,
// часовую статистику.
package jobs

import (
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/vending-bot/internal/features/admin"
	"serotonyl.ru/vending-bot/internal/features/economy"
	"serotonyl.ru/vending-bot/internal/features/members"
	"serotonyl.ru/vending-bot/internal/features/tickets"
	"serotonyl.ru/vending-bot/internal/features/vending"
	"serotonyl.ru/vending-bot/internal/metrics"
)

// NukeExpirer снимает просроченные подтверждения удаления.
type NukeExpirer interface {
	ExpirePending() int
}

// CachePurger чистит кеш проверок членства.
type CachePurger interface {
	PurgeCache() int
}

// Deps — сервисы, которые обслуживает планировщик. nil-поля пропускаются.
type Deps struct {
	Tickets         *tickets.Service
	TicketRetention time.Duration
	Nuke            NukeExpirer
	Admin           *admin.Service
	Filter          CachePurger
	Members         *members.Service
	Ledger          *economy.Ledger
	Vending         *vending.Service
}

// Scheduler управляет фоновыми задачами.
type Scheduler struct {
	cron *cron.Cron
	deps Deps
}

// NewScheduler создаёт планировщик задач в часовом поясе loc.
func NewScheduler(deps Deps, loc *time.Location) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithLocation(loc)),
		deps: deps,
	}
}

// Start запускает все фоновые задачи.
func (s *Scheduler) Start() error {
	jobs := []struct {
		spec string
		fn   func()
	}{
		{"@every 2s", s.sweepTickets},
		{"@every 5s", s.expireNuke},
		{"@every 5m", s.cleanupStates},
		{"0 * * * *", s.logStats},
	}
	for _, j := range jobs {
		if _, err := s.cron.AddFunc(j.spec, j.fn); err != nil {
			return err
		}
	}

	s.cron.Start()
	log.WithField("location", s.cron.Location().String()).Info("Планировщик задач запущен")
	return nil
}

// Stop останавливает планировщик и ждёт завершения задач.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("Планировщик задач остановлен")
}

func (s *Scheduler) sweepTickets() {
	if s.deps.Tickets == nil {
		return
	}
	if n := s.deps.Tickets.SweepClosed(s.deps.TicketRetention); n > 0 {
		log.WithField("removed", n).Debug("[CRON] Закрытые тикеты удалены")
	}
	metrics.OpenTickets.Set(float64(s.deps.Tickets.OpenCount()))
}

func (s *Scheduler) expireNuke() {
	if s.deps.Nuke == nil {
		return
	}
	if n := s.deps.Nuke.ExpirePending(); n > 0 {
		log.WithField("expired", n).Debug("[CRON] Подтверждения nuke истекли")
	}
}

func (s *Scheduler) cleanupStates() {
	if s.deps.Admin != nil {
		if n := s.deps.Admin.Cleanup(); n > 0 {
			log.WithField("removed", n).Debug("[CRON] Админ-состояния очищены")
		}
	}
	if s.deps.Filter != nil {
		if n := s.deps.Filter.PurgeCache(); n > 0 {
			log.WithField("removed", n).Debug("[CRON] Кеш членства очищен")
		}
	}
}

// stats собирает сводку для часового лога.
func (s *Scheduler) stats() log.Fields {
	fields := log.Fields{}
	if s.deps.Members != nil {
		fields["members"] = s.deps.Members.Count()
	}
	if s.deps.Ledger != nil {
		fields["accounts"] = s.deps.Ledger.Accounts()
	}
	if s.deps.Vending != nil {
		items := s.deps.Vending.ListItems()
		var stock int64
		for _, it := range items {
			stock += it.Stock
		}
		fields["items"] = len(items)
		fields["stock"] = stock
	}
	if s.deps.Tickets != nil {
		fields["open_tickets"] = s.deps.Tickets.OpenCount()
	}
	return fields
}

func (s *Scheduler) logStats() {
	log.WithFields(s.stats()).Info("[CRON] Статистика")
}
