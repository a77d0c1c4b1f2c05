package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serotonyl.ru/vending-bot/internal/features/economy"
	"serotonyl.ru/vending-bot/internal/features/members"
	"serotonyl.ru/vending-bot/internal/features/tickets"
	"serotonyl.ru/vending-bot/internal/features/vending"
)

type fakeExpirer struct{ calls int }

func (f *fakeExpirer) ExpirePending() int {
	f.calls++
	return 0
}

func TestSweepTickets(t *testing.T) {
	svc := tickets.NewService()
	tk, err := svc.Open(1, "a", "q")
	require.NoError(t, err)
	_, err = svc.Close(tk.ID, 1, "a", false)
	require.NoError(t, err)

	s := NewScheduler(Deps{Tickets: svc, TicketRetention: 0}, time.UTC)
	s.sweepTickets()

	_, err = svc.Get(tk.ID)
	assert.Error(t, err)
}

func TestStats(t *testing.T) {
	ledger := economy.NewLedger(10)
	_, err := ledger.Credit("1", 5, "grant")
	require.NoError(t, err)

	catalog := vending.NewCatalog()
	vs := vending.NewService(catalog, vending.NewEngine(ledger, catalog))
	require.NoError(t, vs.AddItem(context.Background(), "Potion", 10, 3))

	ms := members.NewService(members.NewRepository())
	ms.EnsureMember(1, "a", "A", "")

	s := NewScheduler(Deps{Ledger: ledger, Vending: vs, Members: ms, Tickets: tickets.NewService()}, time.UTC)
	fields := s.stats()
	assert.Equal(t, 1, fields["members"])
	assert.Equal(t, 1, fields["accounts"])
	assert.Equal(t, 1, fields["items"])
	assert.Equal(t, int64(3), fields["stock"])
	assert.Equal(t, 0, fields["open_tickets"])
}

func TestJobsTolerateMissingDeps(t *testing.T) {
	s := NewScheduler(Deps{}, time.UTC)
	assert.NotPanics(t, func() {
		s.sweepTickets()
		s.expireNuke()
		s.cleanupStates()
		s.logStats()
	})

	exp := &fakeExpirer{}
	s = NewScheduler(Deps{Nuke: exp}, time.UTC)
	s.expireNuke()
	assert.Equal(t, 1, exp.calls)
}

type fakePurger struct{ calls int }

func (f *fakePurger) PurgeCache() int {
	f.calls++
	return 1
}

func TestCleanupStatesPurgesMembershipCache(t *testing.T) {
	p := &fakePurger{}
	s := NewScheduler(Deps{Filter: p}, time.UTC)
	s.cleanupStates()
	assert.Equal(t, 1, p.calls)
}

func TestStartRegistersJobs(t *testing.T) {
	s := NewScheduler(Deps{}, time.UTC)
	require.NoError(t, s.Start())
	assert.Len(t, s.cron.Entries(), 4)
	s.Stop()
}
