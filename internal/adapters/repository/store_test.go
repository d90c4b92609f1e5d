package repository_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/puttrack/internal/adapters/repository"
	"github.com/okian/puttrack/internal/domain/model"
	"github.com/okian/puttrack/internal/domain/session"
)

func report(t *testing.T, player string, details ...string) session.Report {
	t.Helper()
	events := make([]model.PuttEvent, 0, len(details))
	for i, d := range details {
		c := model.Miss
		if len(d) >= 4 && d[:4] == "MAKE" {
			c = model.Make
		}
		events = append(events, model.PuttEvent{FrameTime: float64(i + 1), Classification: c, Detail: d})
	}
	r, err := session.Aggregate(events, session.WithInfo(session.Info{PlayerName: player, DurationSeconds: 60}))
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	return r
}

// storeSuite runs the shared Store contract against any implementation.
func storeSuite(t *testing.T, open func() repository.Store) {
	ctx := context.Background()

	Convey("Given an empty store", func() {
		store := open()
		Reset(func() { _ = store.Close() })

		Convey("When nothing is archived", func() {
			_, err := store.Report(ctx, "nope")
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			_, err = store.Career(ctx, "ann")
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			list, err := store.Sessions(ctx, "ann")
			So(err, ShouldBeNil)
			So(list, ShouldBeEmpty)
		})

		Convey("When two sessions are archived for a player", func() {
			first := report(t, "ann", "MAKE - HOLE: TOP - LEFT", "MISS - CATCH: LEFT - RIGHT")
			second := report(t, "ann", "MAKE - HOLE: LOW - CENTER", "MAKE - HOLE: LOW - CENTER", "MAKE - HOLE: TOP - RIGHT")

			c1, err := store.Archive(ctx, repository.Record{SessionID: "s1", Player: "ann", Report: first})
			So(err, ShouldBeNil)
			So(c1.Sessions, ShouldEqual, 1)

			c2, err := store.Archive(ctx, repository.Record{SessionID: "s2", Player: "ann", Report: second})
			So(err, ShouldBeNil)

			Convey("Then the career folds both reports", func() {
				So(c2.Sessions, ShouldEqual, 2)
				So(c2.TotalPutts, ShouldEqual, 5)
				So(c2.TotalMakes, ShouldEqual, 4)
				So(c2.BestStreak, ShouldEqual, 3)
				So(c2.MakesOverview["LOW"].Sum, ShouldEqual, 2)

				stored, err := store.Career(ctx, "ann")
				So(err, ShouldBeNil)
				So(cmp.Diff(c2, stored), ShouldBeEmpty)
			})

			Convey("Then reports come back unchanged", func() {
				got, err := store.Report(ctx, "s2")
				So(err, ShouldBeNil)
				So(cmp.Diff(second, got), ShouldBeEmpty)
			})

			Convey("Then sessions are listed oldest first", func() {
				list, err := store.Sessions(ctx, "ann")
				So(err, ShouldBeNil)
				So(len(list), ShouldEqual, 2)
				So(list[0].SessionID, ShouldEqual, "s1")
				So(list[1].TotalMakes, ShouldEqual, 3)
			})

			Convey("Then archiving a session twice fails", func() {
				_, err := store.Archive(ctx, repository.Record{SessionID: "s1", Player: "ann", Report: first})
				So(errors.Is(err, repository.ErrDuplicate), ShouldBeTrue)
				c, _ := store.Career(ctx, "ann")
				So(c.Sessions, ShouldEqual, 2)
			})
		})

		Convey("When a record lacks identity", func() {
			_, err := store.Archive(ctx, repository.Record{Player: "ann"})
			So(errors.Is(err, repository.ErrInvalidRecord), ShouldBeTrue)
		})
	})
}

func TestMemoryStore(t *testing.T) {
	Convey("MemoryStore", t, func() {
		storeSuite(t, func() repository.Store { return repository.NewMemoryStore() })
	})
}

func TestSQLiteStore(t *testing.T) {
	Convey("SQLiteStore", t, func() {
		storeSuite(t, func() repository.Store {
			s, err := repository.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "archive", "puttrack.db"))
			So(err, ShouldBeNil)
			return s
		})
	})

	Convey("Given a reopened database", t, func() {
		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "puttrack.db")
		s, err := repository.OpenSQLite(ctx, path, repository.WithBusyTimeout(1000))
		So(err, ShouldBeNil)
		_, err = s.Archive(ctx, repository.Record{SessionID: "s1", Player: "bo", Report: report(t, "bo", "MAKE - HOLE: TOP - LEFT")})
		So(err, ShouldBeNil)
		So(s.Close(), ShouldBeNil)

		s, err = repository.OpenSQLite(ctx, path)
		So(err, ShouldBeNil)
		defer func() { _ = s.Close() }()

		Convey("Then migrations are not reapplied and data survives", func() {
			v, err := s.Version()
			So(err, ShouldBeNil)
			So(v, ShouldEqual, 1)
			c, err := s.Career(ctx, "bo")
			So(err, ShouldBeNil)
			So(c.TotalMakes, ShouldEqual, 1)
		})
	})
}
