package booking

import (
	"context"
	"fmt"

	"github.com/ariebrainware/clinic-reservation/model"
	"github.com/ariebrainware/clinic-reservation/slot"
	"github.com/ariebrainware/clinic-reservation/util"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Overfull is a stored bucket holding more units than the capacity allows.
type Overfull struct {
	Doctor string      `json:"doctor"`
	Bucket slot.Bucket `json:"bucket"`
	Used   int         `json:"used"`
}

// WarmUp rebuilds every doctor's ledger from date onward, one goroutine per
// doctor, and reports buckets the stored data already overfills. It also
// primes the item cache.
func (s *Service) WarmUp(ctx context.Context, from string) ([]Overfull, error) {
	if _, err := s.items.Registry(); err != nil {
		return nil, err
	}
	doctors, err := model.DoctorNames(s.db.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("load doctors: %w", err)
	}

	results := make([][]Overfull, len(doctors))
	g, gctx := errgroup.WithContext(ctx)
	for i, doctor := range doctors {
		g.Go(func() error {
			rows, err := model.ActivePartsFrom(s.db.WithContext(gctx), doctor, from)
			if err != nil {
				return fmt.Errorf("load ledger for %s: %w", doctor, err)
			}
			ledger := slot.NewLedger(s.settings.Grid.Capacity)
			flagged := map[slot.Bucket]bool{}
			for _, r := range rows {
				b := slot.Bucket{Date: r.Date, Time: r.Time}
				if ledger.Load(r.Doctor, r.PublicID, b, r.Units) {
					flagged[b] = true
				}
			}
			for _, r := range rows {
				b := slot.Bucket{Date: r.Date, Time: r.Time}
				if flagged[b] {
					results[i] = append(results[i], Overfull{Doctor: doctor, Bucket: b, Used: ledger.Used(doctor, b)})
					delete(flagged, b)
				}
			}
			log.Debug().Str("doctor", doctor).Int("parts", len(rows)).Msg("ledger warmed")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []Overfull
	for _, r := range results {
		for _, o := range r {
			util.LogReservationEvent(util.ReservationEvent{
				EventType: util.EventOverfullBucket,
				Doctor:    o.Doctor,
				Message:   fmt.Sprintf("bucket %s holds %d units", o.Bucket, o.Used),
			})
			out = append(out, o)
		}
	}
	return out, nil
}
