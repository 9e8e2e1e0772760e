// Package booking is the calling layer around the slot engine. It owns the
// single-writer-per-doctor discipline, reloads the capacity ledger from the
// database before every allocation and commits each change in one
// transaction.
package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ariebrainware/clinic-reservation/model"
	"github.com/ariebrainware/clinic-reservation/queue"
	"github.com/ariebrainware/clinic-reservation/slot"
	"github.com/ariebrainware/clinic-reservation/util"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a reservation id does not exist.
var ErrNotFound = errors.New("reservation not found")

// Publisher delivers committed reservation events.
type Publisher interface {
	Publish(ctx context.Context, ev queue.ReservationEvent) error
}

// Settings are the engine knobs taken from configuration.
type Settings struct {
	Grid            slot.Grid
	Policy          slot.Policy
	FallbackRules   []slot.FallbackRule
	MaxOverflowDays int
	ItemCacheTTL    time.Duration
}

// DefaultSettings matches the clinic's historical behaviour.
func DefaultSettings() Settings {
	return Settings{
		Grid:          slot.DefaultGrid(),
		Policy:        slot.DefaultPolicy(),
		FallbackRules: slot.DefaultFallbackRules(),
	}
}

// Service books, edits and cancels reservations.
type Service struct {
	db        *gorm.DB
	settings  Settings
	items     *util.ItemCache
	locker    Locker
	publisher Publisher
	now       func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithLocker replaces the default in-process locker.
func WithLocker(l Locker) Option { return func(s *Service) { s.locker = l } }

// WithPublisher sets where committed events go. Without one nothing is
// published.
func WithPublisher(p Publisher) Option { return func(s *Service) { s.publisher = p } }

// WithClock overrides time.Now for event timestamps.
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// NewService builds a Service over db.
func NewService(db *gorm.DB, settings Settings, opts ...Option) (*Service, error) {
	if db == nil {
		return nil, fmt.Errorf("booking service needs a database")
	}
	if err := settings.Grid.Check(); err != nil {
		return nil, err
	}
	s := &Service{
		db:       db,
		settings: settings,
		locker:   NewLocalLocker(),
		now:      time.Now,
	}
	s.items = util.NewItemCache(settings.ItemCacheTTL, s.loadRegistry)
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// Grid returns the bucket grid the service allocates on.
func (s *Service) Grid() slot.Grid { return s.settings.Grid }

func (s *Service) loadRegistry() (*slot.Registry, error) {
	items, err := model.SlotItems(s.db)
	if err != nil {
		return nil, fmt.Errorf("load treatment items: %w", err)
	}
	return slot.NewRegistry(items, s.settings.FallbackRules)
}

// Registry returns the cached item registry.
func (s *Service) Registry() (*slot.Registry, error) {
	return s.items.Registry()
}

// engineFor builds an engine whose ledger holds the live parts of doctors
// dated on or after from.
func (s *Service) engineFor(ctx context.Context, from string, doctors ...string) (*slot.Engine, error) {
	reg, err := s.items.Registry()
	if err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	names, err := model.DoctorNames(db)
	if err != nil {
		return nil, fmt.Errorf("load doctors: %w", err)
	}

	ledger := slot.NewLedger(s.settings.Grid.Capacity)
	for _, doctor := range doctors {
		rows, err := model.ActivePartsFrom(db, doctor, from)
		if err != nil {
			return nil, fmt.Errorf("load ledger for %s: %w", doctor, err)
		}
		for _, r := range rows {
			b := slot.Bucket{Date: r.Date, Time: r.Time}
			if ledger.Load(r.Doctor, r.PublicID, b, r.Units) {
				log.Warn().Str("doctor", r.Doctor).Str("bucket", b.String()).Msg("stored bucket is over capacity")
			}
		}
	}
	return slot.NewEngine(s.settings.Grid, s.settings.Policy, reg, ledger, slot.NewDoctorSet(names...), s.settings.MaxOverflowDays)
}

func (s *Service) find(ctx context.Context, id string) (model.Reservation, error) {
	res, err := model.FindReservation(s.db.WithContext(ctx), id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Reservation{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return res, err
}

// engineError logs failures that must never happen in a correct caller.
func engineError(op, doctor string, err error) error {
	if errors.Is(err, slot.ErrCapacityViolation) {
		util.LogReservationEvent(util.ReservationEvent{
			EventType: util.EventCapacityViolation,
			Doctor:    doctor,
			Message:   fmt.Sprintf("%s: %v", op, err),
		})
	}
	return err
}

func (s *Service) afterCommit(ctx context.Context, eventType string, auditType util.ReservationEventType, rec slot.Record, msg string) {
	eventID := util.LogReservationEvent(util.ReservationEvent{
		EventType:     auditType,
		ReservationID: rec.ID,
		Doctor:        rec.Doctor,
		Message:       msg,
		Details: map[string]interface{}{
			"items":          rec.Items,
			"required_units": rec.RequiredUnits,
			"parts":          rec.Parts,
		},
	})
	if s.publisher == nil {
		return
	}
	ev := queue.NewReservationEvent(eventID, eventType, rec, s.now())
	if err := s.publisher.Publish(ctx, ev); err != nil {
		log.Warn().Err(err).Str("reservation_id", rec.ID).Str("event", eventType).Msg("reservation event not published")
	}
}

// checkPatient accepts a zero id (walk-in) and rejects ids with no patient row.
func (s *Service) checkPatient(ctx context.Context, id uint) error {
	if id == 0 {
		return nil
	}
	ok, err := model.PatientExists(s.db.WithContext(ctx), id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: unknown patient %d", slot.ErrInvalidRequest, id)
	}
	return nil
}

// Book places a new reservation and stores it. The event is published after
// the doctor lock is released.
func (s *Service) Book(ctx context.Context, req BookRequest) (slot.Record, error) {
	rec, err := s.book(ctx, req)
	if err != nil {
		return slot.Record{}, err
	}
	s.afterCommit(ctx, queue.EventBooked, util.EventReservationBooked, rec,
		fmt.Sprintf("booked %d units in %d part(s)", rec.RequiredUnits, len(rec.Parts)))
	return rec, nil
}

func (s *Service) book(ctx context.Context, req BookRequest) (slot.Record, error) {
	start, err := s.settings.Grid.Floor(req.Date, req.Time)
	if err != nil {
		return slot.Record{}, err
	}
	if err := s.checkPatient(ctx, req.PatientID); err != nil {
		return slot.Record{}, err
	}

	unlock, err := lockAll(ctx, s.locker, req.Doctor)
	if err != nil {
		return slot.Record{}, err
	}
	defer unlock()

	engine, err := s.engineFor(ctx, start.Date, req.Doctor)
	if err != nil {
		return slot.Record{}, err
	}
	rec, err := engine.Book(slot.Record{ID: uuid.NewString(), PatientID: req.PatientID, Memo: req.Memo}, req.slotRequest(start))
	if err != nil {
		return slot.Record{}, engineError("book", req.Doctor, err)
	}

	var row model.Reservation
	if err := row.ApplyRecord(rec); err != nil {
		return slot.Record{}, err
	}
	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return model.CreateReservation(tx, &row)
	}); err != nil {
		return slot.Record{}, fmt.Errorf("store reservation: %w", err)
	}
	return rec, nil
}

// lockReservation locks the doctors a reservation edit touches and returns
// the reservation as read under those locks.
func (s *Service) lockReservation(ctx context.Context, id string, extra ...string) (model.Reservation, func(), error) {
	for attempt := 0; attempt < 3; attempt++ {
		res, err := s.find(ctx, id)
		if err != nil {
			return model.Reservation{}, nil, err
		}
		unlock, err := lockAll(ctx, s.locker, append([]string{res.Doctor}, extra...)...)
		if err != nil {
			return model.Reservation{}, nil, err
		}
		locked, err := s.find(ctx, id)
		if err != nil {
			unlock()
			return model.Reservation{}, nil, err
		}
		if locked.Doctor == res.Doctor {
			return locked, unlock, nil
		}
		// moved to another doctor between the two reads
		unlock()
	}
	return model.Reservation{}, nil, fmt.Errorf("reservation %s keeps changing doctor, try again", id)
}

// Edit re-places an existing reservation with new parameters. Its own
// previous parts do not block the new placement.
func (s *Service) Edit(ctx context.Context, id string, req BookRequest) (slot.Record, error) {
	out, fromDoctor, err := s.edit(ctx, id, req)
	if err != nil {
		return slot.Record{}, err
	}
	msg := fmt.Sprintf("edited to %d units in %d part(s)", out.RequiredUnits, len(out.Parts))
	if fromDoctor != out.Doctor {
		msg += fmt.Sprintf(", moved from %s", fromDoctor)
	}
	s.afterCommit(ctx, queue.EventEdited, util.EventReservationEdited, out, msg)
	return out, nil
}

func (s *Service) edit(ctx context.Context, id string, req BookRequest) (slot.Record, string, error) {
	start, err := s.settings.Grid.Floor(req.Date, req.Time)
	if err != nil {
		return slot.Record{}, "", err
	}
	if err := s.checkPatient(ctx, req.PatientID); err != nil {
		return slot.Record{}, "", err
	}

	row, unlock, err := s.lockReservation(ctx, id, req.Doctor)
	if err != nil {
		return slot.Record{}, "", err
	}
	defer unlock()
	if row.Canceled {
		return slot.Record{}, "", fmt.Errorf("%w: reservation %s is canceled", slot.ErrInvalidRequest, id)
	}

	engine, err := s.engineFor(ctx, start.Date, req.Doctor)
	if err != nil {
		return slot.Record{}, "", err
	}
	rec := row.Record()
	if req.PatientID != 0 {
		rec.PatientID = req.PatientID
	}
	if req.Memo != "" {
		rec.Memo = req.Memo
	}
	fromDoctor := rec.Doctor
	out, err := engine.Edit(rec, req.slotRequest(start))
	if err != nil {
		return slot.Record{}, "", engineError("edit", req.Doctor, err)
	}

	if err := row.ApplyRecord(out); err != nil {
		return slot.Record{}, "", err
	}
	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return model.ReplaceReservation(tx, &row)
	}); err != nil {
		return slot.Record{}, "", fmt.Errorf("store reservation: %w", err)
	}
	return out, fromDoctor, nil
}

// Cancel releases a reservation's capacity and keeps the record. Canceling
// twice returns the canceled record and publishes nothing.
func (s *Service) Cancel(ctx context.Context, id string) (slot.Record, error) {
	rec, changed, err := s.cancel(ctx, id)
	if err != nil || !changed {
		return rec, err
	}
	s.afterCommit(ctx, queue.EventCanceled, util.EventReservationCanceled, rec,
		fmt.Sprintf("canceled, %d units freed", rec.TotalUnits()))
	return rec, nil
}

func (s *Service) cancel(ctx context.Context, id string) (slot.Record, bool, error) {
	row, unlock, err := s.lockReservation(ctx, id)
	if err != nil {
		return slot.Record{}, false, err
	}
	defer unlock()

	rec := row.Record()
	if rec.Canceled {
		return rec, false, nil
	}
	from := row.StartDate
	if len(rec.Parts) > 0 {
		from = rec.Parts[0].Bucket.Date
	}
	engine, err := s.engineFor(ctx, from, rec.Doctor)
	if err != nil {
		return slot.Record{}, false, err
	}
	rec, _ = engine.Cancel(rec)

	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return model.MarkCanceled(tx, &row)
	}); err != nil {
		return slot.Record{}, false, fmt.Errorf("cancel reservation: %w", err)
	}
	return rec, true, nil
}

// Get returns a reservation by id.
func (s *Service) Get(ctx context.Context, id string) (slot.Record, error) {
	res, err := s.find(ctx, id)
	if err != nil {
		return slot.Record{}, err
	}
	return res.Record(), nil
}

// ListDay returns the calendar entries of a day, optionally for one doctor.
func (s *Service) ListDay(ctx context.Context, date, doctor string) ([]model.CalendarEntry, error) {
	g := s.settings.Grid
	if err := g.Validate(g.First(date)); err != nil {
		return nil, err
	}
	return model.ListDay(s.db.WithContext(ctx), date, doctor)
}

// PatientHistory lists a patient's reservations, newest first.
func (s *Service) PatientHistory(ctx context.Context, patientID uint, includeCanceled bool) ([]slot.Record, error) {
	rows, err := model.PatientReservations(s.db.WithContext(ctx), patientID, includeCanceled)
	if err != nil {
		return nil, err
	}
	out := make([]slot.Record, len(rows))
	for i, r := range rows {
		out[i] = r.Record()
	}
	return out, nil
}
