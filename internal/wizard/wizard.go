// Package wizard drives the four-step booking flow: dates, payment details,
// review and confirmation.
package wizard

import (
	"context"
	"strings"
	"sync"
	"time"

	"ebikerent/internal/domain"
	"ebikerent/internal/models"

	"github.com/rs/zerolog"
)

type State int

const (
	DatesAndTime State = iota + 1
	Payment
	Review
	Confirmed
)

func (s State) String() string {
	switch s {
	case DatesAndTime:
		return "Dates & Time"
	case Payment:
		return "Payment"
	case Review:
		return "Review"
	case Confirmed:
		return "Confirmed"
	}
	return "Unknown"
}

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"

	DefaultPickupTime = "09:00"
	DefaultReturnTime = "18:00"

	MinDuration = time.Hour
)

type Reason string

const (
	ReasonMissingFields  Reason = "missing_fields"
	ReasonInvalidStart   Reason = "invalid_start"
	ReasonInvalidEnd     Reason = "invalid_end"
	ReasonMinDuration    Reason = "min_duration"
	ReasonMissingPayment Reason = "missing_payment"
	ReasonSubmitFailed   Reason = "submit_failed"
	ReasonBusy           Reason = "busy"
	ReasonFinished       Reason = "finished"
)

var reasonMessages = map[Reason]string{
	ReasonMissingFields:  "Please select start and end dates and times.",
	ReasonInvalidStart:   "Start date and time must be in the future.",
	ReasonInvalidEnd:     "End date and time must be after the start.",
	ReasonMinDuration:    "Bookings must last at least 1 hour.",
	ReasonMissingPayment: "Please enter the name on the card and the card number.",
	ReasonSubmitFailed:   "Failed to create booking. Please try again.",
	ReasonBusy:           "The booking is already being submitted.",
	ReasonFinished:       "The booking is already confirmed.",
}

// Result is the outcome of Continue: either the wizard advanced to State, or
// it was rejected for Reason and stayed where it was.
type Result struct {
	State  State
	Reason Reason
}

func (r Result) Advanced() bool { return r.Reason == "" }

func (r Result) Message() string { return reasonMessages[r.Reason] }

// Draft holds everything typed into the wizard. Payment fields never leave
// the process.
type Draft struct {
	StartDate  string
	EndDate    string
	PickupTime string
	ReturnTime string

	NameOnCard string
	CardNumber string
	ExpiryDate string
	CVV        string
}

type Option func(*Wizard)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(w *Wizard) { w.now = now }
}

// WithLocation sets the zone dates and times are entered in.
func WithLocation(loc *time.Location) Option {
	return func(w *Wizard) { w.loc = loc }
}

type Wizard struct {
	mu         sync.Mutex
	state      State
	draft      Draft
	submitting bool
	booking    models.Booking

	bike    models.Bike
	creator domain.BookingCreator
	now     func() time.Time
	loc     *time.Location
	logger  *zerolog.Logger
}

func New(bike models.Bike, creator domain.BookingCreator, logger *zerolog.Logger, opts ...Option) *Wizard {
	w := &Wizard{
		state:   DatesAndTime,
		draft:   Draft{PickupTime: DefaultPickupTime, ReturnTime: DefaultReturnTime},
		bike:    bike,
		creator: creator,
		now:     time.Now,
		loc:     time.Local,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Wizard) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

func (w *Wizard) Draft() Draft {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.draft
}

// Booking returns the created booking once the wizard is confirmed.
func (w *Wizard) Booking() (models.Booking, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.booking, w.state == Confirmed
}

// Update edits the draft and reports whether the edit was kept. Dates and
// times are frozen once the wizard leaves DatesAndTime, payment details once
// it leaves Payment. A rejected edit leaves the draft untouched.
func (w *Wizard) Update(fn func(d *Draft)) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state == Confirmed || w.submitting {
		return false
	}

	next := w.draft
	fn(&next)
	if w.state > DatesAndTime && next.dateFields() != w.draft.dateFields() {
		return false
	}
	if w.state > Payment && next.paymentFields() != w.draft.paymentFields() {
		return false
	}
	w.draft = next
	return true
}

func (d Draft) dateFields() [4]string {
	return [4]string{d.StartDate, d.EndDate, d.PickupTime, d.ReturnTime}
}

func (d Draft) paymentFields() [4]string {
	return [4]string{d.NameOnCard, d.CardNumber, d.ExpiryDate, d.CVV}
}

// Window parses the draft into the rental start and end instants.
func (w *Wizard) Window() (start, end time.Time, ok bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.window()
}

func (w *Wizard) window() (start, end time.Time, ok bool) {
	d := w.draft
	for _, v := range []string{d.StartDate, d.EndDate, d.PickupTime, d.ReturnTime} {
		if strings.TrimSpace(v) == "" {
			return time.Time{}, time.Time{}, false
		}
	}
	start, err := time.ParseInLocation(DateLayout+" "+TimeLayout, d.StartDate+" "+d.PickupTime, w.loc)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	end, err = time.ParseInLocation(DateLayout+" "+TimeLayout, d.EndDate+" "+d.ReturnTime, w.loc)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

// Quote prices the current window. ok is false until the window is complete
// and ends after it starts.
func (w *Wizard) Quote() (Quote, bool) {
	start, end, ok := w.Window()
	if !ok || !end.After(start) {
		return Quote{}, false
	}
	return NewQuote(start, end, w.bike), true
}

// Continue attempts the transition out of the current state. Leaving Review
// submits the booking and blocks until the backend answers.
func (w *Wizard) Continue(ctx context.Context) Result {
	w.mu.Lock()
	switch {
	case w.submitting:
		w.mu.Unlock()
		return Result{State: Review, Reason: ReasonBusy}
	case w.state == DatesAndTime:
		defer w.mu.Unlock()
		return w.advance(w.checkDates())
	case w.state == Payment:
		defer w.mu.Unlock()
		return w.advance(w.checkPayment())
	case w.state == Review:
		if reason := w.checkDates(); reason != "" {
			defer w.mu.Unlock()
			return w.advance(reason)
		}
		start, end, _ := w.window()
		w.submitting = true
		w.mu.Unlock()
		return w.submit(ctx, start, end)
	default:
		w.mu.Unlock()
		return Result{State: Confirmed, Reason: ReasonFinished}
	}
}

func (w *Wizard) advance(reason Reason) Result {
	if reason != "" {
		w.logger.Debug().Str("state", w.state.String()).Str("reason", string(reason)).Msg("wizard transition rejected")
		return Result{State: w.state, Reason: reason}
	}
	w.state++
	return Result{State: w.state}
}

func (w *Wizard) checkDates() Reason {
	start, end, ok := w.window()
	switch {
	case !ok:
		return ReasonMissingFields
	case !start.After(w.now()):
		return ReasonInvalidStart
	case !end.After(start):
		return ReasonInvalidEnd
	case end.Sub(start) < MinDuration:
		return ReasonMinDuration
	}
	return ""
}

func (w *Wizard) checkPayment() Reason {
	if strings.TrimSpace(w.draft.NameOnCard) == "" || strings.TrimSpace(w.draft.CardNumber) == "" {
		return ReasonMissingPayment
	}
	return ""
}

func (w *Wizard) submit(ctx context.Context, start, end time.Time) Result {
	booking, err := w.creator.Create(ctx, models.CreateBookingInput{
		BikeID:    w.bike.ID,
		StartTime: start.UTC(),
		EndTime:   end.UTC(),
	})

	w.mu.Lock()
	defer w.mu.Unlock()
	w.submitting = false
	if err != nil {
		w.logger.Warn().Err(err).Int64("bike_id", w.bike.ID).Msg("booking submission failed")
		return Result{State: Review, Reason: ReasonSubmitFailed}
	}

	w.booking = booking
	w.state = Confirmed
	w.logger.Info().Int64("booking_id", booking.ID).Int64("bike_id", w.bike.ID).Msg("booking confirmed")
	return Result{State: Confirmed}
}
