// Package wizard models trip creation and editing as an explicit state
// machine over a single mutable draft:
//
//	Details -> Activities -> Review   (create)
//	Details -> Activities             (edit)
//
// Transitions happen only on Next and Back; nothing is skipped automatically.
package wizard

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/packlist/backend/internal/domain"
	"github.com/pkordes/packlist/backend/internal/suggest"
	"github.com/pkordes/packlist/backend/internal/weather"
)

// Step is a wizard state.
type Step int

const (
	Details Step = iota + 1
	Activities
	Review
)

func (s Step) String() string {
	switch s {
	case Details:
		return "details"
	case Activities:
		return "activities"
	case Review:
		return "review"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

// Mode selects the step sequence.
type Mode int

const (
	Create Mode = iota
	Edit
)

var (
	ErrNoPreviousStep = errors.New("wizard: already at the first step")
	ErrNoNextStep     = errors.New("wizard: already at the last step")
)

// Draft is the record the wizard edits.
type Draft struct {
	Destination string
	Latitude    float64
	Longitude   float64
	StartDate   time.Time
	EndDate     time.Time
	// Predefined holds selected built-in activity names.
	Predefined []string
	// Custom holds selected custom activity ids, in selection order.
	Custom []uuid.UUID
	// Orphaned holds activity names from the trip being edited that match
	// nothing any more. They survive unless removed.
	Orphaned []string
}

// Wizard is not safe for concurrent use.
type Wizard struct {
	mode        Mode
	step        Step
	draft       Draft
	suggestions []suggest.Suggestion
	selected    map[string]bool
}

// New starts an empty create-mode wizard at Details.
func New() *Wizard {
	return &Wizard{mode: Create, step: Details, selected: map[string]bool{}}
}

// ForEdit starts an edit-mode wizard seeded from trip. Activity names are
// split into predefined names, custom activity ids and orphans.
func ForEdit(trip domain.Trip, custom []domain.CustomActivity) *Wizard {
	w := &Wizard{mode: Edit, step: Details, selected: map[string]bool{}}
	w.draft = Draft{
		Destination: trip.Destination,
		Latitude:    trip.Latitude,
		Longitude:   trip.Longitude,
		StartDate:   trip.StartDate,
		EndDate:     trip.EndDate,
		Orphaned:    domain.OrphanedActivities(trip.Activities, custom),
	}
	predefined, matched := domain.SplitActivities(trip.Activities, custom)
	w.draft.Predefined = predefined
	for _, c := range matched {
		w.draft.Custom = append(w.draft.Custom, c.ID)
	}
	return w
}

// Step returns the current state.
func (w *Wizard) Step() Step { return w.step }

// Mode returns the wizard's mode.
func (w *Wizard) Mode() Mode { return w.mode }

// StepCount is 3 when creating and 2 when editing.
func (w *Wizard) StepCount() int {
	if w.mode == Edit {
		return 2
	}
	return 3
}

// Draft exposes the draft for reading and editing.
func (w *Wizard) Draft() *Draft { return &w.draft }

// IsLast reports whether Next would fail because the sequence is complete.
func (w *Wizard) IsLast() bool {
	return int(w.step) == w.StepCount()
}

// Validate checks the current step. Only Details has requirements.
func (w *Wizard) Validate() error {
	if w.step != Details {
		return nil
	}
	return w.draft.ValidateDetails()
}

// ValidateDetails requires a destination and a date range with end >= start.
func (d Draft) ValidateDetails() error {
	if strings.TrimSpace(d.Destination) == "" {
		return fmt.Errorf("%w: destination is required", domain.ErrValidation)
	}
	if d.StartDate.IsZero() || d.EndDate.IsZero() {
		return fmt.Errorf("%w: start and end dates are required", domain.ErrValidation)
	}
	if d.EndDate.Before(d.StartDate) {
		return fmt.Errorf("%w: end date must not be before start date", domain.ErrValidation)
	}
	return nil
}

// Next advances one step if the current step is valid.
func (w *Wizard) Next() error {
	if w.IsLast() {
		return ErrNoNextStep
	}
	if err := w.Validate(); err != nil {
		return err
	}
	w.step++
	return nil
}

// Back returns to the previous step. The draft is kept.
func (w *Wizard) Back() error {
	if w.step == Details {
		return ErrNoPreviousStep
	}
	w.step--
	return nil
}

// SetCity fills the destination from a geocoding result.
func (w *Wizard) SetCity(c weather.City) {
	w.draft.Destination = c.Label()
	w.draft.Latitude = c.Latitude
	w.draft.Longitude = c.Longitude
}

// ToggleActivity selects or deselects a predefined activity. Unknown names
// are ignored.
func (w *Wizard) ToggleActivity(name string) {
	if !domain.IsPredefinedActivity(name) {
		return
	}
	w.draft.Predefined = toggle(w.draft.Predefined, name)
}

// ToggleCustom selects or deselects a custom activity.
func (w *Wizard) ToggleCustom(id uuid.UUID) {
	w.draft.Custom = toggle(w.draft.Custom, id)
}

// RemoveOrphan drops an orphaned activity label.
func (w *Wizard) RemoveOrphan(name string) {
	out := w.draft.Orphaned[:0]
	for _, o := range w.draft.Orphaned {
		if o != name {
			out = append(out, o)
		}
	}
	w.draft.Orphaned = out
}

// ActivityNames returns the trip's final activity list: selected predefined
// names, then the names of selected custom activities, then the orphans
// still present.
func (w *Wizard) ActivityNames(custom []domain.CustomActivity) []string {
	byID := make(map[uuid.UUID]string, len(custom))
	for _, c := range custom {
		byID[c.ID] = c.Name
	}

	out := append([]string{}, w.draft.Predefined...)
	for _, id := range w.draft.Custom {
		if name, ok := byID[id]; ok {
			out = append(out, name)
		}
	}
	return append(out, w.draft.Orphaned...)
}

// SelectedCustom returns the selected custom activities in selection order.
func (w *Wizard) SelectedCustom(custom []domain.CustomActivity) []domain.CustomActivity {
	byID := make(map[uuid.UUID]domain.CustomActivity, len(custom))
	for _, c := range custom {
		byID[c.ID] = c
	}
	out := []domain.CustomActivity{}
	for _, id := range w.draft.Custom {
		if c, ok := byID[id]; ok {
			out = append(out, c)
		}
	}
	return out
}

// SetSuggestions installs the review list with every suggestion selected.
func (w *Wizard) SetSuggestions(s []suggest.Suggestion) {
	w.suggestions = s
	w.selected = make(map[string]bool, len(s))
	for _, it := range s {
		w.selected[it.Key()] = true
	}
}

// Suggestions returns the review list.
func (w *Wizard) Suggestions() []suggest.Suggestion { return w.suggestions }

// IsSelected reports whether the suggestion with key is selected.
func (w *Wizard) IsSelected(key string) bool { return w.selected[key] }

// ToggleSuggestion flips one suggestion's selection.
func (w *Wizard) ToggleSuggestion(key string) {
	w.selected[key] = !w.selected[key]
}

// SelectedItems returns the selected suggestions in review order, ready for
// a bulk add.
func (w *Wizard) SelectedItems() []domain.SuggestedItem {
	out := []domain.SuggestedItem{}
	for _, s := range w.suggestions {
		if w.selected[s.Key()] {
			out = append(out, s.Item())
		}
	}
	return out
}

// Trip builds the trip record the draft describes.
func (w *Wizard) Trip(custom []domain.CustomActivity) domain.Trip {
	return domain.Trip{
		Destination: strings.TrimSpace(w.draft.Destination),
		Latitude:    w.draft.Latitude,
		Longitude:   w.draft.Longitude,
		StartDate:   w.draft.StartDate,
		EndDate:     w.draft.EndDate,
		Activities:  w.ActivityNames(custom),
	}
}

func toggle[T comparable](list []T, v T) []T {
	for i, x := range list {
		if x == v {
			return append(list[:i:i], list[i+1:]...)
		}
	}
	return append(list, v)
}
