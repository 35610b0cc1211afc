package registration

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"elite-gym/internal/catalog"
	"elite-gym/internal/leads"
	"elite-gym/internal/models"
	"elite-gym/internal/whatsapp"
)

// Step is where the visitor is in the two-step flow.
type Step string

const (
	StepSelecting   Step = "selecting"
	StepRegistering Step = "registering"
	StepClosed      Step = "closed"
)

// ErrWrongStep is returned for an action the current step does not offer.
var ErrWrongStep = errors.New("action not available in current step")

// Dispatcher hands a finished registration to the outbound sink.
type Dispatcher interface {
	Dispatch(ctx context.Context, env leads.Envelope)
}

// Options wire a Flow to its collaborators.
type Options struct {
	Destination string
	Dispatcher  Dispatcher
	Now         func() time.Time
}

// View is the render-ready state of a flow.
type View struct {
	ID         string         `json:"id"`
	Step       Step           `json:"step"`
	Plans      []catalog.Plan `json:"plans,omitempty"`
	SelectedID string         `json:"selected_id,omitempty"`
	Summary    string         `json:"summary,omitempty"`
	Plan       *catalog.Plan  `json:"plan,omitempty"`
	Form       *Form          `json:"form,omitempty"`
	Age        string         `json:"age"`
	HandoffURL string         `json:"handoff_url,omitempty"`
}

// Flow is one visitor's plan selection followed by the registration form.
// Exactly one plan is selected while selecting; the form exists only while
// registering and is thrown away by Back, Cancel and Submit.
type Flow struct {
	id      string
	catalog *catalog.Catalog
	opts    Options

	mu         sync.Mutex
	step       Step
	selected   catalog.Plan
	form       Form
	handoffURL string
	evicted    bool
}

func NewFlow(id string, c *catalog.Catalog, opts Options) *Flow {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Flow{
		id:       id,
		catalog:  c,
		opts:     opts,
		step:     StepSelecting,
		selected: c.Featured(),
	}
}

func (f *Flow) ID() string { return f.id }

// Select replaces the current selection.
func (f *Flow) Select(planID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.step != StepSelecting {
		return ErrWrongStep
	}
	plan, err := f.catalog.Find(planID)
	if err != nil {
		return err
	}
	f.selected = plan
	return nil
}

// Continue moves to the registration form for the selected plan, with an
// empty form.
func (f *Flow) Continue() (catalog.Plan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.step != StepSelecting {
		return catalog.Plan{}, ErrWrongStep
	}
	f.step = StepRegistering
	f.form = Form{}
	return f.selected, nil
}

// Update applies typed field changes and returns the derived age label.
func (f *Flow) Update(p FormPatch) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.step != StepRegistering {
		return "", ErrWrongStep
	}
	p.Apply(&f.form)
	return f.form.AgeLabel(f.opts.Now()), nil
}

// Back returns to plan selection. The form is discarded and the selector
// opens again on the featured plan.
func (f *Flow) Back() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.step != StepRegistering {
		return ErrWrongStep
	}
	f.step = StepSelecting
	f.form = Form{}
	f.selected = f.catalog.Featured()
	return nil
}

// Cancel discards everything.
func (f *Flow) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.close()
}

// Submit validates the form, hands the registration off once and closes
// the flow. It returns the click-to-chat link for the hand-off.
func (f *Flow) Submit() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.step != StepRegistering {
		return "", ErrWrongStep
	}
	if err := f.form.Validate(); err != nil {
		return "", err
	}

	text := f.form.Text(f.selected, f.opts.Now())
	link := whatsapp.DeepLink(f.opts.Destination, text)
	if f.opts.Dispatcher != nil {
		f.opts.Dispatcher.Dispatch(context.Background(), leads.Envelope{
			SessionID:   f.id,
			Kind:        models.DispatchKindRegistration,
			Destination: f.opts.Destination,
			Text:        text,
		})
	}
	f.close()
	f.handoffURL = link
	return link, nil
}

// expire discards the flow when the registry evicts it.
func (f *Flow) expire() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.close()
	f.evicted = true
}

func (f *Flow) wasEvicted() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.evicted
}

func (f *Flow) close() {
	f.step = StepClosed
	f.form = Form{}
	f.selected = catalog.Plan{}
}

// View copies the flow's visible state.
func (f *Flow) View() View {
	f.mu.Lock()
	defer f.mu.Unlock()

	v := View{ID: f.id, Step: f.step}
	switch f.step {
	case StepSelecting:
		v.Plans = f.catalog.All()
		v.SelectedID = f.selected.ID
		v.Summary = fmt.Sprintf("Plan seleccionado: %s — %s", f.selected.Name, catalog.FormatPrice(f.selected.Price))
	case StepRegistering:
		plan := f.selected
		form := f.form
		v.Plan = &plan
		v.Form = &form
		v.Age = form.AgeLabel(f.opts.Now())
	case StepClosed:
		v.HandoffURL = f.handoffURL
	}
	return v
}
