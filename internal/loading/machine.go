package loading

import (
	"errors"
	"fmt"

	"github.com/xelth-com/loadboard/internal/models"
	"github.com/xelth-com/loadboard/internal/units"
)

// ErrUnknownLine is returned for a line id that is not part of the loaded order
var ErrUnknownLine = errors.New("line not in order")

// Status is the loading state of one line
type Status string

const (
	StatusNotStarted Status = "not-started"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// Line is an order line prepared for loading
type Line struct {
	ID          string
	Index       int
	Line        models.OrderLine
	TargetPacks int
	Conversion  units.Conversion
}

// LineStatus is the derived view of a line; never stored
type LineStatus struct {
	LineID        string     `json:"lineId"`
	ProductCode   string     `json:"productCode"`
	Status        Status     `json:"status"`
	CurrentOutput float64    `json:"currentOutput"`
	TargetOutput  float64    `json:"targetOutput"`
	CurrentPacks  int        `json:"currentPacks"`
	TargetPacks   int        `json:"targetPacks"`
	Unit          units.Unit `json:"unit"`
	Unknown       bool       `json:"unknown,omitempty"`
}

// Machine applies loading actions to the progress of one order.
// It is not safe for concurrent use; the owner serializes access.
type Machine struct {
	orderID  string
	lines    []Line
	byID     map[string]int
	progress Progress
}

// PrepareLines assigns line ids and resolves conversions. Any line with a malformed
// pack count or packaging factor rejects the whole order.
func PrepareLines(order models.Order, catalog units.Catalog) ([]Line, error) {
	lines := make([]Line, 0, len(order.Products))
	for i, ol := range order.Products {
		target, err := units.ParsePacks(ol.PacksOrdered)
		if err != nil {
			return nil, fmt.Errorf("line %d (%s): %w", i, ol.ProductCode, err)
		}
		conv, err := units.Resolve(ol, catalog)
		if err != nil {
			return nil, fmt.Errorf("line %d (%s): %w", i, ol.ProductCode, err)
		}
		lines = append(lines, Line{
			ID:          LineID(order.ID, ol.ProductCode, i),
			Index:       i,
			Line:        ol,
			TargetPacks: target,
			Conversion:  conv,
		})
	}
	return lines, nil
}

// NewMachine prepares an order for loading with the given starting progress
func NewMachine(order models.Order, catalog units.Catalog, progress Progress) (*Machine, error) {
	if order.ID == "" {
		return nil, fmt.Errorf("%w: order has no id", units.ErrInvalidInput)
	}
	lines, err := PrepareLines(order, catalog)
	if err != nil {
		return nil, err
	}
	m := &Machine{
		orderID: order.ID,
		lines:   lines,
		byID:    make(map[string]int, len(lines)),
	}
	for i, l := range lines {
		m.byID[l.ID] = i
	}
	m.Replace(progress)
	return m, nil
}

// OrderID returns the id of the loaded order
func (m *Machine) OrderID() string { return m.orderID }

// Lines returns the prepared lines in order
func (m *Machine) Lines() []Line {
	out := make([]Line, len(m.lines))
	copy(out, m.lines)
	return out
}

// Line looks up a prepared line
func (m *Machine) Line(lineID string) (Line, bool) {
	i, ok := m.byID[lineID]
	if !ok {
		return Line{}, false
	}
	return m.lines[i], true
}

// Progress returns a snapshot of the progress map
func (m *Machine) Progress() Progress {
	return m.progress.Clone()
}

// Replace swaps in progress restored from a session
func (m *Machine) Replace(p Progress) {
	if p == nil {
		m.progress = make(Progress)
		return
	}
	m.progress = p.Clone()
}

// ApplyDelta adds a signed number of display units to a line. Packs never drop below
// zero. Reaching the target marks the line complete; dropping below it does not clear the flag.
func (m *Machine) ApplyDelta(lineID string, unitDelta int) (LineProgress, error) {
	line, ok := m.Line(lineID)
	if !ok {
		return LineProgress{}, fmt.Errorf("%w: %s", ErrUnknownLine, lineID)
	}
	lp := m.progress.Get(lineID)
	if unitDelta == 0 {
		return lp, nil
	}

	packs := lp.Packs + line.Conversion.PacksFor(unitDelta)
	if packs < 0 {
		packs = 0
	}
	lp.Packs = packs
	if packs >= line.TargetPacks && !lp.Complete {
		lp.Complete = true
	}
	m.progress[lineID] = lp
	return lp, nil
}

// ToggleComplete flips the completion flag without touching the pack count
func (m *Machine) ToggleComplete(lineID string) (LineProgress, error) {
	if _, ok := m.Line(lineID); !ok {
		return LineProgress{}, fmt.Errorf("%w: %s", ErrUnknownLine, lineID)
	}
	lp := m.progress.Get(lineID)
	lp.Complete = !lp.Complete
	m.progress[lineID] = lp
	return lp, nil
}

// ResetLine clears a line back to zero packs and not complete
func (m *Machine) ResetLine(lineID string) (LineProgress, error) {
	if _, ok := m.Line(lineID); !ok {
		return LineProgress{}, fmt.Errorf("%w: %s", ErrUnknownLine, lineID)
	}
	lp := LineProgress{}
	m.progress[lineID] = lp
	return lp, nil
}

// StatusOf projects the current progress of a line through its conversion
func (m *Machine) StatusOf(lineID string) (LineStatus, error) {
	line, ok := m.Line(lineID)
	if !ok {
		return LineStatus{}, fmt.Errorf("%w: %s", ErrUnknownLine, lineID)
	}
	return statusOf(line, m.progress.Get(lineID)), nil
}

// Statuses returns the status of every line in order
func (m *Machine) Statuses() []LineStatus {
	out := make([]LineStatus, len(m.lines))
	for i, line := range m.lines {
		out[i] = statusOf(line, m.progress.Get(line.ID))
	}
	return out
}

// Done reports whether every line is marked complete
func (m *Machine) Done() bool {
	for _, line := range m.lines {
		if !m.progress.Get(line.ID).Complete {
			return false
		}
	}
	return len(m.lines) > 0
}

func statusOf(line Line, lp LineProgress) LineStatus {
	st := LineStatus{
		LineID:        line.ID,
		ProductCode:   line.Line.ProductCode,
		CurrentOutput: line.Conversion.Output(lp.Packs),
		TargetOutput:  line.Conversion.Output(line.TargetPacks),
		CurrentPacks:  lp.Packs,
		TargetPacks:   line.TargetPacks,
		Unit:          line.Conversion.Unit,
		Unknown:       line.Conversion.Unknown,
	}
	switch {
	case lp.Complete:
		st.Status = StatusCompleted
	case lp.Packs == 0:
		st.Status = StatusNotStarted
	default:
		st.Status = StatusInProgress
	}
	return st
}
