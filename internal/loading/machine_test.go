package loading

import (
	"errors"
	"testing"

	"github.com/xelth-com/loadboard/internal/models"
	"github.com/xelth-com/loadboard/internal/units"
)

type mapCatalog map[string]models.Product

func (m mapCatalog) Lookup(code string) (models.Product, bool) {
	p, ok := m[code]
	return p, ok
}

func newTestMachine(t *testing.T, packs string) (*Machine, string) {
	t.Helper()
	cat := mapCatalog{"2006093": {Category: "Wall", NewCode: "2006093", PacksPerBale: 5}}
	order := models.Order{
		ID:          "ord-1",
		Destination: "BANYO",
		Time:        "08:00",
		Products:    []models.OrderLine{{ProductCode: "2006093", PacksOrdered: packs}},
	}
	m, err := NewMachine(order, cat, nil)
	if err != nil {
		t.Fatalf("NewMachine: %v", err)
	}
	return m, LineID("ord-1", "2006093", 0)
}

func TestLineID_Stable(t *testing.T) {
	if got := LineID("abc", "2006093", 2); got != "abc_2006093_2" {
		t.Errorf("LineID = %q", got)
	}
}

func TestApplyDelta_ReachesTargetAndAutoCompletes(t *testing.T) {
	m, id := newTestMachine(t, "10")

	st, _ := m.StatusOf(id)
	if st.TargetOutput != 2 || st.Unit != units.Bales {
		t.Fatalf("target = %v %s, want 2 Bales", st.TargetOutput, st.Unit)
	}
	if st.Status != StatusNotStarted {
		t.Errorf("initial status = %s", st.Status)
	}

	lp, err := m.ApplyDelta(id, 1)
	if err != nil {
		t.Fatalf("ApplyDelta: %v", err)
	}
	if lp.Packs != 5 || lp.Complete {
		t.Errorf("after one bale: %+v", lp)
	}
	st, _ = m.StatusOf(id)
	if st.Status != StatusInProgress {
		t.Errorf("status = %s, want in-progress", st.Status)
	}

	lp, _ = m.ApplyDelta(id, 1)
	if lp.Packs != 10 || !lp.Complete {
		t.Errorf("after two bales: %+v", lp)
	}
	st, _ = m.StatusOf(id)
	if st.CurrentOutput != 2 || st.Status != StatusCompleted {
		t.Errorf("status = %+v", st)
	}
}

func TestApplyDelta_ClampsAtZero(t *testing.T) {
	m, id := newTestMachine(t, "10")

	lp, _ := m.ApplyDelta(id, -3)
	if lp.Packs != 0 {
		t.Errorf("packs = %d, want 0", lp.Packs)
	}

	m.ApplyDelta(id, 1)
	m.ApplyDelta(id, -1)
	if got := m.Progress().Get(id).Packs; got != 0 {
		t.Errorf("round trip packs = %d, want 0", got)
	}
}

func TestApplyDelta_RoundTrip(t *testing.T) {
	m, id := newTestMachine(t, "100")
	m.ApplyDelta(id, 3)
	before := m.Progress().Get(id).Packs

	for _, d := range []int{1, 4, 7} {
		m.ApplyDelta(id, d)
		m.ApplyDelta(id, -d)
		if got := m.Progress().Get(id).Packs; got != before {
			t.Errorf("delta %d: packs = %d, want %d", d, got, before)
		}
	}
}

func TestApplyDelta_DroppingBelowTargetKeepsComplete(t *testing.T) {
	m, id := newTestMachine(t, "10")
	m.ApplyDelta(id, 2)
	lp, _ := m.ApplyDelta(id, -1)
	if !lp.Complete {
		t.Error("completion must not clear automatically")
	}
}

func TestAutoCompleteThenToggle(t *testing.T) {
	m, id := newTestMachine(t, "10")
	m.ApplyDelta(id, 2)
	m.ToggleComplete(id)

	lp, _ := m.ApplyDelta(id, 1)
	if !lp.Complete {
		t.Error("crossing the target again after an un-complete should set the flag")
	}

	// toggling alternates without touching packs
	for i := 0; i < 4; i++ {
		prev := m.Progress().Get(id)
		lp, _ := m.ToggleComplete(id)
		if lp.Complete == prev.Complete {
			t.Errorf("toggle %d did not flip", i)
		}
		if lp.Packs != 15 {
			t.Errorf("toggle %d changed packs to %d", i, lp.Packs)
		}
	}
}

func TestResetLine(t *testing.T) {
	m, id := newTestMachine(t, "10")
	m.ApplyDelta(id, 5)

	lp, err := m.ResetLine(id)
	if err != nil {
		t.Fatalf("ResetLine: %v", err)
	}
	if lp != (LineProgress{}) {
		t.Errorf("reset = %+v", lp)
	}
	st, _ := m.StatusOf(id)
	if st.Status != StatusNotStarted {
		t.Errorf("status = %s", st.Status)
	}
}

func TestUnknownLineLeavesProgressUntouched(t *testing.T) {
	m, id := newTestMachine(t, "10")
	m.ApplyDelta(id, 1)
	before := m.Progress()

	if _, err := m.ApplyDelta("nope", 1); !errors.Is(err, ErrUnknownLine) {
		t.Errorf("err = %v", err)
	}
	if _, err := m.ToggleComplete("nope"); !errors.Is(err, ErrUnknownLine) {
		t.Errorf("err = %v", err)
	}
	after := m.Progress()
	if len(after) != len(before) || after[id] != before[id] {
		t.Errorf("progress changed: %v -> %v", before, after)
	}
}

func TestNewMachine_RejectsBadPackCount(t *testing.T) {
	order := models.Order{ID: "x", Products: []models.OrderLine{{ProductCode: "1", PacksOrdered: "lots"}}}
	if _, err := NewMachine(order, mapCatalog{}, nil); !errors.Is(err, units.ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
}

func TestUnknownProductLine(t *testing.T) {
	order := models.Order{ID: "x", Products: []models.OrderLine{{ProductCode: "1099", PacksOrdered: "4"}}}
	m, err := NewMachine(order, mapCatalog{}, nil)
	if err != nil {
		t.Fatalf("NewMachine: %v", err)
	}
	id := LineID("x", "1099", 0)
	m.ApplyDelta(id, 3)
	st, _ := m.StatusOf(id)
	if !st.Unknown || st.Unit != units.Units || st.CurrentOutput != 3 || st.TargetOutput != 4 {
		t.Errorf("status = %+v", st)
	}
}

func TestProgress_FlattenAndParse(t *testing.T) {
	p := Progress{
		"a_1_0": {Packs: 10, Complete: true},
		"a_2_1": {Packs: 3},
	}
	flat := p.Flatten()
	if flat["a_1_0"] != 10 || flat["a_1_0_complete"] != true || flat["a_2_1_complete"] != false {
		t.Fatalf("flatten = %v", flat)
	}

	// values as they arrive from a JSON column
	raw := map[string]interface{}{
		"a_1_0":          float64(10),
		"a_1_0_complete": true,
		"a_2_1":          float64(3),
		"b_9_0":          float64(-4),
		"c_1_0_complete": true,
		"junk":           "text",
		"d_1_0":          1e300,
	}
	got := ParseProgress(raw)
	if got["a_1_0"] != (LineProgress{Packs: 10, Complete: true}) {
		t.Errorf("a_1_0 = %+v", got["a_1_0"])
	}
	if got["a_2_1"] != (LineProgress{Packs: 3}) {
		t.Errorf("a_2_1 = %+v", got["a_2_1"])
	}
	if got["b_9_0"].Packs != 0 {
		t.Errorf("negative packs not clamped: %+v", got["b_9_0"])
	}
	if got["c_1_0"] != (LineProgress{Complete: true}) {
		t.Errorf("flag without count = %+v", got["c_1_0"])
	}
	if got["d_1_0"].Packs != MaxPacks {
		t.Errorf("huge count not clamped: %+v", got["d_1_0"])
	}
	if _, ok := got["junk"]; ok {
		t.Error("non-numeric value should be ignored")
	}
}
