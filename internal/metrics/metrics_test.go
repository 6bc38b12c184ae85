package metrics

import "testing"

type recordingBackend struct {
	incs    []string
	flushes int
	closes  int
}

func (r *recordingBackend) IncCounter(name string, delta float64, labels Labels) {
	r.incs = append(r.incs, name)
}
func (r *recordingBackend) Flush() error { r.flushes++; return nil }
func (r *recordingBackend) Close() error { r.closes++; return nil }

func TestPackageHelpersRouteToInstalledBackend(t *testing.T) {
	rec := &recordingBackend{}
	SetBackend(rec)
	defer SetBackend(nil)

	IncCounter(CounterRowsScanned, 1, nil)
	IncCounter(CounterPasses, 1, Labels{"role": "training"})
	if err := Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if err := Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if len(rec.incs) != 2 || rec.incs[0] != CounterRowsScanned || rec.incs[1] != CounterPasses {
		t.Errorf("incs = %v", rec.incs)
	}
	if rec.flushes != 1 || rec.closes != 1 {
		t.Errorf("flushes = %d, closes = %d, want 1 and 1", rec.flushes, rec.closes)
	}
}

func TestSetBackendNilRestoresNop(t *testing.T) {
	rec := &recordingBackend{}
	SetBackend(rec)
	SetBackend(nil)

	IncCounter(CounterSetsCreated, 1, nil)
	if len(rec.incs) != 0 {
		t.Errorf("nop backend still routed to old backend: %v", rec.incs)
	}
}
