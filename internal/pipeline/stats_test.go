package pipeline

import (
	"testing"
)

func TestSizeLedger_Record(t *testing.T) {
	var l SizeLedger
	l.Record(100, 40)
	l.Record(50, 60)

	saved, files := l.Snapshot()
	if saved != 50 {
		t.Errorf("saved = %d, want 50", saved)
	}
	if files != 2 {
		t.Errorf("files = %d, want 2", files)
	}
}

func TestSizeLedger_OrderIndependent(t *testing.T) {
	var a, b SizeLedger
	a.Record(100, 40)
	a.Record(50, 60)
	b.Record(50, 60)
	b.Record(100, 40)

	savedA, _ := a.Snapshot()
	savedB, _ := b.Snapshot()
	if savedA != savedB {
		t.Errorf("order changed total: %d vs %d", savedA, savedB)
	}
}

func TestSizeLedger_Empty(t *testing.T) {
	var l SizeLedger
	saved, files := l.Snapshot()
	if saved != 0 || files != 0 {
		t.Errorf("empty ledger = (%d, %d), want (0, 0)", saved, files)
	}
}

func TestSizeLedger_NegativeDelta(t *testing.T) {
	var l SizeLedger
	l.Record(100, 250)
	saved, _ := l.Snapshot()
	if saved != -150 {
		t.Errorf("saved = %d, want -150", saved)
	}
}
