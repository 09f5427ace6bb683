package document

import "testing"

type recorder struct {
	changes []Change
}

func (r *recorder) OnDocumentChanged(c Change) {
	r.changes = append(r.changes, c)
}

func TestInsertSingleLine(t *testing.T) {
	b := New("ac")
	rec := &recorder{}
	b.Subscribe(rec)

	end := b.Insert(Pos{Line: 0, Col: 1}, "b")
	if got := b.Value(); got != "abc" {
		t.Fatalf("Value = %q, want %q", got, "abc")
	}
	if end != (Pos{Line: 0, Col: 2}) || b.Cursor() != end {
		t.Fatalf("end = %+v cursor = %+v, want {0 2}", end, b.Cursor())
	}
	if len(rec.changes) != 1 {
		t.Fatalf("changes = %d, want 1", len(rec.changes))
	}
	c := rec.changes[0]
	if c.Origin != OriginInput || c.Inserted() != "b" || c.From != (Pos{Line: 0, Col: 1}) {
		t.Fatalf("change = %+v", c)
	}
}

func TestInsertMultiLine(t *testing.T) {
	b := New("ad")
	end := b.Insert(Pos{Line: 0, Col: 1}, "b\r\nc")
	if got := b.Value(); got != "ab\ncd" {
		t.Fatalf("Value = %q, want %q", got, "ab\ncd")
	}
	if end != (Pos{Line: 1, Col: 1}) {
		t.Fatalf("end = %+v, want {1 1}", end)
	}
	if b.LineCount() != 2 || b.Line(1) != "cd" {
		t.Fatalf("lines = %d, line 1 = %q", b.LineCount(), b.Line(1))
	}
}

func TestDeleteBefore(t *testing.T) {
	b := New("ab\ncd")
	rec := &recorder{}
	b.Subscribe(rec)

	pos := b.DeleteBefore(Pos{Line: 1, Col: 0})
	if got := b.Value(); got != "abcd" {
		t.Fatalf("Value = %q, want %q", got, "abcd")
	}
	if pos != (Pos{Line: 0, Col: 2}) {
		t.Fatalf("pos = %+v, want {0 2}", pos)
	}
	pos = b.DeleteBefore(pos)
	if got := b.Value(); got != "acd" {
		t.Fatalf("Value = %q, want %q", got, "acd")
	}
	if len(rec.changes) != 2 || rec.changes[0].Removed[1] != "" || rec.changes[1].Removed[0] != "b" {
		t.Fatalf("changes = %+v", rec.changes)
	}
	if b.DeleteBefore(Pos{}) != (Pos{}) || len(rec.changes) != 2 {
		t.Fatalf("delete at origin emitted a change")
	}
}

func TestSetValueSingleChange(t *testing.T) {
	b := New("one\ntwo")
	b.SetCursor(Pos{Line: 1, Col: 2})
	rec := &recorder{}
	b.Subscribe(rec)

	b.SetValue("x\ny\nz")
	if len(rec.changes) != 1 {
		t.Fatalf("changes = %d, want 1", len(rec.changes))
	}
	c := rec.changes[0]
	if c.Origin != OriginSetValue || c.To != (Pos{Line: 1, Col: 3}) || len(c.Removed) != 2 {
		t.Fatalf("change = %+v", c)
	}
	if b.Cursor() != (Pos{}) {
		t.Fatalf("cursor = %+v, want origin", b.Cursor())
	}
}

func TestRangeAndClamp(t *testing.T) {
	b := New("héllo\nwörld")
	if got := b.Range(Pos{}, Pos{Line: 1, Col: 2}); got != "héllo\nwö" {
		t.Fatalf("Range = %q", got)
	}
	if got := b.Range(Pos{Line: 1, Col: 2}, Pos{Line: 0, Col: 4}); got != "o\nwö" {
		t.Fatalf("reversed Range = %q", got)
	}
	b.SetCursor(Pos{Line: 9, Col: 9})
	if b.Cursor() != (Pos{Line: 1, Col: 5}) {
		t.Fatalf("clamped cursor = %+v", b.Cursor())
	}
	if b.Line(-1) != "" || b.Line(5) != "" {
		t.Fatalf("out of range Line returned text")
	}
}

type unsubscriber struct {
	b     *Buffer
	calls int
}

func (u *unsubscriber) OnDocumentChanged(Change) {
	u.calls++
	u.b.Unsubscribe(u)
}

func TestObserversSnapshotAndDedupe(t *testing.T) {
	b := New("")
	u := &unsubscriber{b: b}
	rec := &recorder{}
	b.Subscribe(u)
	b.Subscribe(u)
	b.Subscribe(rec)

	b.Insert(Pos{}, "a")
	b.Insert(Pos{Line: 0, Col: 1}, "b")
	if u.calls != 1 {
		t.Fatalf("unsubscriber calls = %d, want 1", u.calls)
	}
	if len(rec.changes) != 2 {
		t.Fatalf("recorder changes = %d, want 2", len(rec.changes))
	}
	if b.ChangeTick() != 2 {
		t.Fatalf("ChangeTick = %d, want 2", b.ChangeTick())
	}
}

func TestModeAndIndent(t *testing.T) {
	b := New("")
	if b.ModeName() != "" || b.IndentUnit() != 2 {
		t.Fatalf("defaults mode=%q indent=%d", b.ModeName(), b.IndentUnit())
	}
	b.SetModeName("css")
	b.SetIndentUnit(0)
	b.SetIndentUnit(4)
	if b.ModeName() != "css" || b.IndentUnit() != 4 {
		t.Fatalf("mode=%q indent=%d", b.ModeName(), b.IndentUnit())
	}
}
