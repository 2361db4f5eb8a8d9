package ecs

import "testing"

type position struct{ x int }
type tag struct{}

func TestEntityPool_RecyclesWithNewGeneration(t *testing.T) {
	p := NewEntityPool()
	a := p.Create()
	p.Destroy(a)
	if p.Alive(a) {
		t.Fatal("destroyed id still alive")
	}
	b := p.Create()
	if b.Index() != a.Index() || b.Generation() != a.Generation()+1 {
		t.Fatalf("recycled id = %s, want index %d generation %d", b, a.Index(), a.Generation()+1)
	}
	if p.Alive(a) || !p.Alive(b) {
		t.Fatal("stale id must not alias the recycled one")
	}
	p.Destroy(a)
	if p.Count() != 1 {
		t.Fatalf("count = %d, want 1 (stale destroy ignored)", p.Count())
	}
}

func TestStore_ChangeDetection(t *testing.T) {
	w := NewWorld()
	s := NewStore[position](w)
	a, b := w.CreateEntity(), w.CreateEntity()
	s.Set(a, &position{x: 1})
	s.Set(b, &position{x: 2})

	mark := w.ChangeSeq()
	if got := changedSince(s, mark); len(got) != 0 {
		t.Fatalf("changed since mark = %v, want none", got)
	}

	if p, ok := s.Get(a); ok {
		p.x = 10 // raw write, not observed
	}
	p, _ := s.Mut(b)
	p.x = 20

	got := changedSince(s, mark)
	if len(got) != 1 || got[0] != b {
		t.Fatalf("changed since mark = %v, want [%s]", got, b)
	}
	if s.ChangedAt(b) <= mark {
		t.Fatalf("ChangedAt = %d, want > %d", s.ChangedAt(b), mark)
	}
}

func changedSince(s *Store[position], since uint64) []EntityID {
	var out []EntityID
	s.EachChangedSince(since, func(id EntityID, _ *position) {
		out = append(out, id)
	})
	return out
}

func TestWorld_EndTickDestroysQueued(t *testing.T) {
	w := NewWorld()
	pos := NewStore[position](w)
	tags := NewStore[tag](w)
	e := w.CreateEntity()
	pos.Set(e, &position{})
	tags.Set(e, &tag{})

	w.MarkForDestruction(e)
	if !w.Alive(e) || !pos.Has(e) {
		t.Fatal("destruction must wait for end of tick")
	}
	w.EndTick()
	if w.Alive(e) || pos.Has(e) || tags.Has(e) {
		t.Fatal("entity survived EndTick")
	}
	if w.Tick() != 1 {
		t.Fatalf("tick = %d, want 1", w.Tick())
	}
}

func TestWorld_ClearKeepsChangeSequence(t *testing.T) {
	w := NewWorld()
	s := NewStore[position](w)
	s.Set(w.CreateEntity(), &position{})
	seq := w.ChangeSeq()

	w.Clear()
	if s.Len() != 0 || w.Pool().Count() != 0 {
		t.Fatal("clear left entities behind")
	}
	e := w.CreateEntity()
	s.Set(e, &position{})
	if s.ChangedAt(e) <= seq {
		t.Fatal("change sequence restarted after clear")
	}
}

func TestEach2_VisitsIntersection(t *testing.T) {
	w := NewWorld()
	pos := NewStore[position](w)
	tags := NewStore[tag](w)
	a, b, c := w.CreateEntity(), w.CreateEntity(), w.CreateEntity()
	pos.Set(a, &position{x: 1})
	pos.Set(b, &position{x: 2})
	tags.Set(b, &tag{})
	tags.Set(c, &tag{})

	var hits []EntityID
	Each2(pos, tags, func(id EntityID, p *position, _ *tag) {
		hits = append(hits, id)
		if p.x != 2 {
			t.Fatalf("wrong component for %s", id)
		}
	})
	if len(hits) != 1 || hits[0] != b {
		t.Fatalf("hits = %v, want [%s]", hits, b)
	}
}
