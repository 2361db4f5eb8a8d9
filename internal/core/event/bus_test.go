package event

import "testing"

func TestBus_EmitReadClear(t *testing.T) {
	b := NewBus()
	Emit(b, FlagChanged{Flag: 1, Value: true})
	Emit(b, FlagChanged{Flag: 2})
	Emit(b, SensorEntered{})

	flags := Read[FlagChanged](b)
	if len(flags) != 2 || flags[0].Flag != 1 || flags[1].Flag != 2 {
		t.Fatalf("flags = %+v", flags)
	}
	if n := len(Read[SensorEntered](b)); n != 1 {
		t.Fatalf("sensor events = %d, want 1", n)
	}
	if Read[SensorExited](b) != nil {
		t.Fatal("expected no exit events")
	}

	b.Clear()
	if Read[FlagChanged](b) != nil {
		t.Fatal("events survived Clear")
	}
}
