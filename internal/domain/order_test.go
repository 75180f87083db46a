package domain

import "testing"

func TestKind_StringAndValid(t *testing.T) {
	tests := []struct {
		kind  Kind
		str   string
		valid bool
	}{
		{KindBuy, "B", true},
		{KindSell, "S", true},
		{KindCancel, "C", true},
		{Kind('X'), "?", false},
		{Kind(0), "?", false},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.str {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.kind, got, tt.str)
		}
		if got := tt.kind.Valid(); got != tt.valid {
			t.Errorf("Kind(%d).Valid() = %v, want %v", tt.kind, got, tt.valid)
		}
	}
}

func TestSide_Opposite(t *testing.T) {
	if SideBuy.Opposite() != SideSell {
		t.Error("expected buy to match against sell")
	}
	if SideSell.Opposite() != SideBuy {
		t.Error("expected sell to match against buy")
	}
}

func TestRequest_Order(t *testing.T) {
	req := Request{Kind: KindSell, OrderID: 9, Instrument: "GOOG", Price: 120, Quantity: 15}
	o := req.Order(42)

	if o.OrderID != 9 || o.Instrument != "GOOG" || o.Price != 120 || o.Quantity != 15 {
		t.Errorf("unexpected order fields: %+v", o)
	}
	if o.Side != SideSell {
		t.Errorf("Side = %v, want sell", o.Side)
	}
	if o.Arrival != 42 {
		t.Errorf("Arrival = %d, want 42", o.Arrival)
	}
	if o.Matched {
		t.Error("new order must not be matched")
	}
}

func TestRequest_Cancel(t *testing.T) {
	c := Request{Kind: KindCancel, OrderID: 3}.Cancel(99)
	if c.OrderID != 3 || c.Arrival != 99 {
		t.Errorf("Cancel() = %+v, want {3 99}", c)
	}
}

func TestCrosses(t *testing.T) {
	if !Crosses(100, 100) {
		t.Error("equal prices should cross")
	}
	if !Crosses(101, 100) {
		t.Error("buy above sell should cross")
	}
	if Crosses(99, 100) {
		t.Error("buy below sell must not cross")
	}
}

func TestSubmitResult_Filled(t *testing.T) {
	r := SubmitResult{Executions: []OrderExecuted{{Quantity: 3}, {Quantity: 4}}}
	if r.Filled() != 7 {
		t.Errorf("Filled() = %d, want 7", r.Filled())
	}
}

func TestMonotonicClock_NeverGoesBackwards(t *testing.T) {
	c := NewMonotonicClock()
	prev := c.Now()
	for i := 0; i < 1000; i++ {
		now := c.Now()
		if now < prev {
			t.Fatalf("clock went backwards: %d after %d", now, prev)
		}
		prev = now
	}
}
