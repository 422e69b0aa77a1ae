package arena

import "testing"

type nodeFixture struct {
	Visits int32
	Q      float32
}

type oversizedFixture struct {
	_ [256]byte
}

func TestAddGetRoundTrip(t *testing.T) {
	a := New(8, 32)

	idx1, ok := Add(a, nodeFixture{Visits: 1, Q: 0.5})
	if !ok {
		t.Fatal("expected Add to succeed")
	}
	idx2, ok := Add(a, nodeFixture{Visits: 2, Q: 0.25})
	if !ok {
		t.Fatal("expected Add to succeed")
	}

	got1 := Get(a, idx1)
	got2 := Get(a, idx2)

	if got1.Visits != 1 || got1.Q != 0.5 {
		t.Errorf("idx1 = %+v, want Visits=1 Q=0.5", *got1)
	}
	if got2.Visits != 2 || got2.Q != 0.25 {
		t.Errorf("idx2 = %+v, want Visits=2 Q=0.25", *got2)
	}
}

func TestAddSliceRoundTrip(t *testing.T) {
	a := New(16, 16)

	values := []int32{1, 2, 3, 4, 5}
	s, ok := AddSlice(a, values)
	if !ok {
		t.Fatal("expected AddSlice to succeed")
	}

	got := GetSlice(a, s)
	if len(got) != len(values) {
		t.Fatalf("len(got) = %d, want %d", len(got), len(values))
	}
	for i := range values {
		if got[i] != values[i] {
			t.Errorf("got[%d] = %d, want %d", i, got[i], values[i])
		}
	}
}

func TestUnsupportedTypePanics(t *testing.T) {
	a := New(4, 32)

	if Supports[oversizedFixture](a) {
		t.Fatal("oversizedFixture should not fit in a 32-byte slot")
	}

	defer func() {
		if recover() == nil {
			t.Error("expected Add to panic for an unsupported type")
		}
	}()
	Add(a, oversizedFixture{})
}

func TestFullArenaReturnsFalseWithoutInvalidatingEarlierIndices(t *testing.T) {
	a := New(3, 16)

	idx1, ok := Add(a, nodeFixture{Visits: 1})
	if !ok {
		t.Fatal("first add should succeed")
	}

	// slot 0 is the null sentinel, so capacity 3 leaves room for one
	// more real slot after idx1.
	idx2, ok := Add(a, nodeFixture{Visits: 2})
	if !ok {
		t.Fatal("second add should succeed")
	}

	_, ok = Add(a, nodeFixture{Visits: 3})
	if ok {
		t.Error("expected arena to be full")
	}

	if got := Get(a, idx1); got.Visits != 1 {
		t.Errorf("idx1 invalidated after overflow: got %+v", *got)
	}
	if got := Get(a, idx2); got.Visits != 2 {
		t.Errorf("idx2 invalidated after overflow: got %+v", *got)
	}
}

func TestPaddingBytesAccounting(t *testing.T) {
	a := New(8, 32)

	// A 3-byte slice forces 8-byte-aligned int64 values to skip ahead.
	AddSlice(a, []byte{1, 2, 3})
	AddSlice(a, []int64{42})

	stats := a.Stats()
	if stats.PaddingBytes == 0 {
		t.Error("expected non-zero padding after an alignment-forcing sequence")
	}
}

func TestNilIndexIsNone(t *testing.T) {
	var idx Index[nodeFixture]
	if !idx.IsNone() {
		t.Error("zero-value Index should report IsNone")
	}
	a := New(4, 32)
	if got := Get(a, idx); got != nil {
		t.Error("Get on the null index should return nil")
	}
}
