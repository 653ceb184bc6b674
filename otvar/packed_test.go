package otvar

import (
	"testing"
)

func TestParsePackedExample(t *testing.T) {
	// one x-delta run (10, -5, 3), one y-delta run (2, -1, 4), all points
	data := []byte{0x00, 10, 0xfb /* -5 */, 3, 0x00, 2, 0xff /* -1 */, 4}
	deltas := ParsePacked(data, 3, false, nil, false)
	want := []PointDelta{
		{X: 10, Y: 2, Touched: true},
		{X: -5, Y: -1, Touched: true},
		{X: 3, Y: 4, Touched: true},
	}
	for i, w := range want {
		if deltas[i] != w {
			t.Errorf("point %d: got %+v, want %+v", i, deltas[i], w)
		}
	}
}

func TestParsePackedZeroFlag(t *testing.T) {
	// the zero-deltas record flag short-circuits decoding entirely,
	// payload bytes notwithstanding
	data := []byte{0xde, 0xad, 0xbe, 0xef}
	deltas := ParsePacked(data, 4, false, nil, true)
	if len(deltas) != 4 {
		t.Fatalf("expected 4 deltas, got %d", len(deltas))
	}
	for i, d := range deltas {
		if d.X != 0 || d.Y != 0 || !d.Touched {
			t.Errorf("point %d: expected touched zero delta, got %+v", i, d)
		}
	}
}

func TestParsePackedSparse(t *testing.T) {
	// private point list {0, 2}, then 2 x-deltas and 2 y-deltas
	var data []byte
	data = append(data, PackPointNumbers([]int{0, 2})...)
	data = append(data, PackDeltaValues([]int16{7, -7})...)
	data = append(data, PackDeltaValues([]int16{1, 2})...)
	deltas := ParsePacked(data, 4, true, nil, false)
	if !deltas[0].Touched || deltas[0].X != 7 || deltas[0].Y != 1 {
		t.Errorf("point 0: got %+v", deltas[0])
	}
	if deltas[1].Touched {
		t.Errorf("point 1 should be untouched, got %+v", deltas[1])
	}
	if !deltas[2].Touched || deltas[2].X != -7 || deltas[2].Y != 2 {
		t.Errorf("point 2: got %+v", deltas[2])
	}
	if deltas[3].Touched {
		t.Errorf("point 3 should be untouched, got %+v", deltas[3])
	}
}

func TestParsePackedSharedPoints(t *testing.T) {
	var data []byte
	data = append(data, PackDeltaValues([]int16{5})...)
	data = append(data, PackDeltaValues([]int16{-5})...)
	deltas := ParsePacked(data, 3, false, []int{1}, false)
	if deltas[0].Touched || deltas[2].Touched {
		t.Errorf("only shared point 1 should be touched: %+v", deltas)
	}
	if !deltas[1].Touched || deltas[1].X != 5 || deltas[1].Y != -5 {
		t.Errorf("point 1: got %+v", deltas[1])
	}
}

func TestParsePackedTruncated(t *testing.T) {
	// x-delta stream announces words but the payload is cut short:
	// decoding degrades to all-zero untouched output
	data := []byte{deltasAreWords | 2, 0x01}
	deltas := ParsePacked(data, 2, false, nil, false)
	for i, d := range deltas {
		if d.Touched || d.X != 0 || d.Y != 0 {
			t.Errorf("point %d: expected untouched zero delta, got %+v", i, d)
		}
	}
}

func TestDeltaRoundTripBytes(t *testing.T) {
	values := []int16{0, 0, 5, -5, 127, -128, 0, 1}
	packed := PackDeltaValues(values)
	decoded, consumed, ok := ParseDeltaValues(packed, len(values))
	if !ok || consumed != len(packed) {
		t.Fatalf("decode failed: ok=%v consumed=%d of %d", ok, consumed, len(packed))
	}
	for i, v := range values {
		if decoded[i] != v {
			t.Errorf("value %d: got %d, want %d", i, decoded[i], v)
		}
	}
}

func TestDeltaRoundTripWords(t *testing.T) {
	values := []int16{1000, -1000, 32767, -32768, 129}
	packed := PackDeltaValues(values)
	decoded, _, ok := ParseDeltaValues(packed, len(values))
	if !ok {
		t.Fatal("decode failed")
	}
	for i, v := range values {
		if decoded[i] != v {
			t.Errorf("value %d: got %d, want %d", i, decoded[i], v)
		}
	}
}

func TestPointNumberRoundTrip(t *testing.T) {
	points := []int{0, 3, 4, 9, 200, 205}
	packed := PackPointNumbers(points)
	decoded, consumed, ok := ParsePointNumbers(packed)
	if !ok || consumed != len(packed) {
		t.Fatalf("decode failed: ok=%v consumed=%d of %d", ok, consumed, len(packed))
	}
	if len(decoded) != len(points) {
		t.Fatalf("expected %d points, got %d", len(points), len(decoded))
	}
	for i, p := range points {
		if decoded[i] != p {
			t.Errorf("point %d: got %d, want %d", i, decoded[i], p)
		}
	}
}

func TestPointNumbersAllPoints(t *testing.T) {
	decoded, consumed, ok := ParsePointNumbers([]byte{0x00})
	if !ok || consumed != 1 || decoded != nil {
		t.Errorf("count byte 0 should mean all points: points=%v consumed=%d ok=%v",
			decoded, consumed, ok)
	}
}
