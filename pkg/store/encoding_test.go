package store

import "testing"

func TestEncodeDecodeInt64BigEndian(t *testing.T) {
	cases := []int64{0, 1, -1, 42, -42, 9223372036854775807, -9223372036854775808}
	for _, val := range cases {
		encoded := EncodeInt64BigEndian(val)
		if len(encoded) != 8 {
			t.Fatalf("expected 8 bytes, got %d", len(encoded))
		}
		if decoded := DecodeInt64BigEndian(encoded); decoded != val {
			t.Errorf("expected %d, got %d", val, decoded)
		}
	}
}

func TestEncodeDecodeInt64BigEndianOrdering(t *testing.T) {
	a := EncodeInt64BigEndian(-5)
	b := EncodeInt64BigEndian(5)
	if string(a) >= string(b) {
		t.Errorf("expected encoding of -5 to sort before 5")
	}
}

func TestEncodeDecodeFloat64BigEndian(t *testing.T) {
	cases := []float64{0.0, 1.0, -1.0, 3.14, -3.14, 1.7976931348623157e+308, 2.2250738585072014e-308}
	for _, val := range cases {
		encoded := EncodeFloat64BigEndian(val)
		if len(encoded) != 8 {
			t.Fatalf("expected 8 bytes, got %d", len(encoded))
		}
		if decoded := DecodeFloat64BigEndian(encoded); decoded != val {
			t.Errorf("expected %f, got %f", val, decoded)
		}
	}
}

func TestEncodeDecodeFloat64BigEndianOrdering(t *testing.T) {
	a := EncodeFloat64BigEndian(-2.5)
	b := EncodeFloat64BigEndian(2.5)
	if string(a) >= string(b) {
		t.Errorf("expected encoding of -2.5 to sort before 2.5")
	}
}
