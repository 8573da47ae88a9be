package scheme

import "testing"

func TestParseSignature(t *testing.T) {
	tests := []struct {
		sig     string
		want    Dimensions
		wantErr bool
	}{
		{"2x2x2_07", Dimensions{2, 2, 2, 7}, false},
		{"3x3x3_23", Dimensions{3, 3, 3, 23}, false},
		{"2X3x4_20", Dimensions{2, 3, 4, 20}, false},
		{"2x2x2", Dimensions{2, 2, 2, 0}, false},
		{"2x2", Dimensions{}, true},
		{"0x2x2_07", Dimensions{}, true},
		{"2x2x2_xx", Dimensions{}, true},
		{"2x2x2_00", Dimensions{}, true},
	}
	for _, test := range tests {
		got, err := ParseSignature(test.sig)
		if test.wantErr {
			if err == nil {
				t.Errorf("expected error for %q, got %v", test.sig, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("could not parse %q: %v", test.sig, err)
		} else if got != test.want {
			t.Errorf("invalid dimensions for %q: expected %v, got %v", test.sig, test.want, got)
		}
	}
}

func TestDimensionsIndices(t *testing.T) {
	d := Dimensions{ARows: 2, ACols: 3, BCols: 4, Products: 20}
	if got := len(d.AIndices()); got != 6 {
		t.Errorf("expected 6 A indices, got %d", got)
	}
	if got := len(d.BIndices()); got != 12 {
		t.Errorf("expected 12 B indices, got %d", got)
	}
	if got := len(d.CIndices()); got != 8 {
		t.Errorf("expected 8 C indices, got %d", got)
	}
	if got := d.Tuples(); got != 6*12*8 {
		t.Errorf("expected %d tuples, got %d", 6*12*8, got)
	}
	if got := d.ProductDigits(); got != 2 {
		t.Errorf("expected 2 digits, got %d", got)
	}
	if got := d.Signature(); got != "2x3x4_20" {
		t.Errorf("invalid signature %q", got)
	}
	idx := d.CIndices()
	if idx[0] != (Index{0, 0}) || idx[1] != (Index{0, 1}) || idx[4] != (Index{1, 0}) {
		t.Errorf("indices not in row-major order: %v", idx)
	}
}
