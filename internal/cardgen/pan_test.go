package cardgen

import "testing"

func TestPANFromSerial(t *testing.T) {
	cases := []struct {
		bin    string
		serial int64
		want   string
	}{
		{"220400", 1, "2204000000000015"},
		{"400000", 2, "4000000000000024"},
		{"510000", 3, "5100000000000030"},
	}
	for _, c := range cases {
		got, err := PANFromSerial(c.bin, c.serial)
		if err != nil {
			t.Fatalf("PANFromSerial(%s, %d): %v", c.bin, c.serial, err)
		}
		if got != c.want {
			t.Fatalf("PANFromSerial(%s, %d) got %s want %s", c.bin, c.serial, got, c.want)
		}
	}
}

func TestPANFromSerial_LuhnProperty(t *testing.T) {
	for _, bin := range []string{"220400", "400000", "510000"} {
		for serial := int64(1); serial <= 500; serial++ {
			pan, err := PANFromSerial(bin, serial)
			if err != nil {
				t.Fatalf("serial %d: %v", serial, err)
			}
			if len(pan) != 16 {
				t.Fatalf("serial %d: pan %s is not 16 digits", serial, pan)
			}
			if err := ValidatePAN(pan); err != nil {
				t.Fatalf("serial %d: pan %s fails validation: %v", serial, pan, err)
			}
			if cd := luhnCheckDigit(pan[:15]); pan[15] != cd[0] {
				t.Fatalf("serial %d: pan %s check digit mismatch", serial, pan)
			}
		}
	}
}

func TestPANFromSerial_Rejects(t *testing.T) {
	cases := []struct {
		name   string
		bin    string
		serial int64
	}{
		{"empty bin", "", 1},
		{"short bin", "2204", 1},
		{"non-digit bin", "22x400", 1},
		{"negative serial", "220400", -1},
		{"serial too wide", "220400", 1_000_000_000},
	}
	for _, c := range cases {
		if _, err := PANFromSerial(c.bin, c.serial); err == nil {
			t.Fatalf("%s: expected error", c.name)
		}
	}
}

func TestValidatePAN(t *testing.T) {
	cases := []struct {
		pan string
		ok  bool
	}{
		{"2204000000000015", true},
		{"2204000000000014", false},
		{"220400000000001", false},
		{"22040000000000156", false},
		{"2204o00000000015", false},
		{"", false},
	}
	for _, c := range cases {
		err := ValidatePAN(c.pan)
		if (err == nil) != c.ok {
			t.Fatalf("ValidatePAN(%q) ok=%v got err=%v", c.pan, c.ok, err)
		}
	}
}

func TestMaskPAN(t *testing.T) {
	cases := []struct{ in, want string }{
		{"2204000000000015", "220400******0015"},
		{"1234", "****"},
		{"123456789", "*****6789"},
		{"", ""},
	}
	for _, c := range cases {
		if got := MaskPAN(c.in); got != c.want {
			t.Fatalf("MaskPAN(%q) got %q want %q", c.in, got, c.want)
		}
	}
}

func TestIsDigits(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"1234", true},
		{"0", true},
		{"", false},
		{"12a4", false},
		{"12 4", false},
		{"-123", false},
	}
	for _, c := range cases {
		if got := IsDigits(c.in); got != c.want {
			t.Fatalf("IsDigits(%q) got %v want %v", c.in, got, c.want)
		}
	}
}
