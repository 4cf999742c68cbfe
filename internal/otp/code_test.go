package otp

import "testing"

func TestGenerateCode_Length(t *testing.T) {
	for _, digits := range []int{4, 6, 8} {
		code, err := GenerateCode(digits)
		if err != nil {
			t.Fatalf("GenerateCode(%d): %v", digits, err)
		}
		if len(code) != digits {
			t.Errorf("code length = %d, want %d", len(code), digits)
		}
		for _, c := range code {
			if c < '0' || c > '9' {
				t.Errorf("code contains non-digit: %c", c)
			}
		}
	}
}

func TestGenerateCode_Randomness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code, err := GenerateCode(8)
		if err != nil {
			t.Fatalf("GenerateCode: %v", err)
		}
		if seen[code] {
			t.Errorf("duplicate code generated: %s", code)
		}
		seen[code] = true
	}
}

func TestHashCode_Consistent(t *testing.T) {
	hash1 := HashCode("123456")
	hash2 := HashCode("123456")
	if hash1 != hash2 {
		t.Errorf("HashCode not consistent: %q vs %q", hash1, hash2)
	}
	if len(hash1) != 64 {
		t.Errorf("hash length = %d, want 64 (SHA-256 hex)", len(hash1))
	}
	if hash1 == HashCode("654321") {
		t.Error("HashCode produced same hash for different inputs")
	}
}

func TestCodeEqual(t *testing.T) {
	stored := HashCode("123456")
	if !CodeEqual("123456", stored) {
		t.Error("CodeEqual should match correct code")
	}
	if CodeEqual("654321", stored) {
		t.Error("CodeEqual should reject incorrect code")
	}
	if CodeEqual("", stored) {
		t.Error("CodeEqual should reject empty code")
	}
}

func TestValidCodeFormat(t *testing.T) {
	testCases := []struct {
		code   string
		digits int
		want   bool
	}{
		{"123456", 6, true},
		{"000000", 6, true},
		{"12345", 6, false},
		{"1234567", 6, false},
		{"12345a", 6, false},
		{"12 456", 6, false},
		{"", 6, false},
		{"1234", 4, true},
	}
	for _, tc := range testCases {
		if got := ValidCodeFormat(tc.code, tc.digits); got != tc.want {
			t.Errorf("ValidCodeFormat(%q, %d) = %v, want %v", tc.code, tc.digits, got, tc.want)
		}
	}
}
