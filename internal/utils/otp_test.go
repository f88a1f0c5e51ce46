package utils

import (
	"strconv"
	"testing"
)

func TestGenerateOTPCode(t *testing.T) {
	t.Run("ExactWidth", func(t *testing.T) {
		for _, digits := range []int{4, 6, 8} {
			for i := 0; i < 50; i++ {
				code, err := GenerateOTPCode(digits)
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if len(code) != digits {
					t.Fatalf("expected %d digits, got %q", digits, code)
				}
			}
		}
	})

	t.Run("NumericInRange", func(t *testing.T) {
		for i := 0; i < 100; i++ {
			code, err := GenerateOTPCode(6)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			n, err := strconv.Atoi(code)
			if err != nil {
				t.Fatalf("code %q is not numeric", code)
			}
			if n < 100000 || n > 999999 {
				t.Fatalf("code %d out of range", n)
			}
		}
	})

	t.Run("RejectsInvalidLength", func(t *testing.T) {
		if _, err := GenerateOTPCode(0); err == nil {
			t.Fatal("expected error for zero digits")
		}
	})
}
