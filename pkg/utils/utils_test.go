package utils

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
)

func TestChecksumAddress(t *testing.T) {
	cases := []struct{ in, want string }{
		{"0xbb4cdb9cbd36b01bd1cbaebf2de08d9173bc095c", "0xbb4CdB9CBd36B01bD1cBaEBF2De08d9173bc095c"},
		{"bb4cdb9cbd36b01bd1cbaebf2de08d9173bc095c", "0xbb4CdB9CBd36B01bD1cBaEBF2De08d9173bc095c"},
		{" 0xBB4CDB9CBD36B01BD1CBAEBF2DE08D9173BC095C ", "0xbb4CdB9CBd36B01bD1cBaEBF2De08d9173bc095c"},
		{"", ""},
	}
	for _, c := range cases {
		if got := ChecksumAddress(c.in); got != c.want {
			t.Errorf("ChecksumAddress(%q) = %s, want %s", c.in, got, c.want)
		}
	}
}

func TestSameAddress(t *testing.T) {
	if !SameAddress("0xABCD", " 0xabcd") {
		t.Error("case-insensitive compare failed")
	}
	if SameAddress("0xABCD", "0xABCE") {
		t.Error("different addresses reported equal")
	}
}

func TestAdjustDecimals(t *testing.T) {
	got := AdjustDecimals(big.NewInt(1_500_000_000_000_000_000), 18)
	if !got.Equal(decimal.RequireFromString("1.5")) {
		t.Errorf("AdjustDecimals = %s, want 1.5", got)
	}
}

func TestToPct(t *testing.T) {
	cases := []struct {
		part, total, want string
	}{
		{"50", "200", "25"},
		{"1", "3", "33.33"},
		{"400", "1000", "40"},
		{"5", "0", "0"}, // 除零保护
	}
	for _, c := range cases {
		got := ToPct(decimal.RequireFromString(c.part), decimal.RequireFromString(c.total))
		if !got.Equal(decimal.RequireFromString(c.want)) {
			t.Errorf("ToPct(%s, %s) = %s, want %s", c.part, c.total, got, c.want)
		}
	}
}

func TestIsUnixSeconds(t *testing.T) {
	if !IsUnixSeconds(1_700_000_000) {
		t.Error("second-level timestamp rejected")
	}
	if IsUnixSeconds(1_700_000_000_000) {
		t.Error("millisecond-level timestamp accepted")
	}
}
