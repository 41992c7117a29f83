package core

import "testing"

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"12.34", 1234, true},
		{"12,34", 1234, true},
		{"12.345", 1234, true},
		{"12.346", 1235, true},
		{"5", 500, true},
		{"0.01", 1, true},
		{"", 0, false},
		{"abc", 0, false},
		{"-5", 0, false},
		{"+5", 0, false},
		{"0", 0, false},
		{"1.2.3", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Fatalf("%q: got %d, %v; want %d", tc.in, got, err, tc.want)
		}
		if !tc.ok && err == nil {
			t.Fatalf("%q: expected error", tc.in)
		}
	}
}

func TestFormatAmount(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{0, "₹0.00"},
		{500, "₹5.00"},
		{123456, "₹1,234.56"},
		{12345600, "₹1,23,456.00"},
		{123456700, "₹12,34,567.00"},
		{1234567800, "₹1,23,45,678.00"},
		{-40000, "-₹400.00"},
	}
	for _, tc := range cases {
		if got := FormatAmount(Money{Cents: tc.cents}, "₹"); got != tc.want {
			t.Fatalf("FormatAmount(%d) = %q, want %q", tc.cents, got, tc.want)
		}
	}
}

func TestFormatAmountOtherSymbol(t *testing.T) {
	if got := FormatAmount(Money{Cents: 12999}, "$"); got != "$129.99" {
		t.Fatalf("got %q", got)
	}
}

func TestMoneyDecimal(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{0, "0.00"},
		{5, "0.05"},
		{12050, "120.50"},
		{100000, "1000.00"},
		{-250, "-2.50"},
	}
	for _, tt := range tests {
		if got := (Money{Cents: tt.cents}).Decimal(); got != tt.want {
			t.Fatalf("Decimal(%d) = %q, want %q", tt.cents, got, tt.want)
		}
	}
}
