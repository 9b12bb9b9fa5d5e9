package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/3dstuff/store-bff-go/internal/domain"
)

func TestParseBRL(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"R$ 1.234,56", 1234.56},
		{"1.234,56", 1234.56},
		{"59,90", 59.90},
		{"R$ 59,90", 59.90},
		{"89.9", 89.9},
		{"1.234.567", 1234567},
		{"R$ 0,50", 0.50},
		{"-R$ 10,00", -10},
		{"", 0},
		{"abc", 0},
		{"grátis", 0},
	}

	for _, tt := range tests {
		if got := domain.ParseBRL(tt.in); got != tt.want {
			t.Errorf("ParseBRL(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFormatBRL(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{1234.56, "R$ 1.234,56"},
		{59.9, "R$ 59,90"},
		{0, "R$ 0,00"},
		{1234567.89, "R$ 1.234.567,89"},
		{-10, "-R$ 10,00"},
		{59.899999, "R$ 59,90"},
	}

	for _, tt := range tests {
		if got := domain.FormatBRL(tt.in); got != tt.want {
			t.Errorf("FormatBRL(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPriceUnmarshal(t *testing.T) {
	var p struct {
		Price domain.Price `json:"price"`
	}

	if err := json.Unmarshal([]byte(`{"price": 89.9}`), &p); err != nil {
		t.Fatalf("number price: %v", err)
	}
	if p.Price != 89.9 {
		t.Errorf("number price = %v, want 89.9", p.Price)
	}

	if err := json.Unmarshal([]byte(`{"price": "R$ 1.234,56"}`), &p); err != nil {
		t.Fatalf("string price: %v", err)
	}
	if p.Price != 1234.56 {
		t.Errorf("string price = %v, want 1234.56", p.Price)
	}

	if err := json.Unmarshal([]byte(`{"price": "sob consulta"}`), &p); err != nil {
		t.Fatalf("unparseable price: %v", err)
	}
	if p.Price != 0 {
		t.Errorf("unparseable price = %v, want 0", p.Price)
	}

	if err := json.Unmarshal([]byte(`{"price": true}`), &p); err == nil {
		t.Error("expected error for boolean price")
	}
}
