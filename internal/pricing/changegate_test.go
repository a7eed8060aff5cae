package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func defaultGate() ChangeGate {
	return NewChangeGate(dec("0.50"), dec("5"), dec("10"), dec("20"))
}

func TestShouldPropagate(t *testing.T) {
	gate := defaultGate()

	tests := []struct {
		name     string
		oldPrice string
		newPrice string
		want     bool
	}{
		{"no previous price always writes", "0", "12.50", true},
		{"unchanged", "10.00", "10.00", false},
		{"dollar met percent not", "100.00", "100.75", false},
		{"percent met dollar not", "4.00", "4.40", false},
		{"both met exactly", "100.00", "105.00", true},
		{"just under both", "100.00", "104.99", false},
		{"clearly above", "10.00", "12.00", true},
		{"drop counts too", "10.00", "8.00", true},
		{"small drop suppressed", "100.00", "99.60", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := gate.ShouldPropagate(dec(tt.oldPrice), dec(tt.newPrice))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsNotableChange(t *testing.T) {
	gate := defaultGate()

	tests := []struct {
		name     string
		oldPrice string
		newPrice string
		want     bool
	}{
		{"no previous price never notable", "0", "50.00", false},
		{"dollar met percent not", "200.00", "212.00", false},
		{"percent met dollar not", "20.00", "25.00", false},
		{"both met", "50.00", "60.00", true},
		{"exact thresholds", "50.00", "40.00", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := gate.IsNotableChange(dec(tt.oldPrice), dec(tt.newPrice))
			assert.Equal(t, tt.want, got)
		})
	}
}
