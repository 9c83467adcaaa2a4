package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreAmount(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		want   float64
		wantOK bool
	}{
		{
			name:   "net pay beats larger total",
			text:   "Total 500\nNet Pay 1200",
			want:   1200,
			wantOK: true,
		},
		{
			name:   "payslip picks net salary over gross",
			text:   "Gross Salary 60,000.00\nDeductions 15,000.00\nNet Salary Payable 45,000.00",
			want:   45000,
			wantOK: true,
		},
		{
			name:   "grand total on receipt",
			text:   "Item A 120.00\nItem B 80.00\nGrand Total 200.00",
			want:   200,
			wantOK: true,
		},
		{
			name:   "tie broken by larger value",
			text:   "Total 300\nTotal 900",
			want:   900,
			wantOK: true,
		},
		{
			name:   "no keyword lines",
			text:   "Invoice #42\nThank you for your purchase\n123 Main Street",
			wantOK: false,
		},
		{
			name:   "keyword line without a number",
			text:   "Total amount due on receipt below\nsee attachment",
			wantOK: false,
		},
		{
			name:   "empty text",
			text:   "",
			wantOK: false,
		},
		{
			name:   "separator formatted amount",
			text:   "Grand Total: 2,500.00",
			want:   2500,
			wantOK: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ScoreAmount(tt.text)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestScoreLine(t *testing.T) {
	// "net salary payable 45000" hits net + salary + magnitude.
	assert.Equal(t, 6, scoreLine("net salary payable 45000", 45000))
	// "grand total 200" hits total + grand + magnitude.
	assert.Equal(t, 4, scoreLine("grand total 200", 200))
	// Small values get no magnitude bonus.
	assert.Equal(t, 2, scoreLine("total 50", 50))
}
