package validator

import (
	"testing"

	"github.com/go-playground/validator/v10"
)

type sample struct {
	Color  string `validate:"omitempty,hex_color"`
	Type   string `validate:"omitempty,transaction_type"`
	Method string `validate:"omitempty,payment_method_type"`
	Op     string `validate:"omitempty,tag_operation"`
	Format string `validate:"omitempty,export_format"`
	Period string `validate:"omitempty,trend_period"`
}

func TestCustomValidators(t *testing.T) {
	v := validator.New()
	RegisterOn(v)

	tests := []struct {
		name    string
		in      sample
		wantErr bool
	}{
		{"valid color", sample{Color: "#A1B2C3"}, false},
		{"short color rejected", sample{Color: "#ABC"}, true},
		{"named color rejected", sample{Color: "red"}, true},
		{"transfer type", sample{Type: "transfer"}, false},
		{"investment type rejected", sample{Type: "investment"}, true},
		{"crypto method", sample{Method: "crypto"}, false},
		{"cheque method rejected", sample{Method: "cheque"}, true},
		{"replace op", sample{Op: "replace"}, false},
		{"merge op rejected", sample{Op: "merge"}, true},
		{"xlsx format", sample{Format: "xlsx"}, false},
		{"pdf format rejected", sample{Format: "pdf"}, true},
		{"week period", sample{Period: "week"}, false},
		{"quarter period rejected", sample{Period: "quarter"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.in)
			if (err != nil) != tt.wantErr {
				t.Errorf("wantErr=%v, got %v", tt.wantErr, err)
			}
		})
	}
}
