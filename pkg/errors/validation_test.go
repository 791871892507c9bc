package errors

import (
	"testing"
	"time"
)

func TestValidateID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "task-1", false},
		{"valid numeric", "42", false},
		{"valid unicode", "tâche", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 300)), true},
		{"null byte", "foo\x00bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateRange(t *testing.T) {
	base := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	tests := []struct {
		name        string
		start, stop time.Time
		wantErr     bool
	}{
		{"forward", base, base.Add(time.Hour), false},
		{"zero width", base, base, false},
		{"backward", base, base.Add(-time.Minute), true},
		{"missing start", time.Time{}, base, true},
		{"missing stop", base, time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRange("r1", tt.start, tt.stop)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateRange() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidRange) {
				t.Errorf("code = %v, want %v", GetCode(err), ErrCodeInvalidRange)
			}
		})
	}
}

func TestValidateWindow(t *testing.T) {
	base := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	if err := ValidateWindow(base, base.AddDate(0, 0, 7)); err != nil {
		t.Errorf("ValidateWindow(week) error = %v", err)
	}
	if err := ValidateWindow(base, base); !Is(err, ErrCodeInvalidWindow) {
		t.Errorf("ValidateWindow(empty) = %v, want INVALID_WINDOW", err)
	}
}

func TestValidateFieldName(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"allocated_hours", false},
		{"resource.capacity", false},
		{"", true},
		{" hours", true},
		{"hours;drop", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := ValidateFieldName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFieldName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
