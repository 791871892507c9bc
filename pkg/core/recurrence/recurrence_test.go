package recurrence

import (
	"testing"
	"time"

	"github.com/matzehuels/ganttrow/pkg/core/timeline"
	"github.com/matzehuels/ganttrow/pkg/errors"
)

var march = timeline.Window{
	Start: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	Stop:  time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
}

func TestExpandWeekly(t *testing.T) {
	// Every Saturday and Sunday, all day.
	r := Rule{
		RRule:    "FREQ=WEEKLY;BYDAY=SA,SU",
		DTStart:  time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC),
		Duration: 24 * time.Hour,
	}
	periods, err := Expand(r, march)
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	// March 2024 has five Saturdays and five Sundays.
	if len(periods) != 10 {
		t.Fatalf("len(periods) = %d, want 10", len(periods))
	}
	if got := periods[0].Start.Weekday(); got != time.Saturday {
		t.Errorf("first occurrence on %s, want Saturday", got)
	}
	for i := 1; i < len(periods); i++ {
		if periods[i].Start.Before(periods[i-1].Start) {
			t.Fatal("periods are not ordered")
		}
	}
}

func TestExpandIncludesRunningOccurrence(t *testing.T) {
	// Nightly 22:00 to 06:00; the one starting 29 February runs into March.
	r := Rule{
		RRule:    "RRULE:FREQ=DAILY",
		DTStart:  time.Date(2024, 2, 1, 22, 0, 0, 0, time.UTC),
		Duration: 8 * time.Hour,
	}
	periods, err := Expand(r, march)
	if err != nil {
		t.Fatal(err)
	}
	if len(periods) != 32 {
		t.Fatalf("len(periods) = %d, want 32", len(periods))
	}
	if want := time.Date(2024, 2, 29, 22, 0, 0, 0, time.UTC); !periods[0].Start.Equal(want) {
		t.Errorf("first period starts %v, want %v", periods[0].Start, want)
	}
}

func TestExpandWithCount(t *testing.T) {
	r := Rule{
		RRule:    "FREQ=WEEKLY;BYDAY=MO;COUNT=2",
		DTStart:  time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC),
		Duration: time.Hour,
	}
	periods, err := Expand(r, march)
	if err != nil {
		t.Fatal(err)
	}
	if len(periods) != 2 {
		t.Errorf("len(periods) = %d, want 2", len(periods))
	}
}

func TestRuleValidate(t *testing.T) {
	dt := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		rule    Rule
		wantErr bool
	}{
		{"valid", Rule{RRule: "FREQ=DAILY", DTStart: dt, Duration: time.Hour}, false},
		{"bad rule", Rule{RRule: "FREQ=SOMETIMES", DTStart: dt, Duration: time.Hour}, true},
		{"missing dtstart", Rule{RRule: "FREQ=DAILY", Duration: time.Hour}, true},
		{"zero duration", Rule{RRule: "FREQ=DAILY", DTStart: dt}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rule.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeInvalidRecurrence) {
				t.Errorf("code = %s, want INVALID_RECURRENCE", errors.GetCode(err))
			}
		})
	}
}

func TestExpandAll(t *testing.T) {
	fixed := []timeline.Period{{Start: march.Start, Stop: march.Start.Add(time.Hour)}}
	rules := []Rule{{
		RRule:    "FREQ=WEEKLY;BYDAY=MO;COUNT=1",
		DTStart:  time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC),
		Duration: time.Hour,
	}}
	out, err := ExpandAll(fixed, rules, march)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 {
		t.Errorf("len(out) = %d, want 2", len(out))
	}
	if len(fixed) != 1 {
		t.Error("ExpandAll modified its input")
	}

	if _, err := ExpandAll(nil, []Rule{{RRule: "nope"}}, march); err == nil {
		t.Error("ExpandAll with an invalid rule should fail")
	}
}
