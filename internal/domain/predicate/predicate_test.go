package predicate

import (
	"errors"
	"testing"

	"github.com/zenithds/zenithds/internal/domain"
)

func TestParse_Operators(t *testing.T) {
	tests := []struct {
		raw   string
		field string
		op    Operator
		value string
	}{
		{"age == 30", "age", EQ, "30"},
		{"age != 30", "age", NE, "30"},
		{"age < 30", "age", LT, "30"},
		{"age > 30", "age", GT, "30"},
		{"age <= 30", "age", LE, "30"},
		{"age >= 30", "age", GE, "30"},
		{"name IN ob", "name", Contains, "ob"},
		{"name CONTAINS ob", "name", Contains, "ob"},
		{"__date >= 20240101", "__date", GE, "20240101"},
		{"first name == Ann Lee", "first name", EQ, "Ann Lee"},
		{"expr == a < b", "expr", EQ, "a < b"},
		{"note == ", "note", EQ, ""},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			p, err := Parse(tt.raw)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p.Field() != tt.field {
				t.Errorf("Field() = %q, want %q", p.Field(), tt.field)
			}
			if p.Operator() != tt.op {
				t.Errorf("Operator() = %q, want %q", p.Operator(), tt.op)
			}
			if p.Value() != tt.value {
				t.Errorf("Value() = %q, want %q", p.Value(), tt.value)
			}
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, raw := range []string{"", "age", "age = 30", "age=30", "age LIKE 3", "== 30"} {
		t.Run(raw, func(t *testing.T) {
			_, err := Parse(raw)
			if !errors.Is(err, domain.ErrPredicate) {
				t.Fatalf("expected ErrPredicate, got %v", err)
			}
			var pe *domain.PredicateError
			if !errors.As(err, &pe) {
				t.Fatalf("expected *PredicateError, got %T", err)
			}
			if pe.Predicate != raw {
				t.Errorf("Predicate = %q, want %q", pe.Predicate, raw)
			}
		})
	}
}

func TestString_RoundTrip(t *testing.T) {
	for _, raw := range []string{"age >= 30", "name IN ob", "__date < 20240101", "note != "} {
		p, err := Parse(raw)
		if err != nil {
			t.Fatalf("Parse(%q): %v", raw, err)
		}
		if p.String() != raw {
			t.Errorf("String() = %q, want %q", p.String(), raw)
		}
		again, err := Parse(p.String())
		if err != nil || again != p {
			t.Errorf("reparse of %q = %v, %v", p.String(), again, err)
		}
	}
}

func TestString_ContainsAlias(t *testing.T) {
	p, _ := Parse("name CONTAINS ob")
	if p.String() != "name IN ob" {
		t.Errorf("String() = %q", p.String())
	}
}

func TestSatisfiedBy(t *testing.T) {
	tests := []struct {
		op        Operator
		value     string
		candidate string
		want      bool
	}{
		{EQ, "a", "a", true},
		{EQ, "a", "b", false},
		{NE, "a", "b", true},
		{LT, "b", "a", true},
		{LT, "b", "b", false},
		{LE, "b", "b", true},
		{GT, "b", "c", true},
		{GE, "b", "b", true},
		{GE, "b", "a", false},
		// lexicographic, not numeric
		{LT, "9", "10", true},
		{GT, "9", "10", false},
		{Contains, "ob", "bob", true},
		{Contains, "bob", "ob", false},
		{Contains, "", "anything", true},
	}
	for _, tt := range tests {
		p := New("f", tt.op, tt.value)
		if got := p.SatisfiedBy(tt.candidate); got != tt.want {
			t.Errorf("%q %s %q = %v, want %v", tt.candidate, tt.op, tt.value, got, tt.want)
		}
	}
}

func TestFilenamePredicate(t *testing.T) {
	p, _ := Parse(`__\d{8} >= 20240101`)
	if !p.IsFilename() {
		t.Fatal("expected filename predicate")
	}
	if p.Pattern() != `\d{8}` {
		t.Errorf("Pattern() = %q", p.Pattern())
	}

	row, _ := Parse("date >= 20240101")
	if row.IsFilename() {
		t.Error("row predicate reported as filename predicate")
	}
}

func TestParseOperator_Unknown(t *testing.T) {
	if _, ok := ParseOperator("LIKE"); ok {
		t.Error("LIKE should not parse")
	}
}

func TestParse_HasMarker(t *testing.T) {
	p, err := Parse(`HAS _(\d{8}) >= 20240101`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.IsFilename() {
		t.Fatal("expected filename predicate")
	}
	if p.Pattern() != `_(\d{8})` {
		t.Errorf("Pattern() = %q", p.Pattern())
	}
	if p.String() != `___(\d{8}) >= 20240101` {
		t.Errorf("String() = %q", p.String())
	}

	if _, err := Parse("HAS broken"); !errors.Is(err, domain.ErrPredicate) {
		t.Errorf("expected ErrPredicate, got %v", err)
	}
}
