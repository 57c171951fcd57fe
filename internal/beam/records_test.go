package beam

import (
	"errors"
	"testing"
)

func TestConvertRecords(t *testing.T) {
	records := []Record{
		{Name: "lambdaX", DefaultValue: "1.16098260008648811e-3"},
		{Name: "muxpx", DefaultValue: "0.0"},
	}

	params, err := ConvertRecords(records)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(params) != 2 {
		t.Fatalf("got %d params, want 2", len(params))
	}
	if params[0].Name != "lambdaX" || params[1].Name != "muxpx" {
		t.Errorf("order not preserved: %v", params.Names())
	}
	if params[0].Value.Literal() != "1.16098260008648811e-3" {
		t.Errorf("literal not preserved: %q", params[0].Value.Literal())
	}
	if params[1].Value.Literal() != "0.0" {
		t.Errorf("zero literal = %q, want 0.0", params[1].Value.Literal())
	}
}

func TestConvertRecords_DropsInvalid(t *testing.T) {
	records := []Record{
		{Name: "lambdaX", DefaultValue: "1.0e-3"},
		{Name: "lambdaY", DefaultValue: "oops", ErrorMessages: []string{"must be a float"}},
		{Name: "lambdaT", DefaultValue: "1.0e-3"},
	}

	params, err := ConvertRecords(records)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(params) != 2 {
		t.Fatalf("got %d params, want 2", len(params))
	}
	if _, ok := params.Get("lambdaY"); ok {
		t.Error("invalid record must not appear in output, not even as a placeholder")
	}
}

func TestConvertRecords_AllInvalid(t *testing.T) {
	records := []Record{
		{Name: "a", DefaultValue: "x", ErrorMessages: []string{"bad"}},
		{Name: "b", DefaultValue: "y", ErrorMessages: []string{"bad"}},
	}

	params, err := ConvertRecords(records)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(params) != 0 {
		t.Errorf("got %d params, want 0", len(params))
	}
}

func TestConvertRecords_ParseError(t *testing.T) {
	records := []Record{
		{Name: "lambdaX", DefaultValue: "not-a-number"},
	}

	_, err := ConvertRecords(records)
	if err == nil {
		t.Fatal("expected ValidationError")
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error type = %T, want *ValidationError", err)
	}
	if verr.Name != "lambdaX" {
		t.Errorf("error names %q, want lambdaX", verr.Name)
	}
}

func TestConvertRecords_DuplicateLastWins(t *testing.T) {
	records := []Record{
		{Name: "k", DefaultValue: "1.0"},
		{Name: "kT", DefaultValue: "2.0"},
		{Name: "k", DefaultValue: "3.0"},
	}

	params, err := ConvertRecords(records)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(params) != 2 {
		t.Fatalf("got %d params, want 2", len(params))
	}
	// First position, last value.
	if params[0].Name != "k" || params[0].Value.Float() != 3.0 {
		t.Errorf("duplicate handling wrong: %s=%v", params[0].Name, params[0].Value.Float())
	}
}
