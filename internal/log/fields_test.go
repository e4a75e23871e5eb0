package log

import (
	"errors"
	"testing"
)

func TestFieldsBuilder(t *testing.T) {
	f := NewFields().
		WithComponent(ComponentHTTP).
		WithRequestID("req_1").
		WithClientIP("10.0.0.1").
		WithHTTPRequest("GET", "/wallets").
		WithHTTPResponse(200, 12)

	want := map[string]any{
		FieldComponent:  ComponentHTTP,
		FieldRequestID:  "req_1",
		FieldClientIP:   "10.0.0.1",
		FieldMethod:     "GET",
		FieldPath:       "/wallets",
		FieldStatusCode: 200,
		FieldDuration:   int64(12),
	}
	if len(f) != len(want) {
		t.Fatalf("got %d fields, want %d: %v", len(f), len(want), f)
	}
	for k, v := range want {
		if f[k] != v {
			t.Fatalf("field %q = %v, want %v", k, f[k], v)
		}
	}

	slice := f.ToSlice()
	if len(slice) != len(want)*2 {
		t.Fatalf("ToSlice returned %d elements, want %d", len(slice), len(want)*2)
	}
}

func TestWithErrorNil(t *testing.T) {
	f := NewFields().WithError(nil)
	if _, ok := f[FieldError]; ok {
		t.Fatal("nil error must not add a field")
	}
	f = f.WithError(errors.New("boom"))
	if f[FieldError] != "boom" {
		t.Fatalf("error field = %v, want boom", f[FieldError])
	}
}
