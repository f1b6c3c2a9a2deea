package common

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestStatusFor(t *testing.T) {
	cases := map[string]int{
		CodeCartNotFound:       http.StatusNotFound,
		CodeOutOfStock:         http.StatusConflict,
		CodeInvalidDiscount:    http.StatusBadRequest,
		CodeSubmissionFailed:   http.StatusBadGateway,
		CodeIdempotentReplay:   http.StatusConflict,
		CodeInsufficientAmount: http.StatusConflict,
		"SOMETHING_UNKNOWN":    http.StatusInternalServerError,
	}
	for code, want := range cases {
		if got := StatusFor(code); got != want {
			t.Fatalf("StatusFor(%s) = %d, want %d", code, got, want)
		}
	}
}

func TestFailEnvelope(t *testing.T) {
	rr := httptest.NewRecorder()
	Fail(rr, CodeOutOfStock, "no batch with remaining stock", map[string]any{"drugId": "d-1"})

	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", rr.Code)
	}
	var body struct {
		Error ErrorBody `json:"error"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Error.Code != CodeOutOfStock {
		t.Fatalf("expected code %s got %s", CodeOutOfStock, body.Error.Code)
	}
	if body.Error.Message == "" || body.Error.Details == nil {
		t.Fatalf("expected message and details to survive the envelope")
	}
}
