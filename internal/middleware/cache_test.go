package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCaptureWriterWithinLimit(t *testing.T) {
	rec := httptest.NewRecorder()
	cw := &captureWriter{ResponseWriter: rec, status: http.StatusOK, limit: 64}

	if _, err := cw.Write([]byte(`{"items":[]}`)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if cw.overflowed() {
		t.Fatal("overflowed() = true for a response inside the limit")
	}
	if got := cw.buf.String(); got != `{"items":[]}` {
		t.Errorf("captured %q", got)
	}
}

func TestCaptureWriterTruncatedResponseIsNotStorable(t *testing.T) {
	rec := httptest.NewRecorder()
	cw := &captureWriter{ResponseWriter: rec, status: http.StatusOK, limit: 10}

	// Two writes crossing the limit, as a streamed JSON body would.
	if _, err := cw.Write(bytes.Repeat([]byte("x"), 7)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := cw.Write(bytes.Repeat([]byte("y"), 18)); err != nil {
		t.Fatalf("Write: %v", err)
	}

	// The client still gets every byte.
	if rec.Body.Len() != 25 {
		t.Errorf("client received %d bytes, want 25", rec.Body.Len())
	}
	// The capture holds only a prefix, so a 200 with this writer must be
	// skipped by the store branch.
	if cw.buf.Len() > 10 {
		t.Errorf("capture holds %d bytes, limit is 10", cw.buf.Len())
	}
	if !cw.overflowed() {
		t.Fatal("overflowed() = false for a truncated capture")
	}
}

func TestCaptureWriterUnlimited(t *testing.T) {
	rec := httptest.NewRecorder()
	cw := &captureWriter{ResponseWriter: rec, status: http.StatusOK, limit: 0}

	big := bytes.Repeat([]byte("z"), 4096)
	if _, err := cw.Write(big); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if cw.overflowed() {
		t.Fatal("overflowed() = true with no limit configured")
	}
	if cw.buf.Len() != len(big) {
		t.Errorf("captured %d bytes, want %d", cw.buf.Len(), len(big))
	}
}

func TestPayloadRoundTrip(t *testing.T) {
	hdr := http.Header{"Content-Type": []string{"application/json"}}
	body := []byte(`{"id":1}`)

	payload, err := encodePayload(http.StatusOK, hdr, body)
	if err != nil {
		t.Fatalf("encodePayload: %v", err)
	}
	status, gotHdr, gotBody, ok := decodePayload(payload)
	if !ok {
		t.Fatal("decodePayload: not ok")
	}
	if status != http.StatusOK {
		t.Errorf("status = %d", status)
	}
	if gotHdr.Get("Content-Type") != "application/json" {
		t.Errorf("header = %v", gotHdr)
	}
	if !bytes.Equal(gotBody, body) {
		t.Errorf("body = %q", gotBody)
	}
}
