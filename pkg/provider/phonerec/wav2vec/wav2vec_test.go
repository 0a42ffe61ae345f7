package wav2vec

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRecognizePhonemes_Success(t *testing.T) {
	audio := []byte("fake-wav-bytes")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/phoneme_align" {
			t.Errorf("path = %s, want /phoneme_align", r.URL.Path)
		}

		var req struct {
			AudioData string `json:"audio_data"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		decoded, err := base64.StdEncoding.DecodeString(req.AudioData)
		if err != nil || string(decoded) != string(audio) {
			t.Errorf("audio_data did not round-trip: %v", err)
		}

		io.WriteString(w, `{
			"phonemes": [
				{"phoneme": "k", "start": 0.05, "end": 0.15, "confidence": 0.92},
				{"phoneme": "æ", "start": 0.15, "end": 0.30, "confidence": 0.88},
				{"phoneme": "t", "start": 0.30, "end": 0.40, "confidence": 0.95}
			]
		}`)
	}))
	defer srv.Close()

	c := New(srv.URL, WithHTTPClient(srv.Client()))
	events, err := c.RecognizePhonemes(context.Background(), audio)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(events) != 3 {
		t.Fatalf("events: got %d, want 3", len(events))
	}
	if events[0].Symbol != "k" || events[0].Start != 0.05 {
		t.Errorf("event[0] = %+v", events[0])
	}
	if events[1].Symbol != "æ" || events[1].Confidence != 0.88 {
		t.Errorf("event[1] = %+v", events[1])
	}
}

func TestRecognizePhonemes_EmptyTimeline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, `{"phonemes": []}`)
	}))
	defer srv.Close()

	c := New(srv.URL, WithHTTPClient(srv.Client()))
	events, err := c.RecognizePhonemes(context.Background(), []byte("x"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("events: got %d, want 0", len(events))
	}
}

func TestRecognizePhonemes_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(srv.URL, WithHTTPClient(srv.Client()))
	_, err := c.RecognizePhonemes(context.Background(), []byte("x"))
	if err == nil {
		t.Fatal("expected error for 502 response, got nil")
	}
	if !strings.Contains(err.Error(), "status 502") {
		t.Errorf("error = %v, want status mention", err)
	}
}

func TestRecognizePhonemes_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	srv.Close() // shut down before calling

	c := New(srv.URL)
	_, err := c.RecognizePhonemes(context.Background(), []byte("x"))
	if err == nil {
		t.Fatal("expected error for unreachable server, got nil")
	}
}
