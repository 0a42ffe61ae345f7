package whisper_test

import (
	"context"
	"os"
	"testing"

	"github.com/twilight39/IPA-Navigator/pkg/provider/speech/whisper"
)

// testModelPath returns the path to a whisper model for integration tests.
// It reads from the WHISPER_MODEL_PATH environment variable. If unset the
// test is skipped.
func testModelPath(t *testing.T) string {
	t.Helper()
	p := os.Getenv("WHISPER_MODEL_PATH")
	if p == "" {
		t.Skip("WHISPER_MODEL_PATH not set; skipping native whisper test")
	}
	return p
}

func TestNew_EmptyPath_ReturnsError(t *testing.T) {
	_, err := whisper.New("")
	if err == nil {
		t.Fatal("expected error for empty model path, got nil")
	}
}

func TestNew_InvalidPath_ReturnsError(t *testing.T) {
	_, err := whisper.New("/nonexistent/path/to/model.bin")
	if err == nil {
		t.Fatal("expected error for invalid model path, got nil")
	}
}

func TestAlignWords_CancelledContext(t *testing.T) {
	modelPath := testModelPath(t)
	p, err := whisper.New(modelPath, whisper.WithLanguage("en"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer p.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := p.AlignWords(ctx, nil, ""); err == nil {
		t.Fatal("expected error for cancelled context, got nil")
	}
}

func TestAlignWords_RejectsNonWAV(t *testing.T) {
	modelPath := testModelPath(t)
	p, err := whisper.New(modelPath)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer p.Close()

	if _, err := p.AlignWords(context.Background(), []byte("not audio"), ""); err == nil {
		t.Fatal("expected error for non-WAV payload, got nil")
	}
}
