package agent

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// writeScript drops an executable shell script and returns its path.
func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script fixtures")
	}

	path := filepath.Join(t.TempDir(), "fake-agent")
	script := "#!/bin/sh\n" + body + "\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("Failed to write script: %v", err)
	}
	return path
}

func TestNew(t *testing.T) {
	t.Run("missing binary", func(t *testing.T) {
		_, err := New(Config{Binary: "definitely-not-installed-anywhere"})
		if err == nil {
			t.Fatal("Expected construction error for missing binary")
		}
		if !strings.Contains(err.Error(), "definitely-not-installed-anywhere") {
			t.Errorf("Error should name the binary: %v", err)
		}
	})

	t.Run("resolves script path", func(t *testing.T) {
		path := writeScript(t, `echo '{"result": "ok", "is_error": false}'`)
		b, err := New(Config{Binary: path})
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		if b.binary != path {
			t.Errorf("Resolved binary = %s", b.binary)
		}
	})
}

func TestComplete(t *testing.T) {
	t.Run("json payload", func(t *testing.T) {
		path := writeScript(t, `cat > /dev/null
echo '{"result": "Load the sales data", "is_error": false}'`)
		b, err := New(Config{Binary: path})
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}

		got, err := b.Complete(context.Background(), "shorten this")
		if err != nil {
			t.Fatalf("Complete failed: %v", err)
		}
		if got != "Load the sales data" {
			t.Errorf("Unexpected result: %q", got)
		}
	})

	t.Run("streamed progress before payload", func(t *testing.T) {
		path := writeScript(t, `cat > /dev/null
echo 'working...'
echo '{"type": "progress"}'
echo '{"result": "done", "is_error": false}'`)
		b, err := New(Config{Binary: path})
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}

		got, err := b.Complete(context.Background(), "prompt")
		if err != nil {
			t.Fatalf("Complete failed: %v", err)
		}
		if got != "done" {
			t.Errorf("Expected last payload, got %q", got)
		}
	})

	t.Run("trailing error after streamed result", func(t *testing.T) {
		path := writeScript(t, `cat > /dev/null
echo '{"result": "finished work", "is_error": false}'
echo 'session teardown failed' >&2
exit 1`)
		b, err := New(Config{Binary: path})
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}

		got, err := b.Complete(context.Background(), "prompt")
		if err != nil {
			t.Fatalf("Usable result must win over the trailing exit error: %v", err)
		}
		if got != "finished work" {
			t.Errorf("Unexpected result: %q", got)
		}
	})

	t.Run("genuine failure", func(t *testing.T) {
		path := writeScript(t, `cat > /dev/null
echo 'credentials rejected' >&2
exit 1`)
		b, err := New(Config{Binary: path})
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}

		_, err = b.Complete(context.Background(), "prompt")
		if err == nil {
			t.Fatal("Expected error")
		}
		if !strings.Contains(err.Error(), "credentials rejected") {
			t.Errorf("Stderr lost from error: %v", err)
		}
	})

	t.Run("error payload with exit zero", func(t *testing.T) {
		path := writeScript(t, `cat > /dev/null
echo '{"result": "", "is_error": true}'`)
		b, err := New(Config{Binary: path})
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}

		got, err := b.Complete(context.Background(), "prompt")
		// The error payload is not a usable result; the raw line falls
		// through as plain output.
		if err != nil {
			t.Fatalf("Complete failed: %v", err)
		}
		if !strings.Contains(got, "is_error") {
			t.Errorf("Expected raw stdout fallback, got %q", got)
		}
	})

	t.Run("plain text output", func(t *testing.T) {
		path := writeScript(t, `cat > /dev/null
echo 'just words, no json'`)
		b, err := New(Config{Binary: path})
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}

		got, err := b.Complete(context.Background(), "prompt")
		if err != nil {
			t.Fatalf("Complete failed: %v", err)
		}
		if got != "just words, no json" {
			t.Errorf("Unexpected result: %q", got)
		}
	})

	t.Run("no output", func(t *testing.T) {
		path := writeScript(t, `cat > /dev/null`)
		b, err := New(Config{Binary: path})
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}

		if _, err := b.Complete(context.Background(), "prompt"); err == nil {
			t.Fatal("Expected error for empty output")
		}
	})

	t.Run("prompt arrives on stdin", func(t *testing.T) {
		path := writeScript(t, `prompt=$(cat)
echo "{\"result\": \"got: $prompt\", \"is_error\": false}"`)
		b, err := New(Config{Binary: path})
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}

		got, err := b.Complete(context.Background(), "hello agent")
		if err != nil {
			t.Fatalf("Complete failed: %v", err)
		}
		if got != "got: hello agent" {
			t.Errorf("Prompt not forwarded on stdin: %q", got)
		}
	})
}

func TestName(t *testing.T) {
	path := writeScript(t, `echo '{"result": "ok"}'`)
	b, err := New(Config{Binary: path})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if b.Name() != "agent" {
		t.Errorf("Name = %s", b.Name())
	}
}
