package transport

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"time"
)

func TestLineBuffer(t *testing.T) {
	var lb lineBuffer

	if _, ok := lb.next(); ok {
		t.Fatal("empty buffer produced a line")
	}

	lb.write([]byte("ENTRY_"))
	if _, ok := lb.next(); ok {
		t.Fatal("partial line returned")
	}

	lb.write([]byte("OK\r\nTEST\nEXI"))
	want := []string{"ENTRY_OK", "TEST"}
	for _, w := range want {
		got, ok := lb.next()
		if !ok || got != w {
			t.Fatalf("next() = %q, %v, want %q", got, ok, w)
		}
	}
	if _, ok := lb.next(); ok {
		t.Fatal("partial tail returned")
	}

	lb.write([]byte("T_OK\n"))
	if got, ok := lb.next(); !ok || got != "EXIT_OK" {
		t.Fatalf("next() = %q, %v, want EXIT_OK", got, ok)
	}

	lb.write([]byte("junk"))
	lb.discard()
	lb.write([]byte("\n"))
	if got, ok := lb.next(); !ok || got != "" {
		t.Fatalf("after discard next() = %q, %v, want empty line", got, ok)
	}
}

func TestLineBufferCap(t *testing.T) {
	var lb lineBuffer

	long := strings.Repeat("A", maxLineLen+50)
	lb.write([]byte(long[:100]))
	lb.write([]byte(long[100:]))
	lb.write([]byte(strings.Repeat("B", 1000)))
	if len(lb.buf) != maxLineLen {
		t.Fatalf("buffered %d bytes, want %d", len(lb.buf), maxLineLen)
	}

	lb.write([]byte("\nEXIT_OK\n"))
	got, ok := lb.next()
	if !ok || got != long[:maxLineLen] {
		t.Errorf("overlong line = %d bytes, %v", len(got), ok)
	}
	if got, ok := lb.next(); !ok || got != "EXIT_OK" {
		t.Errorf("next() = %q, %v, want EXIT_OK", got, ok)
	}
}

func TestLineBufferDrain(t *testing.T) {
	var lb lineBuffer
	lb.write([]byte("ENTRY_OK\nNO_OWNER\r\nPART"))

	got := lb.drain()
	if strings.Join(got, ",") != "ENTRY_OK,NO_OWNER" {
		t.Errorf("drain() = %q", got)
	}
	if len(lb.buf) != 0 {
		t.Errorf("partial line kept: %q", lb.buf)
	}
}

// readLine polls TryReadLine until a line or an error shows up.
func readLine(t *testing.T, s *Stream) (string, error) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		line, ok, err := s.TryReadLine()
		if err != nil {
			return "", err
		}
		if ok {
			return line, nil
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("no line within 2s")
	return "", nil
}

func TestStream(t *testing.T) {
	var out bytes.Buffer
	s := NewStream(strings.NewReader("ENTRY_OK\r\nTEST\n"), &out)

	if err := s.SendLine("04 A3 FF 1B"); err != nil {
		t.Fatalf("SendLine: %v", err)
	}
	if got := out.String(); got != "04 A3 FF 1B\n" {
		t.Errorf("wrote %q", got)
	}

	for _, want := range []string{"ENTRY_OK", "TEST"} {
		got, err := readLine(t, s)
		if err != nil {
			t.Fatalf("readLine: %v", err)
		}
		if got != want {
			t.Errorf("line = %q, want %q", got, want)
		}
	}

	if _, err := readLine(t, s); !errors.Is(err, io.EOF) {
		t.Errorf("err = %v, want io.EOF", err)
	}
}

func TestStreamDiscard(t *testing.T) {
	s := NewStream(strings.NewReader("ENTRY_OK\nTEST\n"), io.Discard)

	deadline := time.Now().Add(2 * time.Second)
	for len(s.lines) < 2 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	got := s.Discard()
	if strings.Join(got, ",") != "ENTRY_OK,TEST" {
		t.Errorf("Discard() = %q", got)
	}
	if _, err := readLine(t, s); !errors.Is(err, io.EOF) {
		t.Errorf("after Discard err = %v, want io.EOF", err)
	}
	if got := s.Discard(); len(got) != 0 {
		t.Errorf("second Discard() = %q", got)
	}
}

func TestStreamNonBlocking(t *testing.T) {
	pr, pw := io.Pipe()
	s := NewStream(pr, io.Discard)
	defer s.Close()

	start := time.Now()
	if _, ok, err := s.TryReadLine(); ok || err != nil {
		t.Fatalf("TryReadLine on idle pipe = %v, %v", ok, err)
	}
	if time.Since(start) > 100*time.Millisecond {
		t.Error("TryReadLine blocked on an idle pipe")
	}

	go pw.Write([]byte("NO_OWNER\n"))
	got, err := readLine(t, s)
	if err != nil {
		t.Fatalf("readLine: %v", err)
	}
	if got != "NO_OWNER" {
		t.Errorf("line = %q, want NO_OWNER", got)
	}
}

func TestNewUnknownType(t *testing.T) {
	if _, err := New(Config{Type: "carrier-pigeon"}); err == nil {
		t.Error("unknown link type accepted")
	}
	if _, err := New(Config{Type: "serial"}); err == nil {
		t.Error("serial link without device accepted")
	}
}
