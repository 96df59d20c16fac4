package email

import (
	"bufio"
	"context"
	"net"
	"strings"
	"sync"
	"testing"
	"time"
)

type smtpRecorder struct {
	mu    sync.Mutex
	lines []string
}

func (r *smtpRecorder) add(line string) {
	r.mu.Lock()
	r.lines = append(r.lines, line)
	r.mu.Unlock()
}

func (r *smtpRecorder) text() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return strings.Join(r.lines, "\n")
}

// startFakeSMTP runs a single-connection SMTP conversation and records the
// envelope commands and message body it receives.
func startFakeSMTP(t *testing.T, rec *smtpRecorder) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer func() { _ = conn.Close() }()

		reader := bufio.NewReader(conn)
		write := func(s string) { _, _ = conn.Write([]byte(s + "\r\n")) }

		write("220 fake ESMTP")
		inData := false
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				return
			}
			line = strings.TrimRight(line, "\r\n")

			if inData {
				if line == "." {
					inData = false
					write("250 OK")
					continue
				}
				rec.add(line)
				continue
			}

			switch {
			case strings.HasPrefix(line, "EHLO"), strings.HasPrefix(line, "HELO"):
				write("250 fake")
			case strings.HasPrefix(line, "MAIL FROM:"), strings.HasPrefix(line, "RCPT TO:"):
				rec.add(line)
				write("250 OK")
			case line == "DATA":
				inData = true
				write("354 go ahead")
			case line == "QUIT":
				write("221 bye")
				return
			default:
				write("250 OK")
			}
		}
	}()

	return ln.Addr().String()
}

func senderFor(t *testing.T, addr string) *Sender {
	t.Helper()
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		t.Fatalf("failed to split addr: %v", err)
	}
	return NewSender(Config{
		Host:     host,
		Port:     port,
		From:     "noreply@reklix.com",
		FromName: "Reklix",
	})
}

func TestSendMailDeliversMessage(t *testing.T) {
	rec := &smtpRecorder{}
	addr := startFakeSMTP(t, rec)
	sender := senderFor(t, addr)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := sender.SendMail(ctx, "ana@example.com", "Hello", "<p>Hi</p>")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := rec.text()
	for _, want := range []string{
		"MAIL FROM:<noreply@reklix.com>",
		"RCPT TO:<ana@example.com>",
		"From: Reklix <noreply@reklix.com>",
		"To: ana@example.com",
		"Subject: Hello",
		"Content-Type: text/html; charset=UTF-8",
		"<p>Hi</p>",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("transcript missing %q:\n%s", want, got)
		}
	}
}

func TestSendMailHonorsContextDeadline(t *testing.T) {
	// A listener that accepts and then never speaks: without the connection
	// deadline the client would block on the greeting read indefinitely.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	t.Cleanup(func() { _ = ln.Close() })

	done := make(chan struct{})
	t.Cleanup(func() { close(done) })
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		<-done
		_ = conn.Close()
	}()

	sender := senderFor(t, ln.Addr().String())

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	start := time.Now()
	err = sender.SendMail(ctx, "ana@example.com", "Hello", "<p>Hi</p>")
	elapsed := time.Since(start)

	if err == nil {
		t.Fatal("expected error from a stalled server")
	}
	if elapsed > 2*time.Second {
		t.Fatalf("SendMail ignored the context deadline, returned after %v", elapsed)
	}
}

func TestSanitizeHeader(t *testing.T) {
	got := sanitizeHeader("evil\r\nBcc: all@example.com")
	if strings.ContainsAny(got, "\r\n") {
		t.Fatalf("header injection not stripped: %q", got)
	}
}
