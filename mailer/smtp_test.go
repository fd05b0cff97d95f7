package mailer

import (
	"bufio"
	"context"
	"errors"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSMTPServer accepts one session and records the envelope
type fakeSMTPServer struct {
	listener net.Listener
	rejectTo bool

	mu   sync.Mutex
	from string
	to   string
	data string
}

func newFakeSMTPServer(t *testing.T) *fakeSMTPServer {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	srv := &fakeSMTPServer{listener: l}
	go srv.serve()
	return srv
}

func (f *fakeSMTPServer) port() int {
	return f.listener.Addr().(*net.TCPAddr).Port
}

func (f *fakeSMTPServer) serve() {
	conn, err := f.listener.Accept()
	if err != nil {
		return
	}
	defer conn.Close()
	r := bufio.NewReader(conn)
	reply := func(s string) { _, _ = conn.Write([]byte(s + "\r\n")) }

	reply("220 localhost ESMTP")
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return
		}
		cmd := strings.TrimSpace(line)
		upper := strings.ToUpper(cmd)
		switch {
		case strings.HasPrefix(upper, "EHLO"), strings.HasPrefix(upper, "HELO"):
			reply("250 localhost")
		case strings.HasPrefix(upper, "MAIL FROM:"):
			f.mu.Lock()
			f.from = cmd[len("MAIL FROM:"):]
			f.mu.Unlock()
			reply("250 OK")
		case strings.HasPrefix(upper, "RCPT TO:"):
			if f.rejectTo {
				reply("550 no such user")
				continue
			}
			f.mu.Lock()
			f.to = cmd[len("RCPT TO:"):]
			f.mu.Unlock()
			reply("250 OK")
		case upper == "DATA":
			reply("354 go ahead")
			var data strings.Builder
			for {
				l, err := r.ReadString('\n')
				if err != nil {
					return
				}
				if l == ".\r\n" {
					break
				}
				data.WriteString(l)
			}
			f.mu.Lock()
			f.data = data.String()
			f.mu.Unlock()
			reply("250 queued")
		case upper == "QUIT":
			reply("221 bye")
			return
		default:
			reply("250 OK")
		}
	}
}

func TestSMTPSenderDelivers(t *testing.T) {
	srv := newFakeSMTPServer(t)
	sender := &SMTPSender{Host: "127.0.0.1", Port: srv.port(), From: "noreply@he2.ai", FromName: "Helium", Timeout: 5 * time.Second}

	err := sender.Send(context.Background(), &Message{To: "jo@x.com", Subject: "Hi", HTML: "<p>hi</p>"})

	require.NoError(t, err)
	srv.mu.Lock()
	defer srv.mu.Unlock()
	assert.Equal(t, "<noreply@he2.ai>", srv.from)
	assert.Equal(t, "<jo@x.com>", srv.to)
	assert.Contains(t, srv.data, "Subject: Hi")
}

func TestSMTPSenderRejectedRecipientIsProtocolError(t *testing.T) {
	srv := newFakeSMTPServer(t)
	srv.rejectTo = true
	sender := &SMTPSender{Host: "127.0.0.1", Port: srv.port(), From: "noreply@he2.ai", Timeout: 5 * time.Second}

	err := sender.Send(context.Background(), &Message{To: "ghost@x.com", Subject: "Hi", HTML: "<p>hi</p>"})

	var sendErr *SendError
	require.True(t, errors.As(err, &sendErr))
	assert.Equal(t, KindProtocol, sendErr.Kind)
}

func TestSMTPSenderMissingConfig(t *testing.T) {
	for name, sender := range map[string]*SMTPSender{
		"no host":   {Port: 587, From: "noreply@he2.ai"},
		"no sender": {Host: "smtp.example.com", Port: 587},
	} {
		t.Run(name, func(t *testing.T) {
			err := sender.Send(context.Background(), &Message{To: "jo@x.com"})

			var sendErr *SendError
			require.True(t, errors.As(err, &sendErr))
			assert.Equal(t, KindConfig, sendErr.Kind)
		})
	}
}

func TestSMTPSenderUnreachableIsConnectionError(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	l.Close()

	sender := &SMTPSender{Host: "127.0.0.1", Port: port, From: "noreply@he2.ai", Timeout: time.Second}
	err = sender.Send(context.Background(), &Message{To: "jo@x.com", HTML: "x"})

	var sendErr *SendError
	require.True(t, errors.As(err, &sendErr))
	assert.Equal(t, KindConnection, sendErr.Kind)
}
