package tcp

import (
	"fmt"
	"net"
	"sync"
)

// Session owns the write side of one client connection. All outbound
// messages, no matter which goroutine produced them (the session's own
// handler, a lobby broadcast, the opponent's game), funnel through Send so
// bytes of concurrent lines never interleave.
type Session struct {
	conn net.Conn

	mu sync.Mutex
}

func newSession(conn net.Conn) *Session {
	return &Session{conn: conn}
}

// Send - writes one newline-terminated protocol line. Write failures are
// deliberately swallowed: the read loop observes the broken connection and
// runs cleanup.
func (that *Session) Send(line string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	_, _ = fmt.Fprintf(that.conn, "%s\n", line)
}

func (that *Session) RemoteAddr() string {
	return that.conn.RemoteAddr().String()
}
