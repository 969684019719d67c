// Package ftps wraps the FTP client library for implicit-TLS sessions: the
// TLS handshake happens immediately on connect and the library carries the
// same TLS config onto every data connection, so file transfers run over a
// protected data channel as well.
package ftps

import (
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"strconv"
	"time"

	"github.com/jlaffaye/ftp"
)

// Config holds the connection settings for one session.
type Config struct {
	Host    string
	Port    int
	Timeout time.Duration
}

// Session is a single authenticated FTPS connection. One session is opened
// per invocation and closed (or abandoned on a failed dial/login) at the end;
// sessions are never pooled or reused.
type Session struct {
	conn *ftp.ServerConn
}

// Dial opens an implicit-TLS connection and authenticates. A nil error means
// the caller owns the session and must Quit it.
func Dial(cfg Config, username, password string) (*Session, error) {
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	conn, err := ftp.Dial(addr,
		ftp.DialWithTimeout(cfg.Timeout),
		ftp.DialWithTLS(&tls.Config{ServerName: cfg.Host}),
	)
	if err != nil {
		return nil, fmt.Errorf("dial %s failed: %w", addr, err)
	}
	if err := conn.Login(username, password); err != nil {
		conn.Quit()
		return nil, fmt.Errorf("login failed: %w", err)
	}
	return &Session{conn: conn}, nil
}

// Fetch streams one remote file into w with a single RETR. No retries and no
// partial resume; the transfer blocks until complete or failed.
func (s *Session) Fetch(remotePath string, w io.Writer) (int64, error) {
	resp, err := s.conn.Retr(remotePath)
	if err != nil {
		return 0, fmt.Errorf("RETR %s failed: %w", remotePath, err)
	}
	defer resp.Close()

	n, err := io.Copy(w, resp)
	if err != nil {
		return n, fmt.Errorf("transfer of %s failed after %d bytes: %w", remotePath, n, err)
	}
	return n, nil
}

// Size asks the server for a remote file's size. Not every server grants
// SIZE; callers treat an error as "unknown".
func (s *Session) Size(remotePath string) (int64, error) {
	return s.conn.FileSize(remotePath)
}

// Quit closes the session.
func (s *Session) Quit() error {
	return s.conn.Quit()
}
