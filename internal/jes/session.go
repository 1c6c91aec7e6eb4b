package jes

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"
)

const sessionTimeout = 30 * time.Second

// session is one FTP control connection to the gateway, usable for JES-mode
// commands after login and SITE setup. The jlaffaye/ftp client cannot issue
// the gateway's SITE options, so the control channel is driven directly.
type session struct {
	conn   net.Conn
	reader *bufio.Reader
}

// reply is one complete, possibly multi-line, FTP control reply.
type reply struct {
	code  int
	lines []string
}

func (r reply) positive() bool { return r.code < 400 }

// preliminary reports whether the reply opens a data transfer.
func (r reply) preliminary() bool { return r.code == 125 || r.code == 150 }

func (r reply) text() string { return strings.Join(r.lines, " ") }

func dialSession(host string, port int) (*session, error) {
	addr := fmt.Sprintf("%s:%d", host, port)
	conn, err := net.DialTimeout("tcp", addr, sessionTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}

	s := &session{
		conn:   conn,
		reader: bufio.NewReader(conn),
	}

	welcome, err := s.readReply()
	if err != nil {
		conn.Close()
		return nil, err
	}
	if !welcome.positive() {
		conn.Close()
		return nil, fmt.Errorf("%w: %s", ErrConnectionRefused, welcome.text())
	}
	return s, nil
}

func (s *session) login(user, password string) error {
	r, err := s.command("USER %s", user)
	if err != nil {
		return err
	}
	if r.code == 331 {
		if r, err = s.command("PASS %s", password); err != nil {
			return err
		}
	}
	if !r.positive() {
		return fmt.Errorf("%w: %s", ErrAuthenticationFailed, r.text())
	}
	return nil
}

// enterJESMode switches the session to JES filetype so that STOR submits a
// job, RETR fetches spool output and LIST/NLST walk the job queue. The
// listing stays scoped to the logged-in owner; job name and status filters
// are widened.
func (s *session) enterJESMode() error {
	r, err := s.command("SITE filetype=jes jesjobname=* jesstatus=ALL")
	if err != nil {
		return err
	}
	if !r.positive() {
		return fmt.Errorf("%w: %s", ErrSiteRejected, r.text())
	}
	return nil
}

func (s *session) typeASCII() error {
	r, err := s.command("TYPE A")
	if err != nil {
		return err
	}
	if !r.positive() {
		return fmt.Errorf("failed to set ASCII mode: %s", r.text())
	}
	return nil
}

// storJob uploads the job text and returns the final transfer reply, which
// carries the JES acknowledgement lines. A refused transfer request comes
// back as a non-preliminary reply with a nil error so the caller can report
// the server's own words.
func (s *session) storJob(name string, jcl io.Reader) (reply, error) {
	data, err := s.openDataConn()
	if err != nil {
		return reply{}, err
	}

	r, err := s.command("STOR %s", name)
	if err != nil {
		data.Close()
		return reply{}, err
	}
	if !r.preliminary() {
		data.Close()
		return r, nil
	}

	data.SetWriteDeadline(time.Now().Add(sessionTimeout * 2))
	_, copyErr := io.Copy(data, jcl)
	data.Close() // EOF tells the server the job text is complete
	if copyErr != nil {
		return reply{}, fmt.Errorf("failed to send job text: %w", copyErr)
	}

	return s.readReply()
}

// transferLines runs a directory-style command (LIST, NLST) and collects the
// data-channel lines. An empty spool answers the transfer request with a
// refusal, which is reported as an empty listing, not an error.
func (s *session) transferLines(verb, arg string) ([]string, error) {
	data, err := s.openDataConn()
	if err != nil {
		return nil, err
	}
	defer data.Close()

	cmd := verb
	if arg != "" {
		cmd = verb + " " + arg
	}
	r, err := s.command("%s", cmd)
	if err != nil {
		return nil, err
	}
	if !r.preliminary() {
		return nil, nil
	}

	data.SetReadDeadline(time.Now().Add(sessionTimeout * 2))
	lines := make([]string, 0, 64)
	scanner := bufio.NewScanner(data)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read listing: %w", err)
	}

	if _, err := s.readReply(); err != nil {
		return nil, err
	}
	return lines, nil
}

func (s *session) nameList(pattern string) ([]string, error) {
	return s.transferLines("NLST", pattern)
}

func (s *session) list(pattern string) ([]string, error) {
	return s.transferLines("LIST", pattern)
}

// retrieve streams a spool file into w. ok=false with a nil error means the
// server refused the retrieval (job still running or unknown), which the
// poller treats as "not ready yet" rather than as a failure.
func (s *session) retrieve(name string, w io.Writer) (bool, error) {
	data, err := s.openDataConn()
	if err != nil {
		return false, err
	}

	r, err := s.command("RETR %s", name)
	if err != nil {
		data.Close()
		return false, err
	}
	if !r.preliminary() {
		data.Close()
		return false, nil
	}

	data.SetReadDeadline(time.Now().Add(sessionTimeout * 2))
	_, copyErr := io.Copy(w, data)
	data.Close()

	end, err := s.readReply()
	if copyErr != nil {
		return false, fmt.Errorf("failed to read job log: %w", copyErr)
	}
	if err != nil {
		return false, err
	}
	return end.positive(), nil
}

func (s *session) delete(name string) error {
	r, err := s.command("DELE %s", name)
	if err != nil {
		return err
	}
	if !r.positive() {
		return fmt.Errorf("server refused to delete %s: %s", name, r.text())
	}
	return nil
}

// openDataConn negotiates a passive-mode data connection; the client dials,
// nothing listens on the client side.
func (s *session) openDataConn() (net.Conn, error) {
	r, err := s.command("PASV")
	if err != nil {
		return nil, err
	}
	if !r.positive() {
		return nil, fmt.Errorf("PASV refused: %s", r.text())
	}

	addr, err := parsePASV(r.text())
	if err != nil {
		return nil, err
	}

	conn, err := net.DialTimeout("tcp", addr, sessionTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect data channel: %w", err)
	}
	return conn, nil
}

func (s *session) command(format string, args ...interface{}) (reply, error) {
	if err := s.send(format, args...); err != nil {
		return reply{}, err
	}
	return s.readReply()
}

func (s *session) send(format string, args ...interface{}) error {
	cmd := fmt.Sprintf(format, args...)
	s.conn.SetWriteDeadline(time.Now().Add(sessionTimeout))
	if _, err := fmt.Fprintf(s.conn, "%s\r\n", cmd); err != nil {
		return fmt.Errorf("failed to send command: %w", err)
	}
	return nil
}

// readReply reads one control reply. Multi-line replies ("NNN-" opener) run
// until a line opening with the same code and a space. EOF on the control
// channel and the 421 shutdown reply both surface as ErrServerClosed.
func (s *session) readReply() (reply, error) {
	s.conn.SetReadDeadline(time.Now().Add(sessionTimeout))
	line, err := s.reader.ReadString('\n')
	if err != nil {
		return reply{}, replyReadError(err)
	}
	line = strings.TrimRight(line, "\r\n")
	if len(line) < 3 {
		return reply{}, fmt.Errorf("malformed server reply: %q", line)
	}
	code, err := strconv.Atoi(line[:3])
	if err != nil {
		return reply{}, fmt.Errorf("malformed server reply: %q", line)
	}

	r := reply{code: code, lines: []string{line}}
	if len(line) > 3 && line[3] == '-' {
		terminator := line[:3] + " "
		for {
			s.conn.SetReadDeadline(time.Now().Add(sessionTimeout))
			next, err := s.reader.ReadString('\n')
			if err != nil {
				return reply{}, replyReadError(err)
			}
			next = strings.TrimRight(next, "\r\n")
			r.lines = append(r.lines, next)
			if strings.HasPrefix(next, terminator) {
				break
			}
		}
	}

	if r.code == 421 {
		return r, fmt.Errorf("%w: %s", ErrServerClosed, r.text())
	}
	return r, nil
}

func replyReadError(err error) error {
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %v", ErrServerClosed, err)
	}
	return fmt.Errorf("failed to read server reply: %w", err)
}

func (s *session) quit() error {
	s.send("QUIT")
	if err := s.conn.Close(); err != nil {
		return fmt.Errorf("failed to close connection: %w", err)
	}
	return nil
}

func parsePASV(resp string) (string, error) {
	// Parse: 227 Entering Passive Mode (h1,h2,h3,h4,p1,p2)
	start := strings.Index(resp, "(")
	end := strings.Index(resp, ")")
	if start == -1 || end == -1 {
		return "", fmt.Errorf("invalid PASV response: %s", resp)
	}

	parts := strings.Split(resp[start+1:end], ",")
	if len(parts) != 6 {
		return "", fmt.Errorf("invalid PASV response: %s", resp)
	}

	host := strings.Join(parts[:4], ".")
	p1, err := strconv.Atoi(strings.TrimSpace(parts[4]))
	if err != nil {
		return "", fmt.Errorf("invalid PASV port: %s", resp)
	}
	p2, err := strconv.Atoi(strings.TrimSpace(parts[5]))
	if err != nil {
		return "", fmt.Errorf("invalid PASV port: %s", resp)
	}
	port := p1*256 + p2

	return fmt.Sprintf("%s:%d", host, port), nil
}
