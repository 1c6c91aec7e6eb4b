// Package dataset reads job text from z/OS datasets over plain FTP. This is
// a separate session type from the JES gateway: the default file view serves
// PDS members, the JES view serves the spool.
package dataset

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jlaffaye/ftp"
)

const ftpTimeout = 30 * time.Second

type Client struct {
	host     string
	port     int
	user     string
	password string
	conn     *ftp.ServerConn
}

func NewClient(host string, port int, user, password string) *Client {
	return &Client{
		host:     host,
		port:     port,
		user:     user,
		password: password,
	}
}

func (c *Client) Connect() error {
	addr := fmt.Sprintf("%s:%d", c.host, c.port)

	conn, err := ftp.Dial(addr, ftp.DialWithTimeout(ftpTimeout))
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", addr, err)
	}

	if err := conn.Login(c.user, c.password); err != nil {
		conn.Quit()
		return fmt.Errorf("login failed: %w", err)
	}

	c.conn = conn
	return nil
}

func (c *Client) Close() error {
	if c.conn != nil {
		if err := c.conn.Quit(); err != nil {
			return fmt.Errorf("failed to close connection: %w", err)
		}
		c.conn = nil
	}
	return nil
}

// ReadMember fetches one PDS member as text. ASCII mode makes the server
// convert from EBCDIC.
func (c *Client) ReadMember(dataset, member string) ([]byte, error) {
	if c.conn == nil {
		return nil, fmt.Errorf("not connected")
	}

	if err := c.conn.Type(ftp.TransferTypeASCII); err != nil {
		return nil, fmt.Errorf("failed to set ASCII mode: %w", err)
	}

	// z/OS FTP: retrieve 'DATASET(MEMBER)'
	dsn := fmt.Sprintf("'%s(%s)'", strings.Trim(dataset, "'"), member)
	reader, err := c.conn.Retr(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", dsn, err)
	}
	defer reader.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, reader); err != nil {
		return nil, fmt.Errorf("failed to read content: %w", err)
	}
	return buf.Bytes(), nil
}

// ParseDSN splits a DATASET(MEMBER) reference, with or without the quoting
// shells force on it.
func ParseDSN(dsn string) (dataset, member string, err error) {
	dsn = trimQuotes(dsn)

	start := -1
	end := -1
	for i, c := range dsn {
		if c == '(' {
			start = i
		} else if c == ')' {
			end = i
		}
	}

	if start == -1 || end == -1 || end <= start+1 {
		return "", "", fmt.Errorf("invalid dataset format: %s (expected DATASET(MEMBER))", dsn)
	}

	dataset = dsn[:start]
	member = dsn[start+1 : end]
	return dataset, member, nil
}

func trimQuotes(s string) string {
	if len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		return s[1 : len(s)-1]
	}
	return s
}
