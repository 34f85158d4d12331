// Package bridge connects the queues to the external linguistic engine over
// its line-based telnet protocol.
package bridge

import (
	"bufio"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// NothingSentinel is the engine's "nothing found" reply marker; it must
// never be delivered to chat.
const NothingSentinel = "*NOTHING*"

// Client wraps one engine connection. One command line out, one (or a fixed
// number of) response lines back. Not safe for concurrent use; the inbound
// worker owns it exclusively.
type Client struct {
	conn     net.Conn
	reader   *bufio.Reader
	coreNick string
}

// Dial opens a connection to the engine.
func Dial(addr string, timeout time.Duration) (*Client, error) {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, fmt.Errorf("engine dial failed: %w", err)
	}
	return NewClient(conn), nil
}

// NewClient wraps an established connection, used directly by tests.
func NewClient(conn net.Conn) *Client {
	return &Client{conn: conn, reader: bufio.NewReader(conn)}
}

// Close abandons the connection. Safe to call from another goroutine to
// unblock a worker stuck in I/O.
func (c *Client) Close() error {
	return c.conn.Close()
}

// CoreNick is the engine's current display name, tracked from identify and
// query responses.
func (c *Client) CoreNick() string {
	return c.coreNick
}

// Login performs the banner/username/prompt/password/prompt exchange.
func (c *Client) Login(username, password string) error {
	if _, err := c.readLine(); err != nil {
		return err
	}
	if err := c.writeLine(username); err != nil {
		return err
	}
	if _, err := c.readLine(); err != nil {
		return err
	}
	if err := c.writeLine(password); err != nil {
		return err
	}
	if _, err := c.readLine(); err != nil {
		return err
	}
	return nil
}

// Identify asks the engine for its current display name.
func (c *Client) Identify() (string, error) {
	if err := c.writeLine(".DR identify"); err != nil {
		return "", err
	}
	if _, err := c.readLine(); err != nil {
		return "", err
	}
	line, err := c.readLine()
	if err != nil {
		return "", err
	}
	c.setCoreNick(line)
	return c.coreNick, nil
}

// SwitchNick sets the engine's disguise nickname.
func (c *Client) SwitchNick(name string) error {
	if err := c.writeLine(".RN " + name); err != nil {
		return err
	}
	_, err := c.readLine()
	return err
}

// Query runs one utterance through the engine. Spaces in the username are
// flattened to underscores on the wire. The response line carries a found
// flag and the reply text; a trailing line refreshes the engine's nick.
func (c *Client) Query(username, text string) (found bool, reply string, err error) {
	sanitized := strings.ReplaceAll(username, " ", "_")
	if err := c.writeLine(".DR " + sanitized + " " + c.coreNick + " " + text); err != nil {
		return false, "", err
	}
	line, err := c.readLine()
	if err != nil {
		return false, "", err
	}
	flag, rest, _ := strings.Cut(line, " ")
	found, _ = strconv.ParseBool(flag)
	nickLine, err := c.readLine()
	if err != nil {
		return false, "", err
	}
	c.setCoreNick(nickLine)
	return found, rest, nil
}

// setCoreNick extracts the display name from a "nick => '<name>'" line.
func (c *Client) setCoreNick(line string) {
	const marker = "nick => '"
	pos := strings.Index(line, marker)
	if pos < 0 {
		return
	}
	rest := line[pos+len(marker):]
	if end := strings.Index(rest, "'"); end >= 0 {
		c.coreNick = rest[:end]
	}
}

func (c *Client) readLine() (string, error) {
	line, err := c.reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("engine read failed: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (c *Client) writeLine(line string) error {
	if _, err := c.conn.Write([]byte(line + "\n")); err != nil {
		return fmt.Errorf("engine write failed: %w", err)
	}
	return nil
}
