package host

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Push notification names sent by the host over /api/notifications.
const (
	NoteSetPreference             = "set-preference"
	NoteSetSystemPreference       = "set-system-preference"
	NoteSetWorkspace              = "set-workspace"
	NoteSetWorkspaces             = "set-workspaces"
	NoteSetWorkspaceMeta          = "set-workspace-meta"
	NoteSetWorkspaceMetas         = "set-workspace-metas"
	NoteSetPauseNotificationsInfo = "set-pause-notifications-info"
	NoteShowRestartNotice         = "show-restart-notice"
	NoteShowReloadNotice          = "show-reload-notice"
)

// Notification is one unsolicited host-to-client message.
type Notification struct {
	Name string            `json:"name"`
	Args []json.RawMessage `json:"args"`
}

// NewNotification encodes args into a Notification. It is used by tests and
// by fakes standing in for the host.
func NewNotification(name string, args ...any) (Notification, error) {
	n := Notification{Name: name, Args: make([]json.RawMessage, 0, len(args))}
	for i, arg := range args {
		data, err := json.Marshal(arg)
		if err != nil {
			return Notification{}, fmt.Errorf("encode %s arg %d: %w", name, i, err)
		}
		n.Args = append(n.Args, data)
	}
	return n, nil
}

// Arg decodes positional argument i into dest.
func (n Notification) Arg(i int, dest any) error {
	if i < 0 || i >= len(n.Args) {
		return fmt.Errorf("%s: missing argument %d", n.Name, i)
	}
	if err := json.Unmarshal(n.Args[i], dest); err != nil {
		return fmt.Errorf("%s: decode argument %d: %w", n.Name, i, err)
	}
	return nil
}

// IsNull reports whether argument i is absent or JSON null.
func (n Notification) IsNull(i int) bool {
	if i < 0 || i >= len(n.Args) {
		return true
	}
	return string(n.Args[i]) == "null"
}

// Stream is an open notification subscription. Notifications are returned in
// the order the host sent them.
type Stream struct {
	conn      *websocket.Conn
	ctx       context.Context
	stop      func() bool
	closeOnce sync.Once
}

// Subscribe opens the push notification stream. The stream closes when ctx is
// cancelled.
func (c *Client) Subscribe(ctx context.Context) (*Stream, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	wsURL := *c.baseURL
	switch wsURL.Scheme {
	case "https":
		wsURL.Scheme = "wss"
	default:
		wsURL.Scheme = "ws"
	}
	wsURL = *wsURL.ResolveReference(&url.URL{Path: "/api/notifications"})

	header := http.Header{}
	header.Set("User-Agent", c.userAgent)

	dialer := websocket.Dialer{HandshakeTimeout: requestTimeout}
	conn, resp, err := dialer.DialContext(ctx, wsURL.String(), header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("subscribe: handshake status %d: %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("subscribe: %w", err)
	}

	s := &Stream{conn: conn, ctx: ctx}
	s.stop = context.AfterFunc(ctx, func() { _ = s.Close() })
	return s, nil
}

// Next blocks until the next notification arrives.
func (s *Stream) Next() (Notification, error) {
	var n Notification
	if err := s.conn.ReadJSON(&n); err != nil {
		if ctxErr := s.ctx.Err(); ctxErr != nil {
			return Notification{}, ctxErr
		}
		var closeErr *websocket.CloseError
		if errors.As(err, &closeErr) && closeErr.Code == websocket.CloseNormalClosure {
			return Notification{}, fmt.Errorf("stream closed by host: %w", err)
		}
		return Notification{}, fmt.Errorf("read notification: %w", err)
	}
	return n, nil
}

// Close terminates the stream. It is safe to call more than once.
func (s *Stream) Close() error {
	var err error
	s.closeOnce.Do(func() {
		if s.stop != nil {
			s.stop()
		}
		_ = s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline())
		err = s.conn.Close()
	})
	return err
}

func deadline() time.Time {
	return time.Now().Add(time.Second)
}
