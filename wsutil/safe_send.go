package wsutil

import "log/slog"

// SafeSend delivers data to a client send channel without ever blocking or
// panicking. A full or closed channel drops the message; the write pump owns
// the connection's fate, not the sender.
func SafeSend(ch chan []byte, data []byte) {
	defer func() {
		if r := recover(); r != nil {
			slog.Debug("send to closed channel", "tag", "ws", "recovered", r)
		}
	}()
	select {
	case ch <- data:
	default:
	}
}
