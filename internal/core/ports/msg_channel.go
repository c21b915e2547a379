package ports

import "context"

// MsgChannel is the message-passing transport the extension bridge forwards
// calls over. Incoming carries raw messages until the channel is closed.
type MsgChannel interface {
	Post(ctx context.Context, msg []byte) error
	Incoming() <-chan []byte
	Close() error
}
