package stream

import "github.com/jdeng/gogiframe/pkg/giframe"

// Message is sent by the server, as JSON text, on every stage transition and
// when decoding fails.
type Message struct {
	// ID identifies the connection.
	ID       string             `json:"id"`
	Stage    string             `json:"stage"`
	Buffered int                `json:"buffered"`
	Frame    *giframe.FrameInfo `json:"frame,omitempty"`
	Result   string             `json:"result,omitempty"`
	Error    string             `json:"error,omitempty"`
}

func newMessage(id string, g *giframe.GIFrame, e giframe.Event) Message {
	msg := Message{ID: id, Stage: e.Stage().String(), Buffered: g.BufferLength()}
	switch e := e.(type) {
	case giframe.MetaEvent:
		frame := e.Frame
		msg.Frame = &frame
	case giframe.DoneEvent:
		msg.Result = e.Result
	case giframe.AlreadyEvent:
		msg.Result = e.Result
	}
	return msg
}
