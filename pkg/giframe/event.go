package giframe

// Event is emitted on every stage transition. The concrete types are
// InitEvent, MetaEvent, PixelEvent, DoneEvent and AlreadyEvent.
type Event interface {
	Stage() Stage
}

type InitEvent struct{}

// MetaEvent carries the descriptor of the target frame.
type MetaEvent struct {
	Frame FrameInfo
}

// PixelEvent carries the decoded Width*Height*4 RGBA buffer of the target
// frame. Handlers must not modify it.
type PixelEvent struct {
	Pixels []byte
}

// DoneEvent carries the encoder's result.
type DoneEvent struct {
	Result string
}

// AlreadyEvent repeats the result for an update after completion.
type AlreadyEvent struct {
	Result string
}

func (InitEvent) Stage() Stage    { return StageInit }
func (MetaEvent) Stage() Stage    { return StageMeta }
func (PixelEvent) Stage() Stage   { return StagePixel }
func (DoneEvent) Stage() Stage    { return StageDone }
func (AlreadyEvent) Stage() Stage { return StageAlready }

// Handler receives events synchronously, from inside Feed or Update.
type Handler func(Event)

type subscription struct {
	id      int
	stage   Stage
	all     bool
	handler Handler
}

// Subscribe registers h for every event. The returned function removes it.
func (g *GIFrame) Subscribe(h Handler) (unsubscribe func()) {
	return g.subscribe(subscription{all: true, handler: h})
}

// On registers h for the events of one stage.
func (g *GIFrame) On(stage Stage, h Handler) (unsubscribe func()) {
	return g.subscribe(subscription{stage: stage, handler: h})
}

func (g *GIFrame) subscribe(s subscription) func() {
	g.nextID++
	s.id = g.nextID
	g.subs = append(g.subs, s)
	return func() {
		for i, sub := range g.subs {
			if sub.id == s.id {
				g.subs = append(g.subs[:i:i], g.subs[i+1:]...)
				return
			}
		}
	}
}

// emit calls the handlers registered when the event fired, in order.
func (g *GIFrame) emit(e Event) {
	subs := g.subs
	for _, s := range subs {
		if s.all || s.stage == e.Stage() {
			s.handler(e)
		}
	}
}
