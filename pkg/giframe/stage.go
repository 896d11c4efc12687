package giframe

import "fmt"

// Stage is the position of a GIFrame in its decoding workflow. Stages only
// ever move forward.
type Stage int

const (
	StageNone Stage = iota
	// StageInit: the header has been parsed.
	StageInit
	// StageMeta: the target frame's descriptor is known.
	StageMeta
	// StagePixel: the target frame's pixels are decoded.
	StagePixel
	// StageDone: the encoder produced the result.
	StageDone
	// StageAlready is entered by the first update after StageDone.
	StageAlready
)

func (s Stage) String() string {
	switch s {
	case StageNone:
		return "none"
	case StageInit:
		return "init"
	case StageMeta:
		return "decode-meta"
	case StagePixel:
		return "decode-pixel"
	case StageDone:
		return "done"
	case StageAlready:
		return "already-done"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}
