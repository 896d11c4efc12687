package gif

import "fmt"

const (
	maxCodeWidth   = 12
	codeTableSize  = 1 << maxCodeWidth
	maxMinCodeSize = 8
)

// Diagnostic explains why Unpack did not produce the expected output.
type Diagnostic string

const (
	DiagnosticNone            Diagnostic = ""
	DiagnosticLonger          Diagnostic = "stream longer than expected"
	DiagnosticShorter         Diagnostic = "stream shorter than expected"
	DiagnosticInvalidCode     Diagnostic = "invalid code"
	DiagnosticInvalidCodeSize Diagnostic = "invalid minimum code size"
)

// UnpackResult is the outcome of decompressing one image data stream. When OK
// is false, Output holds whatever was decoded before the failure.
type UnpackResult struct {
	Output     []byte
	OK         bool
	Diagnostic Diagnostic
}

// Unpack decompresses the GIF LZW stream that starts at buf[start] with the
// minimum code size byte and continues through length-prefixed sub-blocks.
// It expects exactly expected output bytes. The error is non-nil only when
// buf ends before the stream does; such calls can be repeated once more of
// the stream is buffered, or ErrFrameTooLarge when expected exceeds
// MaxPixels.
func Unpack(buf []byte, start, expected int) (UnpackResult, error) {
	if expected < 0 || expected > MaxPixels {
		return UnpackResult{}, fmt.Errorf("%w: %d pixels", ErrFrameTooLarge, expected)
	}
	output := make([]byte, expected)
	p := start

	b, err := ReadAt(buf, p)
	if err != nil {
		return UnpackResult{Output: output}, err
	}
	p++
	minCodeSize := int(b)
	if minCodeSize > maxMinCodeSize {
		return UnpackResult{Output: output, Diagnostic: DiagnosticInvalidCodeSize}, nil
	}

	clearCode := 1 << minCodeSize
	eoiCode := clearCode + 1
	nextCode := eoiCode + 1
	codeWidth := minCodeSize + 1
	codeMask := uint32(1)<<codeWidth - 1

	var (
		cur      uint32
		curShift int
		op       int
		table    [codeTableSize]uint32
	)
	prevCode := -1

	b, err = ReadAt(buf, p)
	if err != nil {
		return UnpackResult{Output: output}, err
	}
	p++
	subBlockSize := int(b)

	for {
		for curShift < 16 && subBlockSize != 0 {
			b, err = ReadAt(buf, p)
			if err != nil {
				return UnpackResult{Output: output[:op]}, err
			}
			p++
			cur |= uint32(b) << curShift
			curShift += 8

			if subBlockSize == 1 {
				b, err = ReadAt(buf, p)
				if err != nil {
					return UnpackResult{Output: output[:op]}, err
				}
				p++
				subBlockSize = int(b)
			} else {
				subBlockSize--
			}
		}

		if curShift < codeWidth {
			break
		}

		code := int(cur & codeMask)
		cur >>= codeWidth
		curShift -= codeWidth

		if code == clearCode {
			nextCode = eoiCode + 1
			codeWidth = minCodeSize + 1
			codeMask = uint32(1)<<codeWidth - 1
			prevCode = -1
			continue
		}
		if code == eoiCode {
			break
		}

		// A code equal to nextCode is the entry about to be defined: the
		// previous string followed by its own first byte.
		chaseCode := code
		if code >= nextCode {
			if code > nextCode || prevCode < 0 {
				return UnpackResult{Output: output[:op], Diagnostic: DiagnosticInvalidCode}, nil
			}
			chaseCode = prevCode
		}

		chaseLen := 0
		chase := chaseCode
		for chase > clearCode {
			chase = int(table[chase] >> 8)
			chaseLen++
		}
		k := byte(chase)

		n := chaseLen + 1
		if chaseCode != code {
			n++
		}
		if op+n > expected {
			return UnpackResult{Output: output[:op], Diagnostic: DiagnosticLonger}, nil
		}

		output[op] = k
		op += chaseLen + 1
		end := op
		if chaseCode != code {
			output[op] = k
			op++
		}

		chase = chaseCode
		for i := 0; i < chaseLen; i++ {
			entry := table[chase]
			end--
			output[end] = byte(entry)
			chase = int(entry >> 8)
		}

		if prevCode >= 0 && nextCode < codeTableSize {
			table[nextCode] = uint32(prevCode)<<8 | uint32(k)
			nextCode++
			if nextCode >= int(codeMask)+1 && codeWidth < maxCodeWidth {
				codeWidth++
				codeMask = codeMask<<1 | 1
			}
		}
		prevCode = code
	}

	if op != expected {
		return UnpackResult{Output: output[:op], Diagnostic: DiagnosticShorter}, nil
	}
	return UnpackResult{Output: output, OK: true}, nil
}
