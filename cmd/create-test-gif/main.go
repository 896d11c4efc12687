package main

import (
	"fmt"
	"os"

	"github.com/jdeng/gogiframe/internal/giftest"
)

// createAnimation builds a 16x16 looping animation with three frames: a
// progressive frame, an interlaced frame with a local palette and a
// transparent frame in the lower right quarter.
func createAnimation() []byte {
	palette := make([][3]byte, 16)
	for i := range palette {
		v := byte(i * 17)
		palette[i] = [3]byte{v, 255 - v, v / 2}
	}
	local := [][3]byte{{0, 0, 0}, {255, 255, 255}, {255, 0, 0}, {0, 0, 255}}

	full := func(w, h int, f func(x, y int) byte) []byte {
		indices := make([]byte, 0, w*h)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				indices = append(indices, f(x, y))
			}
		}
		return indices
	}

	file := giftest.File{
		Width:   16,
		Height:  16,
		Palette: palette,
		Loop:    true,
		Comment: "giframe test animation",
		Frames: []giftest.Frame{
			{
				Width:          16,
				Height:         16,
				Indices:        full(16, 16, func(x, y int) byte { return byte((x + y) % 16) }),
				GraphicControl: true,
				Delay:          20,
			},
			{
				Width:          16,
				Height:         16,
				Palette:        local,
				Interlaced:     true,
				Indices:        full(16, 16, func(x, y int) byte { return byte((x/4 + y/4) % 4) }),
				GraphicControl: true,
				Delay:          20,
				Disposal:       1,
			},
			{
				X:              8,
				Y:              8,
				Width:          8,
				Height:         8,
				Indices:        full(8, 8, func(x, y int) byte { return byte((x^y)&1) * 15 }),
				GraphicControl: true,
				Delay:          40,
				Disposal:       2,
				Transparent:    true,
				TransparentIdx: 0,
			},
		},
	}
	return file.Bytes()
}

func createTestGIF(filename, kind string) error {
	var data []byte
	switch kind {
	case "sample":
		data = giftest.Sample()
	case "animation":
		data = createAnimation()
	default:
		return fmt.Errorf("unknown kind %q (want sample or animation)", kind)
	}
	return os.WriteFile(filename, data, 0o644)
}

func main() {
	if len(os.Args) != 2 && len(os.Args) != 3 {
		fmt.Println("Usage: create-test-gif <output-file> [sample|animation]")
		os.Exit(1)
	}

	filename := os.Args[1]
	kind := "sample"
	if len(os.Args) == 3 {
		kind = os.Args[2]
	}
	err := createTestGIF(filename, kind)
	if err != nil {
		fmt.Printf("Error creating test GIF file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Created test GIF file: %s\n", filename)
}
