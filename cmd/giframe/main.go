package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/jdeng/gogiframe/internal/render"
	"github.com/jdeng/gogiframe/internal/source"
	"github.com/jdeng/gogiframe/internal/stream"
	"github.com/jdeng/gogiframe/pkg/giframe"
)

func main() {
	var inputFile = flag.String("input", "", "Input GIF file, http(s) URL or - for stdin (.gz and .zst are decompressed)")
	var outputFile = flag.String("output", "", "Output image file (optional, defaults to input filename with the format's extension; - prints the data URI)")
	var frameIndex = flag.Int("frame", 0, "Index of the frame to extract")
	var formatName = flag.String("format", "jpeg", "Output format: jpeg, png, bmp or tiff")
	var quality = flag.Int("quality", giframe.DefaultQuality, "JPEG quality (1-100)")
	var chunkSize = flag.Int("chunk", source.DefaultChunkSize, "Read size in bytes")
	var maxWidth = flag.Int("max-width", 0, "Scale the output down to at most this width")
	var maxHeight = flag.Int("max-height", 0, "Scale the output down to at most this height")
	var info = flag.Bool("info", false, "Print the logical screen and scanned frame descriptors")
	var listen = flag.String("listen", "", "Serve the websocket decoder on this address instead of decoding a file")
	var pushURL = flag.String("push", "", "Upload the input to a websocket decoder at this ws:// URL")
	flag.Parse()

	if *listen != "" {
		serve(*listen)
		return
	}
	if *inputFile == "" {
		log.Fatal("Input file is required. Use -input flag.")
	}

	format, err := giframe.ParseFormat(*formatName)
	if err != nil {
		log.Fatalf("Invalid -format: %v", err)
	}

	ctx := context.Background()
	src, err := source.Open(ctx, *inputFile, nil)
	if err != nil {
		log.Fatalf("Failed to open input: %v", err)
	}

	var (
		uri   string
		stats source.Stats
	)
	if *pushURL != "" {
		uri, stats, err = push(ctx, src, *pushURL, *frameIndex, *formatName, *quality, *chunkSize, *maxWidth, *maxHeight)
	} else {
		opts := giframe.Options{
			Format:    format,
			Quality:   *quality,
			MaxWidth:  *maxWidth,
			MaxHeight: *maxHeight,
		}
		uri, stats, err = decode(ctx, src, *frameIndex, opts, *chunkSize, *info)
	}
	if cerr := src.Close(); cerr != nil {
		log.Printf("Failed to close input: %v", cerr)
	}
	if err != nil {
		log.Fatalf("Failed to decode %s: %v", src.Name, err)
	}

	printStats(src, stats)
	writeResult(uri, *inputFile, *outputFile, format)
}

// decode feeds src to a GIFrame until the target frame is encoded.
func decode(ctx context.Context, src *source.Source, frameIndex int, opts giframe.Options, chunkSize int, info bool) (string, source.Stats, error) {
	g := giframe.New(frameIndex, opts)
	progress := newProgress(os.Stderr)
	g.Subscribe(progress.handle)

	stats, err := source.Pump(ctx, src, chunkSize, g, g.Done())
	if err != nil {
		return "", stats, err
	}
	uri, err := g.Result()
	if err != nil {
		return "", stats, err
	}

	if info {
		printInfo(g)
	}
	return uri, stats, nil
}

func push(ctx context.Context, src *source.Source, url string, frameIndex int, format string, quality, chunkSize, maxWidth, maxHeight int) (string, source.Stats, error) {
	config := stream.DefaultConfig()
	config.ChunkSize = chunkSize
	config.LogOutput = os.Stderr

	sep := "?"
	if strings.Contains(url, "?") {
		sep = "&"
	}
	url += fmt.Sprintf("%sframe=%d&format=%s&quality=%d&max-width=%d&max-height=%d",
		sep, frameIndex, format, quality, maxWidth, maxHeight)

	res, err := stream.Push(ctx, config, url, src)
	if err != nil {
		return "", source.Stats{}, err
	}
	fmt.Printf("Decoded remotely, connection %s\n", res.ID)
	return res.Result, res.Stats, nil
}

func serve(addr string) {
	config := stream.DefaultConfig()
	srv := stream.NewServer(config)
	log.Printf("Listening on %s%s", addr, config.Path)
	if err := http.ListenAndServe(addr, srv.Handler()); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func printStats(src *source.Source, stats source.Stats) {
	if src.Size < 0 {
		fmt.Printf("Read: %d bytes in %d chunks\n", stats.Read, stats.Chunks)
		return
	}
	fmt.Printf("Total: %d bytes, Read: %d bytes, Used: %.2f%%\n", src.Size, stats.Read, stats.Percent(src.Size))
}

func printInfo(g *giframe.GIFrame) {
	if screen, ok := g.Screen(); ok {
		fmt.Printf("Screen: %dx%d, background %d, global palette %v\n",
			screen.Width, screen.Height, screen.BackgroundIndex, screen.HasGlobalPalette)
		if screen.Looping {
			fmt.Printf("Loop count: %d\n", screen.LoopCount)
		}
	}
	fmt.Printf("Scanned %d frames:\n", g.NumFrames())
	for i := 0; i < g.NumFrames(); i++ {
		f, err := g.FrameInfo(i)
		if err != nil {
			break
		}
		transparent := "none"
		if f.HasTransparency() {
			transparent = fmt.Sprint(f.TransparentIndex)
		}
		fmt.Printf("  Frame %d: %dx%d at (%d,%d), Delay=%dcs, Disposal=%s, Interlaced=%v, Transparent=%s, Data=%d+%d\n",
			i, f.Width, f.Height, f.X, f.Y, f.Delay, f.Disposal, f.Interlaced, transparent, f.DataOffset, f.DataLength)
	}
}

// writeResult stores the image carried by the data URI.
func writeResult(uri, input, output string, format giframe.Format) {
	if output == "-" {
		fmt.Println(uri)
		return
	}

	mime, data, err := render.ParseDataURI(uri)
	if err != nil {
		log.Fatalf("Unexpected result: %v", err)
	}
	if f, ok := render.FormatForMIME(mime); ok {
		format = f
	}
	if output == "" {
		base := filepath.Base(input)
		if input == "-" || strings.Contains(input, "://") {
			base = "frame"
		}
		base = strings.TrimSuffix(strings.TrimSuffix(base, ".gz"), ".zst")
		output = strings.TrimSuffix(base, filepath.Ext(base)) + format.Ext()
	}

	if err := os.WriteFile(output, data, 0o644); err != nil {
		log.Fatalf("Failed to write output file: %v", err)
	}
	fmt.Printf("Successfully extracted frame to %s (%s, %d bytes)\n", output, mime, len(data))
}
