package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/jwendell/gvnc"
)

// writePPM dumps fb as a binary (P6) PPM file, the simplest format that
// needs no external codec: a three-line text header followed by raw
// 8-bit-per-channel RGB triples in row-major order.
func writePPM(path string, fb *gvnc.Framebuffer) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("ppm: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "P6\n%d %d\n255\n", fb.Width(), fb.Height())
	row := make([]byte, fb.Width()*3)
	for y := 0; y < fb.Height(); y++ {
		for x := 0; x < fb.Width(); x++ {
			r, g, b := fb.RGBAt(x, y)
			row[x*3], row[x*3+1], row[x*3+2] = r, g, b
		}
		if _, err := w.Write(row); err != nil {
			return fmt.Errorf("ppm: %w", err)
		}
	}
	return w.Flush()
}
