package renderer

import (
	"fmt"
	"image/color"
	"io"

	uv "github.com/charmbracelet/ultraviolet"
)

// Draw paints the framebuffer onto a terminal screen. Each cell shows two
// vertically stacked pixels as an upper half block: foreground is the top
// pixel, background the bottom one. The framebuffer should be twice as tall
// as area.
func (fb *Framebuffer) Draw(scr uv.Screen, area uv.Rectangle) {
	for row := area.Min.Y; row < area.Max.Y; row++ {
		topY := (row - area.Min.Y) * 2
		if topY >= fb.Height {
			break
		}
		botY := topY + 1

		for col := area.Min.X; col < area.Max.X; col++ {
			x := col - area.Min.X
			if x >= fb.Width {
				break
			}

			var bottom color.Color
			if botY < fb.Height {
				bottom = fb.RGBA(x, botY)
			}

			scr.SetCell(col, row, &uv.Cell{
				Content: "▀",
				Width:   1,
				Style: uv.Style{
					Fg: fb.RGBA(x, topY),
					Bg: bottom,
				},
			})
		}
	}
}

// Preview writes a half-block rendition of the framebuffer scaled to the
// given number of terminal columns, keeping the aspect ratio
func (fb *Framebuffer) Preview(w io.Writer, columns int) error {
	if columns <= 0 || fb.Width == 0 || fb.Height == 0 {
		return nil
	}
	columns = min(columns, fb.Width)
	rows := max(1, (fb.Height*columns/fb.Width+1)/2)

	scaled := fb.Resize(columns, rows*2)
	buf := uv.NewScreenBuffer(columns, rows)
	scaled.Draw(buf, uv.Rect(0, 0, columns, rows))

	_, err := fmt.Fprintln(w, buf.Render())
	return err
}
