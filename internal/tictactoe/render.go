package tictactoe

import (
	"slices"
	"strings"
)

const (
	iconSelected = "＊"
	vertLine     = "｜"
	horiLine     = "ー"
	cross        = "＋"
)

var icons = map[Mark]string{
	Empty:   "　",
	PlayerX: "Ｘ",
	PlayerO: "Ｏ",
}

// Grid flattens the game into a 9x9 grid indexed [row][column].
func Grid(engine *Engine) [Size * Size][Size * Size]Mark {
	var grid [Size * Size][Size * Size]Mark

	for my := range Size {
		for mx := range Size {
			for y := range Size {
				for x := range Size {
					grid[my*Size+y][mx*Size+x] = engine.CellAt(mx, my, x, y)
				}
			}
		}
	}

	return grid
}

// Render draws the board as fixed-width text. Cells of the selected
// sub-board, if any, are drawn with a highlight glyph instead of their mark.
func Render(engine *Engine, selected *Coord) string {
	var out strings.Builder

	separator := strings.Join(slices.Repeat([]string{strings.Repeat(horiLine, Size)}, Size), cross)

	for my := range Size {
		for y := range Size {
			for mx := range Size {
				for x := range Size {
					if selected != nil && *selected == (Coord{X: mx, Y: my}) {
						out.WriteString(iconSelected)
						continue
					}

					out.WriteString(icons[engine.CellAt(mx, my, x, y)])
				}

				if mx < Size-1 {
					out.WriteString(vertLine)
				}
			}

			out.WriteString("\n")
		}

		if my < Size-1 {
			out.WriteString(separator)
			out.WriteString("\n")
		}
	}

	return out.String()
}
