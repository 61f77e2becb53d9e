package tictactoe

// lineCounter tallies marks per player on a set of parallel lines
// (all rows, all columns, or the single diagonal of one kind).
type lineCounter [][2]int

func newLineCounter(lines int) lineCounter {
	return make(lineCounter, lines)
}

// hit records one more mark of player on line and reports whether that line
// is now fully owned by player. Each cell must be counted at most once.
func (that lineCounter) hit(player Mark, line int) bool {
	that[line][player.index()]++

	return that[line][player.index()] == Size
}
