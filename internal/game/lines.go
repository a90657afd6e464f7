package game

// lines lists every winning sequence on the 5x5 grid in row-major indices:
// five rows, five columns, then both diagonals.
var lines = [12][GridWidth]int{
	{0, 1, 2, 3, 4},
	{5, 6, 7, 8, 9},
	{10, 11, 12, 13, 14},
	{15, 16, 17, 18, 19},
	{20, 21, 22, 23, 24},
	{0, 5, 10, 15, 20},
	{1, 6, 11, 16, 21},
	{2, 7, 12, 17, 22},
	{3, 8, 13, 18, 23},
	{4, 9, 14, 19, 24},
	{0, 6, 12, 18, 24},
	{4, 8, 12, 16, 20},
}

// CountCompletedLines counts the lines whose five cells are all in selected.
// Out-of-range indices and duplicates are ignored.
func CountCompletedLines(selected []int) int {
	var marked [BoardSize]bool
	for _, i := range selected {
		if i >= 0 && i < BoardSize {
			marked[i] = true
		}
	}
	count := 0
	for _, line := range lines {
		complete := true
		for _, i := range line {
			if !marked[i] {
				complete = false
				break
			}
		}
		if complete {
			count++
		}
	}
	return count
}

func HasWon(selected []int) bool {
	return CountCompletedLines(selected) >= LinesToWin
}
