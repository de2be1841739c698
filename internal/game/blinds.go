package game

import "fmt"

// BlindLevel is a small blind / big blind pairing
type BlindLevel struct {
	Small int
	Big   int
}

// BlindLevels are the fixed stakes a table can be configured with or
// moved to via ChangeBlindLevel.
var BlindLevels = []BlindLevel{
	{Small: 1, Big: 2},
	{Small: 5, Big: 10},
	{Small: 50, Big: 100},
	{Small: 500, Big: 1000},
	{Small: 1000, Big: 2000},
	{Small: 5000, Big: 10000},
}

// BuyIn returns the standard buy-in for the level, 100 big blinds
func (b BlindLevel) BuyIn() int {
	return b.Big * 100
}

// String returns the stakes representation, e.g. "5/10"
func (b BlindLevel) String() string {
	return fmt.Sprintf("%d/%d", b.Small, b.Big)
}
