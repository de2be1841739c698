package main

import (
	"fmt"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/cardroom/cardroom/internal/deck"
	"github.com/cardroom/cardroom/internal/hand"
)

type CLI struct {
	Cards []string `arg:"" help:"Two to seven cards in compact notation (e.g. As Kd Th 7c 2s)" required:""`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli)

	cards, err := deck.ParseCards(strings.Join(cli.Cards, " "))
	if err != nil {
		fmt.Printf("Invalid cards: %v\n", err)
		ctx.Exit(1)
	}

	best, err := hand.Best(cards)
	if err != nil {
		fmt.Printf("Cannot rank hand: %v\n", err)
		ctx.Exit(1)
	}

	codes := make([]string, len(best.Cards))
	for i, c := range best.Cards {
		codes[i] = c.String()
	}

	fmt.Printf("%s: %s\n", best.Combination, strings.Join(codes, " "))
}
