package deck

import "testing"

func TestDeckDealsEachCardOnce(t *testing.T) {
	d := NewSeededDeck(1)

	seen := make(map[Card]bool)
	for i := 0; i < 52; i++ {
		card, ok := d.Draw()
		if !ok {
			t.Fatalf("deck exhausted after %d draws", i)
		}
		if seen[card] {
			t.Fatalf("card %s drawn twice", card.Code())
		}
		seen[card] = true
	}

	if _, ok := d.Draw(); ok {
		t.Error("expected draw to fail on an empty deck")
	}
}

func TestDrawN(t *testing.T) {
	d := NewSeededDeck(1)

	cards, ok := d.DrawN(5)
	if !ok || len(cards) != 5 {
		t.Fatalf("DrawN(5) = %v, %v", cards, ok)
	}
	if d.Remaining() != 47 {
		t.Errorf("Remaining() = %d, want 47", d.Remaining())
	}

	// a short deck refuses the whole request
	if _, ok := d.DrawN(48); ok {
		t.Error("DrawN(48) should fail with 47 cards left")
	}
	if d.Remaining() != 47 {
		t.Errorf("failed DrawN consumed cards: Remaining() = %d", d.Remaining())
	}
}

func TestReshuffleRestoresFullDeck(t *testing.T) {
	d := NewSeededDeck(7)
	d.DrawN(20)

	d.Reshuffle()
	if d.Remaining() != 52 {
		t.Errorf("Remaining() = %d after reshuffle, want 52", d.Remaining())
	}
}

func TestSeededDeckIsDeterministic(t *testing.T) {
	a := NewSeededDeck(42)
	b := NewSeededDeck(42)

	for i := 0; i < 52; i++ {
		ca, _ := a.Draw()
		cb, _ := b.Draw()
		if ca != cb {
			t.Fatalf("draw %d differs: %s vs %s", i, ca.Code(), cb.Code())
		}
	}
}
