package card

import "testing"

func TestNewDeck_DealsEveryCardExactlyOnce(t *testing.T) {
	d := NewDeck()
	if got := d.Remaining(); got != 52 {
		t.Fatalf("fresh deck has %d cards, want 52", got)
	}

	seen := make(map[Card]bool, 52)
	for _, c := range d.Draw(52) {
		if seen[c] {
			t.Fatalf("card %s dealt twice", c)
		}
		seen[c] = true
	}
	if len(seen) != 52 {
		t.Fatalf("dealt %d distinct cards, want 52", len(seen))
	}
	if d.Remaining() != 0 {
		t.Fatalf("deck not exhausted after dealing all cards")
	}
}

func TestDraw_ConsumesStock(t *testing.T) {
	d := NewDeck()
	first := d.Draw(2)
	second := d.Draw(2)
	for _, a := range first {
		for _, b := range second {
			if a == b {
				t.Fatalf("card %s dealt in both draws", a)
			}
		}
	}
	if got := d.Remaining(); got != 48 {
		t.Fatalf("remaining = %d, want 48", got)
	}
}

func TestDraw_PanicsPastEnd(t *testing.T) {
	d := NewStackedDeck([]Card{{Rank: Ace, Suit: Spade}})
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic drawing past end of stock")
		}
	}()
	d.Draw(2)
}

func TestStackedDeck_DealsInGivenOrder(t *testing.T) {
	stock := []Card{
		{Rank: Ace, Suit: Spade},
		{Rank: King, Suit: Heart},
		{Rank: Two, Suit: Club},
	}
	d := NewStackedDeck(stock)
	for i, want := range stock {
		got := d.Draw(1)[0]
		if got != want {
			t.Fatalf("draw %d = %s, want %s", i, got, want)
		}
	}
}
