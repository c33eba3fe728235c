// Package game implements the shared blackjack table.
//
// The main type is Table, a mutex-guarded state machine that owns the
// seated players, the dealer hand, the deck, the bet ledger and the turn
// order. Every inbound event (Join, SetName, PlaceBet, Act, Leave) runs to
// completion under the table lock and, when accepted, publishes a Snapshot
// to every registered Observer.
//
// # Round lifecycle
//
//	waiting -> betting -> playing -> finished -> betting ...
//
// The first player to join opens betting. Once MinBettors players have a
// bet down, the deal is scheduled after RoundStartDelay. Players act in bet
// placement order; when the last turn ends the dealer draws to 17, the round
// is settled and the table returns to betting after ResultDwell.
//
// # Deterministic Testing
//
// Inject a seeded RNG and a mock clock, or stack the deck outright:
//
//	clock := quartz.NewMock(t)
//	table := game.NewTable(logger, clock, randutil.New(42),
//	    game.WithDeckFactory(func(*rand.Rand) *deck.Deck {
//	        return deck.Stacked(deck.MustParseCards("10h 7c As Kd 9s 9h")...)
//	    }))
//
// Scheduled transitions fire when the mock clock is advanced past them.
package game
