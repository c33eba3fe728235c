package game

import "slices"

// Act applies a playing decision for the player at the front of the turn
// order. Rejected actions leave the table untouched.
func (t *Table) Act(id string, action Action) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, ok := t.players[id]
	if !ok {
		return ErrPlayerNotFound
	}
	if t.phase != PhasePlaying {
		return ErrWrongPhase
	}
	if len(t.turnOrder) == 0 || t.turnOrder[0] != id {
		return ErrOutOfTurn
	}

	switch action {
	case Hit:
		card, err := t.deck.Draw()
		if err != nil {
			t.voidRoundLocked(err)
			t.publishLocked()
			return err
		}
		p.Hand = append(p.Hand, card)
		total := p.Total()
		if total > BlackjackTotal {
			p.Outcome = OutcomeBust
		}
		t.logger.Debug("Player hit", "player", id, "card", card, "total", total)
		if total >= BlackjackTotal {
			t.advanceLocked()
		}

	case Stand:
		t.logger.Debug("Player stood", "player", id, "total", p.Total())
		t.advanceLocked()

	case Double:
		if len(p.Hand) != 2 || p.Chips < p.Bet {
			return ErrCannotDouble
		}
		card, err := t.deck.Draw()
		if err != nil {
			t.voidRoundLocked(err)
			t.publishLocked()
			return err
		}
		p.Chips -= p.Bet
		p.Bet *= 2
		t.bets[id] = p.Bet
		p.Doubled = true
		p.Hand = append(p.Hand, card)
		if p.Total() > BlackjackTotal {
			p.Outcome = OutcomeBust
		}
		t.logger.Debug("Player doubled", "player", id, "card", card, "bet", p.Bet, "total", p.Total())
		t.advanceLocked()

	default:
		return ErrUnknownAction
	}

	t.publishLocked()
	return nil
}

// advanceLocked ends the active player's turn and, once nobody is left to
// act, plays out the dealer and settles.
func (t *Table) advanceLocked() {
	if len(t.turnOrder) > 0 {
		t.turnOrder = t.turnOrder[1:]
	}
	t.skipFinishedLocked()
	if len(t.turnOrder) == 0 {
		t.finishRoundLocked()
	}
}

// skipFinishedLocked drops players at the front who have nothing left to
// decide: anyone holding 21 or more.
func (t *Table) skipFinishedLocked() {
	for len(t.turnOrder) > 0 {
		p, ok := t.players[t.turnOrder[0]]
		if ok && p.Total() < BlackjackTotal {
			return
		}
		t.turnOrder = t.turnOrder[1:]
	}
}

func (t *Table) finishRoundLocked() {
	for Evaluate(t.dealer) < DealerStandsOn {
		card, err := t.deck.Draw()
		if err != nil {
			t.voidRoundLocked(err)
			return
		}
		t.dealer = append(t.dealer, card)
	}

	results := Settle(t.dealer, t.roundPlayersLocked())
	t.phase = PhaseFinished
	t.turnOrder = nil

	t.logger.Info("Round settled", "round", t.round, "dealer", Evaluate(t.dealer), "results", len(results))

	if t.recorder != nil {
		t.recorder.RecordRound(RoundSummary{
			Round:       t.round,
			SettledAt:   t.clock.Now(),
			DealerHand:  slices.Clone(t.dealer),
			DealerTotal: Evaluate(t.dealer),
			Results:     results,
		})
	}

	t.scheduleResetLocked()
}

// voidRoundLocked abandons a round the deck could not complete. Every
// stake still on the table goes back to its player.
func (t *Table) voidRoundLocked(err error) {
	t.logger.Error("Round voided", "round", t.round, "error", err)

	for _, p := range t.roundPlayersLocked() {
		p.Chips += p.Bet
		p.Outcome = OutcomeNone
	}
	t.phase = PhaseFinished
	t.turnOrder = nil
	t.scheduleResetLocked()
}

// roundPlayersLocked returns the still-seated players dealt into the round
func (t *Table) roundPlayersLocked() []*Player {
	players := make([]*Player, 0, len(t.participants))
	for _, id := range t.participants {
		if p, ok := t.players[id]; ok {
			players = append(players, p)
		}
	}
	return players
}
