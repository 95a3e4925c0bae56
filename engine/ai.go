package engine

// PlayAI takes one decision for the force in control. It rushes: the first
// available unit attacks the first hostile it can reach, or else waits on
// a random reachable cell. With nobody left to act it ends the turn.
type PlayAI struct{ cmd }

func (c *PlayAI) Op() Op         { return OpPlayAI }
func (c *PlayAI) String() string { return "play_ai" }

func (c *PlayAI) Execute(g *Game) Seq {
	units := g.AvailableUnits()
	if len(units) == 0 {
		return Seq{&EndTurn{}}
	}

	u := units[0]
	moves := g.MovablePositions(u.ID())
	for _, p := range moves {
		if target, ok := g.HostileInRange(u.ID(), p); ok {
			g.queue.Append(&Action{
				Move: &Move{Unit: u.ID(), Dest: p},
				Act:  NewBasicAttack(u.ID(), target.ID(), AttackActive),
				Mode: ActionDecompose,
			})
			return nil
		}
	}

	dest := moves[g.dice.Intn(len(moves))]
	g.queue.Append(&Action{
		Move: &Move{Unit: u.ID(), Dest: dest},
		Act:  &Stay{Unit: u.ID()},
		Mode: ActionDecompose,
	})
	return nil
}
