package engine

// Queue is the flat, self-extending worklist of pending commands. Follow-ups
// returned by a command are inserted at the front as one contiguous block;
// Seq is not itself a Cmd, so a queue can never hold another queue.
type Queue struct {
	cmds []Cmd
}

// IsEmpty reports whether nothing is pending.
func (q *Queue) IsEmpty() bool { return len(q.cmds) == 0 }

// Len returns the number of pending commands.
func (q *Queue) Len() int { return len(q.cmds) }

// PeekNext returns the command Step would run next.
func (q *Queue) PeekNext() Cmd {
	require(!q.IsEmpty(), "Queue.PeekNext", "queue is empty")
	return q.cmds[0]
}

// Step removes the front command, executes it and inserts its follow-ups
// at the front. It returns the executed command.
func (q *Queue) Step(g *Game) Cmd {
	require(!q.IsEmpty(), "Queue.Step", "queue is empty")
	c := q.cmds[0]
	q.cmds[0] = nil
	q.cmds = q.cmds[1:]

	q.Prepend(c.Execute(g)...)
	return c
}

// Insert adds seq as one ordered block, at the front or at the back.
// Nil entries are dropped.
func (q *Queue) Insert(seq Seq, front bool) {
	block := make([]Cmd, 0, len(seq))
	for _, c := range seq {
		if c != nil {
			block = append(block, c)
		}
	}
	if len(block) == 0 {
		return
	}
	if front {
		q.cmds = append(block, q.cmds...)
	} else {
		q.cmds = append(q.cmds, block...)
	}
}

// Append queues commands after everything already pending.
func (q *Queue) Append(cmds ...Cmd) { q.Insert(cmds, false) }

// Prepend queues commands before everything already pending.
func (q *Queue) Prepend(cmds ...Cmd) { q.Insert(cmds, true) }

// Each visits pending commands front to back.
func (q *Queue) Each(fn func(Cmd)) {
	for _, c := range q.cmds {
		fn(c)
	}
}
