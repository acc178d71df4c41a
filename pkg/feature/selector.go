package feature

// SelectNext returns the first feature, in stored order, that is still
// eligible for autonomous work: anything not verified and not waiting on a
// human approval. A feature left in_progress by an interrupted run is
// eligible again, which is what makes the engine naturally resumable.
// Returns nil when the backlog is exhausted.
func SelectNext(features []*Feature) *Feature {
	for _, f := range features {
		if f.IsTerminal() || f.AwaitingApproval() {
			continue
		}
		return f
	}
	return nil
}
