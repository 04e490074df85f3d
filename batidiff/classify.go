package batidiff

// ClassifyOld sets the status of a building of the old snapshot: it is
// either still there or deleted.
func ClassifyOld(b *Building, cfg *Config) Status {
	switch {
	case !b.IsOuter():
		b.Status = StatusInner
	case b.MinDistance > cfg.MaxDistance(), b.MinDistance > b.Width:
		b.Status = StatusDeleted
	default:
		b.Status = StatusUnchanged
	}
	return b.Status
}

// ClassifyNew sets the status of a building of the new snapshot. A match
// further away than the building's own diagonal is never credible.
func ClassifyNew(b *Building, cfg *Config) Status {
	if !b.IsOuter() {
		b.Status = StatusInner
		return b.Status
	}

	d := b.MinDistance
	switch {
	case d < cfg.MinDistance():
		b.Status = StatusUnchanged
	case d < cfg.MaxDistance():
		b.Status = StatusModified
	default:
		b.Status = StatusNew
	}

	if d > b.Width {
		b.Status = StatusNew
	}
	return b.Status
}
