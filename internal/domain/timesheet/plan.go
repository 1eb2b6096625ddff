package timesheet

// EntryUpdate rewrites an existing unlocked entry in place.
type EntryUpdate struct {
	ID    string
	Input EntryInput
}

// ReplacementPlan is the diff between the stored entry set and an incoming
// one. Locked rows never appear in it: a matching locked row is a no-op
// and a differing one fails the whole plan.
type ReplacementPlan struct {
	Insert    []EntryInput
	Update    []EntryUpdate
	DeleteIDs []string
}

// Mutates reports whether applying the plan changes anything. A plan with
// no effect must not reset an approved timesheet back to draft.
func (p ReplacementPlan) Mutates() bool {
	return len(p.Insert) > 0 || len(p.Update) > 0 || len(p.DeleteIDs) > 0
}

// PlanReplacement computes replace-not-merge semantics over the unlocked
// rows: incoming dates update or insert, unlocked dates missing from the
// payload are deleted, locked rows are immutable.
func PlanReplacement(existing []Entry, incoming []EntryInput) (ReplacementPlan, error) {
	var plan ReplacementPlan

	byDate := make(map[string]Entry, len(existing))
	for _, e := range existing {
		byDate[dateKey(e.EntryDate)] = e
	}

	seen := make(map[string]bool, len(incoming))
	for _, in := range incoming {
		if !in.Hours.IsPositive() {
			return ReplacementPlan{}, ErrNonPositiveHours
		}
		key := dateKey(in.EntryDate)
		if seen[key] {
			return ReplacementPlan{}, ErrDuplicateEntryDate
		}
		seen[key] = true

		current, ok := byDate[key]
		if !ok {
			plan.Insert = append(plan.Insert, in)
			continue
		}
		same := current.Hours.Equal(in.Hours) && current.Notes == in.Notes
		if current.IsLocked {
			if !same {
				return ReplacementPlan{}, ErrLockedEntryChanged
			}
			continue
		}
		if !same {
			plan.Update = append(plan.Update, EntryUpdate{ID: current.ID, Input: in})
		}
	}

	for _, e := range existing {
		if e.IsLocked {
			continue
		}
		if !seen[dateKey(e.EntryDate)] {
			plan.DeleteIDs = append(plan.DeleteIDs, e.ID)
		}
	}

	return plan, nil
}
