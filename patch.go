package perfsync

// PatchKeyResultProgress sets CurrentValue of the key result krID wherever it
// appears in goals. When nothing matches it returns goals itself and false.
// Otherwise it returns a new slice; goals that do not own the key result are
// copied as-is and keep sharing their KeyResults.
func PatchKeyResultProgress(goals []Goal, krID int64, value float64) ([]Goal, bool) {
	matched := false
	var out []Goal
	for i, goal := range goals {
		idx := keyResultIndex(goal.KeyResults, krID)
		if idx < 0 {
			continue
		}
		if !matched {
			matched = true
			out = make([]Goal, len(goals))
			copy(out, goals)
		}
		krs := make([]KeyResult, len(goal.KeyResults))
		copy(krs, goal.KeyResults)
		krs[idx].CurrentValue = value
		out[i].KeyResults = krs
	}
	if !matched {
		return goals, false
	}
	return out, true
}

func keyResultIndex(krs []KeyResult, id int64) int {
	for i, kr := range krs {
		if kr.ID == id {
			return i
		}
	}
	return -1
}
