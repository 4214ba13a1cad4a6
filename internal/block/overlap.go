package block

// FindConflicts returns the ids of every block in existing whose interval
// intersects candidate's, skipping excludeID. Ids keep the order of existing.
func FindConflicts(candidate TimeBlock, existing []TimeBlock, excludeID string) []string {
	start := candidate.StartTotalMin()
	end := candidate.EndTotalMin()

	var ids []string
	for _, b := range existing {
		if excludeID != "" && b.ID == excludeID {
			continue
		}
		if IntervalsOverlap(start, end, b.StartTotalMin(), b.EndTotalMin()) {
			ids = append(ids, b.ID)
		}
	}
	return ids
}

// FirstOverlap returns the first pair of distinct blocks that overlap.
func FirstOverlap(blocks []TimeBlock) (a, b TimeBlock, found bool) {
	for i := 0; i < len(blocks); i++ {
		for j := i + 1; j < len(blocks); j++ {
			if blocks[i].Overlaps(blocks[j]) {
				return blocks[i], blocks[j], true
			}
		}
	}
	return TimeBlock{}, TimeBlock{}, false
}
