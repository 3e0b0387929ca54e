package document

// MergeRecursive merges overlay onto base and returns a new Map.
//
// For every overlay key, two maps are merged recursively; any other pair is
// resolved by taking the overlay value as a whole, so sequences are replaced
// and never concatenated. Base-only keys keep their base order and
// overlay-only keys are appended in overlay order. Neither input is modified.
func MergeRecursive(base, overlay *Map) *Map {
	if base == nil {
		base = NewMap()
	}
	result := base.Clone()
	if overlay == nil {
		return result
	}

	for _, key := range overlay.keys {
		ov := overlay.values[key]
		if om, ok := ov.(*Map); ok {
			if bm, ok := result.values[key].(*Map); ok {
				result.Set(key, MergeRecursive(bm, om))
				continue
			}
		}
		result.Set(key, cloneValue(ov))
	}
	return result
}

// MergeAll folds MergeRecursive over layers from left to right.
func MergeAll(layers ...*Map) *Map {
	result := NewMap()
	for _, layer := range layers {
		result = MergeRecursive(result, layer)
	}
	return result
}
