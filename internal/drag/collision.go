package drag

// Region is one droppable area: a column (or any other drop zone) with its
// on-screen rectangle.
type Region struct {
	ID   string
	Rect Rect
}

// ResolveTarget picks the drop target for the current gesture with a
// three-tier priority chain; the first tier producing candidates wins:
//
//  1. regions whose rectangle contains the pointer,
//  2. regions intersecting the dragged item's rectangle,
//  3. the region nearest the dragged rectangle's center.
//
// Pure nearest-center misbehaves for large sparse columns, and containment
// alone loses the target during fast motion when the pointer outruns the
// ghost; the chain keeps targeting precise without dead zones. Ties inside a
// tier resolve to the closest center, then to layout order.
func ResolveTarget(pointer Point, dragged Rect, regions []Region) (Region, bool) {
	if len(regions) == 0 {
		return Region{}, false
	}

	if hit, ok := pickNearest(pointer, regions, func(r Region) bool {
		return r.Rect.Contains(pointer)
	}); ok {
		return hit, true
	}

	if hit, ok := pickLargestOverlap(dragged, regions); ok {
		return hit, true
	}

	hit, _ := pickNearest(dragged.Center(), regions, func(Region) bool { return true })
	return hit, true
}

// pickNearest returns the matching region whose center is closest to p.
func pickNearest(p Point, regions []Region, match func(Region) bool) (Region, bool) {
	best := Region{}
	bestDist := -1
	for _, region := range regions {
		if !match(region) {
			continue
		}
		dist := DistanceSquared(p, region.Rect.Center())
		if bestDist < 0 || dist < bestDist {
			best = region
			bestDist = dist
		}
	}
	return best, bestDist >= 0
}

// pickLargestOverlap returns the region with the biggest intersection with
// the dragged rectangle, closest center breaking ties.
func pickLargestOverlap(dragged Rect, regions []Region) (Region, bool) {
	best := Region{}
	bestArea := 0
	bestDist := -1
	center := dragged.Center()
	for _, region := range regions {
		area := region.Rect.IntersectionArea(dragged)
		if area == 0 {
			continue
		}
		dist := DistanceSquared(center, region.Rect.Center())
		if area > bestArea || (area == bestArea && dist < bestDist) {
			best = region
			bestArea = area
			bestDist = dist
		}
	}
	return best, bestArea > 0
}
