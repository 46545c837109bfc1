package world

import (
	"sort"

	"gonum.org/v1/gonum/spatial/kdtree"

	"connector-align/internal/align"
	"connector-align/internal/mathutil"
)

// entityPoint is a kd-tree entry keyed by entity position.
type entityPoint struct {
	pos mathutil.Vec3
	id  align.EntityID
}

func (p entityPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	return p.pos[d] - c.(entityPoint).pos[d]
}

func (p entityPoint) Dims() int { return 3 }

// Distance is squared Euclidean, as the kd-tree keepers expect.
func (p entityPoint) Distance(c kdtree.Comparable) float64 {
	return p.pos.Sub(c.(entityPoint).pos).LenSq()
}

type entityPoints []entityPoint

func (p entityPoints) Index(i int) kdtree.Comparable         { return p[i] }
func (p entityPoints) Len() int                              { return len(p) }
func (p entityPoints) Pivot(d kdtree.Dim) int                { return entityPlane{entityPoints: p, Dim: d}.Pivot() }
func (p entityPoints) Slice(start, end int) kdtree.Interface { return p[start:end] }

type entityPlane struct {
	kdtree.Dim
	entityPoints
}

func (p entityPlane) Less(i, j int) bool {
	return p.entityPoints[i].pos[p.Dim] < p.entityPoints[j].pos[p.Dim]
}
func (p entityPlane) Pivot() int { return kdtree.Partition(p, kdtree.MedianOfMedians(p)) }
func (p entityPlane) Slice(start, end int) kdtree.SortSlicer {
	p.entityPoints = p.entityPoints[start:end]
	return p
}
func (p entityPlane) Swap(i, j int) {
	p.entityPoints[i], p.entityPoints[j] = p.entityPoints[j], p.entityPoints[i]
}

// spatialIndex is rebuilt lazily after anything moves.
type spatialIndex struct {
	tree  *kdtree.Tree
	dirty bool
}

func (s *spatialIndex) rebuild(points entityPoints) {
	s.tree = kdtree.New(points, false)
	s.dirty = false
}

// within returns the ids of entries inside sphere, ordered by id.
func (s *spatialIndex) within(sphere mathutil.Sphere) []align.EntityID {
	if s.tree == nil || s.tree.Root == nil {
		return nil
	}
	keeper := kdtree.NewDistKeeper(sphere.Radius * sphere.Radius)
	s.tree.NearestSet(keeper, entityPoint{pos: sphere.Center})

	ids := make([]align.EntityID, 0, len(keeper.Heap))
	for _, hit := range keeper.Heap {
		if hit.Comparable == nil {
			continue
		}
		p := hit.Comparable.(entityPoint)
		if sphere.Contains(p.pos) {
			ids = append(ids, p.id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
