package ogre

import "sync"

// Dialect selects between the two chunk grammars of the format.
type Dialect int

const (
	DialectMesh Dialect = iota
	DialectSkeleton
)

func (d Dialect) String() string {
	if d == DialectSkeleton {
		return "skeleton"
	}
	return "mesh"
}

// Grammar maps a chunk id to the set of chunk ids allowed as its direct children.
type Grammar map[uint16]map[uint16]bool

// Allows reports whether child may nest directly under parent.
func (g Grammar) Allows(parent, child uint16) bool {
	return g[parent][child]
}

var (
	grammarOnce     sync.Once
	meshGrammar     Grammar
	skeletonGrammar Grammar
)

// GrammarFor returns the immutable grammar table of a dialect.
// The tables are built on first use.
func GrammarFor(d Dialect) Grammar {
	grammarOnce.Do(buildGrammars)
	if d == DialectSkeleton {
		return skeletonGrammar
	}
	return meshGrammar
}

func set(ids ...uint16) map[uint16]bool {
	m := make(map[uint16]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}
	return m
}

func buildGrammars() {
	meshGrammar = Grammar{
		RootID: set(MMesh),
		MMesh: set(MSubmesh, MGeometry, MMeshSkeletonLink, MMeshBoneAssignment, MMeshLOD,
			MMeshBounds, MSubmeshNameTable, MEdgeLists, MPoses, MAnimations, MTableExtremes),
		MSubmesh:                   set(MGeometry, MSubmeshOperation, MSubmeshBoneAssignment, MSubmeshTextureAlias),
		MGeometry:                  set(MGeometryVertexDeclaration, MGeometryVertexBuffer),
		MGeometryVertexDeclaration: set(MGeometryVertexElement),
		MGeometryVertexBuffer:      set(MGeometryVertexBufferData),
		MMeshLOD:                   set(MMeshLODUsage),
		MMeshLODUsage:              set(MMeshLODManual, MMeshLODGenerated),
		MSubmeshNameTable:          set(MSubmeshNameTableElement),
		MEdgeLists:                 set(MEdgeListLOD),
		MEdgeListLOD:               set(MEdgeGroup),
		MPoses:                     set(MPose),
		MPose:                      set(MPoseVertex),
		MAnimations:                set(MAnimation),
		MAnimation:                 set(MAnimationBaseInfo, MAnimationTrack),
		MAnimationTrack:            set(MAnimationMorphKeyframe, MAnimationPoseKeyframe),
		MAnimationPoseKeyframe:     set(MAnimationPoseRef),
	}
	skeletonGrammar = Grammar{
		RootID: set(SkeletonBlendMode, SkeletonBone, SkeletonBoneParent, SkeletonAnimation, SkeletonAnimationLink),
		SkeletonAnimation: set(SkeletonAnimationTrack, SkeletonAnimationBaseInfo,
			SkeletonAnimationTrackKeyframe),
	}
}
