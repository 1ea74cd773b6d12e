package ogre

// Mesh dialect chunk ids.
const (
	MHeader                    uint16 = 0x1000
	MMesh                      uint16 = 0x3000
	MSubmesh                   uint16 = 0x4000
	MSubmeshOperation          uint16 = 0x4010
	MSubmeshBoneAssignment     uint16 = 0x4100
	MSubmeshTextureAlias       uint16 = 0x4200
	MGeometry                  uint16 = 0x5000
	MGeometryVertexDeclaration uint16 = 0x5100
	MGeometryVertexElement     uint16 = 0x5110
	MGeometryVertexBuffer      uint16 = 0x5200
	MGeometryVertexBufferData  uint16 = 0x5210
	MMeshSkeletonLink          uint16 = 0x6000
	MMeshBoneAssignment        uint16 = 0x7000
	MMeshLOD                   uint16 = 0x8000
	MMeshLODUsage              uint16 = 0x8100
	MMeshLODManual             uint16 = 0x8110
	MMeshLODGenerated          uint16 = 0x8120
	MMeshBounds                uint16 = 0x9000
	MSubmeshNameTable          uint16 = 0xA000
	MSubmeshNameTableElement   uint16 = 0xA100
	MEdgeLists                 uint16 = 0xB000
	MEdgeListLOD               uint16 = 0xB100
	MEdgeGroup                 uint16 = 0xB110
	MPoses                     uint16 = 0xC000
	MPose                      uint16 = 0xC100
	MPoseVertex                uint16 = 0xC111
	MAnimations                uint16 = 0xD000
	MAnimation                 uint16 = 0xD100
	MAnimationBaseInfo         uint16 = 0xD105
	MAnimationTrack            uint16 = 0xD110
	MAnimationMorphKeyframe    uint16 = 0xD111
	MAnimationPoseKeyframe     uint16 = 0xD112
	MAnimationPoseRef          uint16 = 0xD113
	MTableExtremes             uint16 = 0xE000
)

// Skeleton dialect chunk ids.
const (
	SkeletonHeader                 uint16 = 0x1000
	SkeletonBlendMode              uint16 = 0x1010
	SkeletonBone                   uint16 = 0x2000
	SkeletonBoneParent             uint16 = 0x3000
	SkeletonAnimation              uint16 = 0x4000
	SkeletonAnimationBaseInfo      uint16 = 0x4010
	SkeletonAnimationTrack         uint16 = 0x4100
	SkeletonAnimationTrackKeyframe uint16 = 0x4110
	SkeletonAnimationLink          uint16 = 0x5000
)

// RootID is the id of the synthetic chunk that owns every top-level chunk.
const RootID uint16 = 0

var meshChunkNames = map[uint16]string{
	RootID:                     "[root]",
	MHeader:                    "M_HEADER",
	MMesh:                      "M_MESH",
	MSubmesh:                   "M_SUBMESH",
	MSubmeshOperation:          "M_SUBMESH_OPERATION",
	MSubmeshBoneAssignment:     "M_SUBMESH_BONE_ASSIGNMENT",
	MSubmeshTextureAlias:       "M_SUBMESH_TEXTURE_ALIAS",
	MGeometry:                  "M_GEOMETRY",
	MGeometryVertexDeclaration: "M_GEOMETRY_VERTEX_DECLARATION",
	MGeometryVertexElement:     "M_GEOMETRY_VERTEX_ELEMENT",
	MGeometryVertexBuffer:      "M_GEOMETRY_VERTEX_BUFFER",
	MGeometryVertexBufferData:  "M_GEOMETRY_VERTEX_BUFFER_DATA",
	MMeshSkeletonLink:          "M_MESH_SKELETON_LINK",
	MMeshBoneAssignment:        "M_MESH_BONE_ASSIGNMENT",
	MMeshLOD:                   "M_MESH_LOD",
	MMeshLODUsage:              "M_MESH_LOD_USAGE",
	MMeshLODManual:             "M_MESH_LOD_MANUAL",
	MMeshLODGenerated:          "M_MESH_LOD_GENERATED",
	MMeshBounds:                "M_MESH_BOUNDS",
	MSubmeshNameTable:          "M_SUBMESH_NAME_TABLE",
	MSubmeshNameTableElement:   "M_SUBMESH_NAME_TABLE_ELEMENT",
	MEdgeLists:                 "M_EDGE_LISTS",
	MEdgeListLOD:               "M_EDGE_LIST_LOD",
	MEdgeGroup:                 "M_EDGE_GROUP",
	MPoses:                     "M_POSES",
	MPose:                      "M_POSE",
	MPoseVertex:                "M_POSE_VERTEX",
	MAnimations:                "M_ANIMATIONS",
	MAnimation:                 "M_ANIMATION",
	MAnimationBaseInfo:         "M_ANIMATION_BASEINFO",
	MAnimationTrack:            "M_ANIMATION_TRACK",
	MAnimationMorphKeyframe:    "M_ANIMATION_MORPH_KEYFRAME",
	MAnimationPoseKeyframe:     "M_ANIMATION_POSE_KEYFRAME",
	MAnimationPoseRef:          "M_ANIMATION_POSE_REF",
	MTableExtremes:             "M_TABLE_EXTREMES",
}

var skeletonChunkNames = map[uint16]string{
	RootID:                         "[root]",
	SkeletonHeader:                 "SKELETON_HEADER",
	SkeletonBlendMode:              "SKELETON_BLENDMODE",
	SkeletonBone:                   "SKELETON_BONE",
	SkeletonBoneParent:             "SKELETON_BONE_PARENT",
	SkeletonAnimation:              "SKELETON_ANIMATION",
	SkeletonAnimationBaseInfo:      "SKELETON_ANIMATION_BASEINFO",
	SkeletonAnimationTrack:         "SKELETON_ANIMATION_TRACK",
	SkeletonAnimationTrackKeyframe: "SKELETON_ANIMATION_TRACK_KEYFRAME",
	SkeletonAnimationLink:          "SKELETON_ANIMATION_LINK",
}

// ChunkName returns the symbolic name of a chunk id in the given dialect.
func ChunkName(d Dialect, id uint16) string {
	names := meshChunkNames
	if d == DialectSkeleton {
		names = skeletonChunkNames
	}
	if n, ok := names[id]; ok {
		return n
	}
	return "[unknown-id]"
}
