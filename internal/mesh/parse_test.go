package mesh

import (
	"bytes"
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"meshopt/internal/ogre"
)

func fullMesh() []byte {
	verts := gridVerts(6)
	for i := range verts {
		verts[i].dif = 0xFF00FF00 + uint32(i)
	}
	shared := geometry(verts, []elem{elemPos, elemNor, elemDif}, []elem{elemTex0})
	own := geometry(gridVerts(4), []elem{elemPos}, []elem{elemNor, elemTex0, elemTex1})
	return meshFile(
		shared,
		submesh("stone", true, fan(6),
			node{id: ogre.MSubmeshOperation, body: body().u16(4).done()},
			boneAssignment(ogre.MSubmeshBoneAssignment, 1, 2, 0.5),
		),
		submesh("grass", false, []uint32{0, 1, 2, 2, 3, 0}, own,
			node{id: ogre.MSubmeshTextureAlias, body: body().str("diffuse").str("grass.png").done()},
		),
		node{id: ogre.MMeshSkeletonLink, body: body().str("hero.skeleton").done()},
		boneAssignment(ogre.MMeshBoneAssignment, 3, 1, 1),
		node{id: ogre.MMeshBounds, body: body().f32(-1, -2, -3, 4, 5, 6, 7).done()},
		node{id: ogre.MSubmeshNameTable, kids: []node{
			{id: ogre.MSubmeshNameTableElement, body: body().u16(0).str("body").done()},
			{id: ogre.MSubmeshNameTableElement, body: body().u16(1).str("cape").done()},
		}},
	)
}

func TestParseModel(t *testing.T) {
	m, err := ParseBytes(fullMesh())
	if err != nil {
		t.Fatal(err)
	}
	if m.Dialect != ogre.DialectMesh || m.Version != 141 {
		t.Errorf("got %s v%d, want mesh v141", m.Dialect, m.Version)
	}
	if len(m.Subs) != 2 {
		t.Fatalf("got %d submeshes, want 2", len(m.Subs))
	}
	if m.Shared == nil || len(m.Shared.Vertices) != 6 {
		t.Fatal("shared geometry missing")
	}
	if got := m.CountVertices(); got != 10 {
		t.Errorf("vertices got %d, want 10", got)
	}
	if got := m.CountTriangles(); got != 6 {
		t.Errorf("triangles got %d, want 6", got)
	}
	want := ogre.VFPosition | ogre.VFNormal | ogre.VFDiffuse | ogre.VFTexCoord0 | ogre.VFTexCoord1
	if got := m.GatheredEntries(); got != want {
		t.Errorf("entries got %#x, want %#x", got, want)
	}
	if m.Shared.Stride() != 12+12+4+8 {
		t.Errorf("shared stride got %d, want 36", m.Shared.Stride())
	}
	v := m.Shared.Vertices[5]
	if v.Pos != (mgl32.Vec3{5, 5, 0}) || v.Diffuse != 0xFF00FF05 {
		t.Errorf("vertex 5 decoded as %v %#x", v.Pos, v.Diffuse)
	}
	if len(v.SelfBufs) != 2 || len(v.SelfBufs[0]) != 28 || len(v.SelfBufs[1]) != 8 {
		t.Errorf("vertex 5 raw buffers %d", len(v.SelfBufs))
	}
	if m.Subs[1].Geometry.TexCoordCount() != 2 {
		t.Errorf("texture channels got %d, want 2", m.Subs[1].Geometry.TexCoordCount())
	}
	if m.SkeletonLink != "hero.skeleton" || m.SubmeshNames[1] != "cape" {
		t.Errorf("link %q, names %v", m.SkeletonLink, m.SubmeshNames)
	}
	if m.Subs[1].TextureAliases["diffuse"] != "grass.png" {
		t.Errorf("texture aliases %v", m.Subs[1].TextureAliases)
	}
	if len(m.BoneAssignments) != 1 || len(m.Subs[0].BoneAssignments) != 1 {
		t.Errorf("bone assignments: mesh %d, submesh %d", len(m.BoneAssignments), len(m.Subs[0].BoneAssignments))
	}
	if m.Radius != 7 {
		t.Errorf("radius got %v, want 7", m.Radius)
	}
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"full", fullMesh()},
		{"single", meshFile(submesh("m", false, fan(5), geometry(gridVerts(5), []elem{elemPos, elemNor, elemTex0})))},
		{"skeleton", skeletonFile()},
		{"edges", meshWithEdges()},
		{"morph", meshWithMorph()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := ParseBytes(tt.data)
			if err != nil {
				t.Fatal(err)
			}
			var out bytes.Buffer
			if err := m.Serialize(&out); err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(out.Bytes(), tt.data) {
				t.Errorf("round trip differs: got %d bytes, want %d", out.Len(), len(tt.data))
			}
			n, err := m.Resize()
			if err != nil {
				t.Fatal(err)
			}
			if n != len(tt.data) {
				t.Errorf("resize got %d, want %d", n, len(tt.data))
			}
		})
	}
}

func skeletonFile() []byte {
	out := header("[Serializer_v1.10]")
	bone := func(name string, handle uint16, scale bool) node {
		f := body().str(name).u16(handle).f32(1, 2, 3).f32(0, 0, 0, 1)
		if scale {
			f.f32(2, 2, 2)
		}
		return node{id: ogre.SkeletonBone, body: f.done()}
	}
	kids := []node{
		{id: ogre.SkeletonBlendMode, body: body().u16(1).done()},
		bone("root", 0, false),
		bone("arm", 1, true),
		{id: ogre.SkeletonBoneParent, body: body().u16(1).u16(0).done()},
		{id: ogre.SkeletonAnimation, body: body().str("wave").f32(2).done(), kids: []node{
			{id: ogre.SkeletonAnimationTrack, body: body().u16(1).done()},
			{id: ogre.SkeletonAnimationTrackKeyframe, body: body().f32(0, 0, 0, 0, 1, 0, 0, 0).done()},
			{id: ogre.SkeletonAnimationTrackKeyframe, body: body().f32(1, 0, 0, 0, 1, 0, 1, 0, 1, 1, 1).done()},
		}},
		{id: ogre.SkeletonAnimationLink, body: body().str("base.skeleton").f32(1).done()},
	}
	for _, k := range kids {
		out = append(out, k.bytes()...)
	}
	return out
}

func TestParseSkeleton(t *testing.T) {
	m, err := ParseBytes(skeletonFile())
	if err != nil {
		t.Fatal(err)
	}
	if m.Dialect != ogre.DialectSkeleton || m.Version != 110 {
		t.Errorf("got %s v%d, want skeleton v110", m.Dialect, m.Version)
	}
	if len(m.Bones) != 2 {
		t.Fatalf("got %d bones, want 2", len(m.Bones))
	}
	if m.Bones[0].Scale != (mgl32.Vec3{1, 1, 1}) || m.Bones[1].Scale != (mgl32.Vec3{2, 2, 2}) {
		t.Errorf("scales %v %v", m.Bones[0].Scale, m.Bones[1].Scale)
	}
	if m.Bones[1].Parent != 0 {
		t.Errorf("arm parent got %d, want 0", m.Bones[1].Parent)
	}
	if len(m.Animations) != 1 || m.Animations[0].Name != "wave" {
		t.Errorf("animations %v", m.Animations)
	}
}

func meshWithEdges() []byte {
	lod := body().u16(0).boolean(false).boolean(true).u32(1).u32(1)
	lod.u32(0).u32(0).u32(0).u32(1).u32(2).u32(0).u32(1).u32(2).f32(0, 1, 0, 0)
	group := body().u32(0).u32(0).u32(1).u32(1)
	group.u32(0).u32(0).u32(0).u32(1).u32(0).u32(1).boolean(false)
	return meshFile(
		submesh("m", false, fan(3), geometry(gridVerts(3), []elem{elemPos})),
		node{id: ogre.MEdgeLists, kids: []node{
			{id: ogre.MEdgeListLOD, body: lod.done(), kids: []node{{id: ogre.MEdgeGroup, body: group.done()}}},
		}},
	)
}

func meshWithMorph() []byte {
	key := body().f32(0)
	for i := 0; i < 3*3; i++ {
		key.f32(float32(i))
	}
	return meshFile(
		submesh("m", false, fan(3), geometry(gridVerts(3), []elem{elemPos})),
		node{id: ogre.MAnimations, kids: []node{
			{id: ogre.MAnimation, body: body().str("breathe").f32(1).done(), kids: []node{
				{id: ogre.MAnimationTrack, body: body().u16(1).u16(1).done(), kids: []node{
					{id: ogre.MAnimationMorphKeyframe, body: key.done()},
				}},
			}},
		}},
	)
}

func TestParseFlags(t *testing.T) {
	m, err := ParseBytes(meshWithEdges())
	if err != nil {
		t.Fatal(err)
	}
	if !m.HasEdges || m.HasVertexAnimation {
		t.Errorf("edges %v, animation %v", m.HasEdges, m.HasVertexAnimation)
	}
	m, err = ParseBytes(meshWithMorph())
	if err != nil {
		t.Fatal(err)
	}
	if !m.HasVertexAnimation {
		t.Error("vertex animation not detected")
	}
	if got := m.StatLine(); got != "VtxC 3, OneSub, NoTexC, OneBuf, NoBinorm, NoEdgeLs, VtxAnim" {
		t.Errorf("statline %q", got)
	}
}

func TestParseErrors(t *testing.T) {
	badOffset := node{id: ogre.MGeometry, body: body().u32(0).done(), kids: []node{
		{id: ogre.MGeometryVertexDeclaration, kids: []node{
			{id: ogre.MGeometryVertexElement, body: body().u16(0).u16(uint16(ogre.Float3)).u16(uint16(ogre.SemPosition)).u16(0).u16(0).done()},
			{id: ogre.MGeometryVertexElement, body: body().u16(0).u16(uint16(ogre.Float3)).u16(uint16(ogre.SemNormal)).u16(16).u16(0).done()},
		}},
	}}
	skippedTex := node{id: ogre.MGeometry, body: body().u32(0).done(), kids: []node{
		{id: ogre.MGeometryVertexDeclaration, kids: []node{
			{id: ogre.MGeometryVertexElement, body: body().u16(0).u16(uint16(ogre.Float2)).u16(uint16(ogre.SemTexCoord)).u16(0).u16(1).done()},
		}},
	}}
	twice := geometry(nil, []elem{elemPos}, []elem{elemPos})
	tests := []struct {
		name string
		data []byte
	}{
		{"old version", append(header("[MeshSerializer_v1.20]"), node{id: ogre.MMesh, body: []byte{0}}.bytes()...)},
		{"bad version string", append(header("[Model_v1.41]"), node{id: ogre.MMesh, body: []byte{0}}.bytes()...)},
		{"wrong first chunk", node{id: ogre.MMesh, body: []byte{0}}.bytes()},
		{"unsupported chunk", meshFile(node{id: ogre.MMeshLOD, body: body().u16(1).done()})},
		{"orphan chunk", append(header("[MeshSerializer_v1.41]"), node{id: ogre.MGeometry, body: body().u32(0).done()}.bytes()...)},
		{"element offset gap", meshFile(submesh("m", false, nil, badOffset))},
		{"texture channel out of order", meshFile(submesh("m", false, nil, skippedTex))},
		{"semantic twice", meshFile(submesh("m", false, nil, twice))},
		{"index out of range", meshFile(submesh("m", false, []uint32{0, 1, 9}, geometry(gridVerts(3), []elem{elemPos})))},
		{"truncated", meshFile(submesh("m", false, fan(3), geometry(gridVerts(3), []elem{elemPos})))[:60]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseBytes(tt.data); !errors.Is(err, ogre.ErrFormat) {
				t.Errorf("got %v, want ErrFormat", err)
			}
		})
	}
}

func TestParseVersion(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"1.8]", 180},
		{"1.41]", 141},
		{"1.100]", 1100},
		{"1.10]", 110},
	}
	for _, tt := range tests {
		got, err := parseVersion(tt.in)
		if err != nil {
			t.Fatalf("%s: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("%s got %d, want %d", tt.in, got, tt.want)
		}
	}
}
