package mesh

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"meshopt/internal/binio"
	"meshopt/internal/chunk"
	"meshopt/internal/logger"
	"meshopt/internal/ogre"
)

const (
	meshVersionPrefix     = "[MeshSerializer_v"
	skeletonVersionPrefix = "[Serializer_v"

	// MinMeshVersion is the oldest mesh version that is not accepted.
	MinMeshVersion = 120
)

// ParseOptions tunes decoding.
type ParseOptions struct {
	// TraceAllVertices logs every decoded vertex at debug level instead of
	// only the first and last of each buffer.
	TraceAllVertices bool
}

// Parse decodes a whole mesh or skeleton file.
func Parse(r io.Reader, opts ParseOptions) (*Mesh, error) {
	br, err := binio.NewReader(r)
	if err != nil {
		return nil, err
	}
	return parse(br, opts)
}

// ParseBytes decodes data.
func ParseBytes(data []byte) (*Mesh, error) {
	return parse(binio.FromBytes(data), ParseOptions{})
}

type parser struct {
	r    *binio.Reader
	st   *chunk.Stack
	m    *Mesh
	opts ParseOptions

	sub       *SubMesh
	geom      *Geometry
	bind      int
	trackGeom *Geometry
}

func parse(r *binio.Reader, opts ParseOptions) (*Mesh, error) {
	m := &Mesh{
		Materials:    make(map[string]bool),
		SubmeshNames: make(map[int]string),
		Epsilon:      DefaultEpsilon,
	}
	if err := readHeader(r, m); err != nil {
		return nil, err
	}
	p := &parser{
		r:    r,
		st:   chunk.NewStack(m.Dialect, uint32(r.Remaining())),
		m:    m,
		opts: opts,
		bind: -1,
	}
	for !r.EOF() {
		if err := p.next(); err != nil {
			return nil, err
		}
	}
	m.Root = p.st.Finish()
	if err := m.checkIndices(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Mesh) checkIndices() error {
	for i, s := range m.Subs {
		g := m.GeometryOf(s)
		n := 0
		if g != nil {
			n = len(g.Vertices)
		}
		for _, idx := range s.Indices {
			if int(idx) >= n {
				return fmt.Errorf("%w: submesh %d index %d out of %d vertices", ogre.ErrFormat, i, idx, n)
			}
		}
	}
	return nil
}

func readHeader(r *binio.Reader, m *Mesh) error {
	id, err := r.U16()
	if err != nil {
		return err
	}
	if id != ogre.MHeader {
		return fmt.Errorf("%w: file starts with chunk %#x, want %#x", ogre.ErrFormat, id, ogre.MHeader)
	}
	line, err := r.Line()
	if err != nil {
		return err
	}
	var rest string
	switch {
	case strings.HasPrefix(line, meshVersionPrefix):
		m.Dialect = ogre.DialectMesh
		rest = line[len(meshVersionPrefix):]
	case strings.HasPrefix(line, skeletonVersionPrefix):
		m.Dialect = ogre.DialectSkeleton
		rest = line[len(skeletonVersionPrefix):]
	default:
		return fmt.Errorf("%w: unknown version string %q", ogre.ErrFormat, line)
	}
	m.Version, err = parseVersion(rest)
	if err != nil {
		return err
	}
	if m.Dialect == ogre.DialectMesh && m.Version <= MinMeshVersion {
		return fmt.Errorf("%w: mesh version %d is too old", ogre.ErrFormat, m.Version)
	}
	m.Header = r.SubBuf(0, r.Offset())
	logger.Log.Debug("header",
		zap.String("version", line),
		zap.Stringer("dialect", m.Dialect),
		zap.Int("number", m.Version))
	return nil
}

// parseVersion turns "1.41]" into 141 and "1.8]" into 180.
func parseVersion(s string) (int, error) {
	if len(s) < 3 || s[1] != '.' {
		return 0, fmt.Errorf("%w: malformed version %q", ogre.ErrFormat, s)
	}
	digits := s[:1] + s[2:]
	n := 0
	for n < len(digits) && digits[n] >= '0' && digits[n] <= '9' {
		n++
	}
	v, err := strconv.Atoi(digits[:n])
	if err != nil {
		return 0, fmt.Errorf("%w: malformed version %q", ogre.ErrFormat, s)
	}
	if v < 100 {
		v *= 10
	}
	return v, nil
}

func (p *parser) next() error {
	id, size, err := p.r.ChunkHeader()
	if err != nil {
		return err
	}
	c, err := p.st.Push(id, size)
	if err != nil {
		return err
	}
	logger.Log.Debug("chunk",
		zap.String("name", ogre.ChunkName(p.m.Dialect, id)),
		zap.Uint16("id", id),
		zap.Uint32("size", size),
		zap.Int("offset", p.r.ChunkStart()))

	if p.m.Dialect == ogre.DialectSkeleton {
		err = p.skeletonChunk(c, size)
	} else {
		err = p.meshChunk(c)
	}
	if err != nil {
		return fmt.Errorf("mesh: chunk %s at offset %d: %w", ogre.ChunkName(p.m.Dialect, id), p.r.ChunkStart(), err)
	}
	p.st.Consume(c, p.r.ConsumedBuf())
	return nil
}

func (p *parser) meshChunk(c *chunk.Chunk) error {
	r := p.r
	switch c.ID {
	case ogre.MMesh:
		// skeletally animated flag
		_, err := r.Bool()
		return err
	case ogre.MSubmesh:
		return p.submesh(c)
	case ogre.MSubmeshOperation:
		op, err := r.U16()
		p.sub.Operation = op
		return err
	case ogre.MSubmeshBoneAssignment:
		ba, err := p.boneAssignment(c)
		if err != nil {
			return err
		}
		p.sub.BoneAssignments = append(p.sub.BoneAssignments, ba)
		return nil
	case ogre.MMeshBoneAssignment:
		if p.m.Shared == nil {
			return fmt.Errorf("%w: mesh bone assignment without shared geometry", ogre.ErrFormat)
		}
		ba, err := p.boneAssignment(c)
		if err != nil {
			return err
		}
		p.m.BoneAssignments = append(p.m.BoneAssignments, ba)
		return nil
	case ogre.MSubmeshTextureAlias:
		alias, err := r.Line()
		if err != nil {
			return err
		}
		name, err := r.Line()
		if err != nil {
			return err
		}
		if p.sub.TextureAliases == nil {
			p.sub.TextureAliases = make(map[string]string)
		}
		p.sub.TextureAliases[alias] = name
		return nil
	case ogre.MGeometry:
		return p.geometry(c)
	case ogre.MGeometryVertexDeclaration:
		return nil
	case ogre.MGeometryVertexElement:
		return p.vertexElement(c)
	case ogre.MGeometryVertexBuffer:
		return p.vertexBuffer(c)
	case ogre.MGeometryVertexBufferData:
		return p.vertexData()
	case ogre.MMeshSkeletonLink:
		link, err := r.Line()
		p.m.SkeletonLink = link
		return err
	case ogre.MMeshBounds:
		var f [7]float32
		if err := readFloats(r, f[:]); err != nil {
			return err
		}
		p.m.Bounds = [2]mgl32.Vec3{{f[0], f[1], f[2]}, {f[3], f[4], f[5]}}
		p.m.Radius = f[6]
		return nil
	case ogre.MSubmeshNameTable:
		return nil
	case ogre.MSubmeshNameTableElement:
		idx, err := r.U16()
		if err != nil {
			return err
		}
		name, err := r.Line()
		p.m.SubmeshNames[int(idx)] = name
		return err
	case ogre.MEdgeLists:
		p.m.HasEdges = true
		return nil
	case ogre.MEdgeListLOD:
		return p.edgeListLOD()
	case ogre.MEdgeGroup:
		return p.edgeGroup()
	case ogre.MAnimations:
		p.m.HasVertexAnimation = true
		return nil
	case ogre.MAnimation:
		a, err := readAnimation(r)
		p.m.Animations = append(p.m.Animations, a)
		return err
	case ogre.MAnimationBaseInfo:
		_, err := readAnimation(r)
		return err
	case ogre.MAnimationTrack:
		return p.animationTrack()
	case ogre.MAnimationMorphKeyframe:
		return p.morphKeyframe()
	case ogre.MAnimationPoseKeyframe:
		_, err := r.F32()
		return err
	case ogre.MAnimationPoseRef:
		if _, err := r.U16(); err != nil {
			return err
		}
		_, err := r.F32()
		return err
	}
	return fmt.Errorf("%w: unsupported chunk %#x", ogre.ErrFormat, c.ID)
}

func (p *parser) submesh(c *chunk.Chunk) error {
	r := p.r
	s := &SubMesh{Chunk: c}
	var err error
	if s.Material, err = r.Line(); err != nil {
		return err
	}
	p.m.Materials[s.Material] = true
	if s.SharedVertices, err = r.Bool(); err != nil {
		return err
	}
	if s.SharedVertices && p.m.Shared == nil {
		return fmt.Errorf("%w: submesh uses shared vertices before the shared geometry", ogre.ErrFormat)
	}
	count, err := r.U32()
	if err != nil {
		return err
	}
	if s.Use32, err = r.Bool(); err != nil {
		return err
	}
	width := 2
	if s.Use32 {
		width = 4
	}
	if int64(count)*int64(width) > int64(r.Remaining()) {
		return fmt.Errorf("%w: %d indices exceed the file", ogre.ErrFormat, count)
	}
	s.Indices = make([]uint32, count)
	for i := range s.Indices {
		if s.Use32 {
			s.Indices[i], err = r.U32()
		} else {
			var v uint16
			v, err = r.U16()
			s.Indices[i] = uint32(v)
		}
		if err != nil {
			return err
		}
	}
	p.m.Subs = append(p.m.Subs, s)
	p.sub = s
	p.geom = nil
	logger.Log.Debug("submesh",
		zap.String("material", s.Material),
		zap.Bool("shared", s.SharedVertices),
		zap.Int("indices", len(s.Indices)),
		zap.Bool("32bit", s.Use32))
	return nil
}

func (p *parser) boneAssignment(c *chunk.Chunk) (*BoneAssignment, error) {
	ba := &BoneAssignment{Chunk: c}
	var err error
	if ba.Vertex, err = p.r.U32(); err != nil {
		return nil, err
	}
	if ba.Bone, err = p.r.U16(); err != nil {
		return nil, err
	}
	ba.Weight, err = p.r.F32()
	return ba, err
}

func (p *parser) geometry(c *chunk.Chunk) error {
	count, err := p.r.U32()
	if err != nil {
		return err
	}
	if int64(count) > int64(p.r.Len()) {
		return fmt.Errorf("%w: vertex count %d exceeds the file", ogre.ErrFormat, count)
	}
	if c.Parent.ID == ogre.MMesh {
		if p.m.Shared != nil {
			return fmt.Errorf("%w: more than one shared geometry", ogre.ErrFormat)
		}
		p.m.Shared = newGeometry(c, true, int(count))
		p.geom = p.m.Shared
	} else {
		if p.sub.SharedVertices || p.sub.Geometry != nil {
			return fmt.Errorf("%w: unexpected geometry in submesh %q", ogre.ErrFormat, p.sub.Material)
		}
		p.sub.Geometry = newGeometry(c, false, int(count))
		p.geom = p.sub.Geometry
	}
	p.bind = -1
	logger.Log.Debug("geometry", zap.Uint32("vertices", count), zap.Bool("shared", p.geom.Shared))
	return nil
}

func (p *parser) vertexElement(c *chunk.Chunk) error {
	r := p.r
	var f [5]uint16
	for i := range f {
		v, err := r.U16()
		if err != nil {
			return err
		}
		f[i] = v
	}
	e := &VtxEntry{
		Source:   f[0],
		Type:     ogre.ElementType(f[1]),
		Semantic: ogre.Semantic(f[2]),
		Offset:   f[3],
		Index:    f[4],
		Chunk:    c,
	}
	g := p.geom
	if e.Semantic == ogre.SemTexCoord {
		if int(e.Index) >= ogre.MaxTexCoords {
			return fmt.Errorf("%w: texture coordinate index %d, at most %d channels", ogre.ErrFormat, e.Index, ogre.MaxTexCoords)
		}
		if int(e.Index) != g.texCoords {
			return fmt.Errorf("%w: texture coordinate index %d out of order", ogre.ErrFormat, e.Index)
		}
		g.texCoords++
	} else if e.Index != 0 {
		return fmt.Errorf("%w: index %d on %s, only texture coordinates are indexed", ogre.ErrFormat, e.Index, e.Semantic)
	}
	flag, err := ogre.FlagFromSemantic(e.Semantic, int(e.Index))
	if err != nil {
		return err
	}
	if g.Flags.Has(flag) {
		return fmt.Errorf("%w: %s declared twice", ogre.ErrFormat, e.Semantic)
	}
	if err := checkElementType(e); err != nil {
		return err
	}
	g.Flags |= flag

	if int(e.Source) >= len(g.Binds) {
		g.Binds = append(g.Binds, &VtxBind{})
	}
	if int(e.Source) != len(g.Binds)-1 {
		return fmt.Errorf("%w: vertex source %d out of order", ogre.ErrFormat, e.Source)
	}
	b := g.Binds[e.Source]
	if len(b.Entries) == 0 {
		if e.Offset != 0 {
			return fmt.Errorf("%w: first element of source %d at offset %d", ogre.ErrFormat, e.Source, e.Offset)
		}
	} else if last := b.Entries[len(b.Entries)-1]; int(e.Offset) != int(last.Offset)+last.Size() {
		return fmt.Errorf("%w: element offset %d, want %d", ogre.ErrFormat, e.Offset, int(last.Offset)+last.Size())
	}
	b.Entries = append(b.Entries, e)
	b.Size = int(e.Offset) + e.Size()
	logger.Log.Debug("vertex element",
		zap.Uint16("source", e.Source),
		zap.Stringer("type", e.Type),
		zap.Stringer("semantic", e.Semantic),
		zap.Uint16("offset", e.Offset),
		zap.Uint16("index", e.Index))
	return nil
}

func checkElementType(e *VtxEntry) error {
	if _, err := e.Type.Size(); err != nil {
		return err
	}
	var ok bool
	switch e.Semantic {
	case ogre.SemPosition, ogre.SemNormal, ogre.SemTangent, ogre.SemBinormal:
		ok = e.Type == ogre.Float3
	case ogre.SemTexCoord:
		ok = e.Type == ogre.Float2
	case ogre.SemDiffuse:
		ok = e.Type.IsColour()
	}
	if !ok {
		return fmt.Errorf("%w: %s stored as %s", ogre.ErrFormat, e.Semantic, e.Type)
	}
	return nil
}

func (p *parser) vertexBuffer(c *chunk.Chunk) error {
	g := p.geom
	idx, err := p.r.U16()
	if err != nil {
		return err
	}
	size, err := p.r.U16()
	if err != nil {
		return err
	}
	if int(idx) <= g.lastBind {
		return fmt.Errorf("%w: bind %d after bind %d", ogre.ErrFormat, idx, g.lastBind)
	}
	if int(idx) >= len(g.Binds) {
		return fmt.Errorf("%w: bind %d was not declared", ogre.ErrFormat, idx)
	}
	b := g.Binds[idx]
	if int(size) != b.Size {
		return fmt.Errorf("%w: bind %d vertex size %d, declared %d", ogre.ErrFormat, idx, size, b.Size)
	}
	b.Chunk = c
	g.lastBind = int(idx)
	p.bind = int(idx)
	return nil
}

func (p *parser) vertexData() error {
	g := p.geom
	if p.bind < 0 {
		return fmt.Errorf("%w: vertex data outside a vertex buffer", ogre.ErrFormat)
	}
	b := g.Binds[p.bind]
	if int64(len(g.Vertices))*int64(b.Size) > int64(p.r.Remaining()) {
		return fmt.Errorf("%w: %d vertices exceed the file", ogre.ErrFormat, len(g.Vertices))
	}
	for i := range g.Vertices {
		v := &g.Vertices[i]
		start := p.r.Offset()
		for _, e := range b.Entries {
			if err := readAttribute(p.r, v, e); err != nil {
				return err
			}
		}
		buf := p.r.SubBuf(start, p.r.Offset())
		if len(buf) != b.Size {
			return fmt.Errorf("%w: vertex %d is %d bytes, want %d", ogre.ErrFormat, i, len(buf), b.Size)
		}
		if len(v.SelfBufs) != p.bind {
			return fmt.Errorf("%w: vertex %d has %d buffers before bind %d", ogre.ErrFormat, i, len(v.SelfBufs), p.bind)
		}
		v.SelfBufs = append(v.SelfBufs, buf)
		if p.opts.TraceAllVertices || i == 0 || i == len(g.Vertices)-1 {
			logger.Log.Debug("vertex",
				zap.Int("bind", p.bind),
				zap.Int("index", i),
				zap.String("values", describeVertex(v, b)))
		}
	}
	return nil
}

func readAttribute(r *binio.Reader, v *Vertex, e *VtxEntry) error {
	var f [4]float32
	var packed uint32
	var err error
	switch {
	case e.Type.FloatCount() > 0:
		err = readFloats(r, f[:e.Type.FloatCount()])
	case e.Type.IsColour():
		packed, err = r.U32()
	default:
		err = fmt.Errorf("%w: unsupported vertex type %s", ogre.ErrFormat, e.Type)
	}
	if err != nil {
		return err
	}
	switch e.Semantic {
	case ogre.SemPosition:
		v.Pos = mgl32.Vec3{f[0], f[1], f[2]}
	case ogre.SemNormal:
		v.Normal = mgl32.Vec3{f[0], f[1], f[2]}
	case ogre.SemTangent:
		v.Tangent = mgl32.Vec3{f[0], f[1], f[2]}
	case ogre.SemBinormal:
		v.Binormal = mgl32.Vec3{f[0], f[1], f[2]}
	case ogre.SemTexCoord:
		v.Tex[e.Index] = mgl32.Vec2{f[0], f[1]}
	case ogre.SemDiffuse:
		v.Diffuse = packed
	default:
		return fmt.Errorf("%w: unexpected semantic %s", ogre.ErrFormat, e.Semantic)
	}
	return nil
}

func describeVertex(v *Vertex, b *VtxBind) string {
	var sb strings.Builder
	for _, e := range b.Entries {
		switch e.Semantic {
		case ogre.SemPosition:
			fmt.Fprintf(&sb, "pos:%v ", v.Pos)
		case ogre.SemNormal:
			fmt.Fprintf(&sb, "nor:%v ", v.Normal)
		case ogre.SemTangent:
			fmt.Fprintf(&sb, "tan:%v ", v.Tangent)
		case ogre.SemBinormal:
			fmt.Fprintf(&sb, "bin:%v ", v.Binormal)
		case ogre.SemTexCoord:
			fmt.Fprintf(&sb, "tex%d:%v ", e.Index, v.Tex[e.Index])
		case ogre.SemDiffuse:
			fmt.Fprintf(&sb, "dif:%#08x ", v.Diffuse)
		}
	}
	return strings.TrimSpace(sb.String())
}

func readFloats(r *binio.Reader, dst []float32) error {
	for i := range dst {
		v, err := r.F32()
		if err != nil {
			return err
		}
		dst[i] = v
	}
	return nil
}

func readAnimation(r *binio.Reader) (Animation, error) {
	var a Animation
	var err error
	if a.Name, err = r.Line(); err != nil {
		return a, err
	}
	a.Length, err = r.F32()
	return a, err
}

func (p *parser) edgeListLOD() error {
	r := p.r
	if _, err := r.U16(); err != nil {
		return err
	}
	manual, err := r.Bool()
	if err != nil || manual {
		return err
	}
	if _, err := r.Bool(); err != nil {
		return err
	}
	numTri, err := r.U32()
	if err != nil {
		return err
	}
	if _, err := r.U32(); err != nil {
		return err
	}
	// index set, vertex set, 3 vertex indices, 3 shared vertex indices, face normal
	const triSize = 4 + 4 + 12 + 12 + 16
	if int64(numTri)*triSize > int64(r.Remaining()) {
		return fmt.Errorf("%w: %d edge triangles exceed the file", ogre.ErrFormat, numTri)
	}
	for i := uint32(0); i < numTri; i++ {
		for j := 0; j < 8; j++ {
			if _, err := r.U32(); err != nil {
				return err
			}
		}
		var n [4]float32
		if err := readFloats(r, n[:]); err != nil {
			return err
		}
	}
	return nil
}

func (p *parser) edgeGroup() error {
	r := p.r
	var numEdges uint32
	// vertex set, triangle start, triangle count, edge count
	for i := 0; i < 4; i++ {
		v, err := r.U32()
		if err != nil {
			return err
		}
		numEdges = v
	}
	const edgeSize = 6*4 + 1
	if int64(numEdges)*edgeSize > int64(r.Remaining()) {
		return fmt.Errorf("%w: %d edges exceed the file", ogre.ErrFormat, numEdges)
	}
	for i := uint32(0); i < numEdges; i++ {
		for j := 0; j < 6; j++ {
			if _, err := r.U32(); err != nil {
				return err
			}
		}
		if _, err := r.Bool(); err != nil {
			return err
		}
	}
	return nil
}

func (p *parser) animationTrack() error {
	typ, err := p.r.U16()
	if err != nil {
		return err
	}
	target, err := p.r.U16()
	if err != nil {
		return err
	}
	if target == 0 {
		p.trackGeom = p.m.Shared
	} else if int(target) <= len(p.m.Subs) {
		p.trackGeom = p.m.Subs[target-1].Geometry
	} else {
		p.trackGeom = nil
	}
	if p.trackGeom == nil {
		return fmt.Errorf("%w: animation track targets missing geometry %d", ogre.ErrFormat, target)
	}
	logger.Log.Debug("animation track", zap.Uint16("type", typ), zap.Uint16("target", target))
	return nil
}

func (p *parser) morphKeyframe() error {
	r := p.r
	if _, err := r.F32(); err != nil {
		return err
	}
	normals := false
	if p.m.Version >= 180 {
		var err error
		if normals, err = r.Bool(); err != nil {
			return err
		}
	}
	if p.trackGeom == nil {
		return fmt.Errorf("%w: morph keyframe outside a track", ogre.ErrFormat)
	}
	per := 3
	if normals {
		per = 6
	}
	n := len(p.trackGeom.Vertices) * per
	if n*4 > r.Remaining() {
		return fmt.Errorf("%w: morph keyframe exceeds the file", ogre.ErrFormat)
	}
	for i := 0; i < n; i++ {
		if _, err := r.F32(); err != nil {
			return err
		}
	}
	return nil
}

func (p *parser) skeletonChunk(c *chunk.Chunk, declared uint32) error {
	r := p.r
	switch c.ID {
	case ogre.SkeletonBlendMode:
		_, err := r.U16()
		return err
	case ogre.SkeletonBone:
		var b Bone
		var err error
		if b.Name, err = r.Line(); err != nil {
			return err
		}
		if b.Handle, err = r.U16(); err != nil {
			return err
		}
		var f [7]float32
		if err := readFloats(r, f[:]); err != nil {
			return err
		}
		b.Position = mgl32.Vec3{f[0], f[1], f[2]}
		b.Orientation = mgl32.Quat{W: f[6], V: mgl32.Vec3{f[3], f[4], f[5]}}
		b.Scale = mgl32.Vec3{1, 1, 1}
		b.Parent = -1
		if uint32(r.ConsumedChunkLen()) < declared {
			if err := readFloats(r, b.Scale[:]); err != nil {
				return err
			}
		}
		p.m.Bones = append(p.m.Bones, b)
		return nil
	case ogre.SkeletonBoneParent:
		child, err := r.U16()
		if err != nil {
			return err
		}
		parent, err := r.U16()
		if err != nil {
			return err
		}
		for i := range p.m.Bones {
			if p.m.Bones[i].Handle == child {
				p.m.Bones[i].Parent = int(parent)
			}
		}
		return nil
	case ogre.SkeletonAnimation:
		a, err := readAnimation(r)
		p.m.Animations = append(p.m.Animations, a)
		return err
	case ogre.SkeletonAnimationBaseInfo, ogre.SkeletonAnimationLink:
		_, err := readAnimation(r)
		return err
	case ogre.SkeletonAnimationTrack:
		_, err := r.U16()
		return err
	case ogre.SkeletonAnimationTrackKeyframe:
		// time, rotation, translation, then an optional scale
		var f [8]float32
		if err := readFloats(r, f[:]); err != nil {
			return err
		}
		if uint32(r.ConsumedChunkLen()) < declared {
			var s [3]float32
			return readFloats(r, s[:])
		}
		return nil
	}
	return fmt.Errorf("%w: unsupported skeleton chunk %#x", ogre.ErrFormat, c.ID)
}
