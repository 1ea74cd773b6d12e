package mesh

import (
	"fmt"
	"math/bits"

	"meshopt/internal/ogre"
)

// semanticOf maps a single mask bit back to its semantic and index.
func semanticOf(f ogre.VtxFlag) (ogre.Semantic, int, error) {
	switch f {
	case ogre.VFPosition:
		return ogre.SemPosition, 0, nil
	case ogre.VFNormal:
		return ogre.SemNormal, 0, nil
	case ogre.VFDiffuse:
		return ogre.SemDiffuse, 0, nil
	case ogre.VFTangent:
		return ogre.SemTangent, 0, nil
	case ogre.VFBinormal:
		return ogre.SemBinormal, 0, nil
	case ogre.VFTexCoord0, ogre.VFTexCoord1, ogre.VFTexCoord2, ogre.VFTexCoord3:
		return ogre.SemTexCoord, bits.TrailingZeros32(uint32(f / ogre.VFTexCoord0)), nil
	}
	return 0, 0, fmt.Errorf("%w: %#x is not a single vertex field", ogre.ErrPrecondition, uint32(f))
}

// CanRemoveField reports whether RemoveField(f) would succeed. A texture
// channel can only go when no geometry declares a higher one, since channels
// must stay dense.
func (m *Mesh) CanRemoveField(f ogre.VtxFlag) bool {
	return m.checkRemovable(f) == nil
}

func (m *Mesh) checkRemovable(f ogre.VtxFlag) error {
	sem, index, err := semanticOf(f)
	if err != nil {
		return err
	}
	have := m.GatheredEntries()
	if !have.Has(f) {
		return fmt.Errorf("%w: mesh has no %s field %d", ogre.ErrPrecondition, sem, index)
	}
	if sem == ogre.SemTexCoord && have&texMask&^(f<<1-1) != 0 {
		return fmt.Errorf("%w: texture channel %d is not the last one", ogre.ErrPrecondition, index)
	}
	return nil
}

// RemoveField deletes one attribute from every geometry that has it.
// Texture channels are removed from the top only.
func (m *Mesh) RemoveField(f ogre.VtxFlag) error {
	if err := m.checkRemovable(f); err != nil {
		return err
	}
	sem, index, _ := semanticOf(f)
	for _, g := range m.Geometries() {
		if g.Flags.Has(f) {
			g.removeField(sem, index, f)
		}
	}
	return nil
}

func (g *Geometry) removeField(sem ogre.Semantic, index int, f ogre.VtxFlag) {
	bi, ei := g.find(sem, index)
	if bi < 0 {
		return
	}
	b := g.Binds[bi]
	e := b.Entries[ei]
	size := e.Size()
	start := int(e.Offset)
	if e.Chunk != nil {
		e.Chunk.Detach()
	}
	b.Entries = append(b.Entries[:ei:ei], b.Entries[ei+1:]...)
	for _, later := range b.Entries[ei:] {
		later.Offset -= uint16(size)
	}
	b.Size -= size

	dropBind := len(b.Entries) == 0
	if dropBind {
		if b.Chunk != nil {
			b.Chunk.Detach()
		}
		g.Binds = append(g.Binds[:bi:bi], g.Binds[bi+1:]...)
		for _, later := range g.Binds[bi:] {
			for _, le := range later.Entries {
				le.Source--
			}
		}
	}
	for i := range g.Vertices {
		v := &g.Vertices[i]
		if dropBind {
			v.SelfBufs = append(v.SelfBufs[:bi:bi], v.SelfBufs[bi+1:]...)
			continue
		}
		old := v.SelfBufs[bi]
		buf := make([]byte, 0, len(old)-size)
		buf = append(buf, old[:start]...)
		v.SelfBufs[bi] = append(buf, old[start+size:]...)
	}
	g.Flags &^= f

	if sem == ogre.SemTexCoord {
		for i := range g.Vertices {
			g.Vertices[i].Tex[index] = [2]float32{}
		}
		g.texCoords--
	}
}

const texMask = ogre.VFTexCoord0 | ogre.VFTexCoord1 | ogre.VFTexCoord2 | ogre.VFTexCoord3

// UnifyBuffers merges the binds of every geometry into a single buffer.
func (m *Mesh) UnifyBuffers() {
	for _, g := range m.Geometries() {
		g.unifyBuffers()
	}
}

func (g *Geometry) unifyBuffers() {
	if len(g.Binds) < 2 {
		return
	}
	first := g.Binds[0]
	for _, b := range g.Binds[1:] {
		for _, e := range b.Entries {
			e.Source = 0
			e.Offset += uint16(first.Size)
			first.Entries = append(first.Entries, e)
		}
		first.Size += b.Size
		if b.Chunk != nil {
			b.Chunk.Detach()
		}
	}
	g.Binds = g.Binds[:1]
	for i := range g.Vertices {
		v := &g.Vertices[i]
		buf := make([]byte, 0, first.Size)
		for _, sb := range v.SelfBufs {
			buf = append(buf, sb...)
		}
		v.SelfBufs = [][]byte{buf}
	}
}
