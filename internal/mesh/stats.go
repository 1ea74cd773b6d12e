package mesh

import (
	"fmt"
	"strings"

	"meshopt/internal/ogre"
)

// Stats is the vertex count and encoded size of a mesh.
type Stats struct {
	Vertices int `json:"vertices"`
	Bytes    int `json:"bytes"`
}

func (s Stats) String() string {
	return fmt.Sprintf("%d vertices, %d bytes", s.Vertices, s.Bytes)
}

// Stats resizes the chunk tree and reports the current totals.
func (m *Mesh) Stats() (Stats, error) {
	n, err := m.Resize()
	if err != nil {
		return Stats{}, err
	}
	return Stats{Vertices: m.CountVertices(), Bytes: n}, nil
}

// StatLine summarizes the features of the mesh that limit optimization.
func (m *Mesh) StatLine() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "VtxC %d", m.CountVertices())

	switch {
	case len(m.Subs) == 1:
		sb.WriteString(", OneSub")
	case len(m.Subs) != len(m.Materials):
		fmt.Fprintf(&sb, ", DiffSubs=%d/%d", len(m.Materials), len(m.Subs))
	default:
		fmt.Fprintf(&sb, ", Subs=%d", len(m.Subs))
	}

	switch tc := m.MaxTexCoords(); tc {
	case 0:
		sb.WriteString(", NoTexC")
	case 1:
		sb.WriteString(", OneTexC")
	default:
		fmt.Fprintf(&sb, ", TexC=%d", tc)
	}

	if b := m.MaxBinds(); b == 1 {
		sb.WriteString(", OneBuf")
	} else {
		fmt.Fprintf(&sb, ", Bufs=%d", b)
	}

	if m.GatheredEntries().Has(ogre.VFBinormal) {
		sb.WriteString(", Binormal")
	} else {
		sb.WriteString(", NoBinorm")
	}
	if m.HasEdges {
		sb.WriteString(", EdgeList")
	} else {
		sb.WriteString(", NoEdgeLs")
	}
	if m.HasVertexAnimation {
		sb.WriteString(", VtxAnim")
	} else {
		sb.WriteString(", NoVtxAn")
	}
	return sb.String()
}
