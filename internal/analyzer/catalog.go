package analyzer

import (
	"fmt"

	"meshopt/internal/mesh"
	"meshopt/internal/ogre"
)

// Kind tags the optimization a Proc performs.
type Kind int

const (
	// KindUnify merges vertices that are byte for byte identical.
	KindUnify Kind = iota
	// KindTangentEpsilon merges vertices whose tangent frames are close.
	KindTangentEpsilon
	// KindRemoveField drops one attribute, then merges identical vertices.
	KindRemoveField
	// KindMergeBuffers packs every vertex buffer of a geometry into one.
	KindMergeBuffers
)

func (k Kind) String() string {
	switch k {
	case KindUnify:
		return "unify"
	case KindTangentEpsilon:
		return "tangent-epsilon"
	case KindRemoveField:
		return "remove-field"
	case KindMergeBuffers:
		return "merge-buffers"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Proc is one entry of the optimization catalog.
type Proc struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Kind        Kind   `json:"-"`
	// Field is the attribute removed by KindRemoveField.
	Field ogre.VtxFlag `json:"-"`
}

var catalog = []Proc{
	{"just_unify", "Unify vertices that are exactly identical", KindUnify, 0},
	{"unify_by_tan_epsilon", "Unify vertices whose tangent and binormal are within epsilon", KindTangentEpsilon, ogre.VFTangent | ogre.VFBinormal},
	{"remove_normal_and_unify", "Remove the normal and unify identical vertices", KindRemoveField, ogre.VFNormal},
	{"remove_diffuse_color_and_unify", "Remove the diffuse colour and unify identical vertices", KindRemoveField, ogre.VFDiffuse},
	{"remove_tangent_and_unify", "Remove the tangent and unify identical vertices", KindRemoveField, ogre.VFTangent},
	{"remove_binormal_and_unify", "Remove the binormal and unify identical vertices", KindRemoveField, ogre.VFBinormal},
	{"remove_tex_coord_0_and_unify", "Remove texture coordinate 0 and unify identical vertices", KindRemoveField, ogre.VFTexCoord0},
	{"remove_tex_coord_1_and_unify", "Remove texture coordinate 1 and unify identical vertices", KindRemoveField, ogre.VFTexCoord1},
	{"remove_tex_coord_2_and_unify", "Remove texture coordinate 2 and unify identical vertices", KindRemoveField, ogre.VFTexCoord2},
	{"remove_tex_coord_3_and_unify", "Remove texture coordinate 3 and unify identical vertices", KindRemoveField, ogre.VFTexCoord3},
	{"merge_vertex_buffers", "Merge all vertex buffers into one", KindMergeBuffers, 0},
}

var byName = func() map[string]Proc {
	m := make(map[string]Proc, len(catalog))
	for _, p := range catalog {
		m[p.Name] = p
	}
	return m
}()

// Procs returns the catalog in its fixed order.
func Procs() []Proc {
	return append([]Proc(nil), catalog...)
}

// Lookup finds a procedure by name.
func Lookup(name string) (Proc, error) {
	p, ok := byName[name]
	if !ok {
		return Proc{}, fmt.Errorf("%w: unknown optimization %q", ogre.ErrPrecondition, name)
	}
	return p, nil
}

func (p Proc) dedups() bool {
	return p.Kind != KindMergeBuffers
}

// Applicable reports whether running p on m can change it. Texture
// channels are only offered from the highest one down.
func (p Proc) Applicable(m *mesh.Mesh) bool {
	if p.dedups() && (m.HasEdges || m.HasVertexAnimation) {
		return false
	}
	switch p.Kind {
	case KindUnify:
		return true
	case KindTangentEpsilon:
		return m.GatheredEntries()&p.Field != 0
	case KindRemoveField:
		return m.CanRemoveField(p.Field)
	case KindMergeBuffers:
		return m.BuffersNeedUnify()
	}
	return false
}

// Apply runs p on m. Procedures that merge vertices are refused before
// anything is changed when the mesh has edge lists or vertex animation.
func (p Proc) Apply(m *mesh.Mesh) error {
	if p.dedups() && (m.HasEdges || m.HasVertexAnimation) {
		return fmt.Errorf("%w: %s: mesh has edge lists or vertex animation", ogre.ErrPrecondition, p.Name)
	}
	switch p.Kind {
	case KindUnify:
		m.ClearDupOf()
		m.MarkDuplicates(0)
		return m.Dedup()
	case KindTangentEpsilon:
		m.ClearDupOf()
		m.MarkNearDuplicates(p.Field, 0)
		return m.Dedup()
	case KindRemoveField:
		if err := m.RemoveField(p.Field); err != nil {
			return err
		}
		m.ClearDupOf()
		m.MarkDuplicates(0)
		return m.Dedup()
	case KindMergeBuffers:
		m.UnifyBuffers()
		return nil
	}
	return fmt.Errorf("%w: %s has no apply step", ogre.ErrPrecondition, p.Name)
}
