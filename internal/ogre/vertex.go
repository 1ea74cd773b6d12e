package ogre

import "fmt"

// ElementType is the storage type of one vertex attribute.
type ElementType uint16

const (
	Float1     ElementType = 0
	Float2     ElementType = 1
	Float3     ElementType = 2
	Float4     ElementType = 3
	Colour     ElementType = 4
	Short1     ElementType = 5
	Short2     ElementType = 6
	Short3     ElementType = 7
	Short4     ElementType = 8
	UByte4     ElementType = 9
	ColourARGB ElementType = 10
	ColourABGR ElementType = 11
)

func (t ElementType) String() string {
	switch t {
	case Float1:
		return "VET_FLOAT1"
	case Float2:
		return "VET_FLOAT2"
	case Float3:
		return "VET_FLOAT3"
	case Float4:
		return "VET_FLOAT4"
	case Colour:
		return "VET_COLOUR"
	case Short1:
		return "VET_SHORT1"
	case Short2:
		return "VET_SHORT2"
	case Short3:
		return "VET_SHORT3"
	case Short4:
		return "VET_SHORT4"
	case UByte4:
		return "VET_UBYTE4"
	case ColourARGB:
		return "VET_COLOUR_ARGB"
	case ColourABGR:
		return "VET_COLOUR_ABGR"
	}
	return "[unknown-type]"
}

// Size returns the byte size of one attribute of this type.
func (t ElementType) Size() (int, error) {
	switch t {
	case Float1, Float2, Float3, Float4:
		return 4 * int(t-Float1+1), nil
	case Short1, Short2, Short3, Short4:
		return 2 * int(t-Short1+1), nil
	case UByte4, ColourARGB, ColourABGR:
		return 4, nil
	}
	return 0, fmt.Errorf("%w: no size for element type %s(%d)", ErrFormat, t, uint16(t))
}

// FloatCount is the number of float components of a float type, 0 otherwise.
func (t ElementType) FloatCount() int {
	if t >= Float1 && t <= Float4 {
		return int(t-Float1) + 1
	}
	return 0
}

// IsColour reports whether the type is a packed 32-bit colour.
func (t ElementType) IsColour() bool {
	return t == ColourARGB || t == ColourABGR
}

// Semantic is the meaning of a vertex attribute.
type Semantic uint16

const (
	SemPosition     Semantic = 1
	SemBlendWeights Semantic = 2
	SemBlendIndices Semantic = 3
	SemNormal       Semantic = 4
	SemDiffuse      Semantic = 5
	SemSpecular     Semantic = 6
	SemTexCoord     Semantic = 7
	SemBinormal     Semantic = 8
	SemTangent      Semantic = 9
)

func (s Semantic) String() string {
	switch s {
	case SemPosition:
		return "VES_POSITION"
	case SemBlendWeights:
		return "VES_BLEND_WEIGHTS"
	case SemBlendIndices:
		return "VES_BLEND_INDICES"
	case SemNormal:
		return "VES_NORMAL"
	case SemDiffuse:
		return "VES_DIFFUSE"
	case SemSpecular:
		return "VES_SPECULAR"
	case SemTexCoord:
		return "VES_TEXTURE_COORDINATES"
	case SemBinormal:
		return "VES_BINORMAL"
	case SemTangent:
		return "VES_TANGENT"
	}
	return "[unknown-semantic]"
}

// MaxTexCoords is the number of texture coordinate channels supported.
const MaxTexCoords = 4

// VtxFlag is a bit mask of the attributes a geometry carries.
type VtxFlag uint32

const (
	VFPosition  VtxFlag = 0x01
	VFNormal    VtxFlag = 0x02
	VFDiffuse   VtxFlag = 0x04
	VFTexCoord0 VtxFlag = 0x08
	VFTexCoord1 VtxFlag = 0x10
	VFTexCoord2 VtxFlag = 0x20
	VFTexCoord3 VtxFlag = 0x40
	VFTangent   VtxFlag = 0x100
	VFBinormal  VtxFlag = 0x200
)

// Has reports whether every bit of f is set in v.
func (v VtxFlag) Has(f VtxFlag) bool {
	return v&f == f
}

// FlagFromSemantic maps a semantic and its index to its mask bit.
func FlagFromSemantic(sem Semantic, index int) (VtxFlag, error) {
	if sem == SemTexCoord {
		if index < 0 || index >= MaxTexCoords {
			return 0, fmt.Errorf("%w: texture coordinate index %d out of range", ErrFormat, index)
		}
		return VFTexCoord0 << uint(index), nil
	}
	if index != 0 {
		return 0, fmt.Errorf("%w: unexpected index %d for %s", ErrFormat, index, sem)
	}
	switch sem {
	case SemPosition:
		return VFPosition, nil
	case SemNormal:
		return VFNormal, nil
	case SemDiffuse:
		return VFDiffuse, nil
	case SemBinormal:
		return VFBinormal, nil
	case SemTangent:
		return VFTangent, nil
	}
	return 0, fmt.Errorf("%w: unsupported semantic %s(%d)", ErrFormat, sem, uint16(sem))
}
