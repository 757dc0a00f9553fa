package format

import "github.com/gogpu/gputypes"

// Known formats.
const (
	Undefined Format = 0

	R4G4UnormPack8      Format = 1
	R4G4B4A4UnormPack16 Format = 2
	R5G6B5UnormPack16   Format = 4
	R5G5B5A1UnormPack16 Format = 6

	R8Unorm Format = 9
	R8Snorm Format = 10
	R8Uint  Format = 13
	R8Sint  Format = 14
	R8Srgb  Format = 15

	R8G8Unorm Format = 16
	R8G8Snorm Format = 17
	R8G8Uint  Format = 20
	R8G8Sint  Format = 21
	R8G8Srgb  Format = 22

	R8G8B8Unorm Format = 23
	R8G8B8Snorm Format = 24
	R8G8B8Uint  Format = 27
	R8G8B8Sint  Format = 28
	R8G8B8Srgb  Format = 29
	B8G8R8Unorm Format = 30
	B8G8R8Uint  Format = 34
	B8G8R8Srgb  Format = 36

	R8G8B8A8Unorm Format = 37
	R8G8B8A8Snorm Format = 38
	R8G8B8A8Uint  Format = 41
	R8G8B8A8Sint  Format = 42
	R8G8B8A8Srgb  Format = 43
	B8G8R8A8Unorm Format = 44
	B8G8R8A8Uint  Format = 48
	B8G8R8A8Srgb  Format = 50

	A8B8G8R8UnormPack32    Format = 51
	A2R10G10B10UnormPack32 Format = 58
	A2B10G10R10UnormPack32 Format = 64
	A2B10G10R10UintPack32  Format = 68

	R16Unorm  Format = 70
	R16Snorm  Format = 71
	R16Uint   Format = 74
	R16Sint   Format = 75
	R16Sfloat Format = 76

	R16G16Unorm  Format = 77
	R16G16Snorm  Format = 78
	R16G16Uint   Format = 81
	R16G16Sint   Format = 82
	R16G16Sfloat Format = 83

	R16G16B16Unorm  Format = 84
	R16G16B16Uint   Format = 88
	R16G16B16Sint   Format = 89
	R16G16B16Sfloat Format = 90

	R16G16B16A16Unorm  Format = 91
	R16G16B16A16Snorm  Format = 92
	R16G16B16A16Uint   Format = 95
	R16G16B16A16Sint   Format = 96
	R16G16B16A16Sfloat Format = 97

	R32Uint   Format = 98
	R32Sint   Format = 99
	R32Sfloat Format = 100

	R32G32Uint   Format = 101
	R32G32Sint   Format = 102
	R32G32Sfloat Format = 103

	R32G32B32Uint   Format = 104
	R32G32B32Sint   Format = 105
	R32G32B32Sfloat Format = 106

	R32G32B32A32Uint   Format = 107
	R32G32B32A32Sint   Format = 108
	R32G32B32A32Sfloat Format = 109

	R64Sfloat          Format = 112
	R64G64Sfloat       Format = 115
	R64G64B64Sfloat    Format = 118
	R64G64B64A64Sfloat Format = 121

	B10G11R11UfloatPack32 Format = 122
	E5B9G9R9UfloatPack32  Format = 123

	BC1RGBUnorm  Format = 131
	BC1RGBSrgb   Format = 132
	BC1RGBAUnorm Format = 133
	BC1RGBASrgb  Format = 134
	BC2Unorm     Format = 135
	BC2Srgb      Format = 136
	BC3Unorm     Format = 137
	BC3Srgb      Format = 138
	BC4Unorm     Format = 139
	BC4Snorm     Format = 140
	BC5Unorm     Format = 141
	BC5Snorm     Format = 142
	BC6HUfloat   Format = 143
	BC6HSfloat   Format = 144
	BC7Unorm     Format = 145
	BC7Srgb      Format = 146

	ETC2R8G8B8Unorm   Format = 147
	ETC2R8G8B8Srgb    Format = 148
	ETC2R8G8B8A1Unorm Format = 149
	ETC2R8G8B8A1Srgb  Format = 150
	ETC2R8G8B8A8Unorm Format = 151
	ETC2R8G8B8A8Srgb  Format = 152
	EACR11Unorm       Format = 153
	EACR11Snorm       Format = 154
	EACR11G11Unorm    Format = 155
	EACR11G11Snorm    Format = 156

	ASTC4x4Unorm   Format = 157
	ASTC4x4Srgb    Format = 158
	ASTC5x4Unorm   Format = 159
	ASTC5x4Srgb    Format = 160
	ASTC5x5Unorm   Format = 161
	ASTC5x5Srgb    Format = 162
	ASTC6x5Unorm   Format = 163
	ASTC6x5Srgb    Format = 164
	ASTC6x6Unorm   Format = 165
	ASTC6x6Srgb    Format = 166
	ASTC8x5Unorm   Format = 167
	ASTC8x5Srgb    Format = 168
	ASTC8x6Unorm   Format = 169
	ASTC8x6Srgb    Format = 170
	ASTC8x8Unorm   Format = 171
	ASTC8x8Srgb    Format = 172
	ASTC10x5Unorm  Format = 173
	ASTC10x5Srgb   Format = 174
	ASTC10x6Unorm  Format = 175
	ASTC10x6Srgb   Format = 176
	ASTC10x8Unorm  Format = 177
	ASTC10x8Srgb   Format = 178
	ASTC10x10Unorm Format = 179
	ASTC10x10Srgb  Format = 180
	ASTC12x10Unorm Format = 181
	ASTC12x10Srgb  Format = 182
	ASTC12x12Unorm Format = 183
	ASTC12x12Srgb  Format = 184
)

const (
	noTex  = gputypes.TextureFormatUndefined
	noVert = gputypes.VertexFormatUndefined
)

func plain(name string, components, bits int, n Numeric, tex gputypes.TextureFormat, vert gputypes.VertexFormat) Info {
	return Info{
		Name:          name,
		BlockBits:     uint32(components * bits),
		BlockWidth:    1,
		BlockHeight:   1,
		Components:    components,
		ComponentBits: bits,
		Numeric:       n,
		Class:         ClassBlockVolume1,
		texture:       tex,
		vertex:        vert,
	}
}

func packed(name string, bits int, n Numeric, tex gputypes.TextureFormat) Info {
	info := plain(name, 1, bits, n, tex, noVert)
	info.Packed = true
	return info
}

func block(name string, bits, w, h uint32, n Numeric, tex gputypes.TextureFormat) Info {
	return Info{
		Name:        name,
		BlockBits:   bits,
		BlockWidth:  w,
		BlockHeight: h,
		Numeric:     n,
		Class:       ClassCompressed,
		texture:     tex,
	}
}

//nolint:lll // format table rows read best on one line
var table = map[Format]Info{
	R4G4UnormPack8:      packed("R4G4UnormPack8", 8, Unorm, noTex),
	R4G4B4A4UnormPack16: packed("R4G4B4A4UnormPack16", 16, Unorm, noTex),
	R5G6B5UnormPack16:   packed("R5G6B5UnormPack16", 16, Unorm, noTex),
	R5G5B5A1UnormPack16: packed("R5G5B5A1UnormPack16", 16, Unorm, noTex),

	R8Unorm: plain("R8Unorm", 1, 8, Unorm, gputypes.TextureFormatR8Unorm, noVert),
	R8Snorm: plain("R8Snorm", 1, 8, Snorm, gputypes.TextureFormatR8Snorm, noVert),
	R8Uint:  plain("R8Uint", 1, 8, Uint, gputypes.TextureFormatR8Uint, noVert),
	R8Sint:  plain("R8Sint", 1, 8, Sint, gputypes.TextureFormatR8Sint, noVert),
	R8Srgb:  plain("R8Srgb", 1, 8, Srgb, noTex, noVert),

	R8G8Unorm: plain("R8G8Unorm", 2, 8, Unorm, gputypes.TextureFormatRG8Unorm, gputypes.VertexFormatUnorm8x2),
	R8G8Snorm: plain("R8G8Snorm", 2, 8, Snorm, gputypes.TextureFormatRG8Snorm, gputypes.VertexFormatSnorm8x2),
	R8G8Uint:  plain("R8G8Uint", 2, 8, Uint, gputypes.TextureFormatRG8Uint, gputypes.VertexFormatUint8x2),
	R8G8Sint:  plain("R8G8Sint", 2, 8, Sint, gputypes.TextureFormatRG8Sint, gputypes.VertexFormatSint8x2),
	R8G8Srgb:  plain("R8G8Srgb", 2, 8, Srgb, noTex, noVert),

	R8G8B8Unorm: plain("R8G8B8Unorm", 3, 8, Unorm, noTex, noVert),
	R8G8B8Snorm: plain("R8G8B8Snorm", 3, 8, Snorm, noTex, noVert),
	R8G8B8Uint:  plain("R8G8B8Uint", 3, 8, Uint, noTex, noVert),
	R8G8B8Sint:  plain("R8G8B8Sint", 3, 8, Sint, noTex, noVert),
	R8G8B8Srgb:  plain("R8G8B8Srgb", 3, 8, Srgb, noTex, noVert),
	B8G8R8Unorm: plain("B8G8R8Unorm", 3, 8, Unorm, noTex, noVert),
	B8G8R8Uint:  plain("B8G8R8Uint", 3, 8, Uint, noTex, noVert),
	B8G8R8Srgb:  plain("B8G8R8Srgb", 3, 8, Srgb, noTex, noVert),

	R8G8B8A8Unorm: plain("R8G8B8A8Unorm", 4, 8, Unorm, gputypes.TextureFormatRGBA8Unorm, gputypes.VertexFormatUnorm8x4),
	R8G8B8A8Snorm: plain("R8G8B8A8Snorm", 4, 8, Snorm, gputypes.TextureFormatRGBA8Snorm, gputypes.VertexFormatSnorm8x4),
	R8G8B8A8Uint:  plain("R8G8B8A8Uint", 4, 8, Uint, gputypes.TextureFormatRGBA8Uint, gputypes.VertexFormatUint8x4),
	R8G8B8A8Sint:  plain("R8G8B8A8Sint", 4, 8, Sint, gputypes.TextureFormatRGBA8Sint, gputypes.VertexFormatSint8x4),
	R8G8B8A8Srgb:  plain("R8G8B8A8Srgb", 4, 8, Srgb, gputypes.TextureFormatRGBA8UnormSrgb, noVert),
	B8G8R8A8Unorm: plain("B8G8R8A8Unorm", 4, 8, Unorm, gputypes.TextureFormatBGRA8Unorm, noVert),
	B8G8R8A8Uint:  plain("B8G8R8A8Uint", 4, 8, Uint, noTex, gputypes.VertexFormatUint8x4),
	B8G8R8A8Srgb:  plain("B8G8R8A8Srgb", 4, 8, Srgb, gputypes.TextureFormatBGRA8UnormSrgb, noVert),

	A8B8G8R8UnormPack32:    packed("A8B8G8R8UnormPack32", 32, Unorm, noTex),
	A2R10G10B10UnormPack32: packed("A2R10G10B10UnormPack32", 32, Unorm, noTex),
	A2B10G10R10UnormPack32: packed("A2B10G10R10UnormPack32", 32, Unorm, gputypes.TextureFormatRGB10A2Unorm),
	A2B10G10R10UintPack32:  packed("A2B10G10R10UintPack32", 32, Uint, gputypes.TextureFormatRGB10A2Uint),

	R16Unorm:  plain("R16Unorm", 1, 16, Unorm, gputypes.TextureFormatR16Unorm, noVert),
	R16Snorm:  plain("R16Snorm", 1, 16, Snorm, gputypes.TextureFormatR16Snorm, noVert),
	R16Uint:   plain("R16Uint", 1, 16, Uint, gputypes.TextureFormatR16Uint, noVert),
	R16Sint:   plain("R16Sint", 1, 16, Sint, gputypes.TextureFormatR16Sint, noVert),
	R16Sfloat: plain("R16Sfloat", 1, 16, Sfloat, gputypes.TextureFormatR16Float, noVert),

	R16G16Unorm:  plain("R16G16Unorm", 2, 16, Unorm, gputypes.TextureFormatRG16Unorm, gputypes.VertexFormatUnorm16x2),
	R16G16Snorm:  plain("R16G16Snorm", 2, 16, Snorm, gputypes.TextureFormatRG16Snorm, gputypes.VertexFormatSnorm16x2),
	R16G16Uint:   plain("R16G16Uint", 2, 16, Uint, gputypes.TextureFormatRG16Uint, gputypes.VertexFormatUint16x2),
	R16G16Sint:   plain("R16G16Sint", 2, 16, Sint, gputypes.TextureFormatRG16Sint, gputypes.VertexFormatSint16x2),
	R16G16Sfloat: plain("R16G16Sfloat", 2, 16, Sfloat, gputypes.TextureFormatRG16Float, gputypes.VertexFormatFloat16x2),

	R16G16B16Unorm:  plain("R16G16B16Unorm", 3, 16, Unorm, noTex, noVert),
	R16G16B16Uint:   plain("R16G16B16Uint", 3, 16, Uint, noTex, noVert),
	R16G16B16Sint:   plain("R16G16B16Sint", 3, 16, Sint, noTex, noVert),
	R16G16B16Sfloat: plain("R16G16B16Sfloat", 3, 16, Sfloat, noTex, noVert),

	R16G16B16A16Unorm:  plain("R16G16B16A16Unorm", 4, 16, Unorm, gputypes.TextureFormatRGBA16Unorm, gputypes.VertexFormatUnorm16x4),
	R16G16B16A16Snorm:  plain("R16G16B16A16Snorm", 4, 16, Snorm, gputypes.TextureFormatRGBA16Snorm, gputypes.VertexFormatSnorm16x4),
	R16G16B16A16Uint:   plain("R16G16B16A16Uint", 4, 16, Uint, gputypes.TextureFormatRGBA16Uint, gputypes.VertexFormatUint16x4),
	R16G16B16A16Sint:   plain("R16G16B16A16Sint", 4, 16, Sint, gputypes.TextureFormatRGBA16Sint, gputypes.VertexFormatSint16x4),
	R16G16B16A16Sfloat: plain("R16G16B16A16Sfloat", 4, 16, Sfloat, gputypes.TextureFormatRGBA16Float, gputypes.VertexFormatFloat16x4),

	R32Uint:   plain("R32Uint", 1, 32, Uint, gputypes.TextureFormatR32Uint, gputypes.VertexFormatUint32),
	R32Sint:   plain("R32Sint", 1, 32, Sint, gputypes.TextureFormatR32Sint, gputypes.VertexFormatSint32),
	R32Sfloat: plain("R32Sfloat", 1, 32, Sfloat, gputypes.TextureFormatR32Float, gputypes.VertexFormatFloat32),

	R32G32Uint:   plain("R32G32Uint", 2, 32, Uint, gputypes.TextureFormatRG32Uint, gputypes.VertexFormatUint32x2),
	R32G32Sint:   plain("R32G32Sint", 2, 32, Sint, gputypes.TextureFormatRG32Sint, gputypes.VertexFormatSint32x2),
	R32G32Sfloat: plain("R32G32Sfloat", 2, 32, Sfloat, gputypes.TextureFormatRG32Float, gputypes.VertexFormatFloat32x2),

	R32G32B32Uint:   plain("R32G32B32Uint", 3, 32, Uint, noTex, gputypes.VertexFormatUint32x3),
	R32G32B32Sint:   plain("R32G32B32Sint", 3, 32, Sint, noTex, gputypes.VertexFormatSint32x3),
	R32G32B32Sfloat: plain("R32G32B32Sfloat", 3, 32, Sfloat, noTex, gputypes.VertexFormatFloat32x3),

	R32G32B32A32Uint:   plain("R32G32B32A32Uint", 4, 32, Uint, gputypes.TextureFormatRGBA32Uint, gputypes.VertexFormatUint32x4),
	R32G32B32A32Sint:   plain("R32G32B32A32Sint", 4, 32, Sint, gputypes.TextureFormatRGBA32Sint, gputypes.VertexFormatSint32x4),
	R32G32B32A32Sfloat: plain("R32G32B32A32Sfloat", 4, 32, Sfloat, gputypes.TextureFormatRGBA32Float, gputypes.VertexFormatFloat32x4),

	R64Sfloat:          plain("R64Sfloat", 1, 64, Sfloat, noTex, noVert),
	R64G64Sfloat:       plain("R64G64Sfloat", 2, 64, Sfloat, noTex, noVert),
	R64G64B64Sfloat:    plain("R64G64B64Sfloat", 3, 64, Sfloat, noTex, noVert),
	R64G64B64A64Sfloat: plain("R64G64B64A64Sfloat", 4, 64, Sfloat, noTex, noVert),

	B10G11R11UfloatPack32: packed("B10G11R11UfloatPack32", 32, Ufloat, gputypes.TextureFormatRG11B10Ufloat),
	E5B9G9R9UfloatPack32:  packed("E5B9G9R9UfloatPack32", 32, Ufloat, gputypes.TextureFormatRGB9E5Ufloat),

	BC1RGBUnorm:  block("BC1RGBUnorm", 64, 4, 4, Unorm, gputypes.TextureFormatBC1RGBAUnorm),
	BC1RGBSrgb:   block("BC1RGBSrgb", 64, 4, 4, Srgb, gputypes.TextureFormatBC1RGBAUnormSrgb),
	BC1RGBAUnorm: block("BC1RGBAUnorm", 64, 4, 4, Unorm, gputypes.TextureFormatBC1RGBAUnorm),
	BC1RGBASrgb:  block("BC1RGBASrgb", 64, 4, 4, Srgb, gputypes.TextureFormatBC1RGBAUnormSrgb),
	BC2Unorm:     block("BC2Unorm", 128, 4, 4, Unorm, gputypes.TextureFormatBC2RGBAUnorm),
	BC2Srgb:      block("BC2Srgb", 128, 4, 4, Srgb, gputypes.TextureFormatBC2RGBAUnormSrgb),
	BC3Unorm:     block("BC3Unorm", 128, 4, 4, Unorm, gputypes.TextureFormatBC3RGBAUnorm),
	BC3Srgb:      block("BC3Srgb", 128, 4, 4, Srgb, gputypes.TextureFormatBC3RGBAUnormSrgb),
	BC4Unorm:     block("BC4Unorm", 64, 4, 4, Unorm, gputypes.TextureFormatBC4RUnorm),
	BC4Snorm:     block("BC4Snorm", 64, 4, 4, Snorm, gputypes.TextureFormatBC4RSnorm),
	BC5Unorm:     block("BC5Unorm", 128, 4, 4, Unorm, gputypes.TextureFormatBC5RGUnorm),
	BC5Snorm:     block("BC5Snorm", 128, 4, 4, Snorm, gputypes.TextureFormatBC5RGSnorm),
	BC6HUfloat:   block("BC6HUfloat", 128, 4, 4, Ufloat, gputypes.TextureFormatBC6HRGBUfloat),
	BC6HSfloat:   block("BC6HSfloat", 128, 4, 4, Sfloat, gputypes.TextureFormatBC6HRGBFloat),
	BC7Unorm:     block("BC7Unorm", 128, 4, 4, Unorm, gputypes.TextureFormatBC7RGBAUnorm),
	BC7Srgb:      block("BC7Srgb", 128, 4, 4, Srgb, gputypes.TextureFormatBC7RGBAUnormSrgb),

	ETC2R8G8B8Unorm:   block("ETC2R8G8B8Unorm", 64, 4, 4, Unorm, gputypes.TextureFormatETC2RGB8Unorm),
	ETC2R8G8B8Srgb:    block("ETC2R8G8B8Srgb", 64, 4, 4, Srgb, gputypes.TextureFormatETC2RGB8UnormSrgb),
	ETC2R8G8B8A1Unorm: block("ETC2R8G8B8A1Unorm", 64, 4, 4, Unorm, gputypes.TextureFormatETC2RGB8A1Unorm),
	ETC2R8G8B8A1Srgb:  block("ETC2R8G8B8A1Srgb", 64, 4, 4, Srgb, gputypes.TextureFormatETC2RGB8A1UnormSrgb),
	ETC2R8G8B8A8Unorm: block("ETC2R8G8B8A8Unorm", 128, 4, 4, Unorm, gputypes.TextureFormatETC2RGBA8Unorm),
	ETC2R8G8B8A8Srgb:  block("ETC2R8G8B8A8Srgb", 128, 4, 4, Srgb, gputypes.TextureFormatETC2RGBA8UnormSrgb),
	EACR11Unorm:       block("EACR11Unorm", 64, 4, 4, Unorm, gputypes.TextureFormatEACR11Unorm),
	EACR11Snorm:       block("EACR11Snorm", 64, 4, 4, Snorm, gputypes.TextureFormatEACR11Snorm),
	EACR11G11Unorm:    block("EACR11G11Unorm", 128, 4, 4, Unorm, gputypes.TextureFormatEACRG11Unorm),
	EACR11G11Snorm:    block("EACR11G11Snorm", 128, 4, 4, Snorm, gputypes.TextureFormatEACRG11Snorm),

	ASTC4x4Unorm:   block("ASTC4x4Unorm", 128, 4, 4, Unorm, gputypes.TextureFormatASTC4x4Unorm),
	ASTC4x4Srgb:    block("ASTC4x4Srgb", 128, 4, 4, Srgb, gputypes.TextureFormatASTC4x4UnormSrgb),
	ASTC5x4Unorm:   block("ASTC5x4Unorm", 128, 5, 4, Unorm, gputypes.TextureFormatASTC5x4Unorm),
	ASTC5x4Srgb:    block("ASTC5x4Srgb", 128, 5, 4, Srgb, gputypes.TextureFormatASTC5x4UnormSrgb),
	ASTC5x5Unorm:   block("ASTC5x5Unorm", 128, 5, 5, Unorm, gputypes.TextureFormatASTC5x5Unorm),
	ASTC5x5Srgb:    block("ASTC5x5Srgb", 128, 5, 5, Srgb, gputypes.TextureFormatASTC5x5UnormSrgb),
	ASTC6x5Unorm:   block("ASTC6x5Unorm", 128, 6, 5, Unorm, gputypes.TextureFormatASTC6x5Unorm),
	ASTC6x5Srgb:    block("ASTC6x5Srgb", 128, 6, 5, Srgb, gputypes.TextureFormatASTC6x5UnormSrgb),
	ASTC6x6Unorm:   block("ASTC6x6Unorm", 128, 6, 6, Unorm, gputypes.TextureFormatASTC6x6Unorm),
	ASTC6x6Srgb:    block("ASTC6x6Srgb", 128, 6, 6, Srgb, gputypes.TextureFormatASTC6x6UnormSrgb),
	ASTC8x5Unorm:   block("ASTC8x5Unorm", 128, 8, 5, Unorm, gputypes.TextureFormatASTC8x5Unorm),
	ASTC8x5Srgb:    block("ASTC8x5Srgb", 128, 8, 5, Srgb, gputypes.TextureFormatASTC8x5UnormSrgb),
	ASTC8x6Unorm:   block("ASTC8x6Unorm", 128, 8, 6, Unorm, gputypes.TextureFormatASTC8x6Unorm),
	ASTC8x6Srgb:    block("ASTC8x6Srgb", 128, 8, 6, Srgb, gputypes.TextureFormatASTC8x6UnormSrgb),
	ASTC8x8Unorm:   block("ASTC8x8Unorm", 128, 8, 8, Unorm, gputypes.TextureFormatASTC8x8Unorm),
	ASTC8x8Srgb:    block("ASTC8x8Srgb", 128, 8, 8, Srgb, gputypes.TextureFormatASTC8x8UnormSrgb),
	ASTC10x5Unorm:  block("ASTC10x5Unorm", 128, 10, 5, Unorm, gputypes.TextureFormatASTC10x5Unorm),
	ASTC10x5Srgb:   block("ASTC10x5Srgb", 128, 10, 5, Srgb, gputypes.TextureFormatASTC10x5UnormSrgb),
	ASTC10x6Unorm:  block("ASTC10x6Unorm", 128, 10, 6, Unorm, gputypes.TextureFormatASTC10x6Unorm),
	ASTC10x6Srgb:   block("ASTC10x6Srgb", 128, 10, 6, Srgb, gputypes.TextureFormatASTC10x6UnormSrgb),
	ASTC10x8Unorm:  block("ASTC10x8Unorm", 128, 10, 8, Unorm, gputypes.TextureFormatASTC10x8Unorm),
	ASTC10x8Srgb:   block("ASTC10x8Srgb", 128, 10, 8, Srgb, gputypes.TextureFormatASTC10x8UnormSrgb),
	ASTC10x10Unorm: block("ASTC10x10Unorm", 128, 10, 10, Unorm, gputypes.TextureFormatASTC10x10Unorm),
	ASTC10x10Srgb:  block("ASTC10x10Srgb", 128, 10, 10, Srgb, gputypes.TextureFormatASTC10x10UnormSrgb),
	ASTC12x10Unorm: block("ASTC12x10Unorm", 128, 12, 10, Unorm, gputypes.TextureFormatASTC12x10Unorm),
	ASTC12x10Srgb:  block("ASTC12x10Srgb", 128, 12, 10, Srgb, gputypes.TextureFormatASTC12x10UnormSrgb),
	ASTC12x12Unorm: block("ASTC12x12Unorm", 128, 12, 12, Unorm, gputypes.TextureFormatASTC12x12Unorm),
	ASTC12x12Srgb:  block("ASTC12x12Srgb", 128, 12, 12, Srgb, gputypes.TextureFormatASTC12x12UnormSrgb),
}
