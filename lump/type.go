package lump

// Type identifies a lump by its fixed directory index.
type Type int

const (
	Entities Type = iota
	Planes
	TexData
	Vertexes
	Visibility
	Nodes
	TexInfo
	Faces
	Lighting
	Occlusion
	Leafs
	FaceIDs
	Edges
	Surfedges
	Models
	WorldLights
	LeafFaces
	LeafBrushes
	Brushes
	BrushSides
	Areas
	AreaPortals
	PropCollision
	PropHulls
	PropHullVerts
	PropTris
	DispInfo
	OriginalFaces
	PhysDisp
	PhysCollide
	VertNormals
	VertNormalIndices
	DispLightmapAlphas
	DispVerts
	DispLightmapSamplePositions
	GameLump
	LeafWaterData
	Primitives
	PrimVerts
	PrimIndices
	Pakfile
	ClipPortalVerts
	Cubemaps
	TexDataStringData
	TexDataStringTable
	Overlays
	LeafMinDistToWater
	FaceMacroTextureInfo
	DispTris
	PhysCollideSurface
	WaterOverlays
	LeafAmbientIndexHDR
	LeafAmbientIndex
	LightingHDR
	WorldLightsHDR
	LeafAmbientLightingHDR
	LeafAmbientLighting
	XZipPakfile
	FacesHDR
	MapFlags
	OverlayFades
	OverlaySystemLevels
	PhysLevel
	DispMultiblend
)

// NumGeneric is the descriptor count for every dialect except Titanfall.
const NumGeneric = 64

// minVersion gives, per lump type, the lowest BSP version at which the
// lump is readable; -1 means "always". Values reflect the reference
// compiler's version gates for the lumps added after the original VBSP 19
// release (HDR lighting, overlay fades/levels, multiblend displacements).
var minVersion = map[Type]int{
	FacesHDR:            20,
	LightingHDR:         20,
	WorldLightsHDR:      20,
	LeafAmbientIndexHDR: 20,
	OverlayFades:        20,
	OverlaySystemLevels: 21,
	DispMultiblend:      21,
	PhysLevel:           21,
}

// CanRead reports whether a lump of this type is available in a file of
// the given BSP version.
func (t Type) CanRead(fileVersion int) bool {
	min, ok := minVersion[t]
	if !ok {
		return true
	}
	return fileVersion >= min
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "Unknown"
}

var typeNames = map[Type]string{
	Entities:                    "Entities",
	Planes:                      "Planes",
	TexData:                     "TexData",
	Vertexes:                    "Vertexes",
	Visibility:                  "Visibility",
	Nodes:                       "Nodes",
	TexInfo:                     "TexInfo",
	Faces:                       "Faces",
	Lighting:                    "Lighting",
	Occlusion:                   "Occlusion",
	Leafs:                       "Leafs",
	FaceIDs:                     "FaceIDs",
	Edges:                       "Edges",
	Surfedges:                   "Surfedges",
	Models:                      "Models",
	WorldLights:                 "WorldLights",
	LeafFaces:                   "LeafFaces",
	LeafBrushes:                 "LeafBrushes",
	Brushes:                     "Brushes",
	BrushSides:                  "BrushSides",
	Areas:                       "Areas",
	AreaPortals:                 "AreaPortals",
	DispInfo:                    "DispInfo",
	OriginalFaces:               "OriginalFaces",
	PhysDisp:                    "PhysDisp",
	PhysCollide:                 "PhysCollide",
	VertNormals:                 "VertNormals",
	VertNormalIndices:           "VertNormalIndices",
	DispLightmapAlphas:          "DispLightmapAlphas",
	DispVerts:                   "DispVerts",
	DispLightmapSamplePositions: "DispLightmapSamplePositions",
	GameLump:                    "GameLump",
	LeafWaterData:               "LeafWaterData",
	Primitives:                  "Primitives",
	PrimVerts:                   "PrimVerts",
	PrimIndices:                 "PrimIndices",
	Pakfile:                     "Pakfile",
	ClipPortalVerts:             "ClipPortalVerts",
	Cubemaps:                    "Cubemaps",
	TexDataStringData:           "TexDataStringData",
	TexDataStringTable:          "TexDataStringTable",
	Overlays:                    "Overlays",
	LeafMinDistToWater:          "LeafMinDistToWater",
	FaceMacroTextureInfo:        "FaceMacroTextureInfo",
	DispTris:                    "DispTris",
	WaterOverlays:               "WaterOverlays",
	LeafAmbientIndexHDR:         "LeafAmbientIndexHDR",
	LeafAmbientIndex:            "LeafAmbientIndex",
	LightingHDR:                 "LightingHDR",
	WorldLightsHDR:              "WorldLightsHDR",
	LeafAmbientLightingHDR:      "LeafAmbientLightingHDR",
	LeafAmbientLighting:         "LeafAmbientLighting",
	XZipPakfile:                 "XZipPakfile",
	FacesHDR:                    "FacesHDR",
	MapFlags:                    "MapFlags",
	OverlayFades:                "OverlayFades",
	OverlaySystemLevels:         "OverlaySystemLevels",
	PhysLevel:                   "PhysLevel",
	DispMultiblend:              "DispMultiblend",
}
