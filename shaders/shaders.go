package shaders

import (
	_ "embed"
)

//go:embed rocks.wgsl
var RocksWGSL string

//go:embed mesh.wgsl
var MeshWGSL string

//go:embed starfield.wgsl
var StarfieldWGSL string

//go:embed text.wgsl
var TextWGSL string
