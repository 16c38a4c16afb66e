// annotations.go defines the annotation types, argument constants, and parser for the
// Vantage WGSL shader pre-processor. Annotations are single-line WGSL comments prefixed
// with @vtg: that drive automatic struct injection, bind group declaration, and resource
// provider registration. The parsed results are stored as Annotation values and consumed
// by the PreProcessor and the render nodes to wire GPU resources without manual low-level
// plumbing.
package shader

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// annotationPrefix is the marker that identifies a Vantage annotation within a WGSL comment line.
// Every annotation must appear on a line beginning with "//" followed by this prefix.
const annotationPrefix = "@vtg:"

// AnnotationType identifies the kind of annotation parsed from a WGSL comment line.
// Each type corresponds to a distinct pre-processor action and produces different
// fields on the resulting Annotation struct.
type AnnotationType string

const (
	// annotationTypeInclude injects the WGSL source of a registered struct definition
	// into the shader at the annotation site. The struct source is embedded from the
	// corresponding Go GPU type's .wgsl asset file. This annotation does not produce
	// a declaration and is consumed entirely during pre-processing.
	//
	// Syntax: //@vtg:include <struct_type>
	//
	// Example: //@vtg:include viewport_uniform
	annotationTypeInclude AnnotationType = "include"

	// AnnotationTypeBindingGroup generates a WGSL @group/@binding variable declaration
	// and appends an Annotation to the PreProcessor's declarations list. The declaration
	// carries the group index, binding index, and the resolved struct type, enabling a
	// render node to semantically match bindings to resource providers without string lookups.
	//
	// Syntax: //@vtg:group <group> <binding> <address_space> <var_name> <type>
	//
	// Example: //@vtg:group 0 0 storage_uniform viewport viewport_uniform
	AnnotationTypeBindingGroup AnnotationType = "group"

	// AnnotationTypeProvider registers a resource provider identity for a group and binding
	// without generating any WGSL output. The WGSL binding declaration remains hand-written
	// in the shader source directly below the annotation. This is used for bindings that
	// contain raw WGSL types (textures, samplers, flat arrays of primitives) which have no
	// corresponding registered struct in the pre-processor's struct registry.
	//
	// An optional binding role can be appended after the provider identity to declare the
	// semantic purpose of an individual binding within a multi-binding provider group.
	//
	// Syntax:
	//   //@vtg:provider <group> <binding> <provider_identity>
	//   //@vtg:provider <group> <binding> <provider_identity> <binding_role>
	//
	// Examples:
	//   //@vtg:provider 1 0 series close_column
	//   //@vtg:provider 3 0 glyph_atlas
	AnnotationTypeProvider AnnotationType = "provider"
)

// Annotation represents a single parsed @vtg: annotation from a WGSL shader source line.
// It carries the annotation type, its arguments, the source line number, and optional
// group/binding indices. Annotations of type AnnotationTypeBindingGroup and
// AnnotationTypeProvider are appended to the PreProcessor's declarations list for
// consumption by a render node during resource wiring.
type Annotation struct {
	// Type identifies which annotation was parsed (include, group, or provider).
	Type AnnotationType

	// Args holds the annotation's arguments. The contents depend on Type:
	//   - include:  [0] = struct type key (e.g. "viewport_uniform")
	//   - group:    [0] = address space, [1] = var name, [2] = WGSL type key
	//   - provider: [0] = provider identity (e.g. "series", "glyph_atlas"), [1] = binding role (optional)
	Args []AnnotationArg

	// Line is the 1-based line number in the original WGSL source where this annotation
	// was found. Used for error reporting.
	Line int

	// Group is the @group index for group and provider annotations. Nil for include annotations.
	Group *int

	// Binding is the @binding index for group and provider annotations. Nil for include annotations.
	Binding *int
}

// AnnotationArg is a typed string constant used as an argument in annotations.
// Arguments fall into three categories: struct type keys (used with include and group),
// address space identifiers (used with group), and provider identity keys (used with provider).
type AnnotationArg string

// ── Struct type arguments ──────────────────────────────────────────────────────
// These identify registered WGSL struct types. They can appear in @vtg:include annotations
// (to inject the struct source) and in @vtg:group annotations (as the type field, optionally
// wrapped in array<>). Each maps to a Go GPU type with an embedded .wgsl asset file.

const (
	// AnnotationArgViewportUniform identifies the ViewportUniform struct: the visible
	// data-space x/y range plus surface pixel dimensions, uploaded once per frame.
	// Source: model/assets/viewport_uniform.wgsl
	AnnotationArgViewportUniform AnnotationArg = "viewport_uniform"

	// annotationArgSeriesVertex identifies the SeriesVertex struct for a single (time, value)
	// point of a plot/line series.
	// Source: model/assets/series_vertex.wgsl
	annotationArgSeriesVertex AnnotationArg = "series_vertex"

	// annotationArgCandleVertex identifies the CandleVertex struct for one OHLC candle instance.
	// Source: model/assets/candle_vertex.wgsl
	annotationArgCandleVertex AnnotationArg = "candle_vertex"

	// annotationArgTriangleVertex identifies the TriangleVertex struct for a marker/triangle
	// instance (screen-space position, size, palette index).
	// Source: model/assets/triangle_vertex.wgsl
	annotationArgTriangleVertex AnnotationArg = "triangle_vertex"

	// AnnotationArgInstanceTransform identifies the InstanceTransform struct holding the
	// orthographic chart-space-to-clip-space transform shared by all render nodes.
	// Source: model/assets/instance_transform.wgsl
	AnnotationArgInstanceTransform AnnotationArg = "instance_transform"

	// AnnotationArgPaletteUniform identifies the PaletteUniform struct (up/down candle
	// colors, line color, background color) driven by the active preset.
	// Source: model/assets/palette_uniform.wgsl
	AnnotationArgPaletteUniform AnnotationArg = "palette_uniform"

	// AnnotationArgAxisUniform identifies the AxisUniform struct describing tick layout
	// (tick count, tick step, orientation flag) for an axis render node.
	// Source: model/assets/axis_uniform.wgsl
	AnnotationArgAxisUniform AnnotationArg = "axis_uniform"

	// AnnotationArgCullRange identifies the CullRange struct: a [startIndex, endIndex)
	// half-open index range (compute.GPUCullRange).
	// Source: compute/assets/cull_range.wgsl
	AnnotationArgCullRange AnnotationArg = "cull_range"

	// AnnotationArgMinMaxResult identifies the MinMaxResult struct produced by the
	// two-stage parallel min/max reduction kernel.
	// Source: compute/assets/minmax_result.wgsl
	AnnotationArgMinMaxResult AnnotationArg = "minmax_result"

	// AnnotationArgCandleBucketUniform identifies the CandleBucketUniform struct
	// configuring the segmented-reduction candle aggregation kernel (bucket width,
	// bucket count, source point count).
	// Source: compute/assets/candle_bucket_uniform.wgsl
	AnnotationArgCandleBucketUniform AnnotationArg = "candle_bucket_uniform"

	// AnnotationArgComputeGlobals identifies the ComputeGlobals struct carrying small
	// scalar parameters (element count, workgroup size) shared by every compute kernel.
	// Source: compute/assets/compute_globals.wgsl
	AnnotationArgComputeGlobals AnnotationArg = "compute_globals"

	// AnnotationArgIndirectArgs identifies the IndirectArgs struct matching WebGPU's
	// DrawIndexedIndirect layout (compute.GPUIndirectArgs).
	// Source: compute/assets/indirect_args.wgsl
	AnnotationArgIndirectArgs AnnotationArg = "indirect_args"
)

// ── Address space arguments ────────────────────────────────────────────────────
// These specify the WGSL variable address space in @vtg:group annotations.
// They map to WGSL var<> declarations.

const (
	// annotationArgStorageTypeUniform maps to var<uniform> in WGSL.
	annotationArgStorageTypeUniform AnnotationArg = "storage_uniform"

	// annotationArgStorageTypeRead maps to var<storage, read> in WGSL.
	annotationArgStorageTypeRead AnnotationArg = "storage_read"

	// annotationArgStorageTypeReadWrite maps to var<storage, read_write> in WGSL.
	annotationArgStorageTypeReadWrite AnnotationArg = "storage_read_write"
)

// ── Provider identity arguments ────────────────────────────────────────────────
// These identify which ResourcePool-backed resource provider owns a bind group. Used in
// @vtg:provider annotations and matched by a render node's compute/render setup logic
// to wire the correct BindGroupProvider for each group.

const (
	// AnnotationArgViewport identifies the shared viewport provider (ViewportUniform).
	AnnotationArgViewport AnnotationArg = "viewport"

	// AnnotationArgSeries identifies a DataManager-backed column storage buffer provider.
	AnnotationArgSeries AnnotationArg = "series"

	// AnnotationArgPalette identifies the active preset's color palette provider.
	AnnotationArgPalette AnnotationArg = "palette"

	// AnnotationArgGlyphAtlas identifies the pre-baked axis label glyph atlas provider
	// (texture + sampler, owned by ResourcePool's texture pool).
	AnnotationArgGlyphAtlas AnnotationArg = "glyph_atlas"

	// AnnotationArgCulling identifies the compute-produced culling/indirect-draw provider.
	AnnotationArgCulling AnnotationArg = "culling"

	// AnnotationArgComputeScratch identifies a generic compute scratch storage buffer used
	// by the min/max reduction and candle aggregation kernels between passes.
	AnnotationArgComputeScratch AnnotationArg = "compute_scratch"
)

// ── Glyph atlas binding role arguments ─────────────────────────────────────────
// These qualify individual bindings within a glyph_atlas provider group.

const (
	// AnnotationArgGlyphTexture identifies the glyph atlas texture binding.
	AnnotationArgGlyphTexture AnnotationArg = "glyph_texture"

	// AnnotationArgGlyphSampler identifies the sampler paired with the glyph atlas texture.
	AnnotationArgGlyphSampler AnnotationArg = "glyph_sampler"
)

// validStructTypes lists all AnnotationArg values that are accepted as struct type
// arguments in @vtg:include and @vtg:group annotations. Each entry must have a
// corresponding registryEntry in the PreProcessor's structRegistry.
var validStructTypes = []AnnotationArg{
	AnnotationArgViewportUniform,
	annotationArgSeriesVertex,
	annotationArgCandleVertex,
	annotationArgTriangleVertex,
	AnnotationArgInstanceTransform,
	AnnotationArgPaletteUniform,
	AnnotationArgAxisUniform,
	AnnotationArgCullRange,
	AnnotationArgMinMaxResult,
	AnnotationArgCandleBucketUniform,
	AnnotationArgComputeGlobals,
	AnnotationArgIndirectArgs,
}

// validAddressSpaces lists all AnnotationArg values that are accepted as address
// space arguments in @vtg:group annotations. Each maps to a WGSL var<> declaration.
var validAddressSpaces = []AnnotationArg{
	annotationArgStorageTypeUniform,
	annotationArgStorageTypeRead,
	annotationArgStorageTypeReadWrite,
}

// validProviderIdentities lists all AnnotationArg values that are accepted as
// provider identity arguments in @vtg:provider annotations.
var validProviderIdentities = []AnnotationArg{
	AnnotationArgViewport,
	AnnotationArgSeries,
	AnnotationArgPalette,
	AnnotationArgGlyphAtlas,
	AnnotationArgCulling,
	AnnotationArgComputeScratch,
}

// validBindingRoles lists all AnnotationArg values that are accepted as binding
// role qualifiers in @vtg:provider annotations.
var validBindingRoles = []AnnotationArg{
	AnnotationArgGlyphTexture,
	AnnotationArgGlyphSampler,
}

// parseAnnotation attempts to parse a single line of WGSL source as an @vtg: annotation.
// Returns nil with no error for lines that do not contain the annotation prefix. Returns
// a populated Annotation for valid annotations, or an error describing the problem for
// malformed annotations with correct prefix but invalid syntax or unknown arguments.
//
// Parameters:
//   - line: the raw WGSL source line to parse
//   - lineNum: the 1-based line number for error reporting
//
// Returns:
//   - *Annotation: the parsed annotation, or nil if the line is not an annotation
//   - error: a descriptive error if the annotation is malformed
func parseAnnotation(line string, lineNum int) (*Annotation, error) {
	trimmed := strings.TrimSpace(line)
	_, after, ok := strings.Cut(trimmed, annotationPrefix)
	if !ok {
		return nil, nil
	}

	args := strings.Fields(after)
	if len(args) == 0 {
		return nil, fmt.Errorf("line %d: empty @vtg annotation", lineNum)
	}

	switch args[0] {
	case string(annotationTypeInclude):
		if len(args) != 2 {
			return nil, fmt.Errorf("line %d: @vtg include annotation requires exactly one argument", lineNum)
		}
		if !slices.Contains(validStructTypes, AnnotationArg(args[1])) {
			return nil, fmt.Errorf("line %d: unknown struct type %q in @vtg include annotation", lineNum, args[1])
		}
		return &Annotation{
			Type: annotationTypeInclude,
			Args: []AnnotationArg{AnnotationArg(args[1])},
			Line: lineNum,
		}, nil
	case string(AnnotationTypeBindingGroup):
		if len(args) != 6 {
			return nil, fmt.Errorf("line %d: @vtg group annotation requires exactly five arguments (group number, binding number, address space, variable name, struct type)", lineNum)
		}
		groupInt, err := strconv.Atoi(args[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid group number %q in @vtg group annotation: %v", lineNum, args[1], err)
		}
		bindingInt, err := strconv.Atoi(args[2])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid binding number %q in @vtg group annotation: %v", lineNum, args[2], err)
		}
		if !slices.Contains(validAddressSpaces, AnnotationArg(args[3])) {
			return nil, fmt.Errorf("line %d: unknown address space %q in @vtg group annotation", lineNum, args[3])
		}
		typeArg := args[5]
		if inner, ok := strings.CutPrefix(typeArg, "array<"); ok {
			inner = strings.TrimSuffix(inner, ">")
			if !slices.Contains(validStructTypes, AnnotationArg(inner)) {
				return nil, fmt.Errorf("line %d: unknown array element type %q in @vtg group annotation", lineNum, inner)
			}
		} else {
			if !slices.Contains(validStructTypes, AnnotationArg(typeArg)) {
				return nil, fmt.Errorf("line %d: unknown struct type %q in @vtg group annotation", lineNum, typeArg)
			}
		}
		return &Annotation{
			Type:    AnnotationTypeBindingGroup,
			Args:    []AnnotationArg{AnnotationArg(args[3]), AnnotationArg(args[4]), AnnotationArg(args[5])},
			Line:    lineNum,
			Group:   &groupInt,
			Binding: &bindingInt,
		}, nil
	case string(AnnotationTypeProvider):
		if len(args) < 4 || len(args) > 5 {
			return nil, fmt.Errorf("line %d: @vtg provider annotation requires three or four arguments (group, binding, provider identity[, binding role])", lineNum)
		}
		groupInt, err := strconv.Atoi(args[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid group number %q: %v", lineNum, args[1], err)
		}
		bindingInt, err := strconv.Atoi(args[2])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid binding number %q in @vtg provider annotation: %v", lineNum, args[2], err)
		}
		if !slices.Contains(validProviderIdentities, AnnotationArg(args[3])) {
			return nil, fmt.Errorf("line %d: unknown provider identity %q in @vtg provider annotation", lineNum, args[3])
		}
		providerArgs := []AnnotationArg{AnnotationArg(args[3])}
		if len(args) == 5 {
			if !slices.Contains(validBindingRoles, AnnotationArg(args[4])) {
				return nil, fmt.Errorf("line %d: unknown binding role %q in @vtg provider annotation", lineNum, args[4])
			}
			providerArgs = append(providerArgs, AnnotationArg(args[4]))
		}
		return &Annotation{
			Type:    AnnotationTypeProvider,
			Args:    providerArgs,
			Line:    lineNum,
			Group:   &groupInt,
			Binding: &bindingInt,
		}, nil
	default:
		return nil, fmt.Errorf("line %d: unknown @vtg annotation type %q", lineNum, args[0])
	}
}
