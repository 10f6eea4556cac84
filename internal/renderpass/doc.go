// Package renderpass describes the fixed-function GPU state of each
// editor render pass.
//
// A Renderpass is an immutable bundle of shader selection, rasterization,
// depth-stencil and color-blend state. NewCatalog builds the complete set
// once at renderer start-up; per-draw variations go through Draw, which
// yields a Descriptor without touching the catalog.
//
// # Reverse depth
//
// Every depth comparison in the catalog is written for standard depth
// (near=0, far=1) and passed through DepthConvention.Func, which mirrors
// less/greater when reverse depth is configured. The depth clear value
// comes from the same convention.
//
// # Tool stencil protocol
//
// ToolPasses lists six passes that must be drawn in order:
//
//  1. tag_depth_hidden_with_stencil writes stencil 1 where tool geometry
//     is behind scene depth.
//  2. tag_depth_visible_with_stencil writes stencil 2 where it is in front.
//  3. clear_depth forces the depth under tool pixels to the far plane.
//  4. depth_only writes the tool's own depth.
//  5. require_stencil_tag_depth_visible draws opaque color where stencil is 2.
//  6. require_stencil_tag_depth_hidden_and_blend blends color at constant
//     alpha where stencil is 1.
package renderpass
