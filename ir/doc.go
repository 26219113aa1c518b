// Package ir provides the document tree used by the template engine.
//
// # Node Structure
//
// A Node represents a single value in a parsed pipeline or template
// document. Nodes can be:
//
//   - Atomic types: null, boolean, number, string
//   - Composite types: object (key-value pairs), array (ordered list)
//
// The IR works as a recursive tagged union structure, where values are
// placed in fields depending on the node's Type. Traversals switch on Type
// exhaustively rather than inspecting values dynamically.
//
// ## Objects
//
// For ObjectType nodes, Fields[i] is the string key for the value at
// Values[i], so there will always be the same number of fields as values.
// Keys are unique and their order is preserved from the input. Equality
// (see Equal) does not depend on key order.
//
// ## Numbers
//
// Number values are placed under:
//   - Int64: if it is an integer (64-bit signed)
//   - Float64: if it is a floating point number (64-bit IEEE float)
//   - Number: the source text, kept as a fallback
//
// ## Tags
//
// Tag carries metadata that is not part of the document itself. The
// template resolver uses it to remember which template produced a subtree,
// see TagArgs and TagCompose. Tags are never encoded.
//
// # Navigating Nodes
//
// Every child records Parent, ParentIndex and ParentField, so a node can
// report its own kinded path:
//
//	kp := node.KPath() // e.g., "pipeline.stages[0].stage"
//
// and a tree can be walked with one:
//
//	child, err := root.GetKPath("pipeline.stages[0]")
//
// # Thread Safety
//
// Node structures are not thread-safe. Clone nodes before sharing them
// between goroutines.
package ir
