// Package libdiff reports the differences between two documents, such as
// a pipeline before and after its templateInputs were refreshed.
//
// [Lines] produces a line diff of the YAML encodings. [MergePatch]
// produces an RFC 7386 JSON merge patch taking one document to the other.
package libdiff
