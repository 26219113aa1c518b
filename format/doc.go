// Package format names the document encodings understood by parse and
// encode.
package format
