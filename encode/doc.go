// Package encode encodes IR nodes to block YAML or indented JSON.
//
// # Usage
//
//	err := encode.Encode(node, os.Stdout)
//
//	// JSON with terminal colors
//	err := encode.Encode(node, os.Stdout,
//	    encode.EncodeFormat(format.JSONFormat),
//	    encode.EncodeColors(encode.NewColors()))
//
// Object key order is preserved. Tags are not encoded.
//
// # Related Packages
//
//   - github.com/stagecraft/tplmerge/ir - IR representation
//   - github.com/stagecraft/tplmerge/parse - Parse text to IR
package encode
