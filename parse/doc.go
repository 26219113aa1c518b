// Package parse decodes YAML and JSON documents into ir nodes.
//
// # Usage
//
//	node, err := parse.Parse(data)
//	if err != nil {
//	    return err
//	}
//
//	// JSON input
//	node, err := parse.Parse(data, parse.ParseJSON())
//
// Object key order is preserved. Duplicate keys are rejected.
//
// # Related Packages
//
//   - github.com/stagecraft/tplmerge/ir - IR representation
//   - github.com/stagecraft/tplmerge/encode - Encode IR to text
package parse
