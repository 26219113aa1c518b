// Package template resolves template references inside pipeline
// documents.
//
// A reference is a map stored under the key "template" of an owner map
// (a pipeline, stage or step):
//
//	stage:
//	  identifier: s1
//	  name: build
//	  template:
//	    templateRef: org.build
//	    versionLabel: v1
//	    templateInputs:
//	      spec:
//	        script: echo hi
//
// [Resolver.Resolve] replaces every reference with the referenced template
// body, expanding references inside that body first and then merging the
// caller's templateInputs on top. [ExtractSkeleton] derives the runtime
// inputs of a template body and [Refresher.Refresh] migrates existing
// templateInputs blocks to the current shape of their templates.
//
// Runtime inputs are string leaves starting with "<+input>", optionally
// followed by validators:
//
//	<+input>.allowedValues(dev,prod)
//	<+input>.regex(^v[0-9]+$)
//	<+input>.default(dev)
//
// # Errors
//
// Reference, merge and validation problems across a document are
// collected into [Errors]. Recursion limits, remote reconciliation
// failures, store failures and cancellation abort the call at once.
// Every entry is an [*Error] and matches its kind with errors.Is.
package template
