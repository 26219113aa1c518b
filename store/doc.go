// Package store provides template catalogs for the resolution engine.
//
// [Memory] holds entities in memory. [LoadDir] fills a Memory from a tree
// of template files, each holding one template:
//
//	template:
//	  name: Build
//	  identifier: build
//	  versionLabel: v1
//	  type: Stage
//	  orgIdentifier: default
//	  stableTemplate: true
//	  modules: [ci]
//	  spec:
//	    type: CI
//	    spec:
//	      script: <+input>
//
// Both implement [template.Store].
package store
