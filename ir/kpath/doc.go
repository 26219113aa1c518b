// Package kpath implements kinded paths: dotted field names and bracketed
// array indices, such as "pipeline.stages[0].stage.spec". Fields that
// contain path syntax are double quoted.
package kpath
