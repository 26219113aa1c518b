// Package reconcile carries template operations over JSON-RPC 2.0.
//
// [Client] implements [template.Reconciler] and calls a remote engine;
// [Server] exposes an [Engine] on a stream or a listener. Documents travel
// as YAML text.
//
// Methods:
//
//	template/reconcile  ReconcileParams -> ReconcileResult
//	template/resolve    ResolveParams   -> ResolveResult
//	template/refresh    RefreshParams   -> RefreshResult
//	template/inputs     InputsParams    -> InputsResult
//
// Template errors are returned in the Errors field of results so that
// their kinds survive the round trip.
package reconcile
