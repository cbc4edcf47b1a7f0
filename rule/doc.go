// Package rule provides composable structural checks over decomposed chains.
//
// Each stage owns one composed Rule:
//
//	r := rule.Then(
//	    rule.RequireChainCount(1),
//	    rule.RequireEndpointTypes("start", "end"),
//	    rule.RequireExactly(1, "model", "linear_regression", "random_forest"),
//	)
//	res, err := rule.Evaluate(r, store.List())
//
// A failed Result is a normal user-facing outcome. Evaluate returns an error
// only when the instance set itself is structurally broken.
package rule
