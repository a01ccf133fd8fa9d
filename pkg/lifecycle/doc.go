// Package lifecycle provides compose.Lifecycle implementations and a registry
// that satisfies compose.LifecycleLoader.
//
// Three kinds of models are available:
//   - Funcs wraps plain Go functions.
//   - RuleModel assigns fields from expressions evaluated by an Evaluator
//     (expr-lang by default, CEL or JavaScript on request).
//   - ScriptModel runs `save(data, component)` and `render(data, component)`
//     functions defined in a JavaScript source.
//
// Data flow for one component:
//
//	acquired data -> Save -> Render -> committed and returned
//
// Models must be safe for concurrent use; the composer calls them from many
// goroutines. Every model in this package builds per-call state (a fresh goja
// runtime, a fresh expression environment) and shares only compiled programs.
package lifecycle
