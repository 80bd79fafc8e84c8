package chaos

// Run executes source end to end: tokenize, parse, build. This is the
// permissive path and accepts anything; callers wanting a strict gate call
// Validate first. Every call returns a fresh Environment.
func Run(source string) (*Environment, error) {
	tokens := Tokenize(source)
	tree := NewParser(tokens).Parse()
	return BuildEnvironment(tree)
}
