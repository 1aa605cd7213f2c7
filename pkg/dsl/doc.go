/*
Package dsl provides a fluent builder for host document trees.

It is the programmatic counterpart of the YAML and JSON tree files read by
memory.LoadTree, and is handy for tests and embedded hosts.

Example usage:

	b := dsl.New("site").Named("Landing")
	b.Page("home").Named("Home").Add(
		dsl.Text("title", "Welcome"),
		dsl.Frame("hero").Add(
			dsl.Node("banner", "image"),
			dsl.Text("caption", "Build faster"),
		),
		dsl.Frame("draft").Hidden(),
	)
	b.Page("about")

	tree, err := b.Build()
	if err != nil {
		// handle error
	}
	// tree implements ports.TreeQuery and ports.Document.
*/
package dsl
