package berth

// DependencyGraph tracks declared dependencies between named services.
type DependencyGraph struct {
	nodes map[string]*node
	order []string // registration order
}

type node struct {
	name         string
	dependencies []string
}

// NewDependencyGraph creates a new dependency graph.
func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		nodes: make(map[string]*node),
		order: make([]string, 0),
	}
}

// AddNode adds a node with its dependencies.
// Nodes without dependencies keep their registration order when sorted.
func (g *DependencyGraph) AddNode(name string, dependencies []string) {
	if _, exists := g.nodes[name]; !exists {
		g.order = append(g.order, name)
	}

	g.nodes[name] = &node{
		name:         name,
		dependencies: dependencies,
	}
}

// GetDependencies returns the dependency names for a node.
func (g *DependencyGraph) GetDependencies(name string) []string {
	if node, ok := g.nodes[name]; ok {
		return node.dependencies
	}

	return nil
}

// HasNode checks if a node exists in the graph.
func (g *DependencyGraph) HasNode(name string) bool {
	_, ok := g.nodes[name]

	return ok
}

// Missing returns, per node, the declared dependencies that were never added.
func (g *DependencyGraph) Missing() map[string][]string {
	missing := make(map[string][]string)

	for _, name := range g.order {
		for _, dep := range g.nodes[name].dependencies {
			if !g.HasNode(dep) {
				missing[name] = append(missing[name], dep)
			}
		}
	}

	return missing
}

// TopologicalSort returns nodes in dependency order.
// Returns error if circular dependency detected.
func (g *DependencyGraph) TopologicalSort() ([]string, error) {
	visited := make(map[string]bool)
	visiting := make(map[string]bool)
	result := make([]string, 0, len(g.nodes))

	for _, name := range g.order {
		if err := g.visit(name, visited, visiting, nil, &result); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// visit performs DFS traversal, carrying the current path for cycle reports.
func (g *DependencyGraph) visit(name string, visited, visiting map[string]bool, path []string, result *[]string) error {
	if visited[name] {
		return nil
	}

	if visiting[name] {
		cycle := []string{name}
		for i := len(path) - 1; i >= 0 && path[i] != name; i-- {
			cycle = append([]string{path[i]}, cycle...)
		}

		return ErrCircularDependency(append([]string{name}, cycle...))
	}

	node := g.nodes[name]
	if node == nil {
		// unknown dependencies are reported by Missing
		return nil
	}

	visiting[name] = true
	path = append(path, name)

	for _, dep := range node.dependencies {
		if err := g.visit(dep, visited, visiting, path, result); err != nil {
			return err
		}
	}

	visiting[name] = false
	visited[name] = true
	*result = append(*result, name)

	return nil
}
