package berth

import "slices"

// ServiceQuery defines criteria for querying services.
type ServiceQuery struct {
	// Lifecycle filters by service lifecycle. Empty matches all.
	Lifecycle string

	// Group filters by service group. Empty matches all.
	Group string

	// Metadata entries must all match.
	Metadata map[string]string

	// Started filters by start state; nil matches all.
	Started *bool
}

// Query returns information about services matching the query, in
// registration order.
//
// Example:
//
//	// every bean provided as a Vehicle
//	results := berth.Query(c, berth.ServiceQuery{
//	    Metadata: map[string]string{"bean.type": "*vehicle.Car"},
//	})
func Query(c Container, query ServiceQuery) []ServiceInfo {
	var results []ServiceInfo

	for _, name := range c.Services() {
		info := c.Inspect(name)

		if query.Lifecycle != "" && info.Lifecycle != query.Lifecycle {
			continue
		}

		if query.Group != "" && !slices.Contains(info.Groups, query.Group) {
			continue
		}

		if !matchesMetadata(info.Metadata, query.Metadata) {
			continue
		}

		if query.Started != nil && info.Started != *query.Started {
			continue
		}

		results = append(results, info)
	}

	return results
}

// QueryNames returns the names of services matching the query.
func QueryNames(c Container, query ServiceQuery) []string {
	results := Query(c, query)
	names := make([]string, len(results))
	for i, info := range results {
		names[i] = info.Name
	}
	return names
}

// FindByGroup returns all services in a specific group.
func FindByGroup(c Container, group string) []ServiceInfo {
	return Query(c, ServiceQuery{Group: group})
}

// FindByLifecycle returns all services with a specific lifecycle.
func FindByLifecycle(c Container, lifecycle string) []ServiceInfo {
	return Query(c, ServiceQuery{Lifecycle: lifecycle})
}

func matchesMetadata(have, want map[string]string) bool {
	for k, v := range want {
		if have[k] != v {
			return false
		}
	}
	return true
}
