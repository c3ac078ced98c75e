package ratelimit

import "strings"

// unmetered lists the routes load balancers and Prometheus poll. They are never
// throttled, whatever the endpoint rules say.
var unmetered = map[string]bool{
	"GET /health":  true,
	"GET /metrics": true,
}

// unlimited is returned for unmetered routes. A zero Limit disables the bucket.
var unlimited = EndpointConfig{}

// MatchEndpoint finds the rule for a request, or nil when only the default
// limit applies. An exact path wins; otherwise the longest rule path ending in
// "/" that prefixes the request path is used, so "/api/companies/" covers
// "/api/companies/{id}/status".
func MatchEndpoint(path, method string, configs []EndpointConfig) *EndpointConfig {
	if unmetered[method+" "+path] {
		rule := unlimited
		return &rule
	}

	var best *EndpointConfig
	for i := range configs {
		rule := &configs[i]
		if rule.Method != method {
			continue
		}
		if rule.Path == path {
			return rule
		}
		if strings.HasSuffix(rule.Path, "/") && strings.HasPrefix(path, rule.Path) &&
			(best == nil || len(rule.Path) > len(best.Path)) {
			best = rule
		}
	}
	return best
}
