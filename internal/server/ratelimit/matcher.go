package ratelimit

import "strings"

// unlimited lists method+path pairs that are never limited.
var unlimited = map[string]bool{
	"GET /health": true,
}

// unlimitedConfig marks an endpoint as exempt.
var unlimitedConfig = EndpointConfig{}

// MatchEndpoint finds the configuration for a request. Exact paths win over
// prefixes; nil means the default limit applies.
func MatchEndpoint(path string, method string, configs []EndpointConfig) *EndpointConfig {
	if unlimited[method+" "+path] {
		exempt := unlimitedConfig
		return &exempt
	}

	var prefix *EndpointConfig
	for i := range configs {
		c := &configs[i]
		if c.Method != method {
			continue
		}
		if c.Path == path {
			return c
		}
		if prefix == nil && strings.HasSuffix(c.Path, "/") && strings.HasPrefix(path, c.Path) {
			prefix = c
		}
	}
	return prefix
}
