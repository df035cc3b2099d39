package server

import (
	"sort"
	"strings"

	"github.com/kbukum/eventstream/bootstrap"
)

// Routes registered by RegisterDefaultEndpoints.
var systemPaths = map[string]bool{
	"/health": true,
	"/ready":  true,
	"/live":   true,
	"/info":   true,
}

// TrackRoutes adds every registered Gin route to the bootstrap summary,
// API routes first. Call after all routes are registered.
func (s *Server) TrackRoutes(summary *bootstrap.Summary) {
	routes := s.engine.Routes()

	sort.Slice(routes, func(i, j int) bool {
		iSys := systemPaths[routes[i].Path]
		jSys := systemPaths[routes[j].Path]
		if iSys != jSys {
			return !iSys
		}
		if routes[i].Path != routes[j].Path {
			return routes[i].Path < routes[j].Path
		}
		return methodOrder(routes[i].Method) < methodOrder(routes[j].Method)
	})

	for _, r := range routes {
		handler := formatHandlerName(r.Handler)
		if systemPaths[r.Path] {
			handler += " ⚙️"
		}
		summary.TrackRoute(r.Method, r.Path, handler)
	}
}

// formatHandlerName turns Gin's handler path into something readable:
//
//	"github.com/kbukum/eventstream/server/endpoint.Clients.func1" -> "endpoint.Clients"
//	"main.(*demo).publish-fm" -> "demo.publish"
func formatHandlerName(fullPath string) string {
	name := strings.TrimSuffix(fullPath, "-fm")
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	name = strings.ReplaceAll(name, "(*", "")
	name = strings.ReplaceAll(name, ")", "")

	parts := strings.Split(name, ".")
	for len(parts) > 1 && strings.HasPrefix(parts[len(parts)-1], "func") {
		parts = parts[:len(parts)-1]
	}
	if len(parts) > 2 && parts[0] == "main" {
		parts = parts[1:]
	}
	return strings.Join(parts, ".")
}

// methodOrder returns a sort key for HTTP methods (GET first, DELETE last).
func methodOrder(method string) int {
	switch method {
	case "GET":
		return 0
	case "POST":
		return 1
	case "PUT":
		return 2
	case "PATCH":
		return 3
	case "DELETE":
		return 4
	default:
		return 5
	}
}
