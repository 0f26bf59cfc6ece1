package transport

import (
	"net/url"
	"strings"

	"github.com/bunhouse/storefront-go/pkg/model"
)

// IsLoginPath reports whether path is a login route ("/login" or a
// region-prefixed "/om/login"). Used by embedding web shells to avoid
// redirect loops when a session expires on the login screen itself.
func IsLoginPath(path string) bool {
	path = strings.TrimSuffix(path, "/")
	if path == "/login" {
		return true
	}
	parts := strings.Split(strings.TrimPrefix(path, "/"), "/")
	if len(parts) != 2 || parts[1] != "login" {
		return false
	}
	// Only a known region prefix counts; "/api/login" is not a login route.
	_, ok := model.RegionByCode(parts[0])
	return ok
}

// LoginRedirectURL computes the login route for region, preserving the
// originally requested path in a redirect query parameter. Root and login
// paths produce a bare login URL.
func LoginRedirectURL(currentPath string, region model.Region) string {
	base := "/" + region.Code + "/login"
	if currentPath == "" || currentPath == "/" || IsLoginPath(currentPath) {
		return base
	}
	return base + "?redirect=" + url.QueryEscape(currentPath)
}
