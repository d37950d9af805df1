// Package stringutil holds small string helpers shared by the HTTP packages.
package stringutil

import "strings"

// MakePathPrefixer returns a function that prepends the cleaned base path to a URL path.  An empty
// or "/" base path leaves paths untouched.
func MakePathPrefixer(basePath string) func(string) string {
	basePath = strings.Trim(basePath, "/")
	if basePath == "" {
		return func(p string) string { return p }
	}
	basePath = "/" + basePath
	return func(p string) string {
		if p == "" || p == "/" {
			return basePath + "/"
		}
		if !strings.HasPrefix(p, "/") {
			p = "/" + p
		}
		return basePath + p
	}
}
