package myhttp

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
)

func HostnameWithScheme(r *http.Request) string {
	scheme := "https"
	if r.TLS == nil {
		scheme = "http"
	}

	return fmt.Sprintf("%s://%s", scheme, r.Host)
}

// GuessHostnameWithScheme is the public base url of this instance, for use outside of a request.
// On App Engine that is the default appspot hostname, elsewhere localhost.
func GuessHostnameWithScheme() string {
	projectID := os.Getenv("GOOGLE_CLOUD_PROJECT")
	if projectID != "" {
		return fmt.Sprintf("https://%s.appspot.com", projectID)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	return fmt.Sprintf("http://localhost:%s", port)
}

// SafeRedirectPath only accepts paths on this host; anything else falls back.
func SafeRedirectPath(target string, fallback string) string {
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return fallback
	}

	u, err := url.Parse(target)
	if err != nil || u.IsAbs() || u.Host != "" {
		return fallback
	}

	return target
}
