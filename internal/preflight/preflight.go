// Package preflight verifies the runtime environment before the daemon
// starts: credentials present, writable state directories, and a reachable
// platform API.
package preflight

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"scribe/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	results = append(results, CheckCredentials(cfg))

	if cfg.Logging.Dir != "" {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Logging.Dir))
	}
	if cfg.Journal.Dir != "" {
		results = append(results, CheckDirectoryAccess("Journal directory", cfg.Journal.Dir))
	}

	results = append(results, CheckAPIHost(ctx, cfg.App.APIHost))
	return results
}

// Passed reports whether every result passed.
func Passed(results []Result) bool {
	for _, result := range results {
		if !result.Passed {
			return false
		}
	}
	return true
}

// CheckCredentials verifies the app credentials and callback base are set.
func CheckCredentials(cfg *config.Config) Result {
	name := "App credentials"
	var missing []string
	if strings.TrimSpace(cfg.App.AppID) == "" {
		missing = append(missing, "app_id")
	}
	if strings.TrimSpace(cfg.App.AppSecret) == "" {
		missing = append(missing, "app_secret")
	}
	if strings.TrimSpace(cfg.App.RedirectBase) == "" {
		missing = append(missing, "redirect_base")
	}
	if len(missing) > 0 {
		return Result{Name: name, Detail: "missing " + strings.Join(missing, ", ")}
	}
	return Result{Name: name, Passed: true, Detail: "configured"}
}

// CheckDirectoryAccess verifies that the directory exists and is
// readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckAPIHost verifies the platform API answers at all. Any HTTP response
// counts; only transport failures fail the check.
func CheckAPIHost(ctx context.Context, host string) Result {
	name := "Platform API"
	host = strings.TrimRight(strings.TrimSpace(host), "/")
	if host == "" {
		return Result{Name: name, Detail: "api_host not configured"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(checkCtx, http.MethodGet, host+"/open-apis/auth/v3/tenant_access_token/internal", nil)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("reachability check failed (%v)", err)}
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("unreachable (%v)", err)}
	}
	defer resp.Body.Close()
	return Result{Name: name, Passed: true, Detail: "reachable"}
}
