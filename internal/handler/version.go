package handler

import (
	"net/http"
	"os"
	"runtime"
	"runtime/debug"
)

// VersionInfo describes the running build
type VersionInfo struct {
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	GitCommit string `json:"git_commit,omitempty"`
	Modified  bool   `json:"modified,omitempty"`
}

// Version is set with -ldflags "-X .../internal/handler.Version=..."
var Version = "dev"

// HandleVersion reports the build version and VCS revision
// @Summary Build information
// @Tags health
// @Produce json
// @Success 200 {object} VersionInfo
// @Router /version [get]
func HandleVersion() http.HandlerFunc {
	info := buildVersion()
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, info)
	}
}

// buildVersion prefers the linker flag, then VERSION, then "dev". The
// commit comes from the VCS stamp the go tool embeds in the binary.
func buildVersion() VersionInfo {
	info := VersionInfo{Version: Version, GoVersion: runtime.Version()}
	if info.Version == "dev" || info.Version == "" {
		info.Version = "dev"
		if v := os.Getenv("VERSION"); v != "" {
			info.Version = v
		}
	}

	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				info.GitCommit = s.Value
			case "vcs.modified":
				info.Modified = s.Value == "true"
			}
		}
	}
	return info
}
