package core

import "runtime"

const serverName = "whos-the-ai"

type VersionInfo struct {
	Version  string `json:"version"`
	Revision string `json:"revision"`
	Build    string `json:"build"`
}

var Version = VersionInfo{Version: "dev"}

func SetVersion(version, revision, build string) {
	if version == "" {
		version = "dev"
	}
	Version = VersionInfo{
		Version:  version,
		Revision: revision,
		Build:    build,
	}
}

// ServerHeader is the value of the Server header on every response.
func (v VersionInfo) ServerHeader() string {
	return serverName + "/" + v.Version + " " + runtime.Version() + " (" + runtime.GOOS + "; " + runtime.GOARCH + ")"
}
