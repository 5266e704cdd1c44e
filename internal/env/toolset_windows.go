//go:build windows

package env

import (
	"github.com/benv-build/benv/internal/msg"
	"github.com/heaths/go-vssetup"
)

// DetectToolsets enumerates installed Visual Studio instances through
// the setup API.
func DetectToolsets() []Toolset {
	instances, err := vssetup.Instances(false)
	if err != nil {
		msg.Warn("could not enumerate Visual Studio instances: %v", err)
		return nil
	}

	var toolsets []Toolset
	for _, instance := range instances {
		var t Toolset
		if t.Name, err = instance.DisplayName(0); err != nil {
			instance.Close()
			continue
		}
		if t.Version, err = instance.InstallationVersion(); err != nil {
			instance.Close()
			continue
		}
		if t.Path, err = instance.InstallationPath(); err != nil {
			instance.Close()
			continue
		}
		instance.Close()
		toolsets = append(toolsets, t)
	}
	return toolsets
}
