package deps

import (
	"os/exec"
	"strings"
)

// Tool is an external program voxnote shells out to.
type Tool struct {
	Name        string
	VersionArgs []string
	Purpose     string
	// Required tools are needed to record at all.
	Required bool
}

// Status represents the installation status of a dependency
type Status struct {
	Tool      Tool
	Installed bool
	Path      string
	Version   string
}

// Tools lists every program voxnote may run.
func Tools() []Tool {
	return []Tool{
		{Name: "pw-record", VersionArgs: []string{"--version"}, Purpose: "microphone capture", Required: true},
		{Name: "pw-cli", VersionArgs: []string{"--version"}, Purpose: "PipeWire availability check", Required: true},
		{Name: "notify-send", VersionArgs: []string{"--version"}, Purpose: "desktop notifications"},
		{Name: "xdg-open", VersionArgs: []string{"--version"}, Purpose: "navigation = \"browser\""},
		{Name: "wl-copy", VersionArgs: []string{"--version"}, Purpose: "navigation = \"clipboard\""},
	}
}

// Check looks tool up in PATH and records the first line of its version
// output when it has one.
func Check(tool Tool) Status {
	path, err := exec.LookPath(tool.Name)
	if err != nil {
		return Status{Tool: tool, Installed: false}
	}

	status := Status{
		Tool:      tool,
		Installed: true,
		Path:      path,
	}

	if len(tool.VersionArgs) == 0 {
		return status
	}
	output, err := exec.Command(path, tool.VersionArgs...).Output()
	if err == nil {
		lines := strings.Split(string(output), "\n")
		if len(lines) > 0 {
			status.Version = strings.TrimSpace(lines[0])
		}
	}

	return status
}

func CheckAll() []Status {
	tools := Tools()
	out := make([]Status, 0, len(tools))
	for _, tool := range tools {
		out = append(out, Check(tool))
	}
	return out
}

// MissingRequired returns the names of required tools that are not installed.
func MissingRequired(statuses []Status) []string {
	var missing []string
	for _, s := range statuses {
		if s.Tool.Required && !s.Installed {
			missing = append(missing, s.Tool.Name)
		}
	}
	return missing
}
