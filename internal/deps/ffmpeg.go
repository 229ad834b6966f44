package deps

import (
	"context"
	"os/exec"
	"strings"
	"time"
)

// versionTimeout bounds the -version probe so a wedged binary cannot stall startup.
const versionTimeout = 5 * time.Second

// ProbeVersion runs "<command> -version" and returns the version token from
// the banner line (e.g. "6.1.1" from "ffmpeg version 6.1.1 Copyright ...").
// An empty string means the version could not be determined.
func ProbeVersion(ctx context.Context, command string) string {
	command = strings.TrimSpace(command)
	if command == "" {
		return ""
	}
	probeCtx, cancel := context.WithTimeout(ctx, versionTimeout)
	defer cancel()

	output, err := exec.CommandContext(probeCtx, command, "-version").Output()
	if err != nil {
		return ""
	}
	return parseVersionBanner(string(output))
}

func parseVersionBanner(output string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(output), "\n")
	fields := strings.Fields(line)
	for i := 0; i < len(fields)-1; i++ {
		if fields[i] == "version" {
			return fields[i+1]
		}
	}
	return ""
}
