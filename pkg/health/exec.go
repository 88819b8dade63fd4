package health

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
)

// CLIProber asks docker or podman whether a container is running, via
// `<engine> ps -q --filter id=<container>` (spec §6's container-engine
// contract). A non-empty stdout means the engine knows of a running
// container with that ID prefix.
type CLIProber struct {
	Engine string // "docker" or "podman"
}

// NewCLIProber builds a CLIProber for the given engine binary name.
func NewCLIProber(engine string) *CLIProber {
	return &CLIProber{Engine: engine}
}

// IsRunning implements Prober.
func (p *CLIProber) IsRunning(ctx context.Context, containerID string) (bool, error) {
	cmd := exec.CommandContext(ctx, p.Engine, "ps", "-q", "--filter", "id="+containerID)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return false, fmt.Errorf("%s ps: %w: %s", p.Engine, err, stderr.String())
	}
	return stdout.Len() > 0, nil
}
