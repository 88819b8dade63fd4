package health

import (
	"context"

	"github.com/containerd/containerd"
	"github.com/containerd/containerd/namespaces"
)

const containerdNamespace = "jiji"

// ContainerdProber asks a containerd daemon whether a container's task is
// running. It is adapted from the teacher's ContainerdRuntime.IsRunning
// (pkg/runtime/containerd.go), used here as an alternate liveness backend
// selectable via JIJI_ENGINE=containerd instead of the docker/podman CLI.
type ContainerdProber struct {
	client *containerd.Client
}

// NewContainerdProber dials the containerd socket at sockPath.
func NewContainerdProber(sockPath string) (*ContainerdProber, error) {
	client, err := containerd.New(sockPath)
	if err != nil {
		return nil, err
	}
	return &ContainerdProber{client: client}, nil
}

// Close releases the underlying containerd client connection.
func (p *ContainerdProber) Close() error {
	if p.client == nil {
		return nil
	}
	return p.client.Close()
}

// IsRunning implements Prober. Any lookup failure (container absent, no
// task, status query error) is reported as "not running", never as an
// error — a missing container is not a probe error, it is a not-running
// answer.
func (p *ContainerdProber) IsRunning(ctx context.Context, containerID string) (bool, error) {
	ctx = namespaces.WithNamespace(ctx, containerdNamespace)

	container, err := p.client.LoadContainer(ctx, containerID)
	if err != nil {
		return false, nil
	}

	task, err := container.Task(ctx, nil)
	if err != nil {
		return false, nil
	}

	status, err := task.Status(ctx)
	if err != nil {
		return false, nil
	}

	return status.Status == containerd.Running || status.Status == containerd.Paused, nil
}
