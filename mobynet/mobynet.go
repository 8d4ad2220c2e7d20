// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package mobynet

import (
	"context"
	"fmt"
	"strings"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/client"
	"github.com/thediveo/lxkns/log"
)

// DefaultHost is the Docker daemon API endpoint used by Connect.
const DefaultHost = "unix:///var/run/docker.sock"

// Inspector inspects containers, such as a Docker [client.Client].
type Inspector interface {
	ContainerInspect(ctx context.Context, containerID string) (types.ContainerJSON, error)
}

// Connect returns a new Docker client talking to the local Docker daemon,
// negotiating the API version.
func Connect() (*client.Client, error) {
	cln, err := client.NewClientWithOpts(
		client.WithHost(DefaultHost),
		client.WithAPIVersionNegotiation(),
	)
	if err != nil {
		return nil, fmt.Errorf("cannot connect to the Docker daemon: %w", err)
	}
	return cln, nil
}

// NetNSRef takes on the position of the container identified by its name or
// ID and returns a filesystem path referencing the network namespace of this
// container, such as "/proc/666/ns/net". DNS queries and pings can then be
// carried out from the perspective of this container.
func NetNSRef(ctx context.Context, moby Inspector, nameOrID string) (string, error) {
	details, err := moby.ContainerInspect(ctx, nameOrID)
	if err != nil {
		return "", fmt.Errorf("cannot inspect container '%s': %w", nameOrID, err)
	}
	if details.ContainerJSONBase == nil || details.State == nil || details.State.Pid == 0 {
		return "", fmt.Errorf("container '%s' is not running", nameOrID)
	}
	name := strings.TrimPrefix(details.Name, "/") // argh, Docker's "/name" legacy!
	netnsref := fmt.Sprintf("/proc/%d/ns/net", details.State.Pid)
	var networks []string
	if details.NetworkSettings != nil {
		for netname := range details.NetworkSettings.Networks {
			networks = append(networks, netname)
		}
	}
	log.Infof("using network namespace %s of container '%s' attached to networks %v",
		netnsref, name, networks)
	return netnsref, nil
}

// ContainerNetNSRef connects to the local Docker daemon in order to return
// the network namespace reference of the specified container, see also
// [NetNSRef].
func ContainerNetNSRef(ctx context.Context, nameOrID string) (string, error) {
	cln, err := Connect()
	if err != nil {
		return "", err
	}
	defer cln.Close()
	return NetNSRef(ctx, cln, nameOrID)
}
