package supervisor

import (
	"gopkg.in/yaml.v3"

	"github.com/kplex-io/kplexmux/iface"
)

// endpointSnapshot is the diagnostic view of one live endpoint, safe to
// marshal without exposing transport internals held in Info.
type endpointSnapshot struct {
	Name      string `yaml:"name"`
	Type      string `yaml:"type"`
	Direction string `yaml:"direction"`
	State     string `yaml:"state"`
	Paired    string `yaml:"paired,omitempty"`
}

// topologySnapshot is the full diagnostic dump of a running supervisor.
type topologySnapshot struct {
	QueueSize int                `yaml:"queue_size"`
	Inputs    []endpointSnapshot `yaml:"inputs"`
	Outputs   []endpointSnapshot `yaml:"outputs"`
}

// DumpTopology renders the current set of active inputs and outputs as YAML,
// for operators inspecting a running instance (e.g. via a debug endpoint).
// It takes a snapshot under the router's lock and is safe to call
// concurrently with normal operation.
func (s *Supervisor) DumpTopology() ([]byte, error) {
	snap := topologySnapshot{QueueSize: s.cfg.Global.QueueSize}

	s.router.WithOutputsLocked(func(outputs *iface.Endpoint) {
		for ep := outputs; ep != nil; ep = ep.Next() {
			snap.Outputs = append(snap.Outputs, snapshotOf(ep))
		}
	})

	s.router.WithInputsLocked(func(inputs *iface.Endpoint) {
		for ep := inputs; ep != nil; ep = ep.Next() {
			snap.Inputs = append(snap.Inputs, snapshotOf(ep))
		}
	})

	return yaml.Marshal(snap)
}

func snapshotOf(ep *iface.Endpoint) endpointSnapshot {
	s := endpointSnapshot{
		Name:      ep.Name,
		Type:      ep.Type.String(),
		Direction: ep.Direction.String(),
		State:     ep.State.String(),
	}
	if ep.Pair != nil {
		s.Paired = ep.Pair.Name
	}
	return s
}
