package baremetal

import (
	"fmt"
	"os"

	"github.com/palantir/stacktrace"
	"github.com/red-hat-storage/ocs-resiliency/pkg/cerrors"
	"gopkg.in/yaml.v2"
)

// BMC holds the management controller endpoint of a node
type BMC struct {
	NodeIP   string `yaml:"ip"`
	Address  string `yaml:"bmc_address"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// Inventory maps node addresses onto their BMC
type Inventory map[string]BMC

// LoadInventory reads a YAML list of BMC entries
func LoadInventory(path string) (Inventory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, stacktrace.Propagate(err, "could not read BMC inventory %s", path)
	}
	return ParseInventory(data)
}

// ParseInventory parses a YAML list of BMC entries
func ParseInventory(data []byte) (Inventory, error) {
	var entries []BMC
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, stacktrace.Propagate(err, "could not parse BMC inventory")
	}
	inventory := Inventory{}
	for _, entry := range entries {
		if entry.NodeIP == "" || entry.Address == "" {
			return nil, cerrors.Error{
				ErrorCode: cerrors.ErrorTypeGeneric,
				Reason:    "BMC inventory entries need both ip and bmc_address",
				Target:    fmt.Sprintf("{ip: %s, bmc_address: %s}", entry.NodeIP, entry.Address),
			}
		}
		inventory[entry.NodeIP] = entry
	}
	return inventory, nil
}

// Lookup returns the BMC of the node
func (i Inventory) Lookup(address string) (BMC, error) {
	bmc, ok := i[address]
	if !ok {
		return BMC{}, cerrors.Error{
			ErrorCode: cerrors.ErrorTypeTargetSelection,
			Reason:    "no BMC registered for the node address",
			Target:    fmt.Sprintf("{ip: %s}", address),
		}
	}
	return bmc, nil
}
