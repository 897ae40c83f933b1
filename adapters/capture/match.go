package capture

import (
	"fmt"
	"strings"

	"github.com/satriahrh/farsisub/domain/entities"
)

// MatchDevice returns the position of the first input-capable device whose
// name contains name, ignoring case.
func MatchDevice(devices []entities.AudioDevice, name string) (int, error) {
	needle := strings.ToLower(name)
	for i, d := range devices {
		if d.MaxInputChannels > 0 && strings.Contains(strings.ToLower(d.Name), needle) {
			return i, nil
		}
	}

	var inputs []string
	for _, d := range devices {
		if d.MaxInputChannels > 0 {
			inputs = append(inputs, fmt.Sprintf("%d: %s", d.Index, d.Name))
		}
	}
	return -1, fmt.Errorf("%w: %q (inputs: %s)", ErrDeviceNotFound, name, strings.Join(inputs, ", "))
}
