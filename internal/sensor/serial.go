package sensor

import (
	"fmt"
	"log/slog"
	"strings"

	"go.bug.st/serial"
)

// DefaultBaud matches the glove firmware.
const DefaultBaud = 115200

// portPatterns are substrings that typically identify a USB microcontroller.
var portPatterns = []string{"usbmodem", "ttyACM", "ttyUSB", "usbserial"}

// OpenSerial opens the named serial device at the given baud rate.
func OpenSerial(name string, baud int, logger *slog.Logger) (serial.Port, error) {
	if logger == nil {
		logger = slog.Default()
	}
	mode := &serial.Mode{BaudRate: baud}
	p, err := serial.Open(name, mode)
	if err != nil {
		logger.Error("serial: failed to open port", "device", name, "baud", baud, "err", err)
		return nil, fmt.Errorf("sensor: open %q: %w", name, err)
	}
	logger.Info("serial: port opened", "device", name, "baud", baud)
	return p, nil
}

// Discover returns the first serial port that looks like a microcontroller.
func Discover() (string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return "", fmt.Errorf("sensor: list ports: %w", err)
	}
	if name, ok := pickPort(ports); ok {
		return name, nil
	}
	return "", fmt.Errorf("sensor: no serial device found among %d ports", len(ports))
}

func pickPort(ports []string) (string, bool) {
	for _, pat := range portPatterns {
		for _, p := range ports {
			if strings.Contains(strings.ToLower(p), strings.ToLower(pat)) {
				return p, true
			}
		}
	}
	return "", false
}
