// Package config defines the hidrelay command line surface.
package config

import (
	"github.com/alecthomas/kong"

	"github.com/Alia5/hidrelay/internal/cmd"
)

// LogConfig groups the logging flags shared by all commands.
type LogConfig struct {
	Level   string `help:"Log level" enum:"trace,debug,info,warn,error" default:"info" env:"HIDRELAY_LOG_LEVEL"`
	File    string `help:"Also write logs to this file" env:"HIDRELAY_LOG_FILE"`
	RawFile string `help:"Dump raw HID reports and BLE writes to this file" env:"HIDRELAY_LOG_RAW_FILE"`
}

// CLI is the root of the hidrelay command tree.
type CLI struct {
	Config  string           `help:"Path to a configuration file" env:"HIDRELAY_CONFIG"`
	Version kong.VersionFlag `help:"Print version information and quit"`

	Log LogConfig `embed:"" prefix:"log."`

	Serve       cmd.Serve         `cmd:"" default:"withargs" help:"Relay Bluetooth input to the USB gadget (default command)"`
	ListDevices cmd.ListDevices   `cmd:"" name:"list-devices" help:"List readable input devices"`
	ConfigCmd   cmd.ConfigCommand `cmd:"" name:"config" help:"Configuration helpers"`
	Gadget      cmd.Gadget        `cmd:"" help:"Manage the configfs USB gadget"`
	Install     cmd.Install       `cmd:"" help:"Install hidrelay as a systemd service"`
	Uninstall   cmd.Uninstall     `cmd:"" help:"Remove the hidrelay systemd service"`
}
