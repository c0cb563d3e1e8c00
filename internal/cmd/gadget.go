package cmd

import (
	"log/slog"

	"github.com/Alia5/hidrelay/gadget"
)

type Gadget struct {
	Setup    GadgetSetup    `cmd:"" help:"Create the composite USB HID gadget via configfs."`
	Teardown GadgetTeardown `cmd:"" help:"Unbind and remove the USB HID gadget."`
}

type GadgetSetup struct{}

func (g *GadgetSetup) Run(logger *slog.Logger) error {
	return gadget.Setup(logger)
}

type GadgetTeardown struct{}

func (g *GadgetTeardown) Run(logger *slog.Logger) error {
	return gadget.Teardown(logger)
}
