package registry

import (
	_ "github.com/Alia5/hidrelay/device/consumer" // Register consumer control gadget
	_ "github.com/Alia5/hidrelay/device/keyboard" // Register keyboard gadget
	_ "github.com/Alia5/hidrelay/device/mouse"    // Register mouse gadget
)
