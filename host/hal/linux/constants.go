package linux

// =============================================================================
// Device and Interface Limits
// =============================================================================

// MaxInterfacesPerDevice is the maximum number of interfaces per device.
const MaxInterfacesPerDevice = 16

// DefaultTransferTimeout is the default usbfs transfer timeout in
// milliseconds. Zero waits indefinitely.
const DefaultTransferTimeout = 0

// MaxBulkChunk is the largest OUT transfer handed to the kernel in one
// USBDEVFS_BULK call. usbfs copies each call through a single kernel
// buffer charged against usbfs_memory_mb.
const MaxBulkChunk = 16 * 1024

// =============================================================================
// System Paths
// =============================================================================

// SysfsUSBPath is the base path for USB devices in sysfs.
const SysfsUSBPath = "/sys/bus/usb/devices"

// DevfsUSBPath is the base path for USB device nodes.
const DevfsUSBPath = "/dev/bus/usb"

// =============================================================================
// Disconnect-Claim Flags
// =============================================================================

// DisconnectClaimExceptDriver makes USBDEVFS_DISCONNECT_CLAIM detach any
// driver except the named one.
const DisconnectClaimExceptDriver = 0x02

// usbfsDriverName is the name usbfs itself binds as.
const usbfsDriverName = "usbfs"
