package capture

// Version is the library version reported in diagnostics and shipped log
// entries (internal/config.ToShipperConfig, cmd/aynime-capture's version
// command).
const Version = "0.1.0"
