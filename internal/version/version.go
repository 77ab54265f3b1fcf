package version

// Set via -ldflags at build time.
var (
	AppName = "Sprocket"
	Version = "dev"
)
