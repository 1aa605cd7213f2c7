package scripter

// Version is the release of the module. Builds may override it with
// -ldflags "-X github.com/aretw0/scripter.Version=...".
var Version = "0.1.0"
