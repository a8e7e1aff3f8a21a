package main

// Build information, overridable at link time with -ldflags.
var (
	Version   = "0.1.0"
	BuildTime = "dev"
)

const appName = "kplexmux"
