package main

// Version stores the current version number of mpsh. Release builds set
// it through ldflags.
var Version = "dev"
