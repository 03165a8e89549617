// Package main builds the dinput8.dll stand-in that the ROF2 client loads
// from its own directory. Compiled with -buildmode=c-shared for
// windows/386, the shim forwards the six DirectInput exports to the real
// system library and uses the foothold to run the mod host in-process.
package main

func main() {}
